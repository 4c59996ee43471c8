package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.CollectAndCount(DBQueryDuration)
	ObserveQuery("metrics_test_op", time.Now().Add(-10*time.Millisecond))
	assert.Equal(t, before+1, testutil.CollectAndCount(DBQueryDuration))
}

func TestCommandsTotal(t *testing.T) {
	c := CommandsTotal.WithLabelValues("metrics-test", "ok")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
