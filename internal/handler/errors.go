package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/service"
)

// statusOf maps an error kind onto the HTTP status returned to the caller.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrConstraint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": "..."}.  Store failures are logged and
// reported with a generic message.
func fail(c echo.Context, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("http: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(status, echo.Map{"error": "database error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
