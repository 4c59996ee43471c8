// Package handler exposes the rental operations over HTTP.  Handlers are
// thin: they decode the request, call the RentalService and encode the
// result; every rule lives in the service and the store.
package handler

import (
	"iter"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/service"
)

// RentalHandler serves the /v1 routes.
type RentalHandler struct {
	Service *service.RentalService
}

// NewRentalHandler constructs a RentalHandler and panics if svc is nil.
func NewRentalHandler(svc *service.RentalService) *RentalHandler {
	if svc == nil {
		panic("nil service passed to NewRentalHandler")
	}
	return &RentalHandler{Service: svc}
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

// items writes a collected sequence as {"items": [...]}.  An empty result
// is an empty array, never null.
func items[T any](c echo.Context, seq iter.Seq2[T, error]) error {
	out, err := repository.Collect(seq)
	if err != nil {
		return fail(c, err)
	}
	if out == nil {
		out = []T{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// pathID parses the :id parameter.  Ids are signed 64-bit keys in the store,
// so anything wider is rejected here.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	return id, err == nil && id > 0
}

// ListFilms handles GET /v1/films.
func (h *RentalHandler) ListFilms(c echo.Context) error {
	films, err := h.Service.ListFilms(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if films == nil {
		films = []model.Film{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": films})
}

// GetFilm handles GET /v1/films/:id.
func (h *RentalHandler) GetFilm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	f, err := h.Service.GetFilm(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// GetClient handles GET /v1/clients/:id.
func (h *RentalHandler) GetClient(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	cs, err := h.Service.GetClient(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cs)
}

// AddFilm handles POST /v1/films and responds 201 with the new id.
func (h *RentalHandler) AddFilm(c echo.Context) error {
	var req model.NewFilm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	id, err := h.Service.AddFilm(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateClientEmail handles PATCH /v1/clients/:id/email.
func (h *RentalHandler) UpdateClientEmail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req updateEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	n, err := h.Service.UpdateClientEmail(c.Request().Context(), id, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "rows_affected": n})
}

// RemoveClient handles DELETE /v1/clients/:id and responds 204.
func (h *RentalHandler) RemoveClient(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	if err := h.Service.RemoveClient(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FilmsRentedBy handles GET /v1/clients/films?email=.
func (h *RentalHandler) FilmsRentedBy(c echo.Context) error {
	seq, err := h.Service.FindFilmsRentedBy(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return fail(c, err)
	}
	return items(c, seq)
}

// ClientsWhoRented handles GET /v1/films/renters?title=.
func (h *RentalHandler) ClientsWhoRented(c echo.Context) error {
	seq, err := h.Service.FindClientsWhoRented(c.Request().Context(), c.QueryParam("title"))
	if err != nil {
		return fail(c, err)
	}
	return items(c, seq)
}

// RentalHistory handles GET /v1/films/history?title=.
func (h *RentalHandler) RentalHistory(c echo.Context) error {
	seq, err := h.Service.RentalHistory(c.Request().Context(), c.QueryParam("title"))
	if err != nil {
		return fail(c, err)
	}
	return items(c, seq)
}

// OpenRentals handles GET /v1/rentals/open.
func (h *RentalHandler) OpenRentals(c echo.Context) error {
	return items(c, h.Service.ListOpenRentals(c.Request().Context()))
}
