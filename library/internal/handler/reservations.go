package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

// Reserve
// @Summary     Queue for a book with no copies left
// @Tags        reservations
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "book id"
// @Success     201 {object} model.ReserveResponse
// @Failure     404,409 {object} echo.HTTPError
// @Router      /reservations/{id} [post]
func (h *Handler) Reserve(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	bookID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.librarySvc.Reserve(c.Request().Context(), actor, bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, model.ReserveResponse{ReservationID: res.ID})
}

// CancelReservation
// @Summary     Cancel an own reservation
// @Tags        reservations
// @Security    BearerAuth
// @Param       id path int true "reservation id"
// @Success     204
// @Failure     403,404 {object} echo.HTTPError
// @Router      /reservations/{id} [delete]
func (h *Handler) CancelReservation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.librarySvc.CancelReservation(c.Request().Context(), actor, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MyReservations(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, err := h.librarySvc.MyReservations(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AllReservations(c echo.Context) error {
	var fulfilled bool
	if p := c.QueryParam("fulfilled"); p != "" {
		v, err := strconv.ParseBool(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "fulfilled is invalid")
		}
		fulfilled = v
	}
	items, err := h.librarySvc.AllReservations(c.Request().Context(), fulfilled)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
