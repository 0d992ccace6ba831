package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

// Borrow
// @Summary     Borrow one copy of a book
// @Tags        loans
// @Security    BearerAuth
// @Produce     json
// @Param       bookId path int true "book id"
// @Success     201 {object} model.BorrowResponse
// @Failure     404,409 {object} echo.HTTPError
// @Router      /loans/borrow/{bookId} [post]
func (h *Handler) Borrow(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}

	rec, err := h.librarySvc.Borrow(c.Request().Context(), actor, bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, model.BorrowResponse{
		BorrowID: rec.ID,
		DueDate:  rec.DueDate.Format("2006-01-02"),
	})
}

// Return
// @Summary     Return a borrowed book and settle the fine
// @Tags        loans
// @Security    BearerAuth
// @Produce     json
// @Param       id path int true "borrow record id"
// @Success     200 {object} model.ReturnResponse
// @Failure     403,404,409 {object} echo.HTTPError
// @Router      /loans/{id}/return [post]
func (h *Handler) Return(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.librarySvc.Return(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, model.ReturnResponse{Fine: res.Fine})
}

func (h *Handler) MyLoans(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	records, err := h.librarySvc.MyLoans(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// ActiveLoans lists unreturned loans of the caller. Admins may ask for
// another reader with ?userId=.
func (h *Handler) ActiveLoans(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	userID := actor.UserID
	if p := c.QueryParam("userId"); p != "" {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "userId is invalid")
		}
		if id != actor.UserID && !actor.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		userID = id
	}

	records, err := h.librarySvc.ListActiveLoans(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) AllLoans(c echo.Context) error {
	filter, ok := model.ParseLoanFilter(c.QueryParam("status"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "status is invalid")
	}
	records, err := h.librarySvc.AllLoans(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) OverdueLoans(c echo.Context) error {
	records, err := h.librarySvc.ListOverdueLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}
