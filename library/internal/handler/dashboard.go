package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

// Dashboard serves the admin overview to admins and the personal one to readers.
func (h *Handler) Dashboard(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if actor.IsAdmin {
		dash, err := h.librarySvc.AdminDashboard(ctx)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, dash)
	}
	dash, err := h.librarySvc.UserDashboard(ctx, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dash)
}

// Stats is open to every signed-in user.
func (h *Handler) Stats(c echo.Context) error {
	st, err := h.librarySvc.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

// BorrowsReport
// @Summary     Borrow records as a PDF table
// @Tags        reports
// @Security    BearerAuth
// @Produce     application/pdf
// @Param       status query string false "all, active, overdue or returned"
// @Success     200 {file} file
// @Router      /reports/borrows [get]
func (h *Handler) BorrowsReport(c echo.Context) error {
	filter, ok := model.ParseLoanFilter(c.QueryParam("status"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "status is invalid")
	}
	doc, err := h.librarySvc.BorrowsReport(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return pdfBlob(c, "borrows_"+string(filter), doc)
}

// BooksReport
// @Summary     Book catalog as a PDF table
// @Tags        reports
// @Security    BearerAuth
// @Produce     application/pdf
// @Success     200 {file} file
// @Router      /reports/books [get]
func (h *Handler) BooksReport(c echo.Context) error {
	doc, err := h.librarySvc.BooksReport(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return pdfBlob(c, "books", doc)
}

// StatisticsReport
// @Summary     Summary counts, top books and top readers as a PDF
// @Tags        reports
// @Security    BearerAuth
// @Produce     application/pdf
// @Success     200 {file} file
// @Router      /reports/statistics [get]
func (h *Handler) StatisticsReport(c echo.Context) error {
	doc, err := h.librarySvc.StatisticsReport(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return pdfBlob(c, "statistics", doc)
}

func pdfBlob(c echo.Context, prefix string, doc []byte) error {
	name := fmt.Sprintf("%s_%s.pdf", prefix, time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", name))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
