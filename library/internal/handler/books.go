package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

// ListBooks
// @Summary     Search the catalog
// @Tags        books
// @Produce     json
// @Param       q        query string false "title, author, category or isbn"
// @Param       category query string false "exact category"
// @Param       author   query string false "exact author"
// @Param       page     query int    false "page, from 1"
// @Param       size     query int    false "page size"
// @Success     200 {object} model.ListBooks
// @Router      /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	f := model.BookFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Author:   c.QueryParam("author"),
	}
	var err error
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if f.Page, err = strconv.Atoi(pageParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("page is invalid").Error())
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if f.Size, err = strconv.Atoi(sizeParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("size is invalid").Error())
		}
	}

	books, err := h.librarySvc.ListBooks(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	book, err := h.librarySvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) Categories(c echo.Context) error {
	items, err := h.librarySvc.Categories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Authors(c echo.Context) error {
	items, err := h.librarySvc.Authors(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateBook
// @Summary     Add a book to the catalog
// @Tags        books
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request body model.BookRequest true "book"
// @Success     201 {object} model.Book
// @Failure     400,403,409 {object} echo.HTTPError
// @Router      /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.BookRequest
	if err := h.bindValid(c, &req); err != nil {
		return err
	}
	book, err := h.librarySvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.BookRequest
	if err := h.bindValid(c, &req); err != nil {
		return err
	}
	book, err := h.librarySvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteBook(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
