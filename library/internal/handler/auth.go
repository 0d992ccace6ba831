package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

// Register
// @Summary     Register a reader account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body model.RegisterRequest true "account"
// @Success     201 {object} model.User
// @Failure     400,409 {object} echo.HTTPError
// @Router      /auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := h.bindValid(c, &req); err != nil {
		return err
	}
	u, err := h.librarySvc.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Login
// @Summary     Exchange credentials for a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body model.LoginRequest true "credentials"
// @Success     200 {object} model.LoginResponse
// @Failure     400,401 {object} echo.HTTPError
// @Router      /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := h.bindValid(c, &req); err != nil {
		return err
	}
	resp, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	u, err := h.librarySvc.Me(c.Request().Context(), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}
