package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/Astemirdum/library-lending/docs"
	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/auth"
	md "github.com/Astemirdum/library-lending/pkg/middleware"
	"github.com/Astemirdum/library-lending/pkg/validate"
)

type Handler struct {
	librarySvc LibraryService
	tokens     md.TokenParser
	apiRPS     rate.Limit
	log        *zap.Logger
}

func New(librarySvc LibraryService, tokens md.TokenParser, apiRPS float64, log *zap.Logger) *Handler {
	if apiRPS <= 0 {
		apiRPS = 100
	}
	return &Handler{
		librarySvc: librarySvc,
		tokens:     tokens,
		apiRPS:     rate.Limit(apiRPS),
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const baseRPS = 10
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(h.apiRPS),
	)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/books", h.ListBooks)
	api.GET("/books/categories", h.Categories)
	api.GET("/books/authors", h.Authors)
	api.GET("/books/:id", h.GetBook)

	authn := md.JwtAuthentication(h.tokens)
	admin := []echo.MiddlewareFunc{authn, md.RequireAdmin}

	api.GET("/me", h.Me, authn)

	api.POST("/loans/borrow/:bookId", h.Borrow, authn)
	api.POST("/loans/:id/return", h.Return, authn)
	api.GET("/loans/my", h.MyLoans, authn)
	api.GET("/loans/active", h.ActiveLoans, authn)

	api.POST("/reservations/:id", h.Reserve, authn)
	api.DELETE("/reservations/:id", h.CancelReservation, authn)
	api.GET("/reservations/my", h.MyReservations, authn)

	api.GET("/dashboard", h.Dashboard, authn)
	api.GET("/dashboard/stats", h.Stats, authn)

	api.POST("/books", h.CreateBook, admin...)
	api.PUT("/books/:id", h.UpdateBook, admin...)
	api.DELETE("/books/:id", h.DeleteBook, admin...)

	api.GET("/loans", h.AllLoans, admin...)
	api.GET("/loans/overdue", h.OverdueLoans, admin...)
	api.GET("/reservations", h.AllReservations, admin...)

	api.GET("/reports/borrows", h.BorrowsReport, admin...)
	api.GET("/reports/books", h.BooksReport, admin...)
	api.GET("/reports/statistics", h.StatisticsReport, admin...)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps an error kind onto its HTTP status.
func httpError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrUnavailable):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, errs.ErrExternal):
		code = http.StatusBadGateway
	}
	return echo.NewHTTPError(code, err.Error())
}

func actorFrom(c echo.Context) (model.Actor, error) {
	a, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "JwtAccessDenied")
	}
	return model.Actor{UserID: a.UserID, IsAdmin: a.IsAdmin}, nil
}

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return id, nil
}

func (h *Handler) bindValid(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
