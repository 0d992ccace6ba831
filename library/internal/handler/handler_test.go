package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/handler"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/auth"
	"github.com/Astemirdum/library-lending/pkg/validate"

	service_mocks "github.com/Astemirdum/library-lending/library/internal/handler/mocks"
)

var reader = model.Actor{UserID: 7}

func withActor(a model.Actor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.SetAuthContext(c.Request().Context(), a.UserID, a.IsAdmin)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

type response struct {
	expectedCode int
	expectedBody string
}

func serve(t *testing.T, method, route, target string, fn func(h *handler.Handler) echo.HandlerFunc,
	mockBehavior func(r *service_mocks.MockLibraryService), body string) *httptest.ResponseRecorder {
	t.Helper()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockLibraryService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(svc, nil, 0, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.Add(method, route, fn(h), withActor(reader))

	var rb io.Reader = http.NoBody
	if body != "" {
		rb = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rb)
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()

	mockBehavior(svc)
	e.ServeHTTP(w, r)
	return w
}

func TestHandler_Borrow(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockLibraryService, bookID int64)

	var tests = []struct {
		name         string
		bookID       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			bookID: "3",
			mockBehavior: func(r *service_mocks.MockLibraryService, bookID int64) {
				r.EXPECT().
					Borrow(gomock.Any(), reader, bookID).
					Return(model.BorrowRecord{
						ID:      5,
						UserID:  reader.UserID,
						BookID:  bookID,
						DueDate: time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC),
						Status:  model.StatusBorrowed,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"borrowId":5,"dueDate":"2024-03-24"}`,
			},
		},
		{
			name:   "err. no copies",
			bookID: "3",
			mockBehavior: func(r *service_mocks.MockLibraryService, bookID int64) {
				r.EXPECT().Borrow(gomock.Any(), reader, bookID).Return(model.BorrowRecord{}, errs.ErrBookUnavailable)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"no copies available"}`,
			},
		},
		{
			name:   "err. duplicate loan",
			bookID: "3",
			mockBehavior: func(r *service_mocks.MockLibraryService, bookID int64) {
				r.EXPECT().Borrow(gomock.Any(), reader, bookID).Return(model.BorrowRecord{}, errs.ErrDuplicateLoan)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is already borrowed by this user"}`,
			},
		},
		{
			name:   "err. book not found",
			bookID: "9",
			mockBehavior: func(r *service_mocks.MockLibraryService, bookID int64) {
				r.EXPECT().Borrow(gomock.Any(), reader, bookID).Return(model.BorrowRecord{}, errs.ErrBookNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book not found"}`,
			},
		},
		{
			name:         "err. bad id",
			bookID:       "abc",
			mockBehavior: func(r *service_mocks.MockLibraryService, bookID int64) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"bookId is invalid"}`,
			},
		},
		{
			name:   "err. internal",
			bookID: "3",
			mockBehavior: func(r *service_mocks.MockLibraryService, bookID int64) {
				r.EXPECT().Borrow(gomock.Any(), reader, bookID).Return(model.BorrowRecord{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var id int64
			fmt.Sscan(tt.bookID, &id) //nolint:errcheck
			w := serve(t, http.MethodPost, "/loans/borrow/:bookId", "/loans/borrow/"+tt.bookID,
				func(h *handler.Handler) echo.HandlerFunc { return h.Borrow },
				func(r *service_mocks.MockLibraryService) { tt.mockBehavior(r, id) }, "")

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Return(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok. late",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Return(gomock.Any(), reader, int64(11)).Return(model.ReturnResult{Fine: 2.5}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"fine":2.5}`,
			},
		},
		{
			name: "err. not the borrower",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Return(gomock.Any(), reader, int64(11)).Return(model.ReturnResult{}, errs.ErrNotBorrower)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"only the borrower or an admin can return this book"}`,
			},
		},
		{
			name: "err. already returned",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Return(gomock.Any(), reader, int64(11)).Return(model.ReturnResult{}, errs.ErrAlreadyReturned)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book has already been returned"}`,
			},
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Return(gomock.Any(), reader, int64(11)).Return(model.ReturnResult{}, errs.ErrBorrowNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"borrow record not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, http.MethodPost, "/loans/:id/return", "/loans/11/return",
				func(h *handler.Handler) echo.HandlerFunc { return h.Return },
				tt.mockBehavior, "")

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Reserve(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Reserve(gomock.Any(), reader, int64(4)).Return(model.Reservation{ID: 21}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"reservationId":21}`,
			},
		},
		{
			name: "err. copies on the shelf",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Reserve(gomock.Any(), reader, int64(4)).Return(model.Reservation{}, errs.ErrAlreadyAvailable)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is available, borrow it instead"}`,
			},
		},
		{
			name: "err. reserved twice",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Reserve(gomock.Any(), reader, int64(4)).Return(model.Reservation{}, errs.ErrDuplicateReservation)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is already reserved by this user"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, http.MethodPost, "/reservations/:id", "/reservations/4",
				func(h *handler.Handler) echo.HandlerFunc { return h.Reserve },
				tt.mockBehavior, "")

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CancelReservation(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CancelReservation(gomock.Any(), reader, int64(21)).Return(nil)
			},
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name: "err. someone else's",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CancelReservation(gomock.Any(), reader, int64(21)).Return(errs.ErrNotReservationOwn)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"reservation belongs to another user"}`,
			},
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CancelReservation(gomock.Any(), reader, int64(21)).Return(errs.ErrReservationNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"reservation not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, http.MethodDelete, "/reservations/:id", "/reservations/21",
				func(h *handler.Handler) echo.HandlerFunc { return h.CancelReservation },
				tt.mockBehavior, "")

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ActiveLoans(t *testing.T) {
	t.Parallel()

	t.Run("own loans", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/loans/active", "/loans/active",
			func(h *handler.Handler) echo.HandlerFunc { return h.ActiveLoans },
			func(r *service_mocks.MockLibraryService) {
				r.EXPECT().ListActiveLoans(gomock.Any(), reader.UserID).Return([]model.BorrowRecord{}, nil)
			}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, `[]`, strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. another reader", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/loans/active", "/loans/active?userId=8",
			func(h *handler.Handler) echo.HandlerFunc { return h.ActiveLoans },
			func(r *service_mocks.MockLibraryService) {}, "")
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("err. invalid email", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodPost, "/auth/register", "/auth/register",
			func(h *handler.Handler) echo.HandlerFunc { return h.Register },
			func(r *service_mocks.MockLibraryService) {},
			`{"email":"nope","password":"secret1"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("err. email taken", func(t *testing.T) {
		t.Parallel()
		req := model.RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"}
		w := serve(t, http.MethodPost, "/auth/register", "/auth/register",
			func(h *handler.Handler) echo.HandlerFunc { return h.Register },
			func(r *service_mocks.MockLibraryService) {
				r.EXPECT().Register(gomock.Any(), req).Return(model.User{}, errs.ErrEmailTaken)
			},
			`{"email":"a@example.com","name":"A","password":"secret1"}`)
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, `{"message":"email is already registered"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_BorrowsReport(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/reports/borrows", "/reports/borrows?status=overdue",
			func(h *handler.Handler) echo.HandlerFunc { return h.BorrowsReport },
			func(r *service_mocks.MockLibraryService) {
				r.EXPECT().BorrowsReport(gomock.Any(), model.LoanFilterOverdue).Return([]byte("%PDF-1.3"), nil)
			}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/pdf", w.Header().Get(echo.HeaderContentType))
		require.Contains(t, w.Header().Get(echo.HeaderContentDisposition), "borrows_overdue_")
		require.Equal(t, "%PDF-1.3", w.Body.String())
	})

	t.Run("err. unknown status", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/reports/borrows", "/reports/borrows?status=lost",
			func(h *handler.Handler) echo.HandlerFunc { return h.BorrowsReport },
			func(r *service_mocks.MockLibraryService) {}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, `{"message":"status is invalid"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_BooksAndStatisticsReports(t *testing.T) {
	t.Parallel()

	t.Run("books", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/reports/books", "/reports/books",
			func(h *handler.Handler) echo.HandlerFunc { return h.BooksReport },
			func(r *service_mocks.MockLibraryService) {
				r.EXPECT().BooksReport(gomock.Any()).Return([]byte("%PDF-1.3"), nil)
			}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/pdf", w.Header().Get(echo.HeaderContentType))
		require.Contains(t, w.Header().Get(echo.HeaderContentDisposition), "books_")
		require.Equal(t, "%PDF-1.3", w.Body.String())
	})

	t.Run("statistics", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/reports/statistics", "/reports/statistics",
			func(h *handler.Handler) echo.HandlerFunc { return h.StatisticsReport },
			func(r *service_mocks.MockLibraryService) {
				r.EXPECT().StatisticsReport(gomock.Any()).Return([]byte("%PDF-1.3"), nil)
			}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get(echo.HeaderContentDisposition), "statistics_")
	})

	t.Run("err. store down", func(t *testing.T) {
		t.Parallel()
		w := serve(t, http.MethodGet, "/reports/statistics", "/reports/statistics",
			func(h *handler.Handler) echo.HandlerFunc { return h.StatisticsReport },
			func(r *service_mocks.MockLibraryService) {
				r.EXPECT().StatisticsReport(gomock.Any()).Return(nil, errors.New("connection refused"))
			}, "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
