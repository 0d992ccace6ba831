package handler

import (
	"context"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Me(ctx context.Context, actor model.Actor) (model.User, error)

	ListBooks(ctx context.Context, f model.BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	Categories(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]string, error)
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	Borrow(ctx context.Context, actor model.Actor, bookID int64) (model.BorrowRecord, error)
	Return(ctx context.Context, actor model.Actor, borrowID int64) (model.ReturnResult, error)
	ListActiveLoans(ctx context.Context, userID int64) ([]model.BorrowRecord, error)
	ListOverdueLoans(ctx context.Context) ([]model.BorrowRecord, error)
	MyLoans(ctx context.Context, actor model.Actor) ([]model.BorrowRecord, error)
	AllLoans(ctx context.Context, filter model.LoanFilter) ([]model.BorrowRecord, error)

	Reserve(ctx context.Context, actor model.Actor, bookID int64) (model.Reservation, error)
	CancelReservation(ctx context.Context, actor model.Actor, reservationID int64) error
	MyReservations(ctx context.Context, actor model.Actor) ([]model.Reservation, error)
	AllReservations(ctx context.Context, fulfilled bool) ([]model.Reservation, error)

	AdminDashboard(ctx context.Context) (model.AdminDashboard, error)
	UserDashboard(ctx context.Context, actor model.Actor) (model.UserDashboard, error)
	Stats(ctx context.Context) (model.Stats, error)
	BorrowsReport(ctx context.Context, filter model.LoanFilter) ([]byte, error)
	BooksReport(ctx context.Context) ([]byte, error)
	StatisticsReport(ctx context.Context) ([]byte, error)
}

var _ LibraryService = (*service.Service)(nil)
