package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

type Repository interface {
	UserRepository
	BookRepository
	LoanRepository
	ReservationRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	PromoteUser(ctx context.Context, id int64, passwordHash string) error
}

type BookRepository interface {
	ListBooks(ctx context.Context, f model.BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	Categories(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]string, error)
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type LoanRepository interface {
	// CreateLoan takes one copy of the book and records the loan atomically.
	CreateLoan(ctx context.Context, userID, bookID int64, dueDate time.Time) (model.BorrowRecord, error)
	GetBorrow(ctx context.Context, id int64) (model.BorrowRecord, error)
	// CloseLoan marks the loan returned and puts the copy back atomically.
	CloseLoan(ctx context.Context, id int64, fine float64, returnedAt time.Time) (model.BorrowRecord, error)
	ListLoans(ctx context.Context, q LoanQuery) ([]model.BorrowRecord, error)
	HasActiveLoan(ctx context.Context, userID, bookID int64) (bool, error)
	LoansDueOn(ctx context.Context, date time.Time) ([]model.LoanNotice, error)
	LoansOverdue(ctx context.Context, today time.Time) ([]model.LoanNotice, error)
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, userID, bookID int64) (model.Reservation, error)
	GetReservation(ctx context.Context, id int64) (model.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
	HasPendingReservation(ctx context.Context, userID, bookID int64) (bool, error)
	// NextReservation returns the oldest unfulfilled reservation of the book.
	NextReservation(ctx context.Context, bookID int64) (model.Reservation, error)
	ListReservations(ctx context.Context, q ReservationQuery) ([]model.Reservation, error)
	CountPendingReservations(ctx context.Context, userID int64) (int, error)
}

// LoanQuery filters borrow records. Zero UserID matches every user.
type LoanQuery struct {
	UserID     int64
	Filter     model.LoanFilter
	Today      time.Time
	OrderByDue bool
	Limit      uint64
}

// ReservationQuery filters reservations. Zero UserID matches every user.
type ReservationQuery struct {
	UserID    int64
	Fulfilled bool
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil pool")
	}
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	booksTableName        = `books`
	borrowRecordsTable    = `borrow_records`
	reservationsTableName = `reservations`

	activeLoanIndex         = `borrow_records_active_uidx`
	pendingReservationIndex = `reservations_pending_uidx`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
