package errs

import (
	"errors"
)

// Kinds. Every error below unwraps to exactly one of them.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("unavailable")
	ErrExternal        = errors.New("external dependency failure")
	ErrUnauthenticated = errors.New("unauthenticated")
)

var (
	ErrUserNotFound        = kind(ErrNotFound, "user not found")
	ErrBookNotFound        = kind(ErrNotFound, "book not found")
	ErrBorrowNotFound      = kind(ErrNotFound, "borrow record not found")
	ErrReservationNotFound = kind(ErrNotFound, "reservation not found")

	ErrNotBorrower       = kind(ErrForbidden, "only the borrower or an admin can return this book")
	ErrNotReservationOwn = kind(ErrForbidden, "reservation belongs to another user")

	ErrDuplicateLoan        = kind(ErrConflict, "book is already borrowed by this user")
	ErrAlreadyReturned      = kind(ErrConflict, "book has already been returned")
	ErrAlreadyAvailable     = kind(ErrConflict, "book is available, borrow it instead")
	ErrDuplicateReservation = kind(ErrConflict, "book is already reserved by this user")
	ErrAlreadyBorrowed      = kind(ErrConflict, "book is currently borrowed by this user")
	ErrEmailTaken           = kind(ErrConflict, "email is already registered")
	ErrISBNTaken            = kind(ErrConflict, "isbn already exists")
	ErrBookOnLoan           = kind(ErrConflict, "book has active loans")
	ErrBookHasHistory       = kind(ErrConflict, "book has borrow history and cannot be deleted")

	ErrBookUnavailable = kind(ErrUnavailable, "no copies available")

	ErrBadCredentials = kind(ErrUnauthenticated, "invalid email or password")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

// External marks err as a failure of an outside collaborator.
func External(err error) error {
	if err == nil {
		return nil
	}
	return &externalError{err: err}
}

type externalError struct {
	err error
}

func (e *externalError) Error() string { return ErrExternal.Error() + ": " + e.err.Error() }

func (e *externalError) Unwrap() []error { return []error{ErrExternal, e.err} }
