package model

import (
	"time"
)

type Actor struct {
	UserID  int64
	IsAdmin bool
}

type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// DisplayName falls back to the email when no name was given.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Category        string    `json:"category" db:"category"`
	ISBN            *string   `json:"isbn,omitempty" db:"isbn"`
	ImagePath       *string   `json:"imagePath,omitempty" db:"image_path"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	StatusOverdue  Status = "overdue"
)

type BorrowRecord struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"userId" db:"user_id"`
	BookID     int64      `json:"bookId" db:"book_id"`
	BorrowedAt time.Time  `json:"borrowedAt" db:"borrowed_at"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
	FineAmount float64    `json:"fineAmount" db:"fine_amount"`
	Status     Status     `json:"status" db:"status"`
	BookTitle  string     `json:"bookTitle,omitempty" db:"book_title"`
	BookAuthor string     `json:"bookAuthor,omitempty" db:"book_author"`
	UserEmail  string     `json:"userEmail,omitempty" db:"user_email"`
	UserName   string     `json:"userName,omitempty" db:"user_name"`
}

// Reader is the name shown for the borrower in listings and reports.
func (r BorrowRecord) Reader() string {
	if r.UserName != "" {
		return r.UserName
	}
	return r.UserEmail
}

type Reservation struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	BookID     int64     `json:"bookId" db:"book_id"`
	ReservedAt time.Time `json:"reservedAt" db:"reserved_at"`
	Fulfilled  bool      `json:"fulfilled" db:"fulfilled"`
	BookTitle  string    `json:"bookTitle,omitempty" db:"book_title"`
	UserEmail  string    `json:"userEmail,omitempty" db:"user_email"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type BookFilter struct {
	Query    string
	Category string
	Author   string
	Page     int
	Size     int
}

// LoanFilter selects borrow records for listings and reports.
type LoanFilter string

const (
	LoanFilterAll      LoanFilter = "all"
	LoanFilterActive   LoanFilter = "active"
	LoanFilterOverdue  LoanFilter = "overdue"
	LoanFilterReturned LoanFilter = "returned"
)

func ParseLoanFilter(s string) (LoanFilter, bool) {
	switch f := LoanFilter(s); f {
	case LoanFilterAll, LoanFilterActive, LoanFilterOverdue, LoanFilterReturned:
		return f, true
	case "":
		return LoanFilterAll, true
	}
	return "", false
}

// LoanNotice is an unreturned loan joined with what a notification needs.
type LoanNotice struct {
	RecordID   int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	UserEmail  string    `db:"user_email"`
	UserName   string    `db:"user_name"`
	BookTitle  string    `db:"book_title"`
	BookAuthor string    `db:"book_author"`
	DueDate    time.Time `db:"due_date"`
}
