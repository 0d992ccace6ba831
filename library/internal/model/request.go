package model

import "time"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=120"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type BookRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Author      string  `json:"author" validate:"max=255"`
	Category    string  `json:"category" validate:"max=120"`
	ISBN        *string `json:"isbn" validate:"omitempty,max=50"`
	ImagePath   *string `json:"imagePath" validate:"omitempty,max=500"`
	TotalCopies int     `json:"totalCopies" validate:"gte=0"`
}

type BorrowResponse struct {
	BorrowID int64  `json:"borrowId"`
	DueDate  string `json:"dueDate"`
}

type ReturnResponse struct {
	Fine float64 `json:"fine"`
}

type ReserveResponse struct {
	ReservationID int64 `json:"reservationId"`
}

// ReturnResult carries the outcome of a return. NextReservation is the oldest
// pending reservation of the book, reported for information only.
type ReturnResult struct {
	Record          BorrowRecord
	Fine            float64
	NextReservation *Reservation
}
