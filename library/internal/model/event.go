package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBorrowed             EventType = "BORROWED"
	EventReturned             EventType = "RETURNED"
	EventReserved             EventType = "RESERVED"
	EventReservationCancelled EventType = "RESERVATION_CANCELLED"
)

type LendingEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	UserID     int64     `json:"userId"`
	BookID     int64     `json:"bookId"`
	RecordID   int64     `json:"recordId"`
	Fine       float64   `json:"fine,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewLendingEvent(typ EventType, userID, bookID, recordID int64, at time.Time) LendingEvent {
	return LendingEvent{
		ID:         uuid.New(),
		Type:       typ,
		UserID:     userID,
		BookID:     bookID,
		RecordID:   recordID,
		OccurredAt: at.UTC(),
	}
}
