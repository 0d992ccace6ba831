package model

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DateOf drops the clock part of t, keeping its calendar date in t's location.
// The result is expressed in UTC so that it compares equal to DATE columns.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / day)
}

func IsOverdue(r BorrowRecord, today time.Time) bool {
	return r.ReturnedAt == nil && DateOf(today).After(DateOf(r.DueDate))
}

// DaysOverdue is zero for records that are returned or not yet past due.
func DaysOverdue(r BorrowRecord, today time.Time) int {
	if !IsOverdue(r, today) {
		return 0
	}
	return DaysBetween(r.DueDate, today)
}

// CalculateFine is the per-day rate times the days overdue, unrounded;
// round with RoundCents where an amount is charged or stored.
func CalculateFine(r BorrowRecord, rate float64, today time.Time) float64 {
	days := DaysOverdue(r, today)
	if days <= 0 || rate <= 0 {
		return 0
	}
	return float64(days) * rate
}

// RoundCents rounds an amount to the precision of the fine_amount column.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// EffectiveStatus reports overdue for unreturned records past due.
func EffectiveStatus(r BorrowRecord, today time.Time) Status {
	if r.ReturnedAt != nil {
		return StatusReturned
	}
	if IsOverdue(r, today) {
		return StatusOverdue
	}
	return StatusBorrowed
}
