package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

var today = time.Date(2024, 3, 20, 15, 4, 5, 0, time.UTC)

func record(dueOffsetDays int) model.BorrowRecord {
	return model.BorrowRecord{DueDate: model.DateOf(today).AddDate(0, 0, dueOffsetDays)}
}

func TestIsOverdue(t *testing.T) {
	t.Parallel()
	require.False(t, model.IsOverdue(record(1), today))
	require.False(t, model.IsOverdue(record(0), today), "due today is not overdue")
	require.True(t, model.IsOverdue(record(-1), today))

	returned := record(-10)
	at := today
	returned.ReturnedAt = &at
	require.False(t, model.IsOverdue(returned, today))
}

func TestCalculateFine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		due  int
		rate float64
		want float64
	}{
		{name: "not due yet", due: 3, rate: 0.5, want: 0},
		{name: "due today", due: 0, rate: 0.5, want: 0},
		{name: "five days late", due: -5, rate: 0.5, want: 2.5},
		{name: "one day late", due: -1, rate: 0.5, want: 0.5},
		{name: "fractional rate", due: -3, rate: 0.1, want: 0.3},
		{name: "rate below a cent", due: -2, rate: 0.001, want: 0.002},
		{name: "zero rate", due: -3, rate: 0, want: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, model.CalculateFine(record(tt.due), tt.rate, today), 1e-12)
		})
	}
}

func TestCalculateFine_LinearInDays(t *testing.T) {
	t.Parallel()
	for _, rate := range []float64{0.5, 0.001} {
		prev := 0.0
		for days := 1; days <= 60; days++ {
			fine := model.CalculateFine(record(-days), rate, today)
			require.Greater(t, fine, prev)
			require.InDelta(t, float64(days)*rate, fine, 1e-9)
			prev = fine
		}
	}
}

func TestRoundCents(t *testing.T) {
	t.Parallel()
	require.Equal(t, 0.3, model.RoundCents(3*0.1))
	require.Equal(t, 0.01, model.RoundCents(0.006))
	require.Equal(t, 0.0, model.RoundCents(0.002))
	require.Equal(t, 2.5, model.RoundCents(2.5))
}

func TestEffectiveStatus(t *testing.T) {
	t.Parallel()
	require.Equal(t, model.StatusBorrowed, model.EffectiveStatus(record(2), today))
	require.Equal(t, model.StatusOverdue, model.EffectiveStatus(record(-2), today))
	r := record(-2)
	at := today
	r.ReturnedAt = &at
	require.Equal(t, model.StatusReturned, model.EffectiveStatus(r, today))
}

func TestDateOf_KeepsCalendarDay(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+7", 7*3600)
	late := time.Date(2024, 3, 20, 23, 30, 0, 0, loc)
	require.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), model.DateOf(late))
	require.Equal(t, 14, model.DaysBetween(late, late.AddDate(0, 0, 14)))
}
