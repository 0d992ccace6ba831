package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

func TestMonthStarts(t *testing.T) {
	t.Parallel()
	got := monthStarts(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 4)
	want := []time.Time{
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.Equal(t, want, got)
}

func TestAdminDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	today := model.DateOf(testNow)
	u := store.addUser("u@example.com", false)
	book := store.addBook("Lolita", 2, 0)
	store.addLoan(u.ID, book.ID, today.AddDate(0, 0, -20), today.AddDate(0, 0, -6))
	store.addLoan(u.ID, book.ID, today.AddDate(0, -2, 0), today.AddDate(0, 0, 10))
	store.addReservation(u.ID, book.ID, testNow)

	dash, err := svc.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, model.Stats{TotalBooks: 1, TotalUsers: 1, ActiveBorrows: 2, OverdueBooks: 1}, dash.Stats)
	require.Equal(t, 1, dash.PendingReservations)
	require.Len(t, dash.OverdueRecords, 1)
	require.Equal(t, model.StatusOverdue, dash.OverdueRecords[0].Status)
	require.Len(t, dash.MonthsStats, 7)
	require.Equal(t, "2024-03", dash.MonthsStats[6].Month)
	require.Equal(t, "2023-09", dash.MonthsStats[0].Month)
	require.Equal(t, 1, dash.MonthsStats[5].Count)
}

func TestAdminDashboardFailure(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	store.failList = errors.New("db down")
	_, err := svc.AdminDashboard(context.Background())
	require.EqualError(t, err, "db down")
}

func TestUserDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	today := model.DateOf(testNow)
	u := store.addUser("u@example.com", false)
	b1 := store.addBook("One", 1, 0)
	b2 := store.addBook("Two", 1, 0)
	store.addLoan(u.ID, b1.ID, today.AddDate(0, 0, -20), today.AddDate(0, 0, -1))
	store.addLoan(u.ID, b2.ID, today.AddDate(0, 0, -1), today.AddDate(0, 0, 13))

	dash, err := svc.UserDashboard(ctx, model.Actor{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, dash.ActiveBorrows, 2)
	require.Len(t, dash.OverdueBorrows, 1)
	require.Equal(t, "One", dash.OverdueBorrows[0].BookTitle)
	require.Zero(t, dash.MyReservations)
	require.Len(t, dash.RecentBorrows, 2)
}

func TestBorrowsReport(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	today := model.DateOf(testNow)
	u := store.addUser("u@example.com", false)
	b := store.addBook("One", 1, 0)
	store.addLoan(u.ID, b.ID, today.AddDate(0, 0, -3), today.AddDate(0, 0, 11))

	out, err := svc.BorrowsReport(context.Background(), model.LoanFilterActive)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestBooksReport(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	for _, title := range []string{"Walden", "Dune", "Emma"} {
		store.addBook(title, 2, 1)
	}

	out, err := svc.BooksReport(context.Background())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestStatisticsReport(t *testing.T) {
	t.Parallel()
	svc, store, _ := newTestService(t)
	today := model.DateOf(testNow)
	u := store.addUser("u@example.com", false)
	b := store.addBook("One", 1, 0)
	store.addLoan(u.ID, b.ID, today.AddDate(0, 0, -20), today.AddDate(0, 0, -6))

	out, err := svc.StatisticsReport(context.Background())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
