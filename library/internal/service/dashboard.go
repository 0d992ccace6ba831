package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/report"
	"github.com/Astemirdum/library-lending/library/internal/repository"
)

const (
	topLimit       = 10
	overdueLimit   = 20
	recentLimit    = 10
	dashboardMonth = 7
)

func (s *Service) AdminDashboard(ctx context.Context) (model.AdminDashboard, error) {
	var (
		dash  model.AdminDashboard
		today = s.today()
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		dash.Stats, err = s.stats.Stats(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		dash.PendingReservations, err = s.repo.CountPendingReservations(gctx, 0)
		return err
	})
	g.Go(func() (err error) {
		dash.PopularBooks, err = s.stats.PopularBooks(gctx, topLimit)
		return err
	})
	g.Go(func() (err error) {
		dash.ActiveReaders, err = s.stats.ActiveReaders(gctx, topLimit)
		return err
	})
	g.Go(func() error {
		records, err := s.repo.ListLoans(gctx, repository.LoanQuery{
			Filter:     model.LoanFilterOverdue,
			Today:      today,
			OrderByDue: true,
			Limit:      overdueLimit,
		})
		dash.OverdueRecords = s.withStatus(records)
		return err
	})

	months := monthStarts(today, dashboardMonth)
	dash.MonthsStats = make([]model.MonthCount, len(months))
	for i, start := range months {
		i, start := i, start
		g.Go(func() error {
			n, err := s.stats.BorrowsBetween(gctx, start, start.AddDate(0, 1, 0))
			dash.MonthsStats[i] = model.MonthCount{Month: start.Format("2006-01"), Count: n}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return model.AdminDashboard{}, err
	}
	return dash, nil
}

// monthStarts returns the first day of the last n months, oldest first,
// ending with the month of today.
func monthStarts(today time.Time, n int) []time.Time {
	cur := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = cur.AddDate(0, -i, 0)
	}
	return out
}

func (s *Service) UserDashboard(ctx context.Context, actor model.Actor) (model.UserDashboard, error) {
	active, err := s.ListActiveLoans(ctx, actor.UserID)
	if err != nil {
		return model.UserDashboard{}, err
	}
	overdue := make([]model.BorrowRecord, 0)
	for _, r := range active {
		if r.Status == model.StatusOverdue {
			overdue = append(overdue, r)
		}
	}

	pending, err := s.repo.CountPendingReservations(ctx, actor.UserID)
	if err != nil {
		return model.UserDashboard{}, err
	}

	recent, err := s.listLoans(ctx, repository.LoanQuery{
		UserID: actor.UserID,
		Filter: model.LoanFilterAll,
		Limit:  recentLimit,
	})
	if err != nil {
		return model.UserDashboard{}, err
	}

	return model.UserDashboard{
		ActiveBorrows:  active,
		OverdueBorrows: overdue,
		MyReservations: pending,
		RecentBorrows:  recent,
	}, nil
}

func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	return s.stats.Stats(ctx, s.today())
}

// BorrowsReport renders the records matching filter as a PDF document.
func (s *Service) BorrowsReport(ctx context.Context, filter model.LoanFilter) ([]byte, error) {
	records, err := s.AllLoans(ctx, filter)
	if err != nil {
		return nil, err
	}
	return report.BorrowsReport(records, filter, s.now())
}

// BooksReport renders the whole catalog ordered by title.
func (s *Service) BooksReport(ctx context.Context) ([]byte, error) {
	books, err := s.repo.ListBooks(ctx, model.BookFilter{})
	if err != nil {
		return nil, err
	}
	return report.BooksReport(books.Items, s.now())
}

// StatisticsReport renders the summary counts with the top books and readers.
func (s *Service) StatisticsReport(ctx context.Context) ([]byte, error) {
	var st report.Statistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Stats, err = s.stats.Stats(gctx, s.today())
		return err
	})
	g.Go(func() (err error) {
		st.PopularBooks, err = s.stats.PopularBooks(gctx, topLimit)
		return err
	})
	g.Go(func() (err error) {
		st.ActiveReaders, err = s.stats.ActiveReaders(gctx, topLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report.StatisticsReport(st, s.now())
}
