package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
)

// Borrow lends one copy of the book to the actor for the default period.
func (s *Service) Borrow(ctx context.Context, actor model.Actor, bookID int64) (model.BorrowRecord, error) {
	due := s.today().AddDate(0, 0, s.cfg.BorrowDays)
	rec, err := s.repo.CreateLoan(ctx, actor.UserID, bookID, due)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.log.Info("book borrowed",
		zap.Int64("userID", actor.UserID),
		zap.Int64("bookID", bookID),
		zap.Int64("recordID", rec.ID))
	s.publish(model.NewLendingEvent(model.EventBorrowed, actor.UserID, bookID, rec.ID, s.now()))
	return rec, nil
}

// Return closes the loan and charges the overdue fine. The oldest pending
// reservation of the book is reported but left untouched.
func (s *Service) Return(ctx context.Context, actor model.Actor, borrowID int64) (model.ReturnResult, error) {
	rec, err := s.repo.GetBorrow(ctx, borrowID)
	if err != nil {
		return model.ReturnResult{}, err
	}
	if rec.UserID != actor.UserID && !actor.IsAdmin {
		return model.ReturnResult{}, errs.ErrNotBorrower
	}
	if rec.ReturnedAt != nil {
		return model.ReturnResult{}, errs.ErrAlreadyReturned
	}

	now := s.now()
	fine := model.RoundCents(model.CalculateFine(rec, s.cfg.FinePerDay, now))
	closed, err := s.repo.CloseLoan(ctx, rec.ID, fine, now)
	if err != nil {
		return model.ReturnResult{}, err
	}

	res := model.ReturnResult{Record: closed, Fine: fine}
	next, err := s.repo.NextReservation(ctx, rec.BookID)
	switch {
	case err == nil:
		res.NextReservation = &next
		s.log.Info("returned book has a waiting reservation",
			zap.Int64("bookID", rec.BookID),
			zap.Int64("reservationID", next.ID),
			zap.Int64("userID", next.UserID))
	case !errors.Is(err, errs.ErrNotFound):
		s.log.Warn("lookup next reservation", zap.Int64("bookID", rec.BookID), zap.Error(err))
	}

	ev := model.NewLendingEvent(model.EventReturned, rec.UserID, rec.BookID, rec.ID, now)
	ev.Fine = fine
	s.publish(ev)
	return res, nil
}

// Reserve queues the actor for a book that has no copies left.
func (s *Service) Reserve(ctx context.Context, actor model.Actor, bookID int64) (model.Reservation, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return model.Reservation{}, err
	}
	if book.AvailableCopies > 0 {
		return model.Reservation{}, errs.ErrAlreadyAvailable
	}

	pending, err := s.repo.HasPendingReservation(ctx, actor.UserID, bookID)
	if err != nil {
		return model.Reservation{}, err
	}
	if pending {
		return model.Reservation{}, errs.ErrDuplicateReservation
	}

	onLoan, err := s.repo.HasActiveLoan(ctx, actor.UserID, bookID)
	if err != nil {
		return model.Reservation{}, err
	}
	if onLoan {
		return model.Reservation{}, errs.ErrAlreadyBorrowed
	}

	res, err := s.repo.CreateReservation(ctx, actor.UserID, bookID)
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(model.NewLendingEvent(model.EventReserved, actor.UserID, bookID, res.ID, s.now()))
	return res, nil
}

func (s *Service) CancelReservation(ctx context.Context, actor model.Actor, reservationID int64) error {
	res, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.UserID != actor.UserID {
		return errs.ErrNotReservationOwn
	}
	if err := s.repo.DeleteReservation(ctx, res.ID); err != nil {
		return err
	}
	s.publish(model.NewLendingEvent(model.EventReservationCancelled, res.UserID, res.BookID, res.ID, s.now()))
	return nil
}

// ListActiveLoans returns the user's unreturned loans, earliest due first.
func (s *Service) ListActiveLoans(ctx context.Context, userID int64) ([]model.BorrowRecord, error) {
	return s.listLoans(ctx, repository.LoanQuery{
		UserID:     userID,
		Filter:     model.LoanFilterActive,
		OrderByDue: true,
	})
}

func (s *Service) ListOverdueLoans(ctx context.Context) ([]model.BorrowRecord, error) {
	return s.listLoans(ctx, repository.LoanQuery{
		Filter:     model.LoanFilterOverdue,
		OrderByDue: true,
	})
}

func (s *Service) MyLoans(ctx context.Context, actor model.Actor) ([]model.BorrowRecord, error) {
	return s.listLoans(ctx, repository.LoanQuery{UserID: actor.UserID, Filter: model.LoanFilterAll})
}

func (s *Service) AllLoans(ctx context.Context, filter model.LoanFilter) ([]model.BorrowRecord, error) {
	return s.listLoans(ctx, repository.LoanQuery{Filter: filter})
}

func (s *Service) listLoans(ctx context.Context, q repository.LoanQuery) ([]model.BorrowRecord, error) {
	q.Today = s.today()
	records, err := s.repo.ListLoans(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.withStatus(records), nil
}

func (s *Service) MyReservations(ctx context.Context, actor model.Actor) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, repository.ReservationQuery{UserID: actor.UserID})
}

func (s *Service) AllReservations(ctx context.Context, fulfilled bool) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, repository.ReservationQuery{Fulfilled: fulfilled})
}
