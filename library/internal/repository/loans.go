package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
)

var loanColumns = []string{
	"br.id", "br.user_id", "br.book_id", "br.borrowed_at", "br.due_date",
	"br.returned_at", "br.fine_amount", "br.status",
	"b.title as book_title", "b.author as book_author",
	"u.email as user_email", "u.name as user_name",
}

func loanSelect() sq.SelectBuilder {
	return qb.Select(loanColumns...).
		From(borrowRecordsTable + " br").
		Join(booksTableName + " b on b.id = br.book_id").
		Join(usersTableName + " u on u.id = br.user_id")
}

func (r *repository) CreateLoan(ctx context.Context, userID, bookID int64, dueDate time.Time) (model.BorrowRecord, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// the guard on available_copies makes the last copy go to exactly one borrower
		tag, err := tx.Exec(ctx, `
update books
    set available_copies = available_copies - 1
where id = $1 and available_copies > 0`, bookID)
		if err != nil {
			return errors.Wrap(err, "CreateLoan take copy")
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			err := tx.QueryRow(ctx, `select exists(select 1 from books where id = $1)`, bookID).Scan(&exists)
			if err != nil {
				return errors.Wrap(err, "CreateLoan book")
			}
			if !exists {
				return errs.ErrBookNotFound
			}
			return errs.ErrBookUnavailable
		}

		query, args, err := qb.Insert(borrowRecordsTable).
			Columns("user_id", "book_id", "due_date", "status").
			Values(userID, bookID, dueDate, model.StatusBorrowed).
			Suffix("returning id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			if isUniqueViolation(err, activeLoanIndex) {
				return errs.ErrDuplicateLoan
			}
			return errors.Wrap(err, "CreateLoan insert")
		}
		return nil
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return r.GetBorrow(ctx, id)
}

func (r *repository) GetBorrow(ctx context.Context, id int64) (model.BorrowRecord, error) {
	query, args, err := loanSelect().
		Where(sq.Eq{"br.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BorrowRecord{}, errors.Wrap(err, "GetBorrow")
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BorrowRecord])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrBorrowNotFound
		}
		return model.BorrowRecord{}, errors.Wrap(err, "GetBorrow")
	}
	return rec, nil
}

func (r *repository) CloseLoan(ctx context.Context, id int64, fine float64, returnedAt time.Time) (model.BorrowRecord, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var bookID int64
		err := tx.QueryRow(ctx, `
update borrow_records
    set returned_at = $2, fine_amount = $3, status = $4
where id = $1 and returned_at is null
returning book_id`, id, returnedAt, fine, model.StatusReturned).Scan(&bookID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrAlreadyReturned
			}
			return errors.Wrap(err, "CloseLoan record")
		}

		if _, err := tx.Exec(ctx, `
update books
    set available_copies = least(total_copies, available_copies + 1)
where id = $1`, bookID); err != nil {
			return errors.Wrap(err, "CloseLoan put copy")
		}
		return nil
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return r.GetBorrow(ctx, id)
}

func loanWhere(q LoanQuery) sq.And {
	where := sq.And{}
	if q.UserID != 0 {
		where = append(where, sq.Eq{"br.user_id": q.UserID})
	}
	switch q.Filter {
	case model.LoanFilterActive:
		where = append(where, sq.Eq{"br.returned_at": nil})
	case model.LoanFilterOverdue:
		where = append(where, sq.Eq{"br.returned_at": nil}, sq.Lt{"br.due_date": q.Today})
	case model.LoanFilterReturned:
		where = append(where, sq.NotEq{"br.returned_at": nil})
	}
	return where
}

func (r *repository) ListLoans(ctx context.Context, q LoanQuery) ([]model.BorrowRecord, error) {
	b := loanSelect().Where(loanWhere(q))
	if q.OrderByDue {
		b = b.OrderBy("br.due_date", "br.id")
	} else {
		b = b.OrderBy("br.borrowed_at desc", "br.id desc")
	}
	if q.Limit != 0 {
		b = b.Limit(q.Limit)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListLoans", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListLoans")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.BorrowRecord])
}

func (r *repository) HasActiveLoan(ctx context.Context, userID, bookID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
select exists(
    select 1 from borrow_records
    where user_id = $1 and book_id = $2 and returned_at is null)`, userID, bookID).Scan(&ok)
	return ok, errors.Wrap(err, "HasActiveLoan")
}

var noticeColumns = []string{
	"br.id", "br.user_id", "u.email as user_email", "u.name as user_name",
	"b.title as book_title", "b.author as book_author", "br.due_date",
}

func (r *repository) LoansDueOn(ctx context.Context, date time.Time) ([]model.LoanNotice, error) {
	return r.notices(ctx, sq.Eq{"br.due_date": date})
}

func (r *repository) LoansOverdue(ctx context.Context, today time.Time) ([]model.LoanNotice, error) {
	return r.notices(ctx, sq.Lt{"br.due_date": today})
}

func (r *repository) notices(ctx context.Context, due sq.Sqlizer) ([]model.LoanNotice, error) {
	query, args, err := qb.Select(noticeColumns...).
		From(borrowRecordsTable + " br").
		Join(booksTableName + " b on b.id = br.book_id").
		Join(usersTableName + " u on u.id = br.user_id").
		Where(sq.Eq{"br.returned_at": nil}).
		Where(due).
		OrderBy("br.due_date", "br.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "notices")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.LoanNotice])
}
