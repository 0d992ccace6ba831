package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
)

var reservationColumns = []string{
	"r.id", "r.user_id", "r.book_id", "r.reserved_at", "r.fulfilled",
	"b.title as book_title", "u.email as user_email",
}

func reservationSelect() sq.SelectBuilder {
	return qb.Select(reservationColumns...).
		From(reservationsTableName + " r").
		Join(booksTableName + " b on b.id = r.book_id").
		Join(usersTableName + " u on u.id = r.user_id")
}

func (r *repository) CreateReservation(ctx context.Context, userID, bookID int64) (model.Reservation, error) {
	query, args, err := qb.Insert(reservationsTableName).
		Columns("user_id", "book_id").
		Values(userID, bookID).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err, pendingReservationIndex) {
			return model.Reservation{}, errs.ErrDuplicateReservation
		}
		return model.Reservation{}, errors.Wrap(err, "CreateReservation")
	}
	return r.GetReservation(ctx, id)
}

func (r *repository) GetReservation(ctx context.Context, id int64) (model.Reservation, error) {
	return r.oneReservation(ctx, "GetReservation", reservationSelect().Where(sq.Eq{"r.id": id}))
}

func (r *repository) NextReservation(ctx context.Context, bookID int64) (model.Reservation, error) {
	return r.oneReservation(ctx, "NextReservation", reservationSelect().
		Where(sq.Eq{"r.book_id": bookID, "r.fulfilled": false}).
		OrderBy("r.reserved_at", "r.id"))
}

func (r *repository) oneReservation(ctx context.Context, op string, b sq.SelectBuilder) (model.Reservation, error) {
	query, args, err := b.Limit(1).ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, op)
	}
	res, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reservation{}, errs.ErrReservationNotFound
		}
		return model.Reservation{}, errors.Wrap(err, op)
	}
	return res, nil
}

func (r *repository) DeleteReservation(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `delete from reservations where id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "DeleteReservation")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrReservationNotFound
	}
	return nil
}

func (r *repository) HasPendingReservation(ctx context.Context, userID, bookID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
select exists(
    select 1 from reservations
    where user_id = $1 and book_id = $2 and not fulfilled)`, userID, bookID).Scan(&ok)
	return ok, errors.Wrap(err, "HasPendingReservation")
}

func (r *repository) ListReservations(ctx context.Context, q ReservationQuery) ([]model.Reservation, error) {
	b := reservationSelect().
		Where(sq.Eq{"r.fulfilled": q.Fulfilled}).
		OrderBy("r.reserved_at desc", "r.id desc")
	if q.UserID != 0 {
		b = b.Where(sq.Eq{"r.user_id": q.UserID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListReservations")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Reservation])
}

func (r *repository) CountPendingReservations(ctx context.Context, userID int64) (int, error) {
	b := qb.Select("count(*)").From(reservationsTableName).Where(sq.Eq{"fulfilled": false})
	if userID != 0 {
		b = b.Where(sq.Eq{"user_id": userID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "CountPendingReservations")
	}
	return n, nil
}
