package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

// StatsRepository serves the read-only aggregates behind the dashboards.
type StatsRepository interface {
	Stats(ctx context.Context, today time.Time) (model.Stats, error)
	PopularBooks(ctx context.Context, limit int) ([]model.BookCount, error)
	ActiveReaders(ctx context.Context, limit int) ([]model.ReaderCount, error)
	BorrowsBetween(ctx context.Context, from, to time.Time) (int, error)
}

type statsRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewStatsRepository(pool *pgxpool.Pool, log *zap.Logger) (*statsRepository, error) {
	if pool == nil {
		return nil, errors.New("nil pool")
	}
	return &statsRepository{
		db:  sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
		log: log.Named("stats-repo"),
	}, nil
}

func (r *statsRepository) Stats(ctx context.Context, today time.Time) (model.Stats, error) {
	q := `
select
    (select count(*) from books) as total_books,
    (select count(*) from users) as total_users,
    (select count(*) from borrow_records where returned_at is null) as active_borrows,
    (select count(*) from borrow_records where returned_at is null and due_date < $1) as overdue_books`

	var st model.Stats
	if err := r.db.GetContext(ctx, &st, q, today); err != nil {
		return model.Stats{}, errors.Wrap(err, "Stats")
	}
	return st, nil
}

func (r *statsRepository) PopularBooks(ctx context.Context, limit int) ([]model.BookCount, error) {
	query, args, err := qb.Select("b.id as book_id", "b.title", "b.author", "count(br.id) as borrow_count").
		From(booksTableName + " b").
		Join(borrowRecordsTable + " br on br.book_id = b.id").
		GroupBy("b.id", "b.title", "b.author").
		OrderBy("borrow_count desc", "b.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var books []model.BookCount
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		r.log.Error("PopularBooks", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	return books, nil
}

func (r *statsRepository) ActiveReaders(ctx context.Context, limit int) ([]model.ReaderCount, error) {
	query, args, err := qb.Select("u.id as user_id", "u.email", "u.name", "count(br.id) as borrow_count").
		From(usersTableName + " u").
		Join(borrowRecordsTable + " br on br.user_id = u.id").
		GroupBy("u.id", "u.email", "u.name").
		OrderBy("borrow_count desc", "u.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var readers []model.ReaderCount
	if err := r.db.SelectContext(ctx, &readers, query, args...); err != nil {
		r.log.Error("ActiveReaders", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	return readers, nil
}

// BorrowsBetween counts loans started in [from, to).
func (r *statsRepository) BorrowsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`select count(*) from borrow_records where borrowed_at >= $1 and borrowed_at < $2`, from, to)
	if err != nil {
		return 0, errors.Wrap(err, "BorrowsBetween")
	}
	return n, nil
}
