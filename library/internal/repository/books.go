package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
)

var bookColumns = []string{
	"id", "title", "author", "category", "isbn", "image_path",
	"total_copies", "available_copies", "created_at",
}

const bookReturning = "returning id, title, author, category, isbn, image_path, total_copies, available_copies, created_at"

func bookWhere(f model.BookFilter) sq.And {
	where := sq.And{}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": like},
			sq.ILike{"author": like},
			sq.ILike{"category": like},
			sq.ILike{"isbn": like},
		})
	}
	if f.Category != "" {
		where = append(where, sq.Eq{"category": f.Category})
	}
	if f.Author != "" {
		where = append(where, sq.Eq{"author": f.Author})
	}
	return where
}

func (r *repository) ListBooks(ctx context.Context, f model.BookFilter) (model.ListBooks, error) {
	where := bookWhere(f)
	q := qb.Select(bookColumns...).
		From(booksTableName).
		Where(where).
		OrderBy("title", "id")
	if f.Page != 0 && f.Size != 0 {
		q = q.Limit(uint64(f.Size)).Offset(uint64((f.Page - 1) * f.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListBooks{}, errors.Wrap(err, "ListBooks")
	}
	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return model.ListBooks{}, errors.Wrap(err, "ListBooks")
	}

	countQuery, countArgs, err := qb.Select("count(*)").From(booksTableName).Where(where).ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.ListBooks{}, errors.Wrap(err, "ListBooks count")
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          f.Page,
			PageSize:      f.Size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, errors.Wrap(err, "GetBook")
	}
	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, errors.Wrap(err, "GetBook")
	}
	return book, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *repository) Authors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "author")
}

func (r *repository) distinct(ctx context.Context, column string) ([]string, error) {
	query, args, err := qb.Select(column).
		Distinct().
		From(booksTableName).
		Where(sq.NotEq{column: ""}).
		OrderBy(column).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "distinct "+column)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *repository) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "category", "isbn", "image_path", "total_copies", "available_copies").
		Values(req.Title, req.Author, req.Category, req.ISBN, req.ImagePath, req.TotalCopies, req.TotalCopies).
		Suffix(bookReturning).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.writeBook(ctx, "CreateBook", query, args)
}

// UpdateBook shifts available copies by the change in total copies,
// clamped to [0, total].
func (r *repository) UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("category", req.Category).
		Set("isbn", req.ISBN).
		Set("image_path", req.ImagePath).
		Set("available_copies", sq.Expr(
			"greatest(0, least(?::int, available_copies + (?::int - total_copies)))",
			req.TotalCopies, req.TotalCopies)).
		Set("total_copies", req.TotalCopies).
		Where(sq.Eq{"id": id}).
		Suffix(bookReturning).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.writeBook(ctx, "UpdateBook", query, args)
}

func (r *repository) writeBook(ctx context.Context, op, query string, args []any) (model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, errors.Wrap(err, op)
	}
	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, pgx.ErrNoRows):
		return model.Book{}, errs.ErrBookNotFound
	case isUniqueViolation(err, ""):
		return model.Book{}, errs.ErrISBNTaken
	}
	return model.Book{}, errors.Wrap(err, op)
}

// DeleteBook refuses while copies are on loan or any borrow history exists.
// Pending reservations of the book are removed with it.
func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`select true from books where id = $1 for update`, id).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrBookNotFound
			}
			return errors.Wrap(err, "DeleteBook lock")
		}

		var active, total int
		if err := tx.QueryRow(ctx, `
select count(*) filter (where returned_at is null), count(*)
from borrow_records
where book_id = $1`, id).Scan(&active, &total); err != nil {
			return errors.Wrap(err, "DeleteBook loans")
		}
		switch {
		case active > 0:
			return errs.ErrBookOnLoan
		case total > 0:
			return errs.ErrBookHasHistory
		}

		for _, q := range []string{
			`delete from reservations where book_id = $1`,
			`delete from books where id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return errors.Wrap(err, "DeleteBook")
			}
		}
		return nil
	})
}
