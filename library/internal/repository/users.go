package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
)

var userColumns = []string{"id", "email", "name", "password_hash", "is_admin", "created_at"}

func (r *repository) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	query, args, err := qb.Insert(usersTableName).
		Columns("email", "name", "password_hash", "is_admin").
		Values(strings.ToLower(u.Email), u.Name, u.PasswordHash, u.IsAdmin).
		Suffix("returning id, email, name, password_hash, is_admin, created_at").
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, errors.Wrap(err, "CreateUser")
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.User{}, errs.ErrEmailTaken
		}
		return model.User{}, errors.Wrap(err, "CreateUser")
	}
	return created, nil
}

func (r *repository) GetUser(ctx context.Context, id int64) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"email": strings.ToLower(email)})
}

func (r *repository) getUser(ctx context.Context, where sq.Eq) (model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, errors.Wrap(err, "getUser")
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, errors.Wrap(err, "getUser")
	}
	return u, nil
}

func (r *repository) PromoteUser(ctx context.Context, id int64, passwordHash string) error {
	b := qb.Update(usersTableName).
		Set("is_admin", true).
		Where(sq.Eq{"id": id})
	if passwordHash != "" {
		b = b.Set("password_hash", passwordHash)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "PromoteUser")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
