package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/auth"
)

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}
	return s.repo.CreateUser(ctx, model.User{
		Email:        normalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	})
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.LoginResponse{}, errs.ErrBadCredentials
		}
		return model.LoginResponse{}, err
	}
	if err := auth.ComparePassword(u.PasswordHash, req.Password); err != nil {
		return model.LoginResponse{}, errs.ErrBadCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return model.LoginResponse{}, errors.Wrap(err, "issue token")
	}
	return model.LoginResponse{Token: token, ExpiresAt: exp}, nil
}

func (s *Service) Me(ctx context.Context, actor model.Actor) (model.User, error) {
	return s.repo.GetUser(ctx, actor.UserID)
}

// CreateAdmin creates an admin account, or promotes the existing user with
// that email and resets its password when one is given.
func (s *Service) CreateAdmin(ctx context.Context, email, name, password string) (model.User, error) {
	email = normalizeEmail(email)
	var hash string
	if password != "" {
		h, err := auth.HashPassword(password)
		if err != nil {
			return model.User{}, err
		}
		hash = h
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		if hash == "" {
			return model.User{}, errors.New("password is required for a new admin")
		}
		created, err := s.repo.CreateUser(ctx, model.User{
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: hash,
			IsAdmin:      true,
		})
		if err != nil {
			return model.User{}, err
		}
		s.log.Info("admin created", zap.Int64("userID", created.ID))
		return created, nil
	case err != nil:
		return model.User{}, err
	}

	if err := s.repo.PromoteUser(ctx, u.ID, hash); err != nil {
		return model.User{}, err
	}
	s.log.Info("user promoted to admin", zap.Int64("userID", u.ID))
	return s.repo.GetUser(ctx, u.ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
