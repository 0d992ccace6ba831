package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

func (s *Service) ListBooks(ctx context.Context, f model.BookFilter) (model.ListBooks, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = s.cfg.PerPage
	}
	return s.repo.ListBooks(ctx, f)
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Authors(ctx context.Context) ([]string, error) {
	return s.repo.Authors(ctx)
}

func (s *Service) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, normalizeBook(req))
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	return s.repo.UpdateBook(ctx, id, normalizeBook(req))
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.DeleteBook(ctx, id)
}

func normalizeBook(req model.BookRequest) model.BookRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Category = strings.TrimSpace(req.Category)
	req.ISBN = emptyToNil(req.ISBN)
	req.ImagePath = emptyToNil(req.ImagePath)
	return req
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
