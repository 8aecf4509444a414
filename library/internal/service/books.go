package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

const (
	defaultNewBooks = 10
	maxNewBooks     = 50
)

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) (model.List[model.Book], error) {
	return list(ctx, filter, filter.Paging, s.repo.ListBooks, s.repo.CountBooks)
}

func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *Service) ListNewBooks(ctx context.Context, limit int) ([]model.Book, error) {
	switch {
	case limit <= 0:
		limit = defaultNewBooks
	case limit > maxNewBooks:
		limit = maxNewBooks
	}
	books, err := s.repo.ListNewBooks(ctx, limit)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// GetBook hides soft deleted books.
func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if !book.IsActive {
		return model.Book{}, errs.ErrBookNotFound
	}
	return book, nil
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, req.Book())
}

// CreateBooks inserts the whole batch or nothing; every ISBN is checked first.
func (s *Service) CreateBooks(ctx context.Context, req model.BulkCreateBooksRequest) (model.BulkResult, error) {
	seen := make(map[string]struct{}, len(req.Books))
	isbns := make([]string, 0, len(req.Books))
	books := make([]model.Book, 0, len(req.Books))
	for _, b := range req.Books {
		if _, dup := seen[b.ISBN]; dup {
			return model.BulkResult{}, errs.Conflict("%s: %s", errs.ErrDuplicateISBNInBulk.Msg, b.ISBN)
		}
		seen[b.ISBN] = struct{}{}
		isbns = append(isbns, b.ISBN)
		books = append(books, b.Book())
	}
	existing, err := s.repo.ExistingISBNs(ctx, isbns)
	if err != nil {
		return model.BulkResult{}, err
	}
	if len(existing) > 0 {
		return model.BulkResult{}, errs.Conflict("%s: %s", errs.ErrISBNExists.Msg, strings.Join(existing, ", "))
	}
	n, err := s.repo.CreateBooks(ctx, books)
	if err != nil {
		return model.BulkResult{}, err
	}
	return model.BulkResult{Created: n}, nil
}

func (s *Service) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (model.Book, error) {
	if req.Quantity != nil || req.AvailableQuantity != nil {
		book, err := s.repo.GetBook(ctx, id)
		if err != nil {
			return model.Book{}, err
		}
		quantity, available := book.Quantity, book.AvailableQuantity
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if req.AvailableQuantity != nil {
			available = *req.AvailableQuantity
		}
		if available > quantity {
			return model.Book{}, errs.ErrQuantityInvariant
		}
	}
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Service) UpdateBookQuantity(ctx context.Context, id uuid.UUID, req model.UpdateBookQuantityRequest) (model.Book, error) {
	if req.AvailableQuantity > req.Quantity {
		return model.Book{}, errs.ErrQuantityInvariant
	}
	return s.repo.UpdateBookQuantity(ctx, id, req.Quantity, req.AvailableQuantity)
}

func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateBook(ctx, id)
}
