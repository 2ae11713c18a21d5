// Package service provides business logic layer between HTTP handlers and repository
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/htol/booksapi/apperror"
	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/logger"
	"github.com/htol/booksapi/query"
	"github.com/htol/booksapi/repo"
	"github.com/htol/booksapi/validator"
)

// MsgBookNotFound is returned to clients when an id matches no book
const MsgBookNotFound = "No book found with that ID"

// Service provides business logic for the application
type Service struct {
	repo repo.Repository
}

// New creates a new Service with the given repository
func New(repo repo.Repository) *Service {
	return &Service{repo: repo}
}

// Books

// ListBooks filters, sorts, projects and paginates the catalogue
// according to the request parameters
func (s *Service) ListBooks(ctx context.Context, params query.Params) ([]book.Book, error) {
	q := query.NewFeatures(query.New(), params).
		Filter().
		Sort().
		LimitFields().
		Paginate().
		Query()

	books, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// LatestBooks is ListBooks with the five newest books preset
func (s *Service) LatestBooks(ctx context.Context, params query.Params) ([]book.Book, error) {
	return s.ListBooks(ctx, params.With(query.LatestFive))
}

// GetBook retrieves a single book by ID
func (s *Service) GetBook(ctx context.Context, id string) (*book.Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(fmt.Errorf("get book %s: %w", id, err))
	}
	return b, nil
}

// CreateBook validates b and stores it
func (s *Service) CreateBook(ctx context.Context, b *book.Book) (*book.Book, error) {
	if err := validator.Book(b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	logger.Debug("Book created", "id", created.ID.Hex(), "title", created.Title)
	return created, nil
}

// UpdateBook validates the present fields of u and applies them
func (s *Service) UpdateBook(ctx context.Context, id string, u *book.Update) (*book.Book, error) {
	if err := validator.Update(u); err != nil {
		return nil, fmt.Errorf("update book %s: %w", id, err)
	}
	b, err := s.repo.UpdateByID(ctx, id, u)
	if err != nil {
		return nil, notFound(fmt.Errorf("update book %s: %w", id, err))
	}
	return b, nil
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return notFound(fmt.Errorf("delete book %s: %w", id, err))
	}
	return nil
}

// Reports

// BookStats returns price statistics per genre
func (s *Service) BookStats(ctx context.Context) ([]book.GenreStats, error) {
	stats, err := s.repo.GenreStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("book stats: %w", err)
	}
	return stats, nil
}

// MonthlyPlan returns tour statistics per month of year
func (s *Service) MonthlyPlan(ctx context.Context, year int) ([]book.MonthlyStats, error) {
	plan, err := s.repo.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("monthly plan %d: %w", year, err)
	}
	if plan == nil {
		plan = []book.MonthlyStats{}
	}
	return plan, nil
}

// Seed data

// ImportBooks validates every book and inserts them. Nothing is written
// when any book is invalid.
func (s *Service) ImportBooks(ctx context.Context, books []book.Book) (int, error) {
	for i := range books {
		if err := validator.Book(&books[i]); err != nil {
			return 0, fmt.Errorf("import book %d %q: %w", i, books[i].Title, err)
		}
	}
	n, err := s.repo.InsertMany(ctx, books)
	if err != nil {
		return n, fmt.Errorf("import books: %w", err)
	}
	return n, nil
}

// DeleteAllBooks removes the whole catalogue
func (s *Service) DeleteAllBooks(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all books: %w", err)
	}
	return n, nil
}

// Health

// Ping checks if the repository is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// notFound replaces repo.ErrNotFound in err with a client-facing 404
func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(MsgBookNotFound)
	}
	return err
}
