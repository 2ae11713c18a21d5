package repo

import (
	"context"
	"errors"

	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/query"
)

// ErrNotFound is returned when a record is not found in the repository
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for data access operations
type Repository interface {
	// Close closes the database connection
	Close(ctx context.Context) error

	// Health check
	Ping(ctx context.Context) error

	// Books
	Find(ctx context.Context, q query.Query) ([]book.Book, error)
	FindByID(ctx context.Context, id string) (*book.Book, error)
	Create(ctx context.Context, b *book.Book) (*book.Book, error)
	UpdateByID(ctx context.Context, id string, u *book.Update) (*book.Book, error)
	DeleteByID(ctx context.Context, id string) error

	// Reports
	GenreStats(ctx context.Context) ([]book.GenreStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]book.MonthlyStats, error)

	// Bulk operations used by the seed commands
	InsertMany(ctx context.Context, books []book.Book) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}
