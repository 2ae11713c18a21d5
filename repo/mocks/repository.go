package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/query"
	"github.com/htol/booksapi/repo"
)

var _ repo.Repository = (*Repository)(nil)

// Repository is a testify mock of repo.Repository. Ids that are not
// valid object ids fail the same way the store does.
type Repository struct {
	mock.Mock
}

func (m *Repository) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Repository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Repository) Find(ctx context.Context, q query.Query) ([]book.Book, error) {
	ret := m.Called(ctx, q)

	books, _ := ret.Get(0).([]book.Book)
	return books, ret.Error(1)
}

func (m *Repository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	if _, err := repo.ObjectID(id); err != nil {
		return nil, err
	}
	ret := m.Called(ctx, id)

	b, _ := ret.Get(0).(*book.Book)
	return b, ret.Error(1)
}

func (m *Repository) Create(ctx context.Context, b *book.Book) (*book.Book, error) {
	ret := m.Called(ctx, b)

	created, _ := ret.Get(0).(*book.Book)
	return created, ret.Error(1)
}

func (m *Repository) UpdateByID(ctx context.Context, id string, u *book.Update) (*book.Book, error) {
	if _, err := repo.ObjectID(id); err != nil {
		return nil, err
	}
	ret := m.Called(ctx, id, u)

	b, _ := ret.Get(0).(*book.Book)
	return b, ret.Error(1)
}

func (m *Repository) DeleteByID(ctx context.Context, id string) error {
	if _, err := repo.ObjectID(id); err != nil {
		return err
	}
	return m.Called(ctx, id).Error(0)
}

func (m *Repository) GenreStats(ctx context.Context) ([]book.GenreStats, error) {
	ret := m.Called(ctx)

	stats, _ := ret.Get(0).([]book.GenreStats)
	return stats, ret.Error(1)
}

func (m *Repository) MonthlyPlan(ctx context.Context, year int) ([]book.MonthlyStats, error) {
	ret := m.Called(ctx, year)

	plan, _ := ret.Get(0).([]book.MonthlyStats)
	return plan, ret.Error(1)
}

func (m *Repository) InsertMany(ctx context.Context, books []book.Book) (int, error) {
	ret := m.Called(ctx, books)

	return ret.Int(0), ret.Error(1)
}

func (m *Repository) DeleteAll(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)

	n, _ := ret.Get(0).(int64)
	return n, ret.Error(1)
}
