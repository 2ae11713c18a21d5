package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/htol/booksapi/apperror"
	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/logger"
	"github.com/htol/booksapi/query"
	"github.com/htol/booksapi/repo"
	"github.com/htol/booksapi/repo/mocks"
)

func init() {
	// Initialize logger for tests
	logger.Init("info")
}

func TestListBooks_BuildsQuery(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	var got query.Query
	m.On("Find", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(query.Query) }).
		Return([]book.Book{{Title: "Childhood"}}, nil)

	books, err := svc.ListBooks(context.Background(), query.Params{"price[gte]": {"4.5"}, "page": {"2"}, "limit": {"3"}})
	require.NoError(t, err)
	assert.Len(t, books, 1)

	assert.Equal(t, bson.D{{Key: "price", Value: bson.D{{Key: "$gte", Value: "4.5"}}}}, got.Filter())
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, got.SortSpec())
	assert.Equal(t, bson.D{{Key: "__v", Value: 0}}, got.Projection())
	assert.Equal(t, int64(3), got.SkipN())
	assert.Equal(t, int64(3), got.LimitN())
}

func TestLatestBooks_OverridesParams(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	var got query.Query
	m.On("Find", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(query.Query) }).
		Return([]book.Book{}, nil)

	_, err := svc.LatestBooks(context.Background(), query.Params{"limit": {"50"}})
	require.NoError(t, err)

	assert.Equal(t, int64(5), got.LimitN())
	assert.Equal(t, bson.D{{Key: "title", Value: 1}, {Key: "author", Value: 1}, {Key: "genre", Value: 1}}, got.Projection())
}

func TestGetBook_NotFound(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)
	id := primitive.NewObjectID().Hex()

	m.On("FindByID", mock.Anything, id).Return(nil, repo.ErrNotFound)

	_, err := svc.GetBook(context.Background(), id)

	appErr := apperror.Normalize(err)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, MsgBookNotFound, appErr.Message)
	assert.Equal(t, "fail", appErr.Status())
}

func TestGetBook_BadID(t *testing.T) {
	svc := New(&mocks.Repository{})

	_, err := svc.GetBook(context.Background(), "42")

	var castErr *apperror.CastError
	require.True(t, errors.As(err, &castErr))
	assert.Equal(t, "_id", castErr.Path)
}

func TestCreateBook_ValidationStopsWrite(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	_, err := svc.CreateBook(context.Background(), &book.Book{Author: "Mark Twain", Genre: "History", Price: book.Float(1)})

	appErr := apperror.Normalize(err)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "Invalid input data. A book must have a name.", appErr.Message)
	m.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBook(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	in := &book.Book{Title: " Childhood ", Author: "Lev Nikolayevich Tolstoy", Genre: "Biography", Price: book.Float(53.54)}
	m.On("Create", mock.Anything, mock.MatchedBy(func(b *book.Book) bool { return b.Title == "Childhood" })).
		Return(&book.Book{ID: primitive.NewObjectID(), Title: "Childhood"}, nil)

	created, err := svc.CreateBook(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Childhood", created.Title)
	m.AssertExpectations(t)
}

func TestUpdateBook_NotFound(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)
	id := primitive.NewObjectID().Hex()

	m.On("UpdateByID", mock.Anything, id, mock.Anything).Return(nil, repo.ErrNotFound)

	_, err := svc.UpdateBook(context.Background(), id, &book.Update{Price: book.Float(3)})

	assert.Equal(t, http.StatusNotFound, apperror.Normalize(err).StatusCode)
}

func TestDeleteBook(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)
	found := primitive.NewObjectID().Hex()
	missing := primitive.NewObjectID().Hex()

	m.On("DeleteByID", mock.Anything, found).Return(nil)
	m.On("DeleteByID", mock.Anything, missing).Return(repo.ErrNotFound)

	assert.NoError(t, svc.DeleteBook(context.Background(), found))
	assert.Equal(t, http.StatusNotFound, apperror.Normalize(svc.DeleteBook(context.Background(), missing)).StatusCode)
}

func TestMonthlyPlan_EmptyYear(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	m.On("MonthlyPlan", mock.Anything, 1999).Return(nil, nil)

	plan, err := svc.MonthlyPlan(context.Background(), 1999)
	require.NoError(t, err)
	assert.NotNil(t, plan)
	assert.Empty(t, plan)
}

func TestImportBooks_RejectsInvalid(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	books := []book.Book{
		{Title: "War and Peace", Author: "Lev Nikolayevich Tolstoy", Genre: "Historical Fiction", Price: book.Float(2)},
		{Title: "Untitled"},
	}

	_, err := svc.ImportBooks(context.Background(), books)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `import book 1 "Untitled"`)
	m.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
}

func TestImportBooks(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	books := []book.Book{{Title: "War and Peace", Author: "Lev Nikolayevich Tolstoy", Genre: "Historical Fiction", Price: book.Float(2)}}
	m.On("InsertMany", mock.Anything, books).Return(1, nil)

	n, err := svc.ImportBooks(context.Background(), books)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPing(t *testing.T) {
	m := &mocks.Repository{}
	svc := New(m)

	m.On("Ping", mock.Anything).Return(errors.New("no reachable servers")).Once()
	m.On("Ping", mock.Anything).Return(nil).Once()

	assert.Error(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Ping(context.Background()))
}
