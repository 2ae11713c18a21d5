package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{400, "fail"},
		{404, "fail"},
		{499, "fail"},
		{500, "error"},
		{503, "error"},
		{302, "error"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusClass(tt.code))
			assert.Equal(t, tt.want, New("x", tt.code).Status())
		})
	}
}

func TestNew(t *testing.T) {
	err := NotFound("No book found with that ID")

	assert.Equal(t, "No book found with that ID", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.True(t, err.Operational)
	assert.Equal(t, KindApplication, err.Kind)
	assert.Contains(t, err.Stack(), "TestNew")
}

func TestNormalize_Cast(t *testing.T) {
	err := pkgerrors.Wrap(&CastError{Path: "_id", Value: "not-an-id"}, "find book")

	got := Normalize(err)

	assert.Equal(t, KindCast, got.Kind)
	assert.Equal(t, "Invalid _id: not-an-id.", got.Message)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
	assert.Equal(t, "fail", got.Status())
	assert.True(t, got.Operational)
}

func TestNormalize_Validation(t *testing.T) {
	verr := &ValidationError{}
	verr.Add("title", "A book must have a name")
	verr.Add("price", "A book must have a price")

	got := Normalize(fmt.Errorf("create book: %w", verr))

	assert.Equal(t, KindValidation, got.Kind)
	assert.Equal(t, "Invalid input data. A book must have a name. A book must have a price.", got.Message)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
}

func TestNormalize_DuplicateKeyFromRaw(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "code", Value: 11000},
		{Key: "keyPattern", Value: bson.D{{Key: "title", Value: 1}}},
		{Key: "keyValue", Value: bson.D{{Key: "title", Value: "War and Peace"}}},
	})
	require.NoError(t, err)

	we := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: books.books index: title_1 dup key",
		Raw:     bson.Raw(raw),
	}}}

	got := Normalize(we)

	assert.Equal(t, KindDuplicateKey, got.Kind)
	assert.Equal(t, `Duplicate field value "War and Peace". Please use another value.`, got.Message)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
}

func TestNormalize_DuplicateKeyFromMessage(t *testing.T) {
	we := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: books.books index: title_1 dup key: { title: "Childhood" }`,
	}}}

	got := Normalize(fmt.Errorf("create book: %w", we))

	assert.Equal(t, `Duplicate field value "Childhood". Please use another value.`, got.Message)
}

func TestNormalize_ApplicationPassesThrough(t *testing.T) {
	appErr := NotFound("No book found with that ID")

	assert.Same(t, appErr, Normalize(appErr))
	assert.Same(t, appErr, Normalize(fmt.Errorf("get book: %w", appErr)))
}

func TestNormalize_Unknown(t *testing.T) {
	cause := errors.New("connection reset by peer")

	got := Normalize(cause)

	assert.Equal(t, KindUnknown, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.Equal(t, "error", got.Status())
	assert.False(t, got.Operational)
	assert.ErrorIs(t, got, cause)
	assert.Contains(t, got.Stack(), "connection reset by peer")
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(&CastError{Path: "price", Value: "abc"})
	second := Normalize(first)

	assert.Same(t, first, second)
}
