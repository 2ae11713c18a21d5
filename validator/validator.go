// Package validator provides input validation for the application
package validator

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/htol/booksapi/apperror"
	"github.com/htol/booksapi/book"
)

var (
	// ErrEmptyString is returned when a string parameter is empty
	ErrEmptyString = errors.New("string cannot be empty")
)

// Messages reported for missing required fields
const (
	MsgTitleRequired  = "A book must have a name"
	MsgAuthorRequired = "A book must have an author"
	MsgGenreRequired  = "A book must have a genre"
	MsgPriceRequired  = "A book must have a price"
)

// ValidateNonEmpty validates that a string is not empty
func ValidateNonEmpty(s string) error {
	if s == "" {
		return ErrEmptyString
	}
	return nil
}

// Book normalizes text fields in place and checks the required ones.
// All failures are reported together as *apperror.ValidationError.
func Book(b *book.Book) error {
	b.Title = clean(b.Title)
	b.Author = clean(b.Author)
	b.Genre = clean(b.Genre)

	verr := &apperror.ValidationError{}
	if ValidateNonEmpty(b.Title) != nil {
		verr.Add("title", MsgTitleRequired)
	}
	if ValidateNonEmpty(b.Author) != nil {
		verr.Add("author", MsgAuthorRequired)
	}
	if ValidateNonEmpty(b.Genre) != nil {
		verr.Add("genre", MsgGenreRequired)
	}
	if b.Price == nil {
		verr.Add("price", MsgPriceRequired)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Update applies the same rules as Book, but only to fields present in u
func Update(u *book.Update) error {
	verr := &apperror.ValidationError{}
	check := func(field, msg string, v *string) {
		if v == nil {
			return
		}
		*v = clean(*v)
		if ValidateNonEmpty(*v) != nil {
			verr.Add(field, msg)
		}
	}
	check("title", MsgTitleRequired, u.Title)
	check("author", MsgAuthorRequired, u.Author)
	check("genre", MsgGenreRequired, u.Genre)

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// clean trims surrounding whitespace and normalizes to NFC so that
// visually identical titles compare equal in the unique index
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
