package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Classification is the result of inspecting an error's shape
type Classification struct {
	Kind     Kind
	Path     string
	Value    string
	Messages []string
	App      *Error
}

var quotedRe = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)

// Classify identifies which known shape, if any, err has. Wrapped errors
// are inspected through their chain.
func Classify(err error) Classification {
	var appErr *Error
	if errors.As(err, &appErr) {
		return Classification{Kind: KindApplication, App: appErr}
	}

	var castErr *CastError
	if errors.As(err, &castErr) {
		return Classification{Kind: KindCast, Path: castErr.Path, Value: castErr.Value}
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return Classification{Kind: KindValidation, Messages: valErr.Messages()}
	}

	if mongo.IsDuplicateKeyError(err) {
		return Classification{Kind: KindDuplicateKey, Value: duplicateValue(err)}
	}

	return Classification{Kind: KindUnknown}
}

// Normalize maps any error to an *Error. Known store shapes become
// operational 400s, application errors pass through unchanged and
// everything else becomes a non-operational 500.
func Normalize(err error) *Error {
	c := Classify(err)
	switch c.Kind {
	case KindApplication:
		return c.App
	case KindCast:
		msg := fmt.Sprintf("Invalid %s: %s.", c.Path, c.Value)
		return newOperational(KindCast, msg, http.StatusBadRequest, err)
	case KindDuplicateKey:
		msg := fmt.Sprintf("Duplicate field value %s. Please use another value.", c.Value)
		return newOperational(KindDuplicateKey, msg, http.StatusBadRequest, err)
	case KindValidation:
		msg := fmt.Sprintf("Invalid input data. %s.", strings.Join(c.Messages, ". "))
		return newOperational(KindValidation, msg, http.StatusBadRequest, err)
	default:
		return Wrap(err)
	}
}

// duplicateValue extracts the offending value from a duplicate key error.
// The structured keyValue document is preferred; the first quoted token
// of the server message is the fallback.
func duplicateValue(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if v, ok := keyValue(e.Raw); ok {
				return v
			}
			if v := quotedRe.FindString(e.Message); v != "" {
				return v
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if v, ok := keyValue(e.Raw); ok {
				return v
			}
			if v := quotedRe.FindString(e.Message); v != "" {
				return v
			}
		}
	}

	return quotedRe.FindString(err.Error())
}

func keyValue(raw bson.Raw) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	val, err := raw.LookupErr("keyValue")
	if err != nil {
		return "", false
	}
	doc, ok := val.DocumentOK()
	if !ok {
		return "", false
	}
	elems, err := doc.Elements()
	if err != nil || len(elems) == 0 {
		return "", false
	}
	v := elems[0].Value()
	if s, ok := v.StringValueOK(); ok {
		return strconv.Quote(s), true
	}
	return v.String(), true
}
