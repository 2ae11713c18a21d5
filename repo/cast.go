package repo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/htol/booksapi/apperror"
)

type fieldType int

const (
	typeMixed fieldType = iota
	typeString
	typeNumber
	typeBool
	typeDate
	typeObjectID
)

// fields describes the stored type of each book field. Unlisted fields
// are compared as given.
var fields = map[string]fieldType{
	"_id":           typeObjectID,
	"title":         typeString,
	"author":        typeString,
	"genre":         typeString,
	"read":          typeBool,
	"price":         typeNumber,
	"createdAt":     typeDate,
	"bookTourDates": typeMixed,
	"booksSold":     typeMixed,
	"__v":           typeNumber,
}

// valueOperators take a single value of the field's type
var valueOperators = map[string]bool{
	"$eq":  true,
	"$ne":  true,
	"$gt":  true,
	"$gte": true,
	"$lt":  true,
	"$lte": true,
}

// listOperators take an array of values of the field's type
var listOperators = map[string]bool{
	"$in":  true,
	"$nin": true,
}

// ObjectID parses a hex document id
func ObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, pkgerrors.WithStack(&apperror.CastError{Path: "_id", Value: id, Err: err})
	}
	return oid, nil
}

// castFilter converts the string values produced from a query string
// into the stored type of the field they are compared against
func castFilter(filter bson.D) (bson.D, error) {
	out := make(bson.D, 0, len(filter))
	for _, e := range filter {
		if e.Key == "$and" || e.Key == "$or" {
			arr, ok := e.Value.(bson.A)
			if !ok {
				return nil, fmt.Errorf("%s expects an array", e.Key)
			}
			casted := make(bson.A, 0, len(arr))
			for _, item := range arr {
				sub, ok := item.(bson.D)
				if !ok {
					return nil, fmt.Errorf("%s expects documents", e.Key)
				}
				c, err := castFilter(sub)
				if err != nil {
					return nil, err
				}
				casted = append(casted, c)
			}
			out = append(out, bson.E{Key: e.Key, Value: casted})
			continue
		}

		v, err := castCondition(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, bson.E{Key: e.Key, Value: v})
	}
	return out, nil
}

func castCondition(path string, cond any) (any, error) {
	doc, ok := cond.(bson.D)
	if !ok {
		return castValue(path, cond)
	}

	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		switch {
		case valueOperators[e.Key]:
			v, err := castValue(path, e.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, bson.E{Key: e.Key, Value: v})
		case listOperators[e.Key]:
			arr, ok := e.Value.(bson.A)
			if !ok {
				arr = bson.A{e.Value}
			}
			casted := make(bson.A, 0, len(arr))
			for _, item := range arr {
				v, err := castValue(path, item)
				if err != nil {
					return nil, err
				}
				casted = append(casted, v)
			}
			out = append(out, bson.E{Key: e.Key, Value: casted})
		default:
			return nil, castErr(path, render(doc), nil)
		}
	}
	return out, nil
}

func castValue(path string, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}

	switch fields[path] {
	case typeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, castErr(path, s, err)
		}
		return f, nil
	case typeBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, castErr(path, s, nil)
	case typeDate:
		t, err := parseDate(s)
		if err != nil {
			return nil, castErr(path, s, err)
		}
		return t, nil
	case typeObjectID:
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, castErr(path, s, err)
		}
		return oid, nil
	default:
		return s, nil
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func castErr(path, value string, cause error) error {
	return pkgerrors.WithStack(&apperror.CastError{Path: path, Value: value, Err: cause})
}

// render prints an operator document the way it appeared in the query
func render(doc bson.D) string {
	parts := make([]string, 0, len(doc))
	for _, e := range doc {
		parts = append(parts, fmt.Sprintf("%s: %v", e.Key, e.Value))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
