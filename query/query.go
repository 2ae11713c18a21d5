// Package query builds store queries from HTTP query parameters.
//
// Query and Features are values: every method returns a new value and
// leaves the receiver untouched.
package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query is a pending find against the book collection
type Query struct {
	filter     bson.D
	sort       bson.D
	projection bson.D
	skip       int64
	limit      int64
}

// New returns a query that matches every document
func New() Query {
	return Query{}
}

// Where adds a conjunctive filter
func (q Query) Where(filter bson.D) Query {
	if len(filter) == 0 {
		return q
	}
	if len(q.filter) == 0 {
		q.filter = clone(filter)
		return q
	}
	q.filter = bson.D{{Key: "$and", Value: bson.A{clone(q.filter), clone(filter)}}}
	return q
}

// SortBy appends sort keys that are not already present
func (q Query) SortBy(spec bson.D) Query {
	sort := clone(q.sort)
	for _, e := range spec {
		if !has(sort, e.Key) {
			sort = append(sort, e)
		}
	}
	q.sort = sort
	return q
}

// Select replaces the projection
func (q Query) Select(projection bson.D) Query {
	q.projection = clone(projection)
	return q
}

func (q Query) Skip(n int64) Query {
	q.skip = n
	return q
}

func (q Query) Limit(n int64) Query {
	q.limit = n
	return q
}

// Filter returns the filter document; never nil
func (q Query) Filter() bson.D {
	if q.filter == nil {
		return bson.D{}
	}
	return clone(q.filter)
}

func (q Query) SortSpec() bson.D   { return clone(q.sort) }
func (q Query) Projection() bson.D { return clone(q.projection) }
func (q Query) SkipN() int64       { return q.skip }
func (q Query) LimitN() int64      { return q.limit }

// FindOptions converts the query's shape into driver options
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.sort) > 0 {
		opts.SetSort(clone(q.sort))
	}
	if len(q.projection) > 0 {
		opts.SetProjection(clone(q.projection))
	}
	if q.skip != 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit != 0 {
		opts.SetLimit(q.limit)
	}
	return opts
}

func clone(d bson.D) bson.D {
	if d == nil {
		return nil
	}
	return append(bson.D(nil), d...)
}

func has(d bson.D, key string) bool {
	for _, e := range d {
		if e.Key == key {
			return true
		}
	}
	return false
}
