package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultPage  = 1
	defaultLimit = 100
)

// comparison maps bracket operators to store operators. Any other
// bracket operator is kept literally and rejected when the filter is cast.
var comparison = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Features refines a Query from request parameters. Each stage may be
// applied independently and applying a stage never changes the receiver.
type Features struct {
	query  Query
	params Params
}

func NewFeatures(q Query, params Params) Features {
	return Features{query: q, params: params.Clone()}
}

// Query returns the refined query
func (f Features) Query() Query {
	return f.query
}

// Apply runs every stage in the order filter, sort, fields, paginate
func (f Features) Apply() Features {
	return f.Filter().Sort().LimitFields().Paginate()
}

// Filter turns every non-reserved parameter into a criterion.
// "price[gte]=4.5" becomes {price: {$gte: "4.5"}} and a repeated plain
// key becomes an $in list. Values stay strings; the store casts them.
func (f Features) Filter() Features {
	plain := map[string][]string{}
	ops := map[string]bson.D{}

	for key, values := range f.params {
		if len(values) == 0 || reserved[key] {
			continue
		}

		field, op, ok := splitBracket(key)
		if !ok || op == "" {
			if ok {
				key = field
			}
			if reserved[key] {
				continue
			}
			plain[key] = append(plain[key], values...)
			continue
		}
		if reserved[field] {
			continue
		}
		if mapped, known := comparison[op]; known {
			op = mapped
		}
		ops[field] = append(ops[field], bson.E{Key: op, Value: values[len(values)-1]})
	}

	names := make([]string, 0, len(plain)+len(ops))
	for name := range plain {
		names = append(names, name)
	}
	for name := range ops {
		if _, dup := plain[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	filter := bson.D{}
	for _, name := range names {
		values, isPlain := plain[name]
		doc, hasOps := ops[name]
		if !hasOps {
			filter = append(filter, bson.E{Key: name, Value: equality(values)})
			continue
		}

		sort.Slice(doc, func(i, j int) bool { return doc[i].Key < doc[j].Key })
		if isPlain {
			eq := bson.E{Key: "$in", Value: toArray(values)}
			if len(values) == 1 {
				eq = bson.E{Key: "$eq", Value: values[0]}
			}
			doc = append(bson.D{eq}, doc...)
		}
		filter = append(filter, bson.E{Key: name, Value: doc})
	}

	return Features{query: f.query.Where(filter), params: f.params}
}

// Sort orders by the comma separated "sort" parameter; a leading "-"
// means descending. Without one, newest first.
func (f Features) Sort() Features {
	spec := bson.D{}
	for _, part := range strings.Split(f.params.list("sort"), ",") {
		part = strings.TrimSpace(part)
		dir := 1
		switch {
		case strings.HasPrefix(part, "-"):
			part, dir = part[1:], -1
		case strings.HasPrefix(part, "+"):
			part = part[1:]
		}
		if part == "" || has(spec, part) {
			continue
		}
		spec = append(spec, bson.E{Key: part, Value: dir})
	}
	if len(spec) == 0 {
		spec = bson.D{{Key: "createdAt", Value: -1}}
	}
	return Features{query: f.query.SortBy(spec), params: f.params}
}

// LimitFields projects the comma separated "fields" parameter. Without
// one, only the internal version field is hidden.
func (f Features) LimitFields() Features {
	projection := bson.D{}
	for _, part := range strings.Split(f.params.list("fields"), ",") {
		part = strings.TrimSpace(part)
		include := 1
		if strings.HasPrefix(part, "-") {
			part, include = part[1:], 0
		}
		if part == "" || has(projection, part) {
			continue
		}
		projection = append(projection, bson.E{Key: part, Value: include})
	}
	if len(projection) == 0 {
		projection = bson.D{{Key: "__v", Value: 0}}
	}
	return Features{query: f.query.Select(projection), params: f.params}
}

// Paginate applies "page" and "limit". Missing, zero, non-numeric or
// out of range values fall back to page 1 and a limit of 100.
func (f Features) Paginate() Features {
	page := number(f.params.Get("page"), defaultPage)
	limit := number(f.params.Get("limit"), defaultLimit)
	skip := (page - 1) * limit
	return Features{query: f.query.Skip(skip).Limit(limit), params: f.params}
}

func number(raw string, fallback int64) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 || int64(v) == 0 {
		return fallback
	}
	return int64(v)
}

func equality(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	return bson.D{{Key: "$in", Value: toArray(values)}}
}

func toArray(values []string) bson.A {
	a := make(bson.A, 0, len(values))
	for _, v := range values {
		a = append(a, v)
	}
	return a
}
