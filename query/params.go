package query

import (
	"net/url"
	"strings"
)

// Reserved parameter names are consumed by the builder and never
// become filter criteria
var reserved = map[string]bool{
	"page":   true,
	"limit":  true,
	"fields": true,
	"sort":   true,
}

// Params is a parsed query string. Keys keep their raw bracket form,
// e.g. "price[gte]".
type Params map[string][]string

// FromValues copies url.Values into Params
func FromValues(v url.Values) Params {
	p := make(Params, len(v))
	for key, values := range v {
		p[key] = append([]string(nil), values...)
	}
	return p
}

// Get returns the first value for key, or "" when absent
func (p Params) Get(key string) string {
	if values := p[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// list returns every value for key joined with commas
func (p Params) list(key string) string {
	return strings.Join(p[key], ",")
}

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for key, values := range p {
		c[key] = append([]string(nil), values...)
	}
	return c
}

// Preset is a named set of parameter overrides applied before building
type Preset struct {
	Limit  string
	Sort   string
	Fields string
}

// LatestFive selects the five most recently created books, projecting
// only their title, author and genre
var LatestFive = Preset{
	Limit:  "5",
	Sort:   "-createdAt",
	Fields: "title,author,genre",
}

// With returns a copy of p with the preset's non-empty values overriding
// the caller's
func (p Params) With(preset Preset) Params {
	c := p.Clone()
	if preset.Limit != "" {
		c["limit"] = []string{preset.Limit}
	}
	if preset.Sort != "" {
		c["sort"] = []string{preset.Sort}
	}
	if preset.Fields != "" {
		c["fields"] = []string{preset.Fields}
	}
	return c
}

// splitBracket splits "price[gte]" into "price" and "gte"
func splitBracket(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	field, op = key[:open], key[open+1:len(key)-1]
	if strings.ContainsAny(op, "[]") {
		return "", "", false
	}
	return field, op, true
}
