package book

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a catalogue entry. Optional fields are pointers so that a
// projected document only renders the fields that were selected.
type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitzero" yaml:"-"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty" yaml:"title"`
	Author    string             `bson:"author,omitempty" json:"author,omitempty" yaml:"author"`
	Genre     string             `bson:"genre,omitempty" json:"genre,omitempty" yaml:"genre"`
	Read      *bool              `bson:"read,omitempty" json:"read,omitempty" yaml:"read"`
	Price     *float64           `bson:"price,omitempty" json:"price,omitempty" yaml:"price"`
	CreatedAt *time.Time         `bson:"createdAt,omitempty" json:"createdAt,omitempty" yaml:"createdAt"`

	// Tour dates and per-tour sales are either a single value or a list.
	BookTourDates any `bson:"bookTourDates,omitempty" json:"bookTourDates,omitempty" yaml:"bookTourDates"`
	BooksSold     any `bson:"booksSold,omitempty" json:"booksSold,omitempty" yaml:"booksSold"`

	Version int32 `bson:"__v" json:"__v,omitempty" yaml:"-"`
}

// TotalMoneyEarnt is price multiplied by the total number of copies sold.
// It returns nil when the price was not loaded.
func (b Book) TotalMoneyEarnt() *float64 {
	if b.Price == nil {
		return nil
	}
	total := *b.Price * sumNumbers(b.BooksSold)
	return &total
}

// MarshalJSON adds the computed totalMoneyEarnt field
func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	return json.Marshal(struct {
		plain
		TotalMoneyEarnt *float64 `json:"totalMoneyEarnt,omitempty"`
	}{plain(b), b.TotalMoneyEarnt()})
}

func sumNumbers(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case []any:
		var sum float64
		for _, item := range n {
			sum += sumNumbers(item)
		}
		return sum
	case bson.A:
		return sumNumbers([]any(n))
	default:
		return 0
	}
}

// Update carries the fields of a partial update. Nil fields are left untouched.
type Update struct {
	Title         *string  `json:"title"`
	Author        *string  `json:"author"`
	Genre         *string  `json:"genre"`
	Read          *bool    `json:"read"`
	Price         *float64 `json:"price"`
	BookTourDates any      `json:"bookTourDates"`
	BooksSold     any      `json:"booksSold"`
}

// Set returns the $set document for the update, in schema order
func (u Update) Set() bson.D {
	set := bson.D{}
	if u.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *u.Title})
	}
	if u.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *u.Author})
	}
	if u.Genre != nil {
		set = append(set, bson.E{Key: "genre", Value: *u.Genre})
	}
	if u.Read != nil {
		set = append(set, bson.E{Key: "read", Value: *u.Read})
	}
	if u.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *u.Price})
	}
	if u.BookTourDates != nil {
		set = append(set, bson.E{Key: "bookTourDates", Value: u.BookTourDates})
	}
	if u.BooksSold != nil {
		set = append(set, bson.E{Key: "booksSold", Value: u.BooksSold})
	}
	return set
}

// GenreStats is one row of the per-genre price rollup
type GenreStats struct {
	Genre    string  `bson:"_id" json:"_id"`
	NumBooks int     `bson:"numBooks" json:"numBooks"`
	AvgPrice float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyStats is one row of the per-month tour rollup
type MonthlyStats struct {
	Month          int      `bson:"month" json:"month"`
	NumOfTours     int      `bson:"numOfTours" json:"numOfTours"`
	NumOfBooksSold float64  `bson:"numOfBooksSold" json:"numOfBooksSold"`
	Tours          []string `bson:"tours" json:"tours"`
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
