// Package aggregate holds the reporting pipelines run against the book
// collection.
package aggregate

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MinStatsPrice is the lowest price included in the genre rollup
const MinStatsPrice = 4.5

// GenreStats groups books priced at MinStatsPrice or more by genre and
// reports count and price statistics, cheapest average first
func GenreStats() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "price", Value: bson.D{{Key: "$gte", Value: MinStatsPrice}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genre"},
			{Key: "numBooks", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}
}

// YearBounds returns the first and last millisecond of year in UTC
func YearBounds(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(year, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	return from, to
}

// MonthlyPlan pairs each tour date with the copies sold on that tour,
// keeps the pairs that fall in year and groups them by calendar month,
// busiest month first. A scalar tour date or sales figure is treated as
// a one-element list. Sales figures stored as text are summed as numbers.
func MonthlyPlan(year int) mongo.Pipeline {
	from, to := YearBounds(year)

	asArray := func(field string) bson.D {
		return bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$isArray", Value: "$" + field}}},
			{Key: "then", Value: "$" + field},
			{Key: "else", Value: bson.A{"$" + field}},
		}}}
	}
	pairElem := func(i int) bson.D {
		return bson.D{{Key: "$arrayElemAt", Value: bson.A{"$tourDatesAndSales", i}}}
	}

	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "author", Value: 1},
			{Key: "price", Value: 1},
			{Key: "bookTourDates", Value: asArray("bookTourDates")},
			{Key: "booksSold", Value: asArray("booksSold")},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "author", Value: 1},
			{Key: "price", Value: 1},
			{Key: "tourDatesAndSales", Value: bson.D{{Key: "$zip", Value: bson.D{
				{Key: "inputs", Value: bson.A{"$bookTourDates", "$booksSold"}},
			}}}},
		}}},
		{{Key: "$unwind", Value: "$tourDatesAndSales"}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "author", Value: 1},
			{Key: "price", Value: 1},
			{Key: "tourDate", Value: bson.D{{Key: "$convert", Value: bson.D{
				{Key: "input", Value: pairElem(0)},
				{Key: "to", Value: "date"},
			}}}},
			{Key: "noOfBooksSold", Value: bson.D{{Key: "$convert", Value: bson.D{
				{Key: "input", Value: pairElem(1)},
				{Key: "to", Value: "double"},
				{Key: "onError", Value: nil},
				{Key: "onNull", Value: nil},
			}}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "tourDate", Value: bson.D{
			{Key: "$gte", Value: from},
			{Key: "$lte", Value: to},
		}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: "$tourDate"}}},
			{Key: "numOfTours", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "numOfBooksSold", Value: bson.D{{Key: "$sum", Value: "$noOfBooksSold"}}},
			{Key: "tours", Value: bson.D{{Key: "$push", Value: "$title"}}},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "month", Value: "$_id"}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "numOfTours", Value: -1}}}},
		{{Key: "$limit", Value: 12}},
	}
}
