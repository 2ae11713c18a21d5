package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestGenreStats(t *testing.T) {
	p := GenreStats()

	assert.Equal(t, []string{"$match", "$group", "$sort"}, stageNames(p))
	assert.Equal(t, bson.D{{Key: "price", Value: bson.D{{Key: "$gte", Value: 4.5}}}}, p[0][0].Value)
	assert.Equal(t, bson.D{{Key: "avgPrice", Value: 1}}, p[2][0].Value)

	_, err := bson.Marshal(bson.D{{Key: "pipeline", Value: p}})
	require.NoError(t, err)
}

func TestYearBounds(t *testing.T) {
	from, to := YearBounds(2023)

	assert.Equal(t, "2023-01-01T00:00:00.000Z", from.Format("2006-01-02T15:04:05.000Z07:00"))
	assert.Equal(t, "2023-12-31T23:59:59.999Z", to.Format("2006-01-02T15:04:05.000Z07:00"))
	assert.True(t, to.Add(time.Millisecond).Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonthlyPlan(t *testing.T) {
	p := MonthlyPlan(2022)

	assert.Equal(t, []string{
		"$project", "$project", "$unwind", "$project", "$match",
		"$group", "$addFields", "$project", "$sort", "$limit",
	}, stageNames(p))

	sold := p[3][0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "noOfBooksSold", Value: bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$tourDatesAndSales", 1}}}},
		{Key: "to", Value: "double"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}}, sold[len(sold)-1])

	from, to := YearBounds(2022)
	assert.Equal(t, bson.D{{Key: "tourDate", Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lte", Value: to},
	}}}, p[4][0].Value)
	assert.Equal(t, bson.D{{Key: "numOfTours", Value: -1}}, p[8][0].Value)
	assert.Equal(t, 12, p[9][0].Value)

	_, err := bson.Marshal(bson.D{{Key: "pipeline", Value: p}})
	require.NoError(t, err)
}
