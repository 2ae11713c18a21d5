package repo

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/logger"
)

// insertBatchSize bounds the number of documents per InsertMany call
const insertBatchSize = 500

// InsertMany inserts books in ordered batches and returns how many were
// written before the first failure
func (r *Repo) InsertMany(ctx context.Context, books []book.Book) (int, error) {
	now := time.Now()
	inserted := 0

	for start := 0; start < len(books); start += insertBatchSize {
		end := min(start+insertBatchSize, len(books))

		docs := make([]any, 0, end-start)
		for _, b := range books[start:end] {
			docs = append(docs, withDefaults(b, now))
		}

		res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
		if err != nil {
			var bwe mongo.BulkWriteException
			if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
				inserted += bwe.WriteErrors[0].Index
			}
			return inserted, pkgerrors.Wrapf(err, "insert batch at %d", start)
		}
		inserted += len(res.InsertedIDs)
		logger.Debug("Inserted batch", "from", start, "to", end)
	}

	return inserted, nil
}

// DeleteAll removes every book and returns the number deleted
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "delete books")
	}
	return res.DeletedCount, nil
}
