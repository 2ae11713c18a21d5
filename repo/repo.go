package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/htol/booksapi/logger"
)

type Repo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (r *Repo) Close(ctx context.Context) error {
	if r.client != nil {
		logger.Info("Closing database connection")
		return r.client.Disconnect(ctx)
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	if r.client == nil {
		return mongo.ErrClientDisconnected
	}
	return r.client.Ping(ctx, readpref.Primary())
}
