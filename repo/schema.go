package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/htol/booksapi/config"
	"github.com/htol/booksapi/logger"
)

// Open connects to the document store and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Repo, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	opts := options.Client().
		ApplyURI(cfg.URI()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	r := &Repo{
		client: client,
		coll:   client.Database(cfg.Name).Collection(cfg.Collection),
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping store: %w", err)
	}

	logger.Info("DB connection successful", "database", cfg.Name, "collection", cfg.Collection)
	return r, nil
}

// EnsureIndexes creates the unique index on title. It is safe to call
// on every start.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	name, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("title_1"),
	})
	if err != nil {
		return fmt.Errorf("create title index: %w", err)
	}
	logger.Info("Index ready", "name", name)
	return nil
}
