package repo

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/query"
)

// hideVersion is the projection used for single document reads
var hideVersion = bson.D{{Key: "__v", Value: 0}}

// Find runs q after casting its filter values to the stored field types
func (r *Repo) Find(ctx context.Context, q query.Query) ([]book.Book, error) {
	filter, err := castFilter(q.Filter())
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, filter, q.FindOptions())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find books")
	}
	defer cur.Close(ctx)

	books := make([]book.Book, 0)
	if err := cur.All(ctx, &books); err != nil {
		return nil, pkgerrors.Wrap(err, "decode books")
	}
	return books, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*book.Book, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}

	var b book.Book
	opts := options.FindOne().SetProjection(hideVersion)
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find book %s", id)
	}
	return &b, nil
}

// Create inserts b, filling in the id, creation time and read flag when
// they are unset
func (r *Repo) Create(ctx context.Context, b *book.Book) (*book.Book, error) {
	doc := withDefaults(*b, time.Now())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, pkgerrors.Wrap(err, "insert book")
	}
	return &doc, nil
}

// UpdateByID applies the present fields of u and returns the updated book
func (r *Repo) UpdateByID(ctx context.Context, id string, u *book.Update) (*book.Book, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}

	set := u.Set()
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "__v", Value: 1}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(hideVersion)

	var b book.Book
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "update book %s", id)
	}
	return &b, nil
}

func (r *Repo) DeleteByID(ctx context.Context, id string) error {
	oid, err := ObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return pkgerrors.Wrapf(err, "delete book %s", id)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func withDefaults(b book.Book, now time.Time) book.Book {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt == nil {
		created := now.UTC().Truncate(time.Millisecond)
		b.CreatedAt = &created
	}
	if b.Read == nil {
		b.Read = book.Bool(false)
	}
	b.Version = 0
	return b
}
