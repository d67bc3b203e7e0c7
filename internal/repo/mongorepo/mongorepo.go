package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// MongoRepo stores every entity as a document. Multi-document writes in
// WithinTx need a replica set.
type MongoRepo struct {
	db         *mongo.Database
	categories *mongo.Collection
	products   *mongo.Collection
	coupons    *mongo.Collection
	carts      *mongo.Collection
	orders     *mongo.Collection
	users      *mongo.Collection
	wishlists  *mongo.Collection
	reviews    *mongo.Collection
}

var _ repo.Store = (*MongoRepo)(nil)

func New(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		db:         db,
		categories: db.Collection("categories"),
		products:   db.Collection("products"),
		coupons:    db.Collection("coupons"),
		carts:      db.Collection("carts"),
		orders:     db.Collection("orders"),
		users:      db.Collection("users"),
		wishlists:  db.Collection("wishlists"),
		reviews:    db.Collection("reviews"),
	}
}

func (m *MongoRepo) CreateIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		m.categories: {
			unique(bson.D{{Key: "slug", Value: 1}}),
			plain(bson.D{{Key: "parent_id", Value: 1}}),
			plain(bson.D{{Key: "ancestors.id", Value: 1}}),
		},
		m.products: {
			unique(bson.D{{Key: "slug", Value: 1}}),
			plain(bson.D{{Key: "category_id", Value: 1}}),
			plain(bson.D{{Key: "created_at", Value: -1}}),
		},
		m.coupons: {unique(bson.D{{Key: "code", Value: 1}})},
		m.carts:   {unique(bson.D{{Key: "user_id", Value: 1}})},
		m.orders: {
			plain(bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
			plain(bson.D{{Key: "status", Value: 1}}),
		},
		m.users:     {unique(bson.D{{Key: "email", Value: 1}})},
		m.wishlists: {unique(bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}})},
		m.reviews:   {unique(bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}})},
	}

	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (m *MongoRepo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repo.Store) error) error {
	sess, err := m.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, m)
	})
	return err
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s already exists", domain.ErrValidation, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func findOptions(sort bson.D, offset, limit int) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// replaceByID overwrites the document with the given _id and reports
// domain.ErrNotFound when nothing matched.
func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any, what string) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err, what)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id, what string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, what)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
