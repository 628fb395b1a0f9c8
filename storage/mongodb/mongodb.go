// Package mongodb persists loyalty documents in MongoDB. One Store serves
// all collections so a single instance satisfies every persistence interface
// the loyalty service consumes, including the unit of work.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection        = "users"
	businessesCollection   = "businesses"
	stampCardsCollection   = "stampCards"
	transactionsCollection = "transactions"
)

// Store is the MongoDB-backed implementation of the loyalty persistence
// interfaces.
type Store struct {
	db *mongo.Database
}

// New creates a Store on the given database. Panics on nil to fail fast
// during initialization.
func New(db *mongo.Database) *Store {
	if db == nil {
		panic("mongodb: database is required")
	}
	return &Store{db: db}
}

func (s *Store) users() *mongo.Collection        { return s.db.Collection(usersCollection) }
func (s *Store) businesses() *mongo.Collection   { return s.db.Collection(businessesCollection) }
func (s *Store) cards() *mongo.Collection        { return s.db.Collection(stampCardsCollection) }
func (s *Store) transactions() *mongo.Collection { return s.db.Collection(transactionsCollection) }

// EnsureIndexes creates the indexes the queries below depend on. Safe to run
// on every startup; MongoDB treats existing identical indexes as a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "member_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	if _, err := s.businesses().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "subscription.billing_customer_ref", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}); err != nil {
		return fmt.Errorf("create businesses indexes: %w", err)
	}

	if _, err := s.cards().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "business_id", Value: 1},
			{Key: "is_redeemed", Value: 1},
		},
	}); err != nil {
		return fmt.Errorf("create stamp cards indexes: %w", err)
	}

	if _, err := s.transactions().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "business_id", Value: 1},
			{Key: "timestamp", Value: -1},
		},
	}); err != nil {
		return fmt.Errorf("create transactions indexes: %w", err)
	}

	return nil
}

// WithinTransaction runs fn inside a multi-document MongoDB transaction. The
// callback context carries the session, so every store call made with it
// joins the transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
