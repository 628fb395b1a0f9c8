package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

func (s *Store) Append(ctx context.Context, tx *loyalty.Transaction) error {
	if _, err := s.transactions().InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *Store) RecentByBusiness(ctx context.Context, businessID string, limit int) ([]loyalty.Transaction, error) {
	cursor, err := s.transactions().Find(ctx,
		bson.M{"business_id": businessID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []loyalty.Transaction
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return out, nil
}
