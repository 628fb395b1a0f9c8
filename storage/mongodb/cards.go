package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

func (s *Store) CardByID(ctx context.Context, id string) (*loyalty.StampCard, error) {
	var card loyalty.StampCard
	err := s.cards().FindOne(ctx, bson.M{"_id": id}).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loyalty.ErrCardNotFound
		}
		return nil, fmt.Errorf("find stamp card by id: %w", err)
	}
	return &card, nil
}

// ActiveCard finds the customer's current non-redeemed card for a business.
// A redeemed card is terminal, so at most one document matches.
func (s *Store) ActiveCard(ctx context.Context, userID, businessID string) (*loyalty.StampCard, error) {
	var card loyalty.StampCard
	err := s.cards().FindOne(ctx, bson.M{
		"user_id":     userID,
		"business_id": businessID,
		"is_redeemed": false,
	}).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loyalty.ErrCardNotFound
		}
		return nil, fmt.Errorf("find active stamp card: %w", err)
	}
	return &card, nil
}

func (s *Store) SaveCard(ctx context.Context, card *loyalty.StampCard) error {
	_, err := s.cards().ReplaceOne(ctx,
		bson.M{"_id": card.ID},
		card,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save stamp card: %w", err)
	}
	return nil
}
