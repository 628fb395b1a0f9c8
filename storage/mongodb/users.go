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

func (s *Store) UserByID(ctx context.Context, id string) (*loyalty.User, error) {
	var user loyalty.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loyalty.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

func (s *Store) UserByMemberID(ctx context.Context, memberID string) (*loyalty.User, error) {
	var user loyalty.User
	err := s.users().FindOne(ctx, bson.M{"member_id": memberID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loyalty.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find user by member id: %w", err)
	}
	return &user, nil
}

func (s *Store) SaveUser(ctx context.Context, user *loyalty.User) error {
	_, err := s.users().ReplaceOne(ctx,
		bson.M{"_id": user.ID},
		user,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
