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

func (s *Store) BusinessByID(ctx context.Context, id string) (*loyalty.Business, error) {
	var business loyalty.Business
	err := s.businesses().FindOne(ctx, bson.M{"_id": id}).Decode(&business)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loyalty.ErrBusinessNotFound
		}
		return nil, fmt.Errorf("find business by id: %w", err)
	}
	return &business, nil
}

func (s *Store) BusinessByBillingCustomerRef(ctx context.Context, ref string) (*loyalty.Business, error) {
	var business loyalty.Business
	err := s.businesses().FindOne(ctx, bson.M{"subscription.billing_customer_ref": ref}).Decode(&business)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loyalty.ErrBusinessNotFound
		}
		return nil, fmt.Errorf("find business by billing customer ref: %w", err)
	}
	return &business, nil
}

func (s *Store) SaveBusiness(ctx context.Context, business *loyalty.Business) error {
	_, err := s.businesses().ReplaceOne(ctx,
		bson.M{"_id": business.ID},
		business,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save business: %w", err)
	}
	return nil
}
