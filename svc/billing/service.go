package billing

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

// BusinessStore is the slice of business persistence the billing service and
// reconciler need.
type BusinessStore interface {
	BusinessByID(ctx context.Context, id string) (*loyalty.Business, error)
	BusinessByBillingCustomerRef(ctx context.Context, ref string) (*loyalty.Business, error)
	SaveBusiness(ctx context.Context, business *loyalty.Business) error
}

// Service creates checkout and customer portal sessions. Subscription state
// itself is only ever mutated by the Reconciler in response to provider
// webhooks; a completed checkout has no effect until its webhook arrives.
type Service struct {
	provider   Provider
	plans      PlanSource
	businesses BusinessStore
}

// NewService creates the billing service. Panics on nil dependencies to fail
// fast during initialization.
func NewService(provider Provider, plans PlanSource, businesses BusinessStore) *Service {
	if provider == nil {
		panic("billing: Provider is required")
	}
	if plans == nil {
		panic("billing: PlanSource is required")
	}
	if businesses == nil {
		panic("billing: BusinessStore is required")
	}
	return &Service{provider: provider, plans: plans, businesses: businesses}
}

// CreateCheckoutLink opens a hosted checkout session for the given plan. The
// business ID is carried in the session's custom data so the subscription
// webhooks can be tied back to the business.
func (s *Service) CreateCheckoutLink(ctx context.Context, businessID, planID, successURL string) (*CheckoutLink, error) {
	business, err := s.businesses.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	plans, err := s.plans.Load(ctx)
	if err != nil {
		return nil, err
	}
	plan, ok := plans[planID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	if plan.PriceRef == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingPriceRef, planID)
	}

	link, err := s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceRef:   plan.PriceRef,
		BusinessID: business.ID,
		Email:      business.Email,
		SuccessURL: successURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout link: %w", err)
	}
	return link, nil
}

// GetCustomerPortalLink returns a portal session for an already-subscribed
// business. Requires the billing customer ref recorded by the reconciler.
func (s *Service) GetCustomerPortalLink(ctx context.Context, businessID string) (*PortalLink, error) {
	business, err := s.businesses.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business.Subscription.BillingCustomerRef == "" {
		return nil, ErrMissingCustomerRef
	}

	link, err := s.provider.GetCustomerPortalLink(ctx, business.Subscription.BillingCustomerRef, business.Subscription.BillingSubscriptionRef)
	if err != nil {
		return nil, fmt.Errorf("get customer portal link: %w", err)
	}
	return link, nil
}

// PublicPlans returns the self-service plans sorted by price.
func (s *Service) PublicPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.plans.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.Public {
			out = append(out, plan)
		}
	}
	slices.SortFunc(out, func(a, b Plan) int {
		if a.Amount != b.Amount {
			return int(a.Amount - b.Amount)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
