package billing

import (
	"context"
	"time"
)

// Provider is the payment provider integration behind hosted checkouts,
// customer portals and signed webhook intake. Implementations use the
// provider's official SDK and hide its quirks behind normalized types.
type Provider interface {
	// CreateCheckoutLink creates a hosted checkout session.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a temporary pre-authenticated link to the
	// provider's customer portal for payment method updates and cancellation.
	GetCustomerPortalLink(ctx context.Context, customerRef, subscriptionRef string) (*PortalLink, error)

	// ParseWebhook verifies the payload signature and normalizes the event.
	// Returns ErrInvalidSignature when verification fails; no event data is
	// trusted before that check passes.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
}

// CheckoutRequest contains the data needed to open a checkout session.
type CheckoutRequest struct {
	PriceRef   string // provider's price identifier
	BusinessID string // carried in checkout custom data, echoed back in webhooks
	Email      string // optional billing email
	SuccessURL string // redirect after successful payment
}

// CheckoutLink is a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink is a customer portal session.
type PortalLink struct {
	URL       string
	CancelURL string
	ExpiresAt time.Time
}

// EventType is the normalized billing event type. Provider implementations
// map their native event names onto these.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout_completed"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
	EventUnknown              EventType = "unknown"
)

// Event is a normalized billing notification.
type Event struct {
	ID            string    // provider's event ID
	Type          EventType // normalized type
	ProviderEvent string    // original provider event name
	OccurredAt    time.Time

	BusinessID      string // from checkout custom data, set on first notifications
	CustomerRef     string // provider's customer ID
	SubscriptionRef string // provider's subscription ID
	PriceRef        string // price the business subscribed to
	Status          string // provider's subscription status

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
	CancelAt           *time.Time
}
