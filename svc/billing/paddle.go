package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle billing provider.
func NewPaddleProvider(config PaddleConfig) (*PaddleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var client *paddle.SDK
	var err error
	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, config.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(config.WebhookSecret),
	}, nil
}

// CreateCheckoutLink creates a hosted checkout session in Paddle. The
// business ID travels in the transaction's custom data and comes back on
// every webhook for that subscription.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceRef == "" {
		return nil, ErrMissingPriceRef
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceRef,
		Quantity: 1,
	})

	transactionReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"business_id": req.BusinessID,
		},
	}
	if req.Email != "" {
		transactionReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		transactionReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, transactionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if transaction.Checkout == nil || transaction.Checkout.URL == nil {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *transaction.Checkout.URL,
		SessionID: transaction.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// GetCustomerPortalLink returns a link to Paddle's customer portal scoped to
// the given subscription.
func (p *PaddleProvider) GetCustomerPortalLink(ctx context.Context, customerRef, subscriptionRef string) (*PortalLink, error) {
	if customerRef == "" {
		return nil, ErrMissingCustomerRef
	}

	portalSessionReq := &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: customerRef,
	}
	if subscriptionRef != "" {
		portalSessionReq.SubscriptionIDs = []string{subscriptionRef}
	}

	portalSession, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, portalSessionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle customer portal session: %w", err)
	}

	link := &PortalLink{
		URL:       portalSession.URLs.General.Overview,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	for _, subURL := range portalSession.URLs.Subscriptions {
		if subURL.ID == subscriptionRef && subURL.CancelSubscription != "" {
			link.CancelURL = subURL.CancelSubscription
			break
		}
	}
	if link.URL == "" {
		return nil, ErrNoPortalURL
	}
	return link, nil
}

// ParseWebhook verifies the Paddle signature and normalizes the event.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	return parsePaddlePayload(payload)
}

// paddleEnvelope mirrors the common fields of every Paddle webhook body.
type paddleEnvelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type paddleSubscriptionData struct {
	ID                   string           `json:"id"`
	CustomerID           string           `json:"customer_id"`
	Status               string           `json:"status"`
	CustomData           map[string]any   `json:"custom_data"`
	CurrentBillingPeriod *paddlePeriod    `json:"current_billing_period"`
	ScheduledChange      *paddleSchedule  `json:"scheduled_change"`
	Items                []paddleLineItem `json:"items"`
}

type paddleTransactionData struct {
	ID             string           `json:"id"`
	SubscriptionID string           `json:"subscription_id"`
	CustomerID     string           `json:"customer_id"`
	Status         string           `json:"status"`
	CustomData     map[string]any   `json:"custom_data"`
	BillingPeriod  *paddlePeriod    `json:"billing_period"`
	Items          []paddleLineItem `json:"items"`
}

type paddlePeriod struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type paddleSchedule struct {
	Action      string     `json:"action"`
	EffectiveAt *time.Time `json:"effective_at"`
}

type paddleLineItem struct {
	Price *struct {
		ID string `json:"id"`
	} `json:"price"`
	PriceID string `json:"price_id"`
}

func parsePaddlePayload(payload []byte) (*Event, error) {
	var envelope paddleEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	event := &Event{
		ID:            envelope.EventID,
		Type:          mapPaddleEventType(envelope.EventType),
		ProviderEvent: envelope.EventType,
		OccurredAt:    envelope.OccurredAt,
	}

	switch {
	case strings.HasPrefix(envelope.EventType, "subscription."):
		var data paddleSubscriptionData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		event.SubscriptionRef = data.ID
		event.CustomerRef = data.CustomerID
		event.Status = data.Status
		event.BusinessID = customDataString(data.CustomData, "business_id")
		event.PriceRef = firstPriceRef(data.Items)
		if data.CurrentBillingPeriod != nil {
			event.CurrentPeriodStart = data.CurrentBillingPeriod.StartsAt
			event.CurrentPeriodEnd = data.CurrentBillingPeriod.EndsAt
		}
		if data.ScheduledChange != nil && data.ScheduledChange.Action == "cancel" {
			event.CancelAtPeriodEnd = true
			event.CancelAt = data.ScheduledChange.EffectiveAt
		}

	case strings.HasPrefix(envelope.EventType, "transaction."):
		var data paddleTransactionData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		event.SubscriptionRef = data.SubscriptionID
		event.CustomerRef = data.CustomerID
		event.Status = data.Status
		event.BusinessID = customDataString(data.CustomData, "business_id")
		event.PriceRef = firstPriceRef(data.Items)
		if data.BillingPeriod != nil {
			event.CurrentPeriodStart = data.BillingPeriod.StartsAt
			event.CurrentPeriodEnd = data.BillingPeriod.EndsAt
		}
	}

	return event, nil
}

func customDataString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func firstPriceRef(items []paddleLineItem) string {
	for _, item := range items {
		if item.Price != nil && item.Price.ID != "" {
			return item.Price.ID
		}
		if item.PriceID != "" {
			return item.PriceID
		}
	}
	return ""
}

// mapPaddleEventType maps Paddle event names to normalized types.
func mapPaddleEventType(paddleEvent string) EventType {
	switch paddleEvent {
	case "transaction.completed":
		return EventCheckoutCompleted
	case "subscription.updated", "subscription.resumed":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCanceled
	case "transaction.payment_succeeded":
		return EventPaymentSucceeded
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}
