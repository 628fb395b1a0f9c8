package billing

import "errors"

var (
	ErrMissingAPIKey         = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret  = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment    = errors.New("invalid billing provider environment")
	ErrInvalidSignature      = errors.New("webhook signature verification failed")
	ErrMalformedPayload      = errors.New("malformed webhook payload")
	ErrNoCheckoutURL         = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL           = errors.New("no portal URL returned from provider")
	ErrMissingCustomerRef    = errors.New("billing customer ref not recorded for business")
	ErrMissingPriceRef       = errors.New("plan has no provider price ref")
	ErrPlanNotFound          = errors.New("billing plan not found")
	ErrNoPlansConfigured     = errors.New("no billing plans configured")
	ErrFailedToLoadPlans     = errors.New("failed to load billing plans")
)
