package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/stampkit/pkg/locker"
	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

// lockTTL bounds how long a crashed webhook delivery can keep a business
// locked.
const lockTTL = 10 * time.Second

// Reconciler applies normalized billing events to the owning business's
// subscription and quota state. The provider is the source of truth: every
// application is an absolute write of what the event asserts, never an
// increment, so redelivered events converge to the same state.
type Reconciler struct {
	businesses BusinessStore
	locks      locker.Locker
	plans      PlanSource
	log        *slog.Logger
	now        func() time.Time
}

// ReconcilerOption configures optional reconciler dependencies.
type ReconcilerOption func(*Reconciler)

// WithPlanSource lets the reconciler resolve the purchased tier from the
// event's price ref. Without it every paid subscription lands on the pro tier.
func WithPlanSource(plans PlanSource) ReconcilerOption {
	return func(r *Reconciler) { r.plans = plans }
}

// WithReconcilerLogger sets the logger for dropped and unknown events.
func WithReconcilerLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// WithReconcilerClock overrides the time source used for usage table resets.
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReconciler creates a reconciler. Panics on nil required dependencies to
// fail fast during initialization. The locker must be the same one the stamp
// ledger uses, so a webhook never races a concurrent stamp on the business
// counters.
func NewReconciler(businesses BusinessStore, locks locker.Locker, opts ...ReconcilerOption) *Reconciler {
	if businesses == nil {
		panic("billing: BusinessStore is required")
	}
	if locks == nil {
		panic("billing: Locker is required")
	}
	r := &Reconciler{
		businesses: businesses,
		locks:      locks,
		log:        slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply reconciles one event. A nil return acknowledges the event; events for
// unknown businesses are logged and acknowledged so the provider stops
// redelivering them.
func (r *Reconciler) Apply(ctx context.Context, event *Event) error {
	if event.Type == EventUnknown {
		r.log.DebugContext(ctx, "ignoring unmapped billing event",
			slog.String("provider_event", event.ProviderEvent),
			slog.String("event_id", event.ID),
		)
		return nil
	}

	business, err := r.resolveBusiness(ctx, event)
	if err == nil {
		// The stamp ledger holds this lock across its business counter
		// updates; re-read under it so the write below starts from the
		// current document, not the resolution-time snapshot.
		var release locker.ReleaseFunc
		release, err = r.locks.Acquire(ctx, "business:"+business.ID, lockTTL)
		if err != nil {
			return err
		}
		defer release()
		business, err = r.businesses.BusinessByID(ctx, business.ID)
	}
	if err != nil {
		if errors.Is(err, loyalty.ErrBusinessNotFound) {
			r.log.WarnContext(ctx, "billing event for unknown business dropped",
				slog.String("provider_event", event.ProviderEvent),
				slog.String("event_id", event.ID),
				slog.String("customer_ref", event.CustomerRef),
				slog.String("business_id", event.BusinessID),
			)
			return nil
		}
		return err
	}

	switch event.Type {
	case EventCheckoutCompleted:
		r.applyCheckoutCompleted(business, event)
	case EventSubscriptionUpdated:
		r.applySubscriptionUpdated(business, event)
	case EventSubscriptionCanceled:
		r.applySubscriptionCanceled(business)
	case EventPaymentFailed:
		business.Subscription.Status = loyalty.StatusPastDue
	case EventPaymentSucceeded:
		business.Subscription.Status = loyalty.StatusActive
		if event.CurrentPeriodStart != nil {
			business.Subscription.CurrentPeriodStart = event.CurrentPeriodStart
		}
		if event.CurrentPeriodEnd != nil {
			business.Subscription.CurrentPeriodEnd = event.CurrentPeriodEnd
		}
	}

	business.UpdatedAt = r.now()
	if err := r.businesses.SaveBusiness(ctx, business); err != nil {
		return fmt.Errorf("apply billing event %s: %w", event.ProviderEvent, err)
	}

	r.log.InfoContext(ctx, "billing event applied",
		slog.String("provider_event", event.ProviderEvent),
		slog.String("event_id", event.ID),
		slog.String("business_id", business.ID),
		slog.String("status", string(business.Subscription.Status)),
	)
	return nil
}

// resolveBusiness finds the event's business by the stored billing customer
// ref, falling back to the business ID carried in checkout custom data. The
// fallback is what ties the very first notification, arriving before any ref
// is stored, to its business.
func (r *Reconciler) resolveBusiness(ctx context.Context, event *Event) (*loyalty.Business, error) {
	if event.CustomerRef != "" {
		business, err := r.businesses.BusinessByBillingCustomerRef(ctx, event.CustomerRef)
		if err == nil {
			return business, nil
		}
		if !errors.Is(err, loyalty.ErrBusinessNotFound) {
			return nil, err
		}
	}
	if event.BusinessID != "" {
		return r.businesses.BusinessByID(ctx, event.BusinessID)
	}
	return nil, loyalty.ErrBusinessNotFound
}

func (r *Reconciler) applyCheckoutCompleted(business *loyalty.Business, event *Event) {
	tier := r.tierForPrice(event.PriceRef)

	business.Subscription.Tier = tier
	business.Subscription.Status = loyalty.StatusActive
	business.Subscription.BillingCustomerRef = event.CustomerRef
	business.Subscription.BillingSubscriptionRef = event.SubscriptionRef
	business.Subscription.BillingPriceRef = event.PriceRef
	business.Subscription.CurrentPeriodStart = event.CurrentPeriodStart
	business.Subscription.CurrentPeriodEnd = event.CurrentPeriodEnd
	business.Subscription.CancelAtPeriodEnd = false
	business.Subscription.CancelAt = nil

	// Fresh paid window starts now. Stats are lifetime numbers and stay.
	business.Usage = loyalty.UsageForTier(tier, r.now())
}

func (r *Reconciler) applySubscriptionUpdated(business *loyalty.Business, event *Event) {
	if event.Status != "" {
		business.Subscription.Status = mapProviderStatus(event.Status)
	}
	if event.SubscriptionRef != "" {
		business.Subscription.BillingSubscriptionRef = event.SubscriptionRef
	}
	if event.CustomerRef != "" {
		business.Subscription.BillingCustomerRef = event.CustomerRef
	}
	if event.PriceRef != "" {
		business.Subscription.BillingPriceRef = event.PriceRef
	}
	business.Subscription.CurrentPeriodStart = event.CurrentPeriodStart
	business.Subscription.CurrentPeriodEnd = event.CurrentPeriodEnd
	business.Subscription.CancelAtPeriodEnd = event.CancelAtPeriodEnd
	business.Subscription.CancelAt = event.CancelAt
}

func (r *Reconciler) applySubscriptionCanceled(business *loyalty.Business) {
	business.Subscription.Tier = loyalty.TierFree
	business.Subscription.Status = loyalty.StatusCanceled
	business.Subscription.CancelAtPeriodEnd = false
	business.Subscription.CancelAt = nil

	business.Usage = loyalty.FreeUsage(r.now())
}

// tierForPrice resolves the tier purchased under the given price ref. Any
// paid subscription defaults to pro when the catalog cannot answer.
func (r *Reconciler) tierForPrice(priceRef string) loyalty.Tier {
	if r.plans == nil || priceRef == "" {
		return loyalty.TierPro
	}
	plans, err := r.plans.Load(context.Background())
	if err != nil {
		return loyalty.TierPro
	}
	for _, plan := range plans {
		if plan.PriceRef == priceRef {
			return plan.Tier
		}
	}
	return loyalty.TierPro
}

// mapProviderStatus maps a provider subscription status onto the internal
// status set.
func mapProviderStatus(status string) loyalty.SubscriptionStatus {
	switch strings.ToLower(status) {
	case "active", "trialing":
		return loyalty.StatusActive
	case "past_due":
		return loyalty.StatusPastDue
	case "canceled", "cancelled":
		return loyalty.StatusCanceled
	default:
		return loyalty.StatusIncomplete
	}
}
