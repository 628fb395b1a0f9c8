package loyalty

import (
	"context"
)

// UserStore persists user accounts.
type UserStore interface {
	// UserByID returns the user or ErrCustomerNotFound.
	UserByID(ctx context.Context, id string) (*User, error)

	// UserByMemberID resolves a scanned member ID to a customer account.
	// Returns ErrCustomerNotFound if no such member exists.
	UserByMemberID(ctx context.Context, memberID string) (*User, error)

	// SaveUser creates or updates a user, keyed by User.ID.
	SaveUser(ctx context.Context, user *User) error
}

// BusinessStore persists business aggregates.
type BusinessStore interface {
	// BusinessByID returns the business or ErrBusinessNotFound.
	BusinessByID(ctx context.Context, id string) (*Business, error)

	// BusinessByBillingCustomerRef looks a business up by its stored billing
	// customer reference. Returns ErrBusinessNotFound when unknown.
	BusinessByBillingCustomerRef(ctx context.Context, ref string) (*Business, error)

	// SaveBusiness creates or updates a business, keyed by Business.ID.
	SaveBusiness(ctx context.Context, business *Business) error
}

// StampCardStore persists stamp cards.
type StampCardStore interface {
	// CardByID returns the card or ErrCardNotFound.
	CardByID(ctx context.Context, id string) (*StampCard, error)

	// ActiveCard returns the single non-redeemed card for the
	// (user, business) pair, or ErrCardNotFound if none exists. At most one
	// such card exists at a time.
	ActiveCard(ctx context.Context, userID, businessID string) (*StampCard, error)

	// SaveCard creates or updates a card, keyed by StampCard.ID.
	SaveCard(ctx context.Context, card *StampCard) error
}

// TransactionLog is the append-only audit trail. Appends are best effort:
// the service logs failures but never propagates them.
type TransactionLog interface {
	Append(ctx context.Context, tx *Transaction) error

	// RecentByBusiness returns the newest transactions for a business,
	// newest first, capped at limit.
	RecentByBusiness(ctx context.Context, businessID string, limit int) ([]Transaction, error)
}

// UnitOfWork runs a function atomically across the stores: either every
// write inside fn is persisted or none are. The storage backend must provide
// multi-document transactions so a crash can never leave a card stamped
// without the matching business counters.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UsageNotifier receives approaching-limit signals after successful
// operations so the business owner can be nudged toward an upgrade.
// Implementations must not fail or block the triggering operation.
type UsageNotifier interface {
	NotifyApproachingLimit(ctx context.Context, business *Business, resource string, current, max int)
}
