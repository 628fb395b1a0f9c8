package loyalty

import (
	"time"
)

// UserType distinguishes customer accounts from business-owner accounts.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeBusiness UserType = "business"
)

// User is an account in the system. Customers carry a member ID that is
// encoded into their QR badge; business owners do not.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	UserType    UserType  `bson:"user_type" json:"user_type"`
	MemberID    string    `bson:"member_id,omitempty" json:"member_id,omitempty"` // RC-YYYY-NNNNNN, customers only
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	LastLoginAt time.Time `bson:"last_login_at" json:"last_login_at"`
}

// StampCardConfig is the card template a business configures: how many
// stamps a card holds and what the completed card is worth.
type StampCardConfig struct {
	TotalStamps int    `bson:"total_stamps" json:"total_stamps"`
	Reward      string `bson:"reward" json:"reward"`
}

// BusinessStats are lifetime aggregate counters for a business.
// They accumulate across tier changes and are never reset.
type BusinessStats struct {
	TotalCustomers    int `bson:"total_customers" json:"total_customers"`
	ActiveCards       int `bson:"active_cards" json:"active_cards"`
	TotalStampsIssued int `bson:"total_stamps_issued" json:"total_stamps_issued"`
}

// SubscriptionStatus mirrors the billing provider's subscription state.
type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "active"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
)

// SubscriptionInfo is the business's local snapshot of its billing state.
// It is mutated only by the billing reconciler; everything else reads it.
// Status is empty for a free-tier business that never went through checkout.
type SubscriptionInfo struct {
	Tier                  Tier               `bson:"tier" json:"tier"`
	Status                SubscriptionStatus `bson:"status,omitempty" json:"status,omitempty"`
	BillingCustomerRef    string             `bson:"billing_customer_ref,omitempty" json:"billing_customer_ref,omitempty"`
	BillingSubscriptionRef string            `bson:"billing_subscription_ref,omitempty" json:"billing_subscription_ref,omitempty"`
	BillingPriceRef       string             `bson:"billing_price_ref,omitempty" json:"billing_price_ref,omitempty"`
	CurrentPeriodStart    *time.Time         `bson:"current_period_start,omitempty" json:"current_period_start,omitempty"`
	CurrentPeriodEnd      *time.Time         `bson:"current_period_end,omitempty" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd     bool               `bson:"cancel_at_period_end" json:"cancel_at_period_end"`
	CancelAt              *time.Time         `bson:"cancel_at,omitempty" json:"cancel_at,omitempty"`
}

// UsageLimits holds the quota table currently in effect for a business plus
// the accumulating monthly counter. Limit fields use Unlimited (-1) as the
// no-limit sentinel; CurrentMonthStamps and MonthStartedAt are runtime state
// and survive tier changes only as documented on the reconciler.
type UsageLimits struct {
	MaxCustomers         int       `bson:"max_customers" json:"max_customers"`
	MaxMonthlyStamps     int       `bson:"max_monthly_stamps" json:"max_monthly_stamps"`
	CurrentMonthStamps   int       `bson:"current_month_stamps" json:"current_month_stamps"`
	MonthStartedAt       time.Time `bson:"month_started_at" json:"month_started_at"`
	MaxActivityFeedItems int       `bson:"max_activity_feed_items" json:"max_activity_feed_items"`
	CanUploadLogo        bool      `bson:"can_upload_logo" json:"can_upload_logo"`
	MinStampCardStamps   int       `bson:"min_stamp_card_stamps" json:"min_stamp_card_stamps"`
	MaxStampCardStamps   int       `bson:"max_stamp_card_stamps" json:"max_stamp_card_stamps"`
}

// Business is the aggregate a stamp scan and a billing notification both
// converge on. It is a hot document: every stamp from every customer of the
// business touches its counters.
type Business struct {
	ID              string           `bson:"_id" json:"id"`
	OwnerID         string           `bson:"owner_id" json:"owner_id"`
	Name            string           `bson:"name" json:"name"`
	BusinessType    string           `bson:"business_type" json:"business_type"`
	Email           string           `bson:"email" json:"email"`
	LogoURL         string           `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	StampCardConfig StampCardConfig  `bson:"stamp_card_config" json:"stamp_card_config"`
	Stats           BusinessStats    `bson:"stats" json:"stats"`
	Subscription    SubscriptionInfo `bson:"subscription" json:"subscription"`
	Usage           UsageLimits      `bson:"usage" json:"usage"`
	IsActive        bool             `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `bson:"updated_at" json:"updated_at"`
}

// Stamp is a single issuance record inside a card's append-only sequence.
type Stamp struct {
	StampedAt time.Time `bson:"stamped_at" json:"stamped_at"`
	StampedBy string    `bson:"stamped_by" json:"stamped_by"` // issuing business owner's user ID
}

// StampCard tracks one customer's progress toward one business's reward.
//
// BusinessName, BusinessType, Reward and TotalStamps are snapshots of the
// business configuration at creation time and are deliberately not updated
// when the business edits its settings: a half-filled card keeps the terms
// it was issued under.
type StampCard struct {
	ID            string     `bson:"_id" json:"id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	BusinessID    string     `bson:"business_id" json:"business_id"`
	BusinessName  string     `bson:"business_name" json:"business_name"`
	BusinessType  string     `bson:"business_type" json:"business_type"`
	LogoURL       string     `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	TotalStamps   int        `bson:"total_stamps" json:"total_stamps"`
	CurrentStamps int        `bson:"current_stamps" json:"current_stamps"`
	Reward        string     `bson:"reward" json:"reward"`
	Stamps        []Stamp    `bson:"stamps" json:"stamps"`
	IsCompleted   bool       `bson:"is_completed" json:"is_completed"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	IsRedeemed    bool       `bson:"is_redeemed" json:"is_redeemed"`
	RedeemedAt    *time.Time `bson:"redeemed_at,omitempty" json:"redeemed_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}

// LastStampedAt returns the timestamp of the most recent stamp.
// The stamps sequence is append-only and chronological, so the last element
// is always the newest. Returns zero time for an empty card.
func (c *StampCard) LastStampedAt() time.Time {
	if len(c.Stamps) == 0 {
		return time.Time{}
	}
	return c.Stamps[len(c.Stamps)-1].StampedAt
}

// TransactionType identifies the ledger event a transaction records.
type TransactionType string

const (
	TransactionCardCreated    TransactionType = "card_created"
	TransactionStampAdded     TransactionType = "stamp_added"
	TransactionRewardRedeemed TransactionType = "reward_redeemed"
)

// Transaction is an immutable audit record, one per ledger-affecting event.
// Writes are best effort: a failed append never rolls back the operation
// that produced it.
type Transaction struct {
	ID          string          `bson:"_id" json:"id"`
	Type        TransactionType `bson:"type" json:"type"`
	CustomerID  string          `bson:"customer_id" json:"customer_id"`
	BusinessID  string          `bson:"business_id" json:"business_id"`
	StampCardID string          `bson:"stamp_card_id,omitempty" json:"stamp_card_id,omitempty"`
	Metadata    map[string]any  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp   time.Time       `bson:"timestamp" json:"timestamp"`
}

// StampResult is the outcome of a successful AddStamp call.
type StampResult struct {
	StampCount int  // card's stamp count after the new stamp
	Completed  bool // true when this stamp filled the card
}
