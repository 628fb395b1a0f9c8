package loyalty

import "time"

// Tier is the subscription level gating a business's quota table.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Unlimited marks a limit field as having no cap (-1 kept for compatibility
// with the historical data format).
const Unlimited = -1

// FreeUsage returns the quota table for the free tier with the monthly
// counter freshly started at now.
//
// The free tier pins the card size to exactly 10 stamps and disables logo
// upload; both are selling points of the pro upgrade.
func FreeUsage(now time.Time) UsageLimits {
	return UsageLimits{
		MaxCustomers:         50,
		MaxMonthlyStamps:     500,
		CurrentMonthStamps:   0,
		MonthStartedAt:       now,
		MaxActivityFeedItems: 10,
		CanUploadLogo:        false,
		MinStampCardStamps:   10,
		MaxStampCardStamps:   10,
	}
}

// ProUsage returns the quota table for the pro tier with the monthly counter
// freshly started at now. Customer and stamp caps are lifted entirely.
func ProUsage(now time.Time) UsageLimits {
	return UsageLimits{
		MaxCustomers:         Unlimited,
		MaxMonthlyStamps:     Unlimited,
		CurrentMonthStamps:   0,
		MonthStartedAt:       now,
		MaxActivityFeedItems: 100,
		CanUploadLogo:        true,
		MinStampCardStamps:   3,
		MaxStampCardStamps:   50,
	}
}

// UsageForTier returns the quota table for the given tier.
func UsageForTier(tier Tier, now time.Time) UsageLimits {
	if tier == TierPro {
		return ProUsage(now)
	}
	return FreeUsage(now)
}

// DefaultSubscription is the snapshot every business starts with: free tier,
// no billing state.
func DefaultSubscription() SubscriptionInfo {
	return SubscriptionInfo{Tier: TierFree}
}

// IsPro reports whether the business currently has an effective pro
// subscription. An empty status means the tier was set without a billing
// lifecycle (e.g. a manual grant) and counts as active.
func (b *Business) IsPro() bool {
	return b.Subscription.Tier == TierPro &&
		(b.Subscription.Status == StatusActive || b.Subscription.Status == "")
}
