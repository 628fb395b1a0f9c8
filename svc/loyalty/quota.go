package loyalty

import (
	"math"
	"time"
)

// Quota policy: pure functions over a business's usage/stats snapshot.
// No I/O, no error cases; Unlimited (-1) always passes.

// CanAddCustomer reports whether the business may take on another customer
// (i.e. have another stamp card created against it).
func CanAddCustomer(b *Business) bool {
	if b.Usage.MaxCustomers == Unlimited {
		return true
	}
	return b.Stats.TotalCustomers < b.Usage.MaxCustomers
}

// CanAddStamp reports whether the business may issue another stamp in the
// current 30-day window.
func CanAddStamp(b *Business) bool {
	if b.Usage.MaxMonthlyStamps == Unlimited {
		return true
	}
	return b.Usage.CurrentMonthStamps < b.Usage.MaxMonthlyStamps
}

// StampCountBounds returns the tier's allowed range for the TotalStamps
// setting on new cards.
func StampCountBounds(b *Business) (min, max int) {
	return b.Usage.MinStampCardStamps, b.Usage.MaxStampCardStamps
}

// UsagePercentage returns current/max as a 0-100 percentage for progress
// bars. Unlimited always reads as 0; overshoot is capped at 100.
func UsagePercentage(current, max int) int {
	if max == Unlimited {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(max) * 100))
	return min(100, pct)
}

// IsApproachingLimit reports whether usage has reached 80% of a finite limit.
func IsApproachingLimit(current, max int) bool {
	if max == Unlimited {
		return false
	}
	return float64(current)/float64(max) >= 0.8
}

// monthWindow is the fixed rolling window for the monthly stamp counter.
// Deliberately 30 days rather than calendar months: a business onboarding
// mid-month resets on its own cadence, and that drift is accepted.
const monthWindow = 30 * 24 * time.Hour

// ShouldReset reports whether the monthly stamp counter's window has elapsed.
func (u *UsageLimits) ShouldReset(now time.Time) bool {
	return now.Sub(u.MonthStartedAt) >= monthWindow
}

// ResetMonth zeroes the monthly counter and starts a new window at now.
func (u *UsageLimits) ResetMonth(now time.Time) {
	u.CurrentMonthStamps = 0
	u.MonthStartedAt = now
}
