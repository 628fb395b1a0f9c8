package loyalty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

func TestCanAddCustomer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		maxCustomers   int
		totalCustomers int
		want           bool
	}{
		{"under limit", 50, 49, true},
		{"at limit", 50, 50, false},
		{"over limit", 50, 51, false},
		{"unlimited with zero usage", loyalty.Unlimited, 0, true},
		{"unlimited with huge usage", loyalty.Unlimited, 1_000_000, true},
		{"zero limit", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := &loyalty.Business{}
			b.Usage.MaxCustomers = tt.maxCustomers
			b.Stats.TotalCustomers = tt.totalCustomers
			assert.Equal(t, tt.want, loyalty.CanAddCustomer(b))
		})
	}
}

func TestCanAddStamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		max     int
		current int
		want    bool
	}{
		{"under limit", 500, 499, true},
		{"at limit", 500, 500, false},
		{"unlimited", loyalty.Unlimited, 123456, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := &loyalty.Business{}
			b.Usage.MaxMonthlyStamps = tt.max
			b.Usage.CurrentMonthStamps = tt.current
			assert.Equal(t, tt.want, loyalty.CanAddStamp(b))
		})
	}
}

func TestUsagePercentage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, loyalty.UsagePercentage(100, loyalty.Unlimited))
	assert.Equal(t, 0, loyalty.UsagePercentage(0, 500))
	assert.Equal(t, 50, loyalty.UsagePercentage(250, 500))
	assert.Equal(t, 80, loyalty.UsagePercentage(400, 500))
	assert.Equal(t, 100, loyalty.UsagePercentage(500, 500))
	assert.Equal(t, 100, loyalty.UsagePercentage(600, 500), "overshoot capped")
	assert.Equal(t, 33, loyalty.UsagePercentage(1, 3), "rounded, not truncated")
}

func TestIsApproachingLimit(t *testing.T) {
	t.Parallel()

	assert.False(t, loyalty.IsApproachingLimit(1_000_000, loyalty.Unlimited))
	assert.False(t, loyalty.IsApproachingLimit(399, 500))
	assert.True(t, loyalty.IsApproachingLimit(400, 500), "exactly 80%")
	assert.True(t, loyalty.IsApproachingLimit(500, 500))
}

func TestStampCountBounds(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	free := &loyalty.Business{Usage: loyalty.FreeUsage(now)}
	min, max := loyalty.StampCountBounds(free)
	assert.Equal(t, 10, min)
	assert.Equal(t, 10, max)

	pro := &loyalty.Business{Usage: loyalty.ProUsage(now)}
	min, max = loyalty.StampCountBounds(pro)
	assert.Equal(t, 3, min)
	assert.Equal(t, 50, max)
}

func TestShouldReset(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	u := loyalty.UsageLimits{MonthStartedAt: started}

	assert.False(t, u.ShouldReset(started.Add(29*24*time.Hour)))
	assert.True(t, u.ShouldReset(started.Add(30*24*time.Hour)), "exactly 30 days")
	assert.True(t, u.ShouldReset(started.Add(31*24*time.Hour)))
}

func TestResetMonth(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	u := loyalty.UsageLimits{CurrentMonthStamps: 500, MonthStartedAt: now.Add(-31 * 24 * time.Hour)}
	u.ResetMonth(now)

	assert.Equal(t, 0, u.CurrentMonthStamps)
	assert.Equal(t, now, u.MonthStartedAt)
}
