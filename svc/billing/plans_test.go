package billing_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stampkit/svc/billing"
	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

const plansYAML = `plans:
  - id: pro-monthly
    name: Pro
    description: Unlimited customers and stamps
    tier: pro
    price_ref: pri_pro_monthly
    amount: 900
    currency: USD
    interval: month
    public: true
  - id: pro-yearly
    name: Pro (yearly)
    tier: pro
    price_ref: pri_pro_yearly
    amount: 9000
    currency: USD
    interval: year
    public: true
  - id: legacy
    name: Legacy
    tier: pro
    price_ref: pri_legacy
    amount: 500
    currency: USD
    interval: month
    public: false
`

func writePlansFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("loads catalog", func(t *testing.T) {
		t.Parallel()
		src := billing.NewFileSource(writePlansFile(t, plansYAML))

		plans, err := src.Load(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 3)

		pro := plans["pro-monthly"]
		assert.Equal(t, "Pro", pro.Name)
		assert.Equal(t, loyalty.TierPro, pro.Tier)
		assert.Equal(t, "pri_pro_monthly", pro.PriceRef)
		assert.Equal(t, int64(900), pro.Amount)
		assert.True(t, pro.Public)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		src := billing.NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := src.Load(ctx)
		assert.ErrorIs(t, err, billing.ErrFailedToLoadPlans)
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()
		src := billing.NewFileSource(writePlansFile(t, "plans: []\n"))
		_, err := src.Load(ctx)
		assert.ErrorIs(t, err, billing.ErrNoPlansConfigured)
	})

	t.Run("plan without id", func(t *testing.T) {
		t.Parallel()
		src := billing.NewFileSource(writePlansFile(t, "plans:\n  - name: Broken\n"))
		_, err := src.Load(ctx)
		assert.ErrorIs(t, err, billing.ErrFailedToLoadPlans)
	})
}

func TestInMemSource(t *testing.T) {
	t.Parallel()

	t.Run("requires at least one plan", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { billing.NewInMemSource() })
	})

	t.Run("load returns a copy", func(t *testing.T) {
		t.Parallel()
		src := billing.NewInMemSource(billing.Plan{ID: "pro-monthly", Name: "Pro"})

		plans, err := src.Load(context.Background())
		require.NoError(t, err)
		plans["pro-monthly"] = billing.Plan{ID: "pro-monthly", Name: "Mutated"}

		again, err := src.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Pro", again["pro-monthly"].Name)
	})
}
