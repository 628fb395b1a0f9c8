package billing

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

// Plan describes a purchasable subscription plan. PriceRef is the payment
// provider's price ID, used for checkout and matched against webhook events.
type Plan struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description,omitempty"`
	Tier        loyalty.Tier `yaml:"tier" json:"tier"`
	PriceRef    string       `yaml:"price_ref" json:"-"`
	Amount      int64        `yaml:"amount" json:"amount"` // smallest currency unit
	Currency    string       `yaml:"currency" json:"currency"`
	Interval    string       `yaml:"interval" json:"interval"` // month or year
	Public      bool         `yaml:"public" json:"-"`          // available for self-service signup
}

// PlanSource loads the plan catalog keyed by plan ID.
type PlanSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory PlanSource with a copy of the given
// plans. Panics when no plans are provided so the service always has at
// least one valid plan.
func NewInMemSource(plans ...Plan) PlanSource {
	if len(plans) < 1 {
		panic("billing: at least one plan is required")
	}
	plansCopy := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		plansCopy[plan.ID] = plan
	}
	return &inMemSource{plans: plansCopy}
}

// Load returns a copy of all available plans from memory.
func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.plans), nil
}

type fileSource struct {
	path string
}

// NewFileSource returns a PlanSource that reads a YAML catalog from disk on
// every Load, so plan edits take effect without a restart.
func NewFileSource(path string) PlanSource {
	return &fileSource{path: path}
}

// Load reads and validates the YAML plan catalog.
func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadPlans, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadPlans, err)
	}
	if len(doc.Plans) == 0 {
		return nil, ErrNoPlansConfigured
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, plan := range doc.Plans {
		if plan.ID == "" {
			return nil, fmt.Errorf("%w: plan without id", ErrFailedToLoadPlans)
		}
		plans[plan.ID] = plan
	}
	return plans, nil
}
