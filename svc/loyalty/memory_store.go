package loyalty

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var errAppendFailed = errors.New("transaction log unavailable")

// MemoryStore is an in-memory implementation of all loyalty persistence
// interfaces (UserStore, BusinessStore, StampCardStore, TransactionLog,
// UnitOfWork). It backs tests and local development; documents are copied
// on the way in and out so callers can never mutate stored state.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]User
	businesses   map[string]Business
	cards        map[string]StampCard
	transactions []Transaction

	// FailTransactions makes Append return an error, for exercising the
	// best-effort audit path in tests.
	FailTransactions bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]User),
		businesses: make(map[string]Business),
		cards:      make(map[string]StampCard),
	}
}

func (m *MemoryStore) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UserByMemberID(ctx context.Context, memberID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.MemberID == memberID {
			user := u
			return &user, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (m *MemoryStore) SaveUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) BusinessByID(ctx context.Context, id string) (*Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.businesses[id]
	if !ok {
		return nil, ErrBusinessNotFound
	}
	return &b, nil
}

func (m *MemoryStore) BusinessByBillingCustomerRef(ctx context.Context, ref string) (*Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.businesses {
		if b.Subscription.BillingCustomerRef == ref {
			business := b
			return &business, nil
		}
	}
	return nil, ErrBusinessNotFound
}

func (m *MemoryStore) SaveBusiness(ctx context.Context, business *Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.businesses[business.ID] = *business
	return nil
}

func (m *MemoryStore) CardByID(ctx context.Context, id string) (*StampCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	c.Stamps = slices.Clone(c.Stamps)
	return &c, nil
}

func (m *MemoryStore) ActiveCard(ctx context.Context, userID, businessID string) (*StampCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cards {
		if c.UserID == userID && c.BusinessID == businessID && !c.IsRedeemed {
			card := c
			card.Stamps = slices.Clone(c.Stamps)
			return &card, nil
		}
	}
	return nil, ErrCardNotFound
}

func (m *MemoryStore) SaveCard(ctx context.Context, card *StampCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *card
	stored.Stamps = slices.Clone(card.Stamps)
	m.cards[card.ID] = stored
	return nil
}

func (m *MemoryStore) Append(ctx context.Context, tx *Transaction) error {
	if m.FailTransactions {
		return errAppendFailed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *MemoryStore) RecentByBusiness(ctx context.Context, businessID string, limit int) ([]Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].BusinessID == businessID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

// TransactionCount reports the number of appended audit records.
func (m *MemoryStore) TransactionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// WithinTransaction applies writes immediately. Operations are already
// serialized by the service's per-key locks, so the transactional guarantee
// collapses to simple sequencing in memory.
func (m *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
