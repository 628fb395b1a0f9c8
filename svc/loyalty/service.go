package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/stampkit/pkg/locker"
	"github.com/dmitrymomot/stampkit/pkg/memberid"
)

// StampCooldown is the minimum spacing between consecutive stamps on one
// card. There is no cooldown before the first stamp.
const StampCooldown = 15 * time.Minute

// lockTTL bounds how long a crashed request can keep a key locked.
const lockTTL = 10 * time.Second

// LogoStorage stores business logo images and returns a public URL.
type LogoStorage interface {
	SaveLogo(ctx context.Context, businessID string, data []byte, contentType string) (url string, err error)
}

// Service implements the stamp ledger and card lifecycle: it decides whether
// a scan may legally add a stamp, mutates the card and its owning business
// consistently, and appends audit records.
//
// Every operation takes the acting identity as an explicit parameter; the
// service never reads ambient "current user" state.
type Service struct {
	users      UserStore
	businesses BusinessStore
	cards      StampCardStore
	txlog      TransactionLog
	uow        UnitOfWork
	locks      locker.Locker
	notifier   UsageNotifier
	logos      LogoStorage
	log        *slog.Logger
	now        func() time.Time
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithUsageNotifier wires approaching-limit notifications.
func WithUsageNotifier(n UsageNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogoStorage wires blob storage for business logos.
func WithLogoStorage(ls LogoStorage) Option {
	return func(s *Service) { s.logos = ls }
}

// WithLogger sets the logger used for audit-append failures and other
// non-fatal conditions.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source. Tests use this to drive cooldown and
// rollover windows deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the loyalty service. Panics on nil required
// dependencies to fail fast during initialization.
func NewService(users UserStore, businesses BusinessStore, cards StampCardStore, txlog TransactionLog, uow UnitOfWork, locks locker.Locker, opts ...Option) *Service {
	if users == nil {
		panic("loyalty: UserStore is required")
	}
	if businesses == nil {
		panic("loyalty: BusinessStore is required")
	}
	if cards == nil {
		panic("loyalty: StampCardStore is required")
	}
	if txlog == nil {
		panic("loyalty: TransactionLog is required")
	}
	if uow == nil {
		panic("loyalty: UnitOfWork is required")
	}
	if locks == nil {
		panic("loyalty: Locker is required")
	}

	s := &Service{
		users:      users,
		businesses: businesses,
		cards:      cards,
		txlog:      txlog,
		uow:        uow,
		locks:      locks,
		log:        slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan is the full scan-event flow: validate the scanned member ID, resolve
// the customer, find or create their card for the business, and add one
// stamp issued by issuerID.
//
// Format validation happens before any lookup so malformed scanner input
// never reaches the datastore.
func (s *Service) Scan(ctx context.Context, memberID, businessID, issuerID string) (*StampCard, *StampResult, error) {
	if err := memberid.Validate(memberID); err != nil {
		return nil, nil, err
	}

	user, err := s.users.UserByMemberID(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}

	card, err := s.FindOrCreateCard(ctx, user.ID, businessID)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.AddStamp(ctx, card.ID, issuerID)
	if err != nil {
		return nil, nil, err
	}

	// Re-read so the caller sees the post-stamp card state.
	card, err = s.cards.CardByID(ctx, card.ID)
	if err != nil {
		return nil, nil, err
	}
	return card, res, nil
}

// FindOrCreateCard returns the customer's active (non-redeemed) card for the
// business, creating one if none exists. Creation checks the customer quota,
// snapshots the business's current card configuration, and bumps the
// business counters atomically with the card write.
//
// The whole operation is serialized per (user, business) pair so two
// concurrent first-scans produce exactly one card. The business document is
// additionally locked for the creation path, since its counters are shared
// with every other card of the business.
func (s *Service) FindOrCreateCard(ctx context.Context, userID, businessID string) (*StampCard, error) {
	release, err := s.locks.Acquire(ctx, "pair:"+userID+":"+businessID, lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	card, err := s.cards.ActiveCard(ctx, userID, businessID)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, ErrCardNotFound) {
		return nil, err
	}

	// Pair lock before business lock, everywhere. AddStamp and RedeemReward
	// order card before business the same way.
	releaseBusiness, err := s.locks.Acquire(ctx, "business:"+businessID, lockTTL)
	if err != nil {
		return nil, err
	}
	defer releaseBusiness()

	business, err := s.businesses.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !CanAddCustomer(business) {
		return nil, ErrCustomerLimitReached
	}

	now := s.now()
	card = &StampCard{
		ID:           uuid.New().String(),
		UserID:       userID,
		BusinessID:   businessID,
		BusinessName: business.Name,
		BusinessType: business.BusinessType,
		LogoURL:      business.LogoURL,
		TotalStamps:  business.StampCardConfig.TotalStamps,
		Reward:       business.StampCardConfig.Reward,
		Stamps:       []Stamp{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	prevCustomers := business.Stats.TotalCustomers
	business.Stats.ActiveCards++
	business.Stats.TotalCustomers++
	business.UpdatedAt = now

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.cards.SaveCard(ctx, card); err != nil {
			return err
		}
		return s.businesses.SaveBusiness(ctx, business)
	})
	if err != nil {
		return nil, fmt.Errorf("create stamp card: %w", err)
	}

	s.appendTransaction(ctx, &Transaction{
		Type:        TransactionCardCreated,
		CustomerID:  userID,
		BusinessID:  businessID,
		StampCardID: card.ID,
		Metadata:    map[string]any{"business_name": business.Name},
		Timestamp:   now,
	})

	s.notifyIfCrossed(ctx, business, "customers", prevCustomers, business.Stats.TotalCustomers, business.Usage.MaxCustomers)

	return card, nil
}

// AddStamp validates and applies a single stamp-issuance event. Checks run
// in order and the first failure wins: existence, finalized state, capacity,
// cooldown, monthly quota. The monthly rollover, when due, is persisted
// before the quota check and survives even if the stamp is then rejected.
//
// On success the stamp append, card counters and business counters are
// written atomically.
func (s *Service) AddStamp(ctx context.Context, cardID, issuerID string) (*StampResult, error) {
	release, err := s.locks.Acquire(ctx, "card:"+cardID, lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	card, err := s.cards.CardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.IsCompleted || card.IsRedeemed {
		return nil, ErrCardFinalized
	}
	if card.CurrentStamps >= card.TotalStamps {
		return nil, ErrCardFull
	}

	now := s.now()
	if last := card.LastStampedAt(); !last.IsZero() && now.Sub(last) < StampCooldown {
		return nil, ErrStampCooldown
	}

	// The business counters are shared across all cards of the business, so
	// the read-modify-write below needs the business lock, not just the card
	// lock. Card before business, matching FindOrCreateCard and RedeemReward.
	releaseBusiness, err := s.locks.Acquire(ctx, "business:"+card.BusinessID, lockTTL)
	if err != nil {
		return nil, err
	}
	defer releaseBusiness()

	business, err := s.businesses.BusinessByID(ctx, card.BusinessID)
	if err != nil {
		return nil, err
	}

	// The window reset is real state, not a side effect of this stamp:
	// persist it immediately so a rejected stamp still starts the new month.
	if business.Usage.ShouldReset(now) {
		business.Usage.ResetMonth(now)
		business.UpdatedAt = now
		if err := s.businesses.SaveBusiness(ctx, business); err != nil {
			return nil, fmt.Errorf("reset monthly usage: %w", err)
		}
	}

	if !CanAddStamp(business) {
		return nil, ErrMonthlyStampLimit
	}

	card.Stamps = append(card.Stamps, Stamp{StampedAt: now, StampedBy: issuerID})
	card.CurrentStamps++
	card.UpdatedAt = now
	completed := card.CurrentStamps == card.TotalStamps
	if completed {
		card.IsCompleted = true
		card.CompletedAt = &now
	}

	prevStamps := business.Usage.CurrentMonthStamps
	business.Stats.TotalStampsIssued++
	business.Usage.CurrentMonthStamps++
	business.UpdatedAt = now

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.cards.SaveCard(ctx, card); err != nil {
			return err
		}
		return s.businesses.SaveBusiness(ctx, business)
	})
	if err != nil {
		return nil, fmt.Errorf("add stamp: %w", err)
	}

	s.appendTransaction(ctx, &Transaction{
		Type:        TransactionStampAdded,
		CustomerID:  card.UserID,
		BusinessID:  card.BusinessID,
		StampCardID: card.ID,
		Metadata: map[string]any{
			"stamp_number": card.CurrentStamps,
			"is_completed": completed,
		},
		Timestamp: now,
	})

	s.notifyIfCrossed(ctx, business, "monthly_stamps", prevStamps, business.Usage.CurrentMonthStamps, business.Usage.MaxMonthlyStamps)

	return &StampResult{StampCount: card.CurrentStamps, Completed: completed}, nil
}

// RedeemReward finalizes a completed card. Redemption is terminal: the card
// becomes immutable and stops counting as an active card for the business.
func (s *Service) RedeemReward(ctx context.Context, cardID, issuerID string) error {
	release, err := s.locks.Acquire(ctx, "card:"+cardID, lockTTL)
	if err != nil {
		return err
	}
	defer release()

	card, err := s.cards.CardByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.IsRedeemed {
		return ErrCardFinalized
	}
	if !card.IsCompleted {
		return ErrCardNotReady
	}

	releaseBusiness, err := s.locks.Acquire(ctx, "business:"+card.BusinessID, lockTTL)
	if err != nil {
		return err
	}
	defer releaseBusiness()

	business, err := s.businesses.BusinessByID(ctx, card.BusinessID)
	if err != nil {
		return err
	}

	now := s.now()
	card.IsRedeemed = true
	card.RedeemedAt = &now
	card.UpdatedAt = now

	if business.Stats.ActiveCards > 0 {
		business.Stats.ActiveCards--
	}
	business.UpdatedAt = now

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.cards.SaveCard(ctx, card); err != nil {
			return err
		}
		return s.businesses.SaveBusiness(ctx, business)
	})
	if err != nil {
		return fmt.Errorf("redeem reward: %w", err)
	}

	s.appendTransaction(ctx, &Transaction{
		Type:        TransactionRewardRedeemed,
		CustomerID:  card.UserID,
		BusinessID:  card.BusinessID,
		StampCardID: card.ID,
		Metadata:    map[string]any{"reward": card.Reward, "redeemed_by": issuerID},
		Timestamp:   now,
	})

	return nil
}

// appendTransaction writes an audit record, logging and swallowing any
// failure: the ledger's correctness never depends on the audit trail.
func (s *Service) appendTransaction(ctx context.Context, tx *Transaction) {
	tx.ID = uuid.New().String()
	if err := s.txlog.Append(ctx, tx); err != nil {
		s.log.ErrorContext(ctx, "failed to append transaction",
			slog.String("type", string(tx.Type)),
			slog.String("business_id", tx.BusinessID),
			slog.Any("error", err),
		)
	}
}

// notifyIfCrossed fires the usage notifier when this operation moved usage
// across the approaching-limit threshold, so owners get nudged once per
// crossing rather than on every subsequent event.
func (s *Service) notifyIfCrossed(ctx context.Context, business *Business, resource string, prev, current, max int) {
	if s.notifier == nil {
		return
	}
	if !IsApproachingLimit(prev, max) && IsApproachingLimit(current, max) {
		s.notifier.NotifyApproachingLimit(ctx, business, resource, current, max)
	}
}
