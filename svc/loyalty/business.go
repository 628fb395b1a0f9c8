package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/stampkit/pkg/memberid"
)

// CreateUserParams are the inputs for account creation.
type CreateUserParams struct {
	Email       string
	DisplayName string
	UserType    UserType
}

// CreateUser creates an account. Customers get a freshly generated member ID
// for their QR badge; business owners do not carry one.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	now := s.now()
	user := &User{
		ID:          uuid.New().String(),
		Email:       params.Email,
		DisplayName: params.DisplayName,
		UserType:    params.UserType,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if params.UserType == UserTypeCustomer {
		user.MemberID = memberid.New(now)
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreateBusinessParams are the inputs for business onboarding.
type CreateBusinessParams struct {
	OwnerID      string
	Name         string
	BusinessType string
	Email        string
	Config       *StampCardConfig // optional; defaults applied when nil
}

// CreateBusiness onboards a business with free-tier defaults: empty stats,
// free quota table and a 10-stamp default card.
func (s *Service) CreateBusiness(ctx context.Context, params CreateBusinessParams) (*Business, error) {
	now := s.now()

	cfg := StampCardConfig{TotalStamps: 10, Reward: "Free Item"}
	if params.Config != nil {
		cfg = *params.Config
	}

	business := &Business{
		ID:              uuid.New().String(),
		OwnerID:         params.OwnerID,
		Name:            params.Name,
		BusinessType:    params.BusinessType,
		Email:           params.Email,
		StampCardConfig: cfg,
		Subscription:    DefaultSubscription(),
		Usage:           FreeUsage(now),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if min, max := StampCountBounds(business); cfg.TotalStamps < min || cfg.TotalStamps > max {
		return nil, fmt.Errorf("%w: %d stamps, allowed %d-%d", ErrStampCountOutOfRange, cfg.TotalStamps, min, max)
	}

	if err := s.businesses.SaveBusiness(ctx, business); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	return business, nil
}

// UpdateStampCardConfig changes the card template for future cards. The new
// stamp count must sit inside the tier's allowed range. Cards already issued
// keep their creation-time snapshot and are not touched.
func (s *Service) UpdateStampCardConfig(ctx context.Context, businessID string, cfg StampCardConfig) (*Business, error) {
	business, err := s.businesses.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if min, max := StampCountBounds(business); cfg.TotalStamps < min || cfg.TotalStamps > max {
		return nil, fmt.Errorf("%w: %d stamps, allowed %d-%d", ErrStampCountOutOfRange, cfg.TotalStamps, min, max)
	}

	business.StampCardConfig = cfg
	business.UpdatedAt = s.now()
	if err := s.businesses.SaveBusiness(ctx, business); err != nil {
		return nil, fmt.Errorf("update stamp card config: %w", err)
	}
	return business, nil
}

// UploadLogo stores a logo image for the business and records its public
// URL. Gated by the tier's CanUploadLogo flag.
func (s *Service) UploadLogo(ctx context.Context, businessID string, data []byte, contentType string) (string, error) {
	business, err := s.businesses.BusinessByID(ctx, businessID)
	if err != nil {
		return "", err
	}
	if !business.Usage.CanUploadLogo {
		return "", ErrLogoNotAllowed
	}
	if s.logos == nil {
		return "", fmt.Errorf("logo storage is not configured")
	}

	url, err := s.logos.SaveLogo(ctx, businessID, data, contentType)
	if err != nil {
		return "", fmt.Errorf("upload logo: %w", err)
	}

	business.LogoURL = url
	business.UpdatedAt = s.now()
	if err := s.businesses.SaveBusiness(ctx, business); err != nil {
		return "", fmt.Errorf("save logo url: %w", err)
	}
	return url, nil
}

// CustomerByMemberID resolves a customer from a scanned member ID, applying
// format validation before the lookup.
func (s *Service) CustomerByMemberID(ctx context.Context, memberID string) (*User, error) {
	if err := memberid.Validate(memberID); err != nil {
		return nil, err
	}
	return s.users.UserByMemberID(ctx, memberID)
}

// RecentActivity returns the business's newest audit records, capped at the
// tier's activity feed allowance.
func (s *Service) RecentActivity(ctx context.Context, businessID string) ([]Transaction, error) {
	business, err := s.businesses.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return s.txlog.RecentByBusiness(ctx, businessID, business.Usage.MaxActivityFeedItems)
}
