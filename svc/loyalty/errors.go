package loyalty

import "errors"

var (
	ErrCardNotFound     = errors.New("stamp card not found")
	ErrBusinessNotFound = errors.New("business not found")
	ErrCustomerNotFound = errors.New("customer not found")

	ErrCardFinalized = errors.New("stamp card already completed or redeemed")
	ErrCardFull      = errors.New("stamp card is already full")
	ErrCardNotReady  = errors.New("stamp card is not completed yet")
	ErrStampCooldown = errors.New("cooldown between stamps has not elapsed")

	// Quota errors carry upgrade intent: the caller is expected to surface
	// them as upgrade prompts rather than generic failures.
	ErrCustomerLimitReached = errors.New("customer limit reached for current plan")
	ErrMonthlyStampLimit    = errors.New("monthly stamp limit reached for current plan")
	ErrLogoNotAllowed       = errors.New("logo upload not available on current plan")
	ErrStampCountOutOfRange = errors.New("stamp count outside allowed range for current plan")
)

// IsQuotaError reports whether err is one of the plan-limit errors that the
// UI should present as an upgrade prompt.
func IsQuotaError(err error) bool {
	return errors.Is(err, ErrCustomerLimitReached) ||
		errors.Is(err, ErrMonthlyStampLimit) ||
		errors.Is(err, ErrLogoNotAllowed) ||
		errors.Is(err, ErrStampCountOutOfRange)
}
