// Package memberid generates and validates customer member identifiers.
//
// A member ID has the fixed format "RC-YYYY-NNNNNN": the literal RC prefix,
// a 4-digit issue year and a 6-digit number. The ID is printed on the
// customer's QR badge and is the only identifier a business ever scans, so
// malformed input must be rejected before any datastore lookup happens.
package memberid

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidFormat is returned when a string does not match RC-YYYY-NNNNNN.
var ErrInvalidFormat = errors.New("invalid member ID format")

var memberIDPattern = regexp.MustCompile(`^RC-(\d{4})-(\d{6})$`)

// New generates a member ID for the given issue time.
// The 6-digit part is random with a non-zero leading digit, matching the
// historical ID space so old and new IDs are indistinguishable.
func New(now time.Time) string {
	n := 100000 + rand.IntN(900000)
	return fmt.Sprintf("RC-%04d-%06d", now.Year(), n)
}

// Validate reports whether id is a well-formed member ID.
// Returns ErrInvalidFormat wrapped with the offending value on failure.
func Validate(id string) error {
	if !memberIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, id)
	}
	return nil
}

// Year extracts the issue year from a member ID.
func Year(id string) (int, error) {
	m := memberIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, id)
	}
	return strconv.Atoi(m[1])
}
