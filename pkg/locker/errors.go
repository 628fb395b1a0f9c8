package locker

import "errors"

var (
	ErrEmptyKey       = errors.New("lock key cannot be empty")
	ErrNotAcquired    = errors.New("failed to acquire lock")
	ErrInvalidTTL     = errors.New("lock TTL must be positive")
	ErrClientRequired = errors.New("redis client is required")
)
