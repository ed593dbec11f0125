package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so a resubmitted
// request is not applied twice
type IdempotencyStore interface {
	// Claim reserves key for ttl. Returns false when the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a key whose request failed so the client can retry it
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a claimed key blocks resubmission
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

// ErrDuplicateRequest is returned when an idempotency key was already used
var ErrDuplicateRequest = NewDomainError("DUPLICATE_REQUEST", "This request has already been submitted")
