// Package otp provides an expiring store for one-time passwords keyed by
// phone number. Codes are stored hashed and are single use: a successful
// verification consumes the entry.
package otp

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live code exists for the phone number,
// either because none was requested or because it expired.
var ErrNotFound = errors.New("no active otp for this phone number")

// Store is an expiring key-value store for hashed OTPs. Implementations
// must evict entries once their TTL passes.
type Store interface {
	// Set stores the hashed code for the phone number, replacing any
	// previous one, with the given time to live.
	Set(ctx context.Context, phone, hashedCode string, ttl time.Duration) error

	// Get returns the hashed code for the phone number, or ErrNotFound.
	Get(ctx context.Context, phone string) (string, error)

	// Delete removes the entry for the phone number, if any.
	Delete(ctx context.Context, phone string) error

	// Close releases any resources held by the store.
	Close() error
}
