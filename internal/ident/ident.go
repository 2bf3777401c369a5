// Package ident produces the small identity values used across the
// module: provenance timestamps and per-delivery nonces.
package ident

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the compact UTC form recorded in provenance stamps.
const TimestampLayout = "20060102-150405"

// Timestamp returns the current UTC time in TimestampLayout.
func Timestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// Nonce returns a unique id for one event delivery.
func Nonce() string {
	return uuid.NewString()
}
