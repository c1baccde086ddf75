package contract

import (
	"context"
	"time"
)

// SessionStore persists session state as scoped key->string entries
// ("session:<id>:token", "session:<id>:last_activity", ...). The flat layout
// is deliberate: every field of a session is cleared together on logout or
// expiry, and leftovers are observable as residual keys. The session service
// owns the key naming exclusively.
type SessionStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ("", false, nil) for a missing or expired key.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// Keys lists the live keys under prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
