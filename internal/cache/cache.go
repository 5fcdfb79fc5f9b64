package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL is how long a cached payload stays servable.
const DefaultTTL = 15 * time.Minute

// Store is a TTL key/JSON-value store. Get returns the raw payload if present
// and not expired; a miss and an expired entry are indistinguishable to the
// caller. Set stores any JSON-serializable payload. Implementations must never
// let a storage failure escalate past an error return: the service layer
// treats read errors as misses and write errors as ignorable.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, payload any) error
}
