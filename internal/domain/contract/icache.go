package contract

import (
	"context"
)

// ICache is a key-value side cache. An evicted or expired entry reads as a miss.
type ICache interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
