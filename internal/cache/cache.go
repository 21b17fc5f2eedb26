// Package cache stores rendered evaluation responses keyed by a hash of the
// request, in process memory or in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "rv:eval:"

// Cache is a string key/value cache. A miss, an expired entry and a backend
// failure all read as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Key hashes the JSON encoding of parts. Struct fields encode in declaration
// order and map keys sorted, so equal requests give equal keys.
func Key(parts ...interface{}) (string, error) {
	encoded, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	return fmt.Sprintf("%s%016x", KeyPrefix, xxhash.Sum64(encoded)), nil
}
