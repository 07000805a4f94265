package locker

import (
	"fmt"
	"hash/fnv"
)

// KeyID maps a lock key to the bigint namespace of the store's advisory
// lock primitive. FNV-64a is computed client-side so key derivation stays
// independent of the store.
func KeyID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

// UserKey builds a per-user lock key, e.g. gacha_42.
func UserKey(prefix string, userID int64) string {
	return fmt.Sprintf("%s_%d", prefix, userID)
}

// PairKey builds a canonical key for a two-party operation. The ids are
// sorted first, so both argument orders contend for the identical lock.
// A single lock per unordered pair is the deadlock-avoidance rule: never
// acquire two ordered per-user locks in sequence.
func PairKey(prefix string, a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s_%d_%d", prefix, a, b)
}
