package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching serialized values
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key fingerprints a lookup. Parts are case-folded and whitespace-collapsed,
// so trivially different spellings of one query share an entry.
func Key(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.Join(strings.Fields(strings.ToLower(p)), " ")))
		h.Write([]byte{0})
	}
	return "trustie:v1:" + kind + ":" + hex.EncodeToString(h.Sum(nil))
}
