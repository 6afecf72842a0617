// Package ids allocates short per-block identifiers which are unique within
// an editing session.
package ids

import (
	"maps"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// MaxAttempts limits number of identifiers tried for a single instance.
const MaxAttempts = 10

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// InstanceKey is a framework level identity of a block instance (client id).
type InstanceKey string

// Allocator keeps identifier ownership for a single editing session. Entries
// are never removed, stale ones are harmless since collisions are resolved by
// generating another identifier.
// NOTE: not to be used concurrently!
type Allocator struct {
	owners map[string]InstanceKey
	log    *zap.Logger
}

// NewAllocator creates allocator seeded with initial ownership (may be nil).
func NewAllocator(log *zap.Logger, initial map[string]InstanceKey) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	owners := make(map[string]InstanceKey, len(initial))
	maps.Copy(owners, initial)
	return &Allocator{owners: owners, log: log.Named("ids")}
}

// Allocate returns identifier for the instance. Existing identifier is kept
// unless it belongs to another instance, otherwise a new one is derived from
// the instance key. When every attempt collides the last one is returned
// anyway and its ownership is left untouched.
func (a *Allocator) Allocate(existing string, key InstanceKey) string {
	if existing != "" && a.available(existing, key) {
		a.owners[existing] = key
		return existing
	}

	var id string
	for attempt := range MaxAttempts {
		id = Hash(key, attempt)
		if a.available(id, key) {
			a.owners[id] = key
			if existing != "" {
				a.log.Debug("Identifier reassigned", zap.String("was", existing), zap.String("now", id), zap.String("instance", string(key)))
			}
			return id
		}
	}

	a.log.Warn("Unable to allocate unique identifier, using colliding one",
		zap.String("id", id),
		zap.String("instance", string(key)),
		zap.String("owner", string(a.owners[id])),
		zap.Int("attempts", MaxAttempts))
	return id
}

func (a *Allocator) available(id string, key InstanceKey) bool {
	owner, ok := a.owners[id]
	return !ok || owner == key
}

// Owner returns instance which owns identifier.
func (a *Allocator) Owner(id string) (InstanceKey, bool) {
	owner, ok := a.owners[id]
	return owner, ok
}

// Len returns number of recorded identifiers.
func (a *Allocator) Len() int {
	return len(a.owners)
}

// Snapshot returns copy of current ownership, suitable to seed another
// allocator.
func (a *Allocator) Snapshot() map[string]InstanceKey {
	return maps.Clone(a.owners)
}

// Hash derives short identifier from the instance key. Every attempt salts the
// key differently so retries produce different values.
func Hash(key InstanceKey, attempt int) string {
	s := string(key)
	if attempt > 0 {
		s += "#" + strconv.Itoa(attempt)
	}
	h := xxhash.Sum64String(s)
	return encode(uint32(h ^ h>>32))
}

// encode returns base62 representation of n.
func encode(n uint32) string {
	if n == 0 {
		return alphabet[:1]
	}
	var buf [6]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = alphabet[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// ClassName derives block CSS class from block type name and identifier:
// "ghostkit/button" and "x1" give "ghostkit-button-x1".
func ClassName(blockType, id string) string {
	return strings.ReplaceAll(blockType, "/", "-") + "-" + id
}
