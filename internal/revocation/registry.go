package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// ErrTokenRevoked is distinct from a parse failure only for logging; the HTTP
// layer maps both to 401.
var ErrTokenRevoked = errors.New("token has been revoked")

// Registry tracks tokens that must be rejected before their natural expiry,
// keyed by a sha256 fingerprint of the raw token. It is the only shared
// mutable state in the auth core, so Add and Contains take the lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func New() *Registry {
	return &Registry{entries: make(map[string]time.Time)}
}

func (r *Registry) Add(token string, expiresAt time.Time) {
	fp := fingerprint(token)
	r.mu.Lock()
	r.entries[fp] = expiresAt
	r.mu.Unlock()
}

func (r *Registry) Contains(token string) bool {
	fp := fingerprint(token)
	r.mu.RLock()
	_, ok := r.entries[fp]
	r.mu.RUnlock()
	return ok
}

// Prune drops entries whose token has passed its natural expiry. An expired
// token fails parsing anyway, so pruning only bounds memory.
func (r *Registry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for fp, exp := range r.entries {
		if now.After(exp) {
			delete(r.entries, fp)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// PruneLoop runs Prune on a ticker until ctx is cancelled.
func (r *Registry) PruneLoop(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.Prune(now)
		}
	}
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
