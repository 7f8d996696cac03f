package authtoken

import (
	"sync"
	"time"
)

// Blacklist is a thread-safe in-memory set of revoked token IDs. Entries
// are kept until the token's natural expiry, after which Verify rejects the
// token anyway.
type Blacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewBlacklist creates an empty token blacklist.
func NewBlacklist() *Blacklist {
	return &Blacklist{
		entries: make(map[string]time.Time),
	}
}

// Revoke adds a token ID to the blacklist until tokenExpiresAt.
func (b *Blacklist) Revoke(tokenID string, tokenExpiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[tokenID] = tokenExpiresAt
}

// IsRevoked checks whether a token ID has been revoked.
func (b *Blacklist) IsRevoked(tokenID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.entries[tokenID]
	return exists
}

// Cleanup removes entries whose token has expired and returns how many
// were removed.
func (b *Blacklist) Cleanup(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for tokenID, expiresAt := range b.entries {
		if !now.Before(expiresAt) {
			delete(b.entries, tokenID)
			removed++
		}
	}
	return removed
}

// Len returns the current number of entries in the blacklist.
func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
