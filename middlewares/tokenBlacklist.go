package middlewares

import (
	"sync"
	"time"
)

// TokenBlacklist records tokens invalidated before their natural expiry
// (logout). Entries expire with the token itself, so the set stays bounded.
type TokenBlacklist interface {
	Add(token string, expiresAt time.Time)
	Contains(token string) bool
}

type memoryTokenBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryTokenBlacklist() TokenBlacklist {
	return &memoryTokenBlacklist{tokens: make(map[string]time.Time)}
}

func (b *memoryTokenBlacklist) Add(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for t, exp := range b.tokens {
		if now.After(exp) {
			delete(b.tokens, t)
		}
	}
	b.tokens[token] = expiresAt
}

func (b *memoryTokenBlacklist) Contains(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, exists := b.tokens[token]
	if !exists {
		return false
	}
	if time.Now().After(exp) {
		delete(b.tokens, token)
		return false
	}
	return true
}

// Blacklist is the process-wide token blacklist consulted by CheckAuth and
// written by the logout handler.
var Blacklist = NewMemoryTokenBlacklist()
