// Package keypool manages a rotating pool of upstream API keys.
// The lookup API enforces a per-key daily quota, so calls round-robin
// across all configured keys to multiply the effective limit.
package keypool

import (
	"errors"
	"sync"
)

// Per-key daily quota advertised by the lookup API provider.
const estimatedDailyLimitPerKey = 500

// ErrEmpty is returned when the pool was constructed without keys.
var ErrEmpty = errors.New("keypool: no API keys configured")

// Pool is a thread-safe round-robin pool of API key strings. The cursor is
// owned by the pool; callers never see or share rotation state.
type Pool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// New creates a pool from the given keys, dropping empty entries.
func New(keys []string) (*Pool, error) {
	valid := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			valid = append(valid, k)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmpty
	}
	return &Pool{keys: valid}, nil
}

// Next returns the current key and advances the cursor modulo pool size.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := p.keys[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.keys)
	return key
}

// Size returns the number of keys in the pool.
func (p *Pool) Size() int {
	return len(p.keys)
}

// Stats is a snapshot of the pool state for the operator stats endpoint.
// Keys themselves are never included.
type Stats struct {
	TotalKeys           int `json:"total_keys"`
	NextKeyIndex        int `json:"next_key_index"`
	EstimatedDailyLimit int `json:"estimated_daily_limit"`
}

// Stats returns the current pool snapshot.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		TotalKeys:           len(p.keys),
		NextKeyIndex:        p.cursor,
		EstimatedDailyLimit: len(p.keys) * estimatedDailyLimitPerKey,
	}
}
