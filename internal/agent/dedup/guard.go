// Package dedup suppresses re-processing of activities already handled by this process.
package dedup

import "sync"

// DefaultCapacity is the number of ids remembered before the set is reset.
const DefaultCapacity = 1000

// Guard remembers recently seen activity ids. Once more than capacity ids are
// recorded the whole set is cleared, so very old duplicates may be reprocessed.
type Guard struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	capacity int
}

func NewGuard(capacity int) *Guard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Guard{
		seen:     make(map[string]struct{}, capacity+1),
		capacity: capacity,
	}
}

// ShouldProcess reports whether the activity should be handled and records its id.
// Activities without an id cannot be deduplicated and are always processed.
func (g *Guard) ShouldProcess(activityID string) bool {
	if activityID == "" {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[activityID]; ok {
		return false
	}
	g.seen[activityID] = struct{}{}
	if len(g.seen) > g.capacity {
		clear(g.seen)
	}
	return true
}

// Len returns the number of ids currently remembered.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
