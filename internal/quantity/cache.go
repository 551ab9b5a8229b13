package quantity

import (
	"sync"
	"time"

	"github.com/mealvoice/mealvoice/internal/model"
)

type cacheEntry struct {
	candidates []model.FoodCandidate
	expiry     time.Time
}

// detectionCache memoizes detection results per transcript hash so an
// immediate re-extraction of the same recording skips the backend call.
type detectionCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newDetectionCache(ttl time.Duration) *detectionCache {
	return &detectionCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *detectionCache) get(key string) ([]model.FoodCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiry) {
		delete(c.entries, key)
		return nil, false
	}

	return cloneCandidates(entry.candidates), true
}

func (c *detectionCache) set(key string, candidates []model.FoodCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		candidates: cloneCandidates(candidates),
		expiry:     time.Now().Add(c.ttl),
	}
}

// cloneCandidates deep-copies the slices and pointers inside each candidate so
// callers mutating a returned value cannot poison the cached copy.
func cloneCandidates(candidates []model.FoodCandidate) []model.FoodCandidate {
	out := make([]model.FoodCandidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Assumptions = append([]string(nil), out[i].Assumptions...)
		out[i].QuantityConfidence = clonePtr(out[i].QuantityConfidence)
		out[i].MethodConfidence = clonePtr(out[i].MethodConfidence)
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
