// Package overrides keeps short-lived UI edits for contacts and companies in
// memory. Edits layer on top of whatever the database views return, so the
// sales team can correct a record even when the upstream views lag behind.
package overrides

import (
	"sync"
	"time"
)

type entry struct {
	data      map[string]any
	expiresAt time.Time
}

// Store is a TTL-bound key/value store of deep-mergeable patches.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Store{
		ttl:     ttl,
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// Get returns a copy of the stored override, or nil when none exists or the
// entry expired.
func (s *Store) Get(key string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return cloneMap(e.data)
}

// Put deep-merges the patch into the existing override, resets the TTL, and
// returns the merged result.
func (s *Store) Put(key string, patch map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := map[string]any{}
	if e, ok := s.entries[key]; ok && !s.now().After(e.expiresAt) {
		current = e.data
	}
	merged := DeepMerge(current, patch)
	s.entries[key] = entry{data: merged, expiresAt: s.now().Add(s.ttl)}
	return cloneMap(merged)
}

// Apply lets the caller rewrite the whole override in one locked step, for
// edits that need more than a merge (such as prepending to a history list).
// fn receives a copy of the current data and returns the replacement.
func (s *Store) Apply(key string, fn func(current map[string]any) map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := map[string]any{}
	if e, ok := s.entries[key]; ok && !s.now().After(e.expiresAt) {
		current = cloneMap(e.data)
	}
	next := fn(current)
	s.entries[key] = entry{data: next, expiresAt: s.now().Add(s.ttl)}
	return cloneMap(next)
}

// MergeInto layers the stored override for key onto row and returns the
// result. The row itself is not modified.
func (s *Store) MergeInto(key string, row map[string]any) map[string]any {
	override := s.Get(key)
	if override == nil {
		return row
	}
	return DeepMerge(row, override)
}

// DeepMerge merges patch into base recursively: nested maps combine,
// everything else (including lists) is replaced by the patch value. Neither
// input is modified.
func DeepMerge(base, patch map[string]any) map[string]any {
	out := cloneMap(base)
	for key, patchVal := range patch {
		baseMap, baseIsMap := out[key].(map[string]any)
		patchMap, patchIsMap := patchVal.(map[string]any)
		if baseIsMap && patchIsMap {
			out[key] = DeepMerge(baseMap, patchMap)
			continue
		}
		out[key] = patchVal
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
