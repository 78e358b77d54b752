// Package feed implements client-side incremental message synchronization:
// an ordered in-memory cache, cursor-based backward pagination, optimistic
// sends with reconciliation, and scroll-anchored auto-follow.
package feed

import (
	"sort"

	"github.com/jaehyo/sodam/internal/model"
)

// Entry is one cached message plus its reconciliation state.
type Entry struct {
	Msg model.Message

	// Pending marks an optimistic entry whose write has not been confirmed.
	Pending bool

	// Failed marks an entry whose write failed. It is never presented as
	// confirmed; the user may retry or discard it.
	Failed bool
}

// Cache owns the set of messages currently known to the client, kept in
// non-decreasing time order regardless of arrival order.
//
// Merges de-duplicate by the store's row identity. Overlapping pages and the
// post-send invalidation refetch redeliver rows; a store without stable row
// IDs would redeliver them here as duplicates.
type Cache struct {
	entries []Entry
	ids     map[string]struct{}
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{ids: make(map[string]struct{})}
}

// Merge unions incoming confirmed messages into the cache and re-sorts.
func (c *Cache) Merge(incoming []model.Message) {
	for _, msg := range incoming {
		if msg.ID != "" {
			if _, ok := c.ids[msg.ID]; ok {
				continue
			}
			c.ids[msg.ID] = struct{}{}
		}
		c.entries = append(c.entries, Entry{Msg: msg})
	}
	c.sort()
}

// Append adds a single confirmed message and re-sorts.
func (c *Cache) Append(msg model.Message) {
	c.Merge([]model.Message{msg})
}

// AppendPending adds an optimistic entry for a message whose write is in
// flight and re-sorts.
func (c *Cache) AppendPending(msg model.Message) {
	if msg.ID != "" {
		c.ids[msg.ID] = struct{}{}
	}
	c.entries = append(c.entries, Entry{Msg: msg, Pending: true})
	c.sort()
}

// Confirm replaces the pending entry identified by localID with the
// authoritative message returned by the store.
func (c *Cache) Confirm(localID string, confirmed model.Message) {
	idx := c.index(localID)
	if idx < 0 {
		// The invalidation refetch may already have delivered the row.
		c.Merge([]model.Message{confirmed})
		return
	}
	delete(c.ids, localID)
	if _, ok := c.ids[confirmed.ID]; ok {
		// Refetch beat the confirmation; drop the pending duplicate.
		c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
		return
	}
	c.ids[confirmed.ID] = struct{}{}
	c.entries[idx] = Entry{Msg: confirmed}
	c.sort()
}

// MarkFailed flags the pending entry identified by localID as failed.
func (c *Cache) MarkFailed(localID string) {
	if idx := c.index(localID); idx >= 0 {
		c.entries[idx].Pending = false
		c.entries[idx].Failed = true
	}
}

// MarkPending re-flags a failed entry as in flight again, for retries.
func (c *Cache) MarkPending(localID string) {
	if idx := c.index(localID); idx >= 0 {
		c.entries[idx].Pending = true
		c.entries[idx].Failed = false
	}
}

// Remove drops the entry identified by id.
func (c *Cache) Remove(id string) {
	if idx := c.index(id); idx >= 0 {
		delete(c.ids, id)
		c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	}
}

// Entry returns the entry identified by id.
func (c *Cache) Entry(id string) (Entry, bool) {
	if idx := c.index(id); idx >= 0 {
		return c.entries[idx], true
	}
	return Entry{}, false
}

// Snapshot returns the current order for rendering. Pure read.
func (c *Cache) Snapshot() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.entries {
		if c.entries[i].Msg.ID == id {
			return i
		}
	}
	return -1
}

// sort keeps entries in non-decreasing time order; ties keep their original
// relative order. Zero times (unparsable stored timestamps) sort first.
func (c *Cache) sort() {
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].Msg.Time.Before(c.entries[j].Msg.Time)
	})
}
