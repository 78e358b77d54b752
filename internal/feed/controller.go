package feed

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jaehyo/sodam/internal/logging"
	"github.com/jaehyo/sodam/internal/model"
	"github.com/jaehyo/sodam/internal/timefmt"
)

// State identifies where the controller is in its lifecycle.
type State string

// Controller states.
const (
	StateIdle           State = "idle"
	StateLoadingInitial State = "loading-initial"
	StateReady          State = "ready"
	StateLoadingMore    State = "loading-more"
	StateSending        State = "sending"
	StateSendFailed     State = "send-failed"
)

// Inserter is the write side of the backing store. *db.MessageRepository
// satisfies it.
type Inserter interface {
	Insert(ctx context.Context, text, storedTime string) (model.Message, error)
}

// fetchKind distinguishes what a fetch result feeds.
type fetchKind int

const (
	fetchInitial fetchKind = iota
	fetchMore
	fetchRefresh
)

// FetchJob is a pending page fetch. The caller runs Run (typically off the
// event loop) and hands the result back to ApplyFetch.
type FetchJob struct {
	Cursor int
	Run    func(ctx context.Context) FetchResult
}

// FetchResult is the outcome of one page fetch.
type FetchResult struct {
	kind   fetchKind
	Cursor int
	Page   Page
	Err    error
}

// Pagination reports whether this result feeds a backward-pagination fetch,
// which prepends rows above everything already loaded.
func (r FetchResult) Pagination() bool {
	return r.kind == fetchMore
}

// SendJob is a pending write-through. The caller runs Run and hands the
// result back to ApplySend.
type SendJob struct {
	LocalID string
	Run     func(ctx context.Context) SendResult
}

// SendResult is the outcome of one write-through.
type SendResult struct {
	LocalID string
	Msg     model.Message
	Err     error
}

// Controller orchestrates the fetcher and the cache: initial load, backward
// pagination near the top, optimistic insert-then-reconcile on send, and
// invalidation after a successful write.
//
// All methods are meant for a single event loop; suspension happens only
// inside job Run functions. Results are merged in arrival order and the
// cache re-sorts, so final order does not depend on completion order.
type Controller struct {
	cache   *Cache
	fetcher *Fetcher
	writer  Inserter
	codec   timefmt.Codec
	logger  zerolog.Logger

	state      State
	nextCursor *int

	inflight        *int // pagination cursor currently being fetched
	refreshInflight bool
	closed          bool

	forceBottom bool
	loadErr     error
	sendErr     error
}

// NewController creates a Controller over the given collaborators.
func NewController(cache *Cache, fetcher *Fetcher, writer Inserter, codec timefmt.Codec) *Controller {
	return &Controller{
		cache:   cache,
		fetcher: fetcher,
		writer:  writer,
		codec:   codec,
		logger:  logging.Component("sync"),
		state:   StateIdle,
	}
}

// State returns the current controller state.
func (c *Controller) State() State {
	return c.state
}

// LoadError returns the error of a failed initial load, if any.
func (c *Controller) LoadError() error {
	return c.loadErr
}

// SendError returns the error of the most recent failed send, if any.
func (c *Controller) SendError() error {
	return c.sendErr
}

// HasMore reports whether older history pages remain.
func (c *Controller) HasMore() bool {
	return c.nextCursor != nil
}

// LoadInitial starts the initial load of the newest page. Nil unless the
// controller is idle.
func (c *Controller) LoadInitial() *FetchJob {
	if c.state != StateIdle || c.closed {
		return nil
	}
	c.state = StateLoadingInitial
	c.loadErr = nil
	return c.fetchJob(0, fetchInitial)
}

// LoadMoreIfNeeded starts a fetch of the next older page when the view is
// near the top, a next cursor exists, and no pagination fetch is in flight.
// Idempotent under rapid repeated scroll events: at most one in-flight fetch
// per cursor value.
func (c *Controller) LoadMoreIfNeeded(s ScrollState) *FetchJob {
	if !s.IsNearTop || c.closed {
		return nil
	}
	if c.state != StateReady || c.nextCursor == nil || c.inflight != nil {
		return nil
	}
	cursor := *c.nextCursor
	c.state = StateLoadingMore
	return c.fetchJob(cursor, fetchMore)
}

// Refresh starts an invalidation refetch of the newest page. Nil while one
// is already in flight or a load is running. A failed send does not block
// refreshes: foreign writes keep arriving while the failed entry waits for
// retry or discard.
func (c *Controller) Refresh() *FetchJob {
	if (c.state != StateReady && c.state != StateSendFailed) || c.refreshInflight || c.closed {
		return nil
	}
	c.refreshInflight = true
	return c.fetchJob(0, fetchRefresh)
}

func (c *Controller) fetchJob(cursor int, kind fetchKind) *FetchJob {
	if kind == fetchInitial || kind == fetchMore {
		cur := cursor
		c.inflight = &cur
	}
	return &FetchJob{
		Cursor: cursor,
		Run: func(ctx context.Context) FetchResult {
			page, err := c.fetcher.FetchPage(ctx, cursor)
			return FetchResult{kind: kind, Cursor: cursor, Page: page, Err: err}
		},
	}
}

// ApplyFetch merges a fetch result. Results arriving after Close are
// ignored rather than applied.
func (c *Controller) ApplyFetch(res FetchResult) {
	if c.closed {
		return
	}

	switch res.kind {
	case fetchInitial:
		c.inflight = nil
		if res.Err != nil {
			// Losing the first page would show an empty room as if it
			// were real; surface instead of degrading.
			c.loadErr = res.Err
			c.state = StateIdle
			return
		}
		c.cache.Merge(res.Page.Messages)
		c.nextCursor = res.Page.NextCursor
		c.state = StateReady
		c.forceBottom = true

	case fetchMore:
		c.inflight = nil
		c.state = StateReady
		if res.Err != nil {
			// History backfill degrades to "no more pages"; the view
			// keeps moving at the cost of truncated history.
			c.nextCursor = nil
			return
		}
		c.cache.Merge(res.Page.Messages)
		c.nextCursor = res.Page.NextCursor

	case fetchRefresh:
		c.refreshInflight = false
		if res.Err != nil {
			return
		}
		// Cursor progression is untouched: a refresh re-reads the page
		// pagination already consumed.
		c.cache.Merge(res.Page.Messages)
	}
}

// ConsumeForceBottom reports, exactly once per initial load, that the view
// should force-scroll to the bottom.
func (c *Controller) ConsumeForceBottom() bool {
	if !c.forceBottom {
		return false
	}
	c.forceBottom = false
	return true
}

// Send stamps text with the current instant, merges a pending entry so the
// sender sees it immediately, and returns the write-through job. Nil when
// text is blank after trimming or the controller cannot send.
func (c *Controller) Send(text string, now time.Time) *SendJob {
	if strings.TrimSpace(text) == "" || c.closed {
		return nil
	}
	if c.state != StateReady && c.state != StateSendFailed {
		return nil
	}

	localID := "local-" + uuid.New().String()
	c.cache.AppendPending(model.Message{ID: localID, Text: text, Time: now})
	c.state = StateSending
	return c.sendJob(localID, text, c.codec.Encode(now))
}

// RetrySend re-issues the write for a failed entry. Nil if the entry is
// unknown or not failed.
func (c *Controller) RetrySend(localID string) *SendJob {
	if c.closed || (c.state != StateReady && c.state != StateSendFailed) {
		return nil
	}
	entry, ok := c.cache.Entry(localID)
	if !ok || !entry.Failed {
		return nil
	}
	c.cache.MarkPending(localID)
	c.state = StateSending
	return c.sendJob(localID, entry.Msg.Text, c.codec.Encode(entry.Msg.Time))
}

// DiscardFailed drops a failed entry without retrying it.
func (c *Controller) DiscardFailed(localID string) {
	entry, ok := c.cache.Entry(localID)
	if !ok || !entry.Failed {
		return
	}
	c.cache.Remove(localID)
	if c.state == StateSendFailed {
		c.state = StateReady
		c.sendErr = nil
	}
}

func (c *Controller) sendJob(localID, text, storedTime string) *SendJob {
	return &SendJob{
		LocalID: localID,
		Run: func(ctx context.Context) SendResult {
			msg, err := c.writer.Insert(ctx, text, storedTime)
			return SendResult{LocalID: localID, Msg: msg, Err: err}
		},
	}
}

// ApplySend reconciles a write-through result. On success the pending entry
// is confirmed with the store's identity and an invalidation refetch job is
// returned (the store of record is authoritative). On failure the pending
// entry is marked failed and the error kept for the view; it is never
// presented as confirmed. Results arriving after Close are ignored.
func (c *Controller) ApplySend(res SendResult) *FetchJob {
	if c.closed {
		return nil
	}

	if res.Err != nil {
		c.logger.Error().Err(res.Err).Str("local_id", res.LocalID).Msg("send failed")
		c.cache.MarkFailed(res.LocalID)
		c.sendErr = res.Err
		c.state = StateSendFailed
		return nil
	}

	c.cache.Confirm(res.LocalID, res.Msg)
	c.sendErr = nil
	c.state = StateReady
	return c.Refresh()
}

// Close tears the controller down. Any job result arriving afterwards is
// ignored.
func (c *Controller) Close() {
	c.closed = true
}
