package feed

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jaehyo/sodam/internal/logging"
	"github.com/jaehyo/sodam/internal/model"
)

// DefaultPageSize is how many messages one history page holds.
const DefaultPageSize = 20

// Pager is the read side of the backing store. *db.MessageRepository
// satisfies it.
type Pager interface {
	// SelectPage retrieves [offset, offset+limit) of the newest-first ordering.
	SelectPage(ctx context.Context, offset, limit int) ([]model.Message, error)
}

// Page is one fetched slice of history, reversed to oldest-first so it can
// be merged directly into the cache.
type Page struct {
	Messages []model.Message

	// NextCursor identifies the next older page. Nil when the fetched page
	// came back short: no further history exists.
	NextCursor *int
}

// Fetcher retrieves ordered pages of historical messages using a monotonic
// page cursor.
type Fetcher struct {
	repo     Pager
	pageSize int
	logger   zerolog.Logger
}

// NewFetcher creates a Fetcher. pageSize <= 0 selects DefaultPageSize.
func NewFetcher(repo Pager, pageSize int) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Fetcher{
		repo:     repo,
		pageSize: pageSize,
		logger:   logging.Component("fetcher"),
	}
}

// PageSize returns the configured page size.
func (f *Fetcher) PageSize() int {
	return f.pageSize
}

// FetchPage retrieves the page at cursor. A page shorter than the page size
// carries a nil NextCursor.
//
// On a query failure FetchPage returns an empty final page alongside the
// error: history backfill degrades to "no more pages" (the view keeps
// moving), while the initial load can still surface the failure.
func (f *Fetcher) FetchPage(ctx context.Context, cursor int) (Page, error) {
	rows, err := f.repo.SelectPage(ctx, cursor*f.pageSize, f.pageSize)
	if err != nil {
		f.logger.Error().Err(err).Int("cursor", cursor).Msg("page fetch failed")
		return Page{}, err
	}

	// Pages arrive newest-first; the cache is kept oldest-first.
	reversed := make([]model.Message, len(rows))
	for i, msg := range rows {
		reversed[len(rows)-1-i] = msg
	}

	page := Page{Messages: reversed}
	if len(rows) == f.pageSize {
		next := cursor + 1
		page.NextCursor = &next
	}
	return page, nil
}
