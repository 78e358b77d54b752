package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jaehyo/sodam/internal/feed"
	"github.com/jaehyo/sodam/internal/model"
	"github.com/jaehyo/sodam/internal/timefmt"
	"github.com/jaehyo/sodam/internal/tui/prefs"
)

// memStore is an in-process backing store: newest-first rows, insert prepends.
type memStore struct {
	rows      []model.Message
	insertErr error
}

func (s *memStore) SelectPage(_ context.Context, offset, limit int) ([]model.Message, error) {
	if offset >= len(s.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func (s *memStore) Insert(_ context.Context, text, storedTime string) (model.Message, error) {
	if s.insertErr != nil {
		return model.Message{}, s.insertErr
	}
	when, err := timefmt.New().Decode(storedTime)
	if err != nil {
		return model.Message{}, err
	}
	msg := model.Message{ID: "row-" + text, Text: text, Time: when}
	s.rows = append([]model.Message{msg}, s.rows...)
	return msg, nil
}

// seededStore backdates rows from the current instant so messages sent with
// time.Now() during a test always sort after the seeds.
func seededStore(n int) *memStore {
	base := time.Now().Add(-time.Hour)
	rows := make([]model.Message, n)
	for i := range rows {
		rows[i] = model.Message{
			ID:   "seed-" + string(rune('a'+i)),
			Text: "message body",
			Time: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return &memStore{rows: rows}
}

func newTestModel(t *testing.T, store *memStore, pageSize int) Model {
	t.Helper()
	codec := timefmt.New()
	cache := feed.NewCache()
	ctrl := feed.NewController(cache, feed.NewFetcher(store, pageSize), store, codec)

	prefStore := prefs.New(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, prefStore.Load())

	m := NewModel(Config{
		Cache:      cache,
		Controller: ctrl,
		Codec:      codec,
		Prefs:      prefStore,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func loadInitial(t *testing.T, m Model) Model {
	t.Helper()
	job := m.ctrl.LoadInitial()
	require.NotNil(t, job)
	next, _ := m.Update(fetchDoneMsg{res: job.Run(context.Background())})
	return next.(Model)
}

func typeInto(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestInitialLoadPinsViewToBottom(t *testing.T) {
	m := newTestModel(t, seededStore(30), 20)
	m = loadInitial(t, m)

	require.Equal(t, feed.StateReady, m.ctrl.State())
	require.True(t, m.anchor.AutoFollow())

	lines := m.lines()
	require.Greater(t, len(lines), m.listHeight(), "feed should overflow the viewport")
	require.Equal(t, len(lines)-m.listHeight(), m.scrollTop, "newest messages visible")
}

func TestScrollToTopStartsBackfill(t *testing.T) {
	m := newTestModel(t, seededStore(30), 20)
	m = loadInitial(t, m)
	require.True(t, m.ctrl.HasMore())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyHome})
	m = next.(Model)
	require.Equal(t, 0, m.scrollTop)
	require.NotNil(t, cmd, "near-top scroll schedules an older-page fetch")
	require.False(t, m.anchor.AutoFollow())

	before := len(m.lines())
	res, ok := cmd().(fetchDoneMsg)
	require.True(t, ok)
	next, _ = m.Update(res)
	m = next.(Model)

	// Older rows landed above; the viewport keeps its place.
	require.Equal(t, len(m.lines())-before, m.scrollTop)
}

func TestEnterSendsAndClearsComposer(t *testing.T) {
	store := seededStore(1)
	m := newTestModel(t, store, 20)
	m = loadInitial(t, m)

	m = typeInto(m, "새 메시지")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	require.Equal(t, "", m.composer.text)
	require.NotNil(t, cmd)

	// The optimistic entry is already on screen.
	entries := m.cache.Snapshot()
	require.Len(t, entries, 2)
	require.True(t, entries[1].Pending)
	require.Equal(t, "새 메시지", entries[1].Msg.Text)

	res, ok := cmd().(sendDoneMsg)
	require.True(t, ok)
	next, _ = m.Update(res)
	m = next.(Model)

	require.Equal(t, feed.StateReady, m.ctrl.State())
	_, ok = m.cache.Entry("row-새 메시지")
	require.True(t, ok)
}

func TestEnterOnBlankComposerIsNoOp(t *testing.T) {
	m := newTestModel(t, seededStore(1), 20)
	m = loadInitial(t, m)

	m = typeInto(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Equal(t, 1, m.cache.Len())
}

func TestFailedSendShowsRetryAffordance(t *testing.T) {
	store := seededStore(1)
	store.insertErr = errors.New("insert rejected")
	m := newTestModel(t, store, 20)
	m = loadInitial(t, m)

	m = typeInto(m, "doomed")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	res := cmd().(sendDoneMsg)
	next, _ = m.Update(res)
	m = next.(Model)

	require.Equal(t, feed.StateSendFailed, m.ctrl.State())
	require.Contains(t, m.renderStatus(), "전송 실패")

	id, ok := m.latestFailedID()
	require.True(t, ok)

	// ctrl+r retries the failed entry once the store recovers.
	store.insertErr = nil
	next, retryCmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	require.NotNil(t, retryCmd)

	retryRes := retryCmd().(sendDoneMsg)
	next, _ = m.Update(retryRes)
	m = next.(Model)
	require.Equal(t, feed.StateReady, m.ctrl.State())
	_, ok = m.cache.Entry(id)
	require.False(t, ok, "local entry replaced by the confirmed row")
}

func TestDiscardFailedSend(t *testing.T) {
	store := seededStore(1)
	store.insertErr = errors.New("insert rejected")
	m := newTestModel(t, store, 20)
	m = loadInitial(t, m)

	m = typeInto(m, "doomed")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	res := cmd().(sendDoneMsg)
	next, _ = m.Update(res)
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = next.(Model)

	require.Equal(t, 1, m.cache.Len())
	require.Equal(t, feed.StateReady, m.ctrl.State())
}

func TestInitialLoadErrorSurfacedAndRetriedOnTick(t *testing.T) {
	store := seededStore(0)
	m := newTestModel(t, store, 20)

	job := m.ctrl.LoadInitial()
	require.NotNil(t, job)
	res := job.Run(context.Background())
	res.Err = errors.New("disk unhappy")
	res.Page = feed.Page{}

	next, _ := m.Update(fetchDoneMsg{res: res})
	m = next.(Model)
	require.Contains(t, m.renderStatus(), "불러오기 실패")

	// The periodic tick retries the initial load.
	next, cmd := m.Update(refreshTickMsg{})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Equal(t, feed.StateLoadingInitial, m.ctrl.State())
}

func TestCtrlDTogglesThemeAndPersists(t *testing.T) {
	m := newTestModel(t, seededStore(1), 20)
	require.False(t, m.dark)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	require.True(t, m.dark)
	require.True(t, m.prefs.GetBool(prefs.KeyDarkMode, false))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	require.False(t, m.dark)
	require.False(t, m.prefs.GetBool(prefs.KeyDarkMode, true))
}

func TestNewMessageWhileScrolledAwayDoesNotMoveView(t *testing.T) {
	// 15 rows: the feed overflows the viewport but the first page is short,
	// so the Home keypress cannot start a backfill and the controller stays
	// ready for the refresh below.
	store := seededStore(15)
	m := newTestModel(t, store, 20)
	m = loadInitial(t, m)
	require.False(t, m.ctrl.HasMore())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyHome})
	m = next.(Model)
	require.Nil(t, cmd)
	require.Equal(t, feed.StateReady, m.ctrl.State())
	require.False(t, m.anchor.AutoFollow())

	// A foreign write arrives via refresh.
	store.rows = append([]model.Message{{
		ID:   "foreign",
		Text: "from elsewhere",
		Time: time.Now(),
	}}, store.rows...)

	job := m.ctrl.Refresh()
	require.NotNil(t, job)
	next, _ = m.Update(fetchDoneMsg{res: job.Run(context.Background())})
	m = next.(Model)

	require.Equal(t, 0, m.scrollTop, "view stays where the reader left it")
	require.Contains(t, m.renderStatus(), "새 메시지")
}

func TestViewRendersWithoutSize(t *testing.T) {
	m := NewModel(Config{
		Cache:      feed.NewCache(),
		Controller: feed.NewController(feed.NewCache(), feed.NewFetcher(&memStore{}, 20), &memStore{}, timefmt.New()),
		Codec:      timefmt.New(),
	})
	require.NotEmpty(t, m.View())
}

func TestViewContainsDateRuleAndTimeLabel(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	store := &memStore{rows: []model.Message{
		{ID: "b", Text: "둘째", Time: time.Date(2026, 8, 31, 21, 0, 0, 0, kst)},
		{ID: "a", Text: "첫째", Time: time.Date(2026, 8, 31, 20, 59, 0, 0, kst)},
	}}
	m := newTestModel(t, store, 20)
	m = loadInitial(t, m)

	view := m.View()
	require.True(t, strings.Contains(view, "2026년 8월 31일"), "date rule missing:\n%s", view)
	require.True(t, strings.Contains(view, "오후"), "time label missing:\n%s", view)
}
