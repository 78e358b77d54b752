package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jaehyo/sodam/internal/feed"
	"github.com/jaehyo/sodam/internal/logging"
	"github.com/jaehyo/sodam/internal/timefmt"
	"github.com/jaehyo/sodam/internal/tui/prefs"
	"github.com/jaehyo/sodam/internal/tui/styles"
)

const defaultRefreshInterval = 2 * time.Second

// Config carries everything the TUI needs from the CLI layer.
type Config struct {
	Cache           *feed.Cache
	Controller      *feed.Controller
	Codec           timefmt.Codec
	Prefs           *prefs.Manager
	Theme           string
	RefreshInterval time.Duration
}

type fetchDoneMsg struct {
	res feed.FetchResult
}

type sendDoneMsg struct {
	res feed.SendResult
}

type refreshTickMsg struct{}

// Model is the root Bubble Tea model: a single-room message feed over a
// multi-line composer.
type Model struct {
	cache  *feed.Cache
	ctrl   *feed.Controller
	anchor *feed.Anchor
	codec  timefmt.Codec
	prefs  *prefs.Manager
	logger zerolog.Logger

	theme           styles.Theme
	dark            bool
	refreshInterval time.Duration

	composer  composer
	scrollTop int
	width     int
	height    int
}

// NewModel builds the root model. Dark mode from the preference store wins
// over the configured theme name.
func NewModel(cfg Config) Model {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}

	dark := cfg.Theme == styles.ThemeDark
	if cfg.Prefs != nil {
		dark = cfg.Prefs.GetBool(prefs.KeyDarkMode, dark)
	}

	return Model{
		cache:           cfg.Cache,
		ctrl:            cfg.Controller,
		anchor:          feed.NewAnchorWith(nearTopLines, bottomSlopLines),
		codec:           cfg.Codec,
		prefs:           cfg.Prefs,
		logger:          logging.Component("tui"),
		theme:           themeFor(dark),
		dark:            dark,
		refreshInterval: interval,
	}
}

// Scroll thresholds in list lines rather than pixels.
const (
	nearTopLines    = 4
	bottomSlopLines = 0
)

func themeFor(dark bool) styles.Theme {
	if dark {
		return styles.ByName(styles.ThemeDark)
	}
	return styles.ByName(styles.ThemeLight)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		runFetch(m.ctrl.LoadInitial()),
		m.refreshTick(),
	)
}

func runFetch(job *feed.FetchJob) tea.Cmd {
	if job == nil {
		return nil
	}
	return func() tea.Msg {
		return fetchDoneMsg{res: job.Run(context.Background())}
	}
}

func runSend(job *feed.SendJob) tea.Cmd {
	if job == nil {
		return nil
	}
	return func() tea.Msg {
		return sendDoneMsg{res: job.Run(context.Background())}
	}
}

func (m Model) refreshTick() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollTop = m.clampScroll(m.scrollTop)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fetchDoneMsg:
		return m.applyFetch(msg.res)

	case sendDoneMsg:
		refresh := m.ctrl.ApplySend(msg.res)
		m = m.followBottom()
		return m, runFetch(refresh)

	case refreshTickMsg:
		// A failed initial load drops back to idle; the tick retries it.
		job := m.ctrl.Refresh()
		if job == nil && m.ctrl.State() == feed.StateIdle {
			job = m.ctrl.LoadInitial()
		}
		return m, tea.Batch(runFetch(job), m.refreshTick())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ctrl.Close()
		if m.prefs != nil {
			if err := m.prefs.Close(); err != nil {
				m.logger.Warn().Err(err).Msg("failed to flush preferences")
			}
		}
		return m, tea.Quit

	case "ctrl+d":
		m.dark = !m.dark
		m.theme = themeFor(m.dark)
		if m.prefs != nil {
			m.prefs.SetBool(prefs.KeyDarkMode, m.dark)
		}
		return m, nil

	case "ctrl+r":
		if id, ok := m.latestFailedID(); ok {
			return m, runSend(m.ctrl.RetrySend(id))
		}
		return m, nil

	case "ctrl+x":
		if id, ok := m.latestFailedID(); ok {
			m.ctrl.DiscardFailed(id)
			m.scrollTop = m.clampScroll(m.scrollTop)
		}
		return m, nil

	case "up":
		return m.scrollBy(-1)
	case "down":
		return m.scrollBy(1)
	case "pgup":
		return m.scrollBy(-m.listHeight())
	case "pgdown":
		return m.scrollBy(m.listHeight())
	case "home":
		return m.scrollTo(0)
	case "end":
		m = m.followBottomForced()
		return m, nil
	}

	switch m.composer.handleKey(msg) {
	case composerSubmit:
		if m.composer.blank() {
			return m, nil
		}
		job := m.ctrl.Send(m.composer.text, time.Now())
		if job == nil {
			return m, nil
		}
		m.composer.clear()
		m = m.followBottomForced()
		return m, runSend(job)
	case composerEdited:
		// Composer growth can shrink the list window.
		m.scrollTop = m.clampScroll(m.scrollTop)
	}
	return m, nil
}

// scrollBy moves the viewport and lets the anchor observe the new position:
// landing at the bottom re-arms auto-follow, landing near the top may start
// a backfill.
func (m Model) scrollBy(delta int) (tea.Model, tea.Cmd) {
	return m.scrollTo(m.scrollTop + delta)
}

func (m Model) scrollTo(top int) (tea.Model, tea.Cmd) {
	m.scrollTop = m.clampScroll(top)
	state := m.anchor.OnScroll(m.metrics())
	return m, runFetch(m.ctrl.LoadMoreIfNeeded(state))
}

func (m Model) applyFetch(res feed.FetchResult) (tea.Model, tea.Cmd) {
	before := len(m.lines())
	m.ctrl.ApplyFetch(res)
	after := len(m.lines())

	if m.ctrl.ConsumeForceBottom() {
		m = m.followBottomForced()
		return m, nil
	}
	if res.Pagination() && !m.anchor.AutoFollow() {
		// Older rows landed above the viewport; keep what the reader was
		// looking at in place.
		m.scrollTop = m.clampScroll(m.scrollTop + (after - before))
		return m, nil
	}
	m = m.followBottom()
	return m, nil
}

func (m Model) followBottom() Model {
	if target, ok := m.anchor.FollowTarget(m.metrics()); ok {
		m.scrollTop = m.clampScroll(target - m.listHeight())
	}
	return m
}

func (m Model) followBottomForced() Model {
	target := m.anchor.ForceBottom(m.metrics())
	m.scrollTop = m.clampScroll(target - m.listHeight())
	return m
}

func (m Model) latestFailedID() (string, bool) {
	entries := m.cache.Snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Failed {
			return entries[i].Msg.ID, true
		}
	}
	return "", false
}

func (m Model) lines() []string {
	return renderList(m.cache.Snapshot(), m.codec, m.theme, m.contentWidth())
}

func (m Model) metrics() feed.Metrics {
	return feed.Metrics{
		Top:           m.scrollTop,
		ViewHeight:    m.listHeight(),
		ContentHeight: len(m.lines()),
	}
}

func (m Model) contentWidth() int {
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return w
}

// listHeight is the terminal height minus header, status line, composer
// rows and the rule above the composer.
func (m Model) listHeight() int {
	h := m.height - 3 - m.composer.rowCount(m.contentWidth())
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) clampScroll(top int) int {
	max := len(m.lines()) - m.listHeight()
	if max < 0 {
		max = 0
	}
	if top > max {
		top = max
	}
	if top < 0 {
		top = 0
	}
	return top
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFeed())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.composer.render(m.width, m.theme, m.ctrl.State() == feed.StateSending))
	return b.String()
}

func (m Model) renderHeader() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Chrome.Header)).
		Bold(true).
		Width(m.width)
	title := "소담"
	if m.ctrl.HasMore() {
		title += " · 이전 대화 있음"
	}
	return style.Render(title)
}

func (m Model) renderFeed() string {
	lines := m.lines()
	height := m.listHeight()

	top := m.clampScroll(m.scrollTop)
	end := top + height
	if end > len(lines) {
		end = len(lines)
	}
	window := lines[top:end]

	out := make([]string, height)
	copy(out, window)
	for i := len(window); i < height; i++ {
		out[i] = ""
	}
	return strings.Join(out, "\n")
}

func (m Model) renderStatus() string {
	muted := m.theme.MutedStyle().Width(m.width)
	failed := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Message.Failed)).Width(m.width)

	switch m.ctrl.State() {
	case feed.StateLoadingInitial:
		return muted.Render("불러오는 중...")
	case feed.StateLoadingMore:
		return muted.Render("이전 메시지 불러오는 중...")
	case feed.StateSendFailed:
		return failed.Render("전송 실패 · ctrl+r 재시도 · ctrl+x 삭제")
	}
	if err := m.ctrl.LoadError(); err != nil {
		return failed.Render("불러오기 실패: " + err.Error() + " · 잠시 후 다시 시도됩니다")
	}
	if !m.anchor.AutoFollow() {
		return muted.Render("새 메시지는 아래에 · end 키로 이동")
	}
	return muted.Render("enter 전송 · alt+enter 줄바꿈 · ctrl+d 테마 · esc 종료")
}

// Run starts the program on the alternate screen and blocks until exit.
func Run(cfg Config) error {
	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
