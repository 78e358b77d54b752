package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jaehyo/sodam/internal/feed"
	"github.com/jaehyo/sodam/internal/timefmt"
	"github.com/jaehyo/sodam/internal/tui/styles"
)

// renderList flattens the cached feed into display lines: one date rule per
// run of same-day messages, then each message as wrapped body lines followed
// by a meta line (time label, pending or failed marker). The caller scrolls
// over the returned slice.
func renderList(entries []feed.Entry, codec timefmt.Codec, theme styles.Theme, width int) []string {
	if width < 1 {
		width = 1
	}

	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Text))
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Time))
	pendingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Pending))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Failed))
	ruleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.DateRule))

	var lines []string
	sections := feed.GroupByDate(entries, codec)
	for _, sec := range sections {
		if sec.DateLabel != "" {
			lines = append(lines, dateRule(sec.DateLabel, width, ruleStyle))
		}
		for _, entry := range sec.Entries {
			body := wordwrap.String(entry.Msg.Text, width)
			for _, bl := range strings.Split(body, "\n") {
				style := textStyle
				if entry.Pending || entry.Failed {
					style = pendingStyle
				}
				lines = append(lines, style.Render(bl))
			}
			lines = append(lines, metaLine(entry, codec, timeStyle, pendingStyle, failedStyle))
		}
	}
	return lines
}

func metaLine(entry feed.Entry, codec timefmt.Codec, timeStyle, pendingStyle, failedStyle lipgloss.Style) string {
	switch {
	case entry.Failed:
		return failedStyle.Render("전송 실패 · ctrl+r 재시도 · ctrl+x 삭제")
	case entry.Pending:
		return pendingStyle.Render("…")
	default:
		label := codec.FormatTime(entry.Msg.Time)
		if label == "" {
			return timeStyle.Render("-")
		}
		return timeStyle.Render(label)
	}
}

// dateRule centers the label in a horizontal rule: ── 2026년 8월 31일 ──
func dateRule(label string, width int, style lipgloss.Style) string {
	inner := " " + label + " "
	fill := width - lipgloss.Width(inner)
	if fill < 4 {
		return style.Render(inner)
	}
	left := fill / 2
	right := fill - left
	return style.Render(strings.Repeat("─", left) + inner + strings.Repeat("─", right))
}
