// Package tui implements the sodam chat interface as a Bubble Tea program.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jaehyo/sodam/internal/tui/styles"
)

// composerAction is what one key did to the composer.
type composerAction int

const (
	composerNone composerAction = iota
	composerEdited
	composerSubmit
)

// composer is the multi-line text entry. Enter submits; alt+enter inserts a
// literal newline.
type composer struct {
	text string
}

func (c *composer) handleKey(msg tea.KeyMsg) composerAction {
	switch msg.String() {
	case "enter":
		return composerSubmit
	case "shift+enter", "alt+enter":
		// bubbletea v0.27 only reports the alt modifier on enter; shift+enter
		// arrives as plain enter from most terminals, so alt+enter is the
		// chord actually advertised. The shift case stays for input stacks
		// that do report it.
		c.text += "\n"
		return composerEdited
	case "backspace", "ctrl+h":
		if len(c.text) > 0 {
			runes := []rune(c.text)
			c.text = string(runes[:len(runes)-1])
		}
		return composerEdited
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return composerNone
		}
		c.text += string(msg.Runes)
		return composerEdited
	case tea.KeySpace:
		c.text += " "
		return composerEdited
	}
	return composerNone
}

func (c *composer) clear() {
	c.text = ""
}

func (c *composer) blank() bool {
	return strings.TrimSpace(c.text) == ""
}

// rowCount derives the composer height from the current text. Recomputed
// each render pass.
func (c *composer) rowCount(width int) int {
	return len(c.lines(width))
}

func (c *composer) lines(width int) []string {
	if width <= 0 {
		width = 1
	}
	wrapped := wordwrap.String(c.text, width)
	return strings.Split(wrapped, "\n")
}

func (c *composer) render(width int, theme styles.Theme, sending bool) string {
	prompt := "> "
	bodyWidth := width - lipgloss.Width(prompt)
	if bodyWidth < 1 {
		bodyWidth = 1
	}

	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Text))
	mutedStyle := theme.MutedStyle()

	lines := c.lines(bodyWidth)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		prefix := prompt
		if i > 0 {
			prefix = strings.Repeat(" ", lipgloss.Width(prompt))
		}
		rendered := textStyle.Render(line)
		if i == 0 && c.text == "" {
			placeholder := "메시지를 입력하세요"
			if sending {
				placeholder = "전송 중..."
			}
			rendered = mutedStyle.Render(placeholder)
		}
		out = append(out, prefix+rendered)
	}
	return strings.Join(out, "\n")
}
