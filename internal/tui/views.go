package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.theme.Title.Render("🧺 Association Rules"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(m.theme.StatusEmpty.Render("No rules match."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.detailView())
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) statusLine() string {
	status := fmt.Sprintf("%d of %d rules", len(m.visible), len(m.rules))
	parts := []string{
		m.theme.StatusInfo.Render(status),
		m.theme.Subtitle.Render(fmt.Sprintf("min confidence %.0f%%", 100*m.threshold)),
		m.theme.Subtitle.Render("sorted by " + m.sortMode.String()),
	}
	return strings.Join(parts, m.theme.Subtitle.Render(" · "))
}

func (m Model) detailView() string {
	r, ok := m.Selected()
	if !ok {
		return ""
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Bold.Render(r.String()),
		m.theme.Subtitle.Render(fmt.Sprintf(
			"antecedent size %d · rule %d of %d",
			r.Antecedent.Len(), m.table.Cursor()+1, len(m.visible))),
	)
	return m.theme.RoundedBox.Render(body)
}
