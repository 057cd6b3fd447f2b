// Package tui implements an interactive browser for association rules.
package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/tui/themes"
)

// SortMode orders the visible rules.
type SortMode int

const (
	// SortConfidence keeps the mined order: descending confidence.
	SortConfidence SortMode = iota
	// SortConsequent orders by consequent, then confidence.
	SortConsequent
	// SortAntecedentSize orders by antecedent size, then confidence.
	SortAntecedentSize
)

func (s SortMode) String() string {
	switch s {
	case SortConsequent:
		return "consequent"
	case SortAntecedentSize:
		return "antecedent size"
	default:
		return "confidence"
	}
}

// thresholdStep is how far one key press moves the confidence floor.
const thresholdStep = 0.05

// Model holds the rule browser state.
type Model struct {
	theme     themes.Theme
	filter    textinput.Model
	help      help.Model
	keymap    KeyMap
	rules     []model.Rule
	visible   []model.Rule
	table     table.Model
	threshold float64
	sortMode  SortMode
	width     int
	height    int
	filtering bool
	quitting  bool
}

// NewModel creates a browser over rules, which are expected in mined order.
func NewModel(rules []model.Rule, theme themes.Theme) Model {
	keymap := DefaultKeyMap()

	tableKeys := table.DefaultKeyMap()
	tableKeys.LineUp = keymap.Up
	tableKeys.LineDown = keymap.Down
	tableKeys.PageUp = keymap.PageUp
	tableKeys.PageDown = keymap.PageDown
	tableKeys.GotoTop = keymap.Home
	tableKeys.GotoBottom = keymap.End

	styles := table.DefaultStyles()
	styles.Header = theme.Header
	styles.Selected = theme.Selected

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithKeyMap(tableKeys),
		table.WithStyles(styles),
	)

	filter := textinput.New()
	filter.Placeholder = "item name"
	filter.Prompt = "/ "
	filter.CharLimit = 64

	m := Model{
		theme:  theme,
		filter: filter,
		help:   help.New(),
		keymap: keymap,
		rules:  rules,
		table:  t,
		width:  80,
		height: 24,
	}
	m.refresh()
	return m
}

// columns sizes the table columns for a terminal width.
func columns(width int) []table.Column {
	const (
		indexWidth      = 5
		confidenceWidth = 11
		chrome          = 8
	)
	rest := width - indexWidth - confidenceWidth - chrome
	if rest < 20 {
		rest = 20
	}
	antecedent := rest * 2 / 3
	return []table.Column{
		{Title: "#", Width: indexWidth},
		{Title: "Antecedent", Width: antecedent},
		{Title: "Consequent", Width: rest - antecedent},
		{Title: "Confidence", Width: confidenceWidth},
	}
}

// refresh recomputes the visible rules from filter, threshold and sort mode.
func (m *Model) refresh() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))

	visible := make([]model.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		if r.Confidence < m.threshold {
			continue
		}
		if query != "" && !matches(r, query) {
			continue
		}
		visible = append(visible, r)
	}
	m.visible = visible

	switch m.sortMode {
	case SortConsequent:
		sort.SliceStable(m.visible, func(i, j int) bool {
			return m.visible[i].Consequent < m.visible[j].Consequent
		})
	case SortAntecedentSize:
		sort.SliceStable(m.visible, func(i, j int) bool {
			return m.visible[i].Antecedent.Len() < m.visible[j].Antecedent.Len()
		})
	}

	rows := make([]table.Row, 0, len(m.visible))
	for i, r := range m.visible {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			r.Antecedent.String(),
			r.Consequent,
			fmt.Sprintf("%.2f%%", 100*r.Confidence),
		})
	}
	m.table.SetRows(rows)
	switch c := m.table.Cursor(); {
	case c >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	case c < 0:
		m.table.SetCursor(0)
	}
}

// roundPercent snaps v to whole percentage points.
func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

// matches reports whether any item of the rule contains query.
func matches(r model.Rule, query string) bool {
	if strings.Contains(strings.ToLower(r.Consequent), query) {
		return true
	}
	for _, item := range r.Antecedent.Items() {
		if strings.Contains(strings.ToLower(item), query) {
			return true
		}
	}
	return false
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ApplyFilter):
		m.filtering = false
		m.filter.Blur()
		m.table.Focus()
		return m, nil
	case key.Matches(msg, m.keymap.ClearFilter):
		m.filtering = false
		m.filter.Reset()
		m.filter.Blur()
		m.table.Focus()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Filter):
		m.filtering = true
		m.table.Blur()
		cmd := m.filter.Focus()
		return m, cmd
	case key.Matches(msg, m.keymap.ClearFilter):
		m.filter.Reset()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keymap.CycleSort):
		m.sortMode = (m.sortMode + 1) % 3
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keymap.RaiseThreshold):
		m.threshold = math.Min(roundPercent(m.threshold+thresholdStep), 1)
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keymap.LowerThreshold):
		m.threshold = math.Max(roundPercent(m.threshold-thresholdStep), 0)
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Visible returns the rules currently shown, in display order.
func (m Model) Visible() []model.Rule {
	out := make([]model.Rule, len(m.visible))
	copy(out, m.visible)
	return out
}

// Selected returns the rule under the cursor.
func (m Model) Selected() (model.Rule, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.Rule{}, false
	}
	return m.visible[i], true
}

// Threshold returns the confidence floor applied on top of the mined rules.
func (m Model) Threshold() float64 {
	return m.threshold
}

// Sort returns the active sort mode.
func (m Model) Sort() SortMode {
	return m.sortMode
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.filtering
}
