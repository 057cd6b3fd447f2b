package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/tui/themes"
)

// Run shows rules in the browser until the user quits or ctx is canceled.
func Run(ctx context.Context, rules []model.Rule, theme themes.Theme) error {
	program := tea.NewProgram(
		NewModel(rules, theme),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("rule browser failed: %w", err)
	}
	return nil
}
