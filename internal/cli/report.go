package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/market-basket/internal/engine"
	"github.com/Veraticus/market-basket/internal/model"
)

// FormatItemSets renders frequent item sets as an aligned table with their
// absolute and relative support.
func FormatItemSets(sets []model.FrequentItemSet, transactions int) string {
	if len(sets) == 0 {
		return SubtleStyle.Render("No frequent item sets.")
	}

	width := len("Item set")
	for _, fs := range sets {
		if w := lipgloss.Width(fs.Items.String()); w > width {
			width = w
		}
	}
	col := TableCellStyle.Width(width + 2)

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(col.Render("Item set") + "Support"))
	b.WriteString("\n")
	for _, fs := range sets {
		b.WriteString(col.Render(fs.Items.String()))
		b.WriteString(fmt.Sprintf("%d", fs.Support))
		if transactions > 0 {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf(" (%.1f%%)", 100*float64(fs.Support)/float64(transactions))))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatRules renders one rule per line.
func FormatRules(rules []model.Rule) string {
	if len(rules) == 0 {
		return SubtleStyle.Render("No rules meet the confidence threshold.")
	}

	return model.FormatRules(rules)
}

// FormatSummary renders the headline numbers of a run in a box.
func FormatSummary(result *engine.Result, cfg engine.Config) string {
	content := fmt.Sprintf("Transactions:    %d\n", result.Transactions) +
		fmt.Sprintf("Algorithm:       %s\n", cfg.Algorithm) +
		fmt.Sprintf("Min support:     %d\n", cfg.MinSupport) +
		fmt.Sprintf("Min confidence:  %.2f\n", cfg.MinConfidence) +
		fmt.Sprintf("Frequent sets:   %d\n", len(result.ItemSets)) +
		fmt.Sprintf("Rules:           %d", len(result.Rules))

	if result.Stats.RootNodes > 0 {
		content += fmt.Sprintf("\nFP-tree nodes:   %d", result.Stats.RootNodes) +
			fmt.Sprintf("\nConditional trees: %d", result.Stats.ConditionalTrees)
	}
	if len(result.Anomalies) > 0 {
		content += "\n" + FormatWarning(fmt.Sprintf("%d support anomalies", len(result.Anomalies)))
	}

	return RenderBox(ChartIcon+" Mining Summary", content)
}
