package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/engine"
)

// Output formats for WriteReport.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Report is the machine-readable form of a mining run.
type Report struct {
	ItemSets     []ReportItemSet `json:"itemsets" yaml:"itemsets"`
	Rules        []ReportRule    `json:"rules" yaml:"rules"`
	Anomalies    []string        `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Transactions int             `json:"transactions" yaml:"transactions"`
}

// ReportItemSet is one frequent item set.
type ReportItemSet struct {
	Items   []string `json:"items" yaml:"items"`
	Support int      `json:"support" yaml:"support"`
}

// ReportRule is one association rule.
type ReportRule struct {
	Antecedent []string `json:"antecedent" yaml:"antecedent"`
	Consequent string   `json:"consequent" yaml:"consequent"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
}

// NewReport converts an engine result.
func NewReport(result *engine.Result) Report {
	report := Report{
		ItemSets:     make([]ReportItemSet, 0, len(result.ItemSets)),
		Rules:        make([]ReportRule, 0, len(result.Rules)),
		Transactions: result.Transactions,
	}
	for _, fs := range result.ItemSets {
		report.ItemSets = append(report.ItemSets, ReportItemSet{Items: fs.Items.Items(), Support: fs.Support})
	}
	for _, r := range result.Rules {
		report.Rules = append(report.Rules, ReportRule{
			Antecedent: r.Antecedent.Items(),
			Consequent: r.Consequent,
			Confidence: r.Confidence,
		})
	}
	for _, a := range result.Anomalies {
		report.Anomalies = append(report.Anomalies, a.Error())
	}
	return report
}

// WriteReport writes result to w as JSON or YAML.
func WriteReport(w io.Writer, result *engine.Result, format string) error {
	report := NewReport(result)

	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown output format %q", common.ErrInvalidConfig, format)
	}
}
