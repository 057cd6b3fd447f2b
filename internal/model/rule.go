package model

import (
	"fmt"
	"sort"
	"strings"
)

// Rule is an association rule: transactions containing Antecedent tend to
// contain Consequent as well, with the given confidence.
type Rule struct {
	Antecedent ItemSet
	Consequent string
	Confidence float64
}

// String renders the rule as `{a, b} -> c, confidence = 75.00%`.
func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s, confidence = %.2f%%", r.Antecedent, r.Consequent, 100*r.Confidence)
}

// Key identifies a rule by its antecedent and consequent.
func (r Rule) Key() string {
	return r.Antecedent.Key() + " -> " + r.Consequent
}

// SortRules orders rules by descending confidence. Ties keep their original
// relative order.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Confidence > rules[j].Confidence
	})
}

// FormatRules renders one rule per line.
func FormatRules(rules []Rule) string {
	lines := make([]string, 0, len(rules))
	for _, r := range rules {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}
