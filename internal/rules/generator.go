// Package rules derives association rules from frequent item sets.
package rules

import (
	"context"
	"fmt"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/mining"
	"github.com/Veraticus/market-basket/internal/model"
)

// ConfidenceBasis selects the denominator of a rule's confidence.
type ConfidenceBasis string

const (
	// BasisConsequent divides support(itemset) by the support of the single
	// item moved to the consequent.
	BasisConsequent ConfidenceBasis = "consequent"
	// BasisAntecedent divides support(itemset) by support(antecedent).
	BasisAntecedent ConfidenceBasis = "antecedent"
)

// ParseBasis validates a confidence basis name. The empty name selects
// BasisConsequent.
func ParseBasis(name string) (ConfidenceBasis, error) {
	switch ConfidenceBasis(name) {
	case "":
		return BasisConsequent, nil
	case BasisConsequent, BasisAntecedent:
		return ConfidenceBasis(name), nil
	default:
		return "", fmt.Errorf("%w: unknown confidence basis %q", common.ErrInvalidConfig, name)
	}
}

// Options configures rule generation.
type Options struct {
	Basis         ConfidenceBasis
	MinConfidence float64
}

// Anomaly records an item set whose support lookup came back zero even though
// it was mined as frequent. The affected entry is skipped.
type Anomaly struct {
	ItemSet model.ItemSet
	// Item is set when the zero support belonged to a rule denominator rather
	// than the item set itself.
	Item string
}

func (a Anomaly) Error() string {
	if a.Item != "" {
		return fmt.Sprintf("%v: zero support for %s while scoring %s", common.ErrSupportAnomaly, a.Item, a.ItemSet)
	}
	return fmt.Sprintf("%v: zero support for %s", common.ErrSupportAnomaly, a.ItemSet)
}

func (a Anomaly) Unwrap() error {
	return common.ErrSupportAnomaly
}

// Generator turns frequent item sets into rules.
type Generator struct {
	opts Options
}

// NewGenerator validates opts and creates a generator.
func NewGenerator(opts Options) (*Generator, error) {
	if !(opts.MinConfidence >= 0 && opts.MinConfidence <= 1) {
		return nil, fmt.Errorf("%w: min confidence must be between 0 and 1, got %v", common.ErrInvalidThreshold, opts.MinConfidence)
	}
	basis, err := ParseBasis(string(opts.Basis))
	if err != nil {
		return nil, err
	}
	opts.Basis = basis
	return &Generator{opts: opts}, nil
}

// Candidates lists every item set whose support Generate will look up: the
// item sets themselves, every singleton, and, for BasisAntecedent, every
// single-item-removal antecedent. The list has no duplicates.
func (g *Generator) Candidates(itemSets []model.ItemSet) []model.ItemSet {
	seen := make(map[string]bool)
	var out []model.ItemSet
	add := func(s model.ItemSet) {
		if s.Len() == 0 || seen[s.Key()] {
			return
		}
		seen[s.Key()] = true
		out = append(out, s)
	}

	for _, set := range itemSets {
		add(set)
	}
	for _, set := range itemSets {
		for _, item := range set.Items() {
			add(model.NewItemSet(item))
			if g.opts.Basis == BasisAntecedent && set.Len() > 1 {
				add(set.Without(item))
			}
		}
	}
	return out
}

// Generate emits a rule `itemset \ {item} -> item` for every item of every
// item set with at least two items, when its confidence clears the minimum.
// supports maps ItemSet.Key to a support count. Rules are returned sorted by
// descending confidence; ties keep discovery order.
func (g *Generator) Generate(itemSets []model.ItemSet, supports map[string]int) ([]model.Rule, []Anomaly) {
	var rules []model.Rule
	var anomalies []Anomaly

	for _, set := range itemSets {
		if set.Len() < 2 {
			continue
		}

		setSupport := supports[set.Key()]
		if setSupport == 0 {
			common.LogWarn("Abnormal support lookup", common.Fields{"itemset": set.String()})
			anomalies = append(anomalies, Anomaly{ItemSet: set})
			continue
		}

		for _, item := range set.Items() {
			antecedent := set.Without(item)

			denominator := model.NewItemSet(item)
			if g.opts.Basis == BasisAntecedent {
				denominator = antecedent
			}
			base := supports[denominator.Key()]
			if base == 0 {
				common.LogWarn("Abnormal support lookup", common.Fields{
					"itemset":     set.String(),
					"denominator": denominator.String(),
				})
				anomalies = append(anomalies, Anomaly{ItemSet: set, Item: denominator.String()})
				continue
			}

			confidence := float64(setSupport) / float64(base)
			if confidence >= g.opts.MinConfidence {
				rules = append(rules, model.Rule{
					Antecedent: antecedent,
					Consequent: item,
					Confidence: confidence,
				})
			}
		}
	}

	model.SortRules(rules)
	return rules, anomalies
}

// GenerateRules is the end-to-end form: it counts support for every candidate
// by scanning transactions and then generates rules with the consequent basis.
func GenerateRules(ctx context.Context, itemSets []model.ItemSet, transactions []model.Transaction, minConfidence float64) ([]model.Rule, []Anomaly, error) {
	g, err := NewGenerator(Options{MinConfidence: minConfidence})
	if err != nil {
		return nil, nil, err
	}

	counter := mining.NewSupportCounter(transactions)
	supports, err := counter.Count(ctx, g.Candidates(itemSets), mining.CountOptions{})
	if err != nil {
		return nil, nil, err
	}

	rules, anomalies := g.Generate(itemSets, supports)
	return rules, anomalies, nil
}
