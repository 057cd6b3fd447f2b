package mining

import (
	"log/slog"

	"github.com/Veraticus/market-basket/internal/model"
)

// Apriori mines frequent item sets level by level: every frequent k-set is
// extended with every frequent single item, and the resulting candidates are
// kept when a full scan finds them in at least minSupport transactions.
//
// It produces the same sets as FPGrowth and exists as a slow reference and a
// selectable alternative.
func Apriori(transactions []model.Transaction, minSupport int) []model.FrequentItemSet {
	counter := NewSupportCounter(transactions)

	var singles []string
	for _, item := range distinctItems(transactions) {
		if counter.Support(model.NewItemSet(item)) >= minSupport {
			singles = append(singles, item)
		}
	}

	level := make([]model.FrequentItemSet, 0, len(singles))
	for _, item := range singles {
		set := model.NewItemSet(item)
		level = append(level, model.FrequentItemSet{Items: set, Support: counter.Support(set)})
	}
	results := append([]model.FrequentItemSet(nil), level...)

	for k := 2; len(level) > 0; k++ {
		seen := make(map[string]bool)
		var next []model.FrequentItemSet
		for _, fs := range level {
			for _, item := range singles {
				if fs.Items.Has(item) {
					continue
				}
				candidate := fs.Items.With(item)
				key := candidate.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
				if support := counter.Support(candidate); support >= minSupport {
					next = append(next, model.FrequentItemSet{Items: candidate, Support: support})
				}
			}
		}
		slog.Debug("Apriori level complete", "k", k, "frequent", len(next))
		results = append(results, next...)
		level = next
	}

	return results
}

func distinctItems(transactions []model.Transaction) []string {
	var all []string
	for _, txn := range transactions {
		all = append(all, txn.Items...)
	}
	return model.NewItemSet(all...).Items()
}
