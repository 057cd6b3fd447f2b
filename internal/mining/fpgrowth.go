// Package mining discovers frequent item sets in a transaction collection.
package mining

import (
	"log/slog"

	"github.com/Veraticus/market-basket/internal/fptree"
	"github.com/Veraticus/market-basket/internal/model"
)

// Stats describes the work done by one mining run.
type Stats struct {
	ConditionalTrees int
	MaxDepth         int
	RootNodes        int
}

// Miner runs FP-Growth over an FP-tree.
type Miner struct {
	stats      Stats
	minSupport int
}

// NewMiner creates a miner for the given absolute support threshold.
func NewMiner(minSupport int) *Miner {
	return &Miner{minSupport: minSupport}
}

// Stats returns counters accumulated by Mine calls so far.
func (m *Miner) Stats() Stats {
	return m.stats
}

// Mine appends to results every frequent item set that extends prefix within
// tree. Header items are visited in ascending identifier order; for each item
// its conditional pattern base is rebuilt into a conditional tree and mined
// recursively. The input tree is never modified.
func (m *Miner) Mine(tree *fptree.Tree, prefix model.ItemSet, results *[]model.FrequentItemSet) {
	m.mine(tree, prefix, results, 1)
}

func (m *Miner) mine(tree *fptree.Tree, prefix model.ItemSet, results *[]model.FrequentItemSet, depth int) {
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}

	header := tree.Header()
	for _, item := range header.Items() {
		itemSet := prefix.With(item)
		*results = append(*results, model.FrequentItemSet{
			Items:   itemSet,
			Support: header.Count(item),
		})

		base := tree.ConditionalPatternBase(item)
		if len(base) == 0 {
			continue
		}

		conditional, ok := fptree.Build(base, m.minSupport)
		if !ok {
			continue
		}
		m.stats.ConditionalTrees++
		m.mine(conditional, itemSet, results, depth+1)
	}
}

// FPGrowth mines all item sets occurring in at least minSupport transactions.
// The result is in discovery order. An empty input, or one where no single
// item is frequent, yields an empty result.
func FPGrowth(transactions []model.Transaction, minSupport int) ([]model.FrequentItemSet, Stats) {
	weighted := model.Compact(transactions)
	tree, ok := fptree.Build(weighted, minSupport)
	if !ok {
		slog.Debug("No frequent items at root",
			"transactions", len(transactions),
			"min_support", minSupport)
		return nil, Stats{}
	}

	miner := NewMiner(minSupport)
	var results []model.FrequentItemSet
	miner.Mine(tree, model.NewItemSet(), &results)

	stats := miner.Stats()
	stats.RootNodes = tree.Len()

	slog.Debug("FP-Growth finished",
		"transactions", len(transactions),
		"distinct_transactions", len(weighted),
		"root_nodes", stats.RootNodes,
		"conditional_trees", stats.ConditionalTrees,
		"max_depth", stats.MaxDepth,
		"itemsets", len(results))

	return results, stats
}
