package mining

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/market-basket/internal/model"
)

// CountOptions configures a support counting pass.
type CountOptions struct {
	// Progress is called once per counted item set. It may be called from
	// several goroutines at once when Workers > 1.
	Progress func()
	Workers  int
}

// SupportCounter answers support queries by scanning every transaction. An
// item set is supported by a transaction when it is a subset of it.
type SupportCounter struct {
	transactions []model.ItemSet
}

// NewSupportCounter creates a counter over transactions.
func NewSupportCounter(transactions []model.Transaction) *SupportCounter {
	sets := make([]model.ItemSet, 0, len(transactions))
	for _, txn := range transactions {
		sets = append(sets, txn.ItemSet())
	}
	return &SupportCounter{transactions: sets}
}

// Transactions returns the number of transactions scanned per query.
func (c *SupportCounter) Transactions() int {
	return len(c.transactions)
}

// Support returns how many transactions contain every item of s.
func (c *SupportCounter) Support(s model.ItemSet) int {
	count := 0
	for _, txn := range c.transactions {
		if s.IsSubsetOf(txn) {
			count++
		}
	}
	return count
}

// Count computes the support of every set, keyed by ItemSet.Key. Sets are
// scanned concurrently when opts.Workers > 1; the result does not depend on
// scheduling.
func (c *SupportCounter) Count(ctx context.Context, sets []model.ItemSet, opts CountOptions) (map[string]int, error) {
	if ctx == nil {
		return nil, fmt.Errorf("count supports: nil context")
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	supports := make(map[string]int, len(sets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, set := range sets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			support := c.Support(set)

			mu.Lock()
			supports[set.Key()] = support
			mu.Unlock()

			if opts.Progress != nil {
				opts.Progress()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count supports: %w", err)
	}

	return supports, nil
}
