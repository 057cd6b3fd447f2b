package mining

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/market-basket/internal/fptree"
	"github.com/Veraticus/market-basket/internal/model"
)

func groceries() []model.Transaction {
	return []model.Transaction{
		model.NewTransaction("1", "dounai", "woju"),
		model.NewTransaction("2", "woju", "niaobu", "putaojiu", "tiancai"),
		model.NewTransaction("3", "dounai", "niaobu", "putaojiu", "chengzhi"),
		model.NewTransaction("4", "woju", "dounai", "niaobu", "putaojiu"),
		model.NewTransaction("5", "woju", "dounai", "niaobu", "chengzhi"),
	}
}

// supportsByString flattens mining output for comparison.
func supportsByString(sets []model.FrequentItemSet) map[string]int {
	out := make(map[string]int, len(sets))
	for _, fs := range sets {
		out[fs.Items.String()] = fs.Support
	}
	return out
}

// bruteForce enumerates every subset of the distinct items and keeps those
// meeting minSupport.
func bruteForce(transactions []model.Transaction, minSupport int) map[string]int {
	items := distinctItems(transactions)
	counter := NewSupportCounter(transactions)
	out := make(map[string]int)
	for mask := 1; mask < 1<<len(items); mask++ {
		var subset []string
		for i, item := range items {
			if mask&(1<<i) != 0 {
				subset = append(subset, item)
			}
		}
		set := model.NewItemSet(subset...)
		if s := counter.Support(set); s >= minSupport {
			out[set.String()] = s
		}
	}
	return out
}

func randomTransactions(r *rand.Rand, n, alphabet int) []model.Transaction {
	transactions := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		size := 1 + r.Intn(alphabet)
		items := make([]string, 0, size)
		for j := 0; j < size; j++ {
			items = append(items, fmt.Sprintf("i%d", r.Intn(alphabet)))
		}
		transactions = append(transactions, model.NewTransaction(fmt.Sprint(i), items...))
	}
	return transactions
}

func TestFPGrowth_Groceries(t *testing.T) {
	sets, stats := FPGrowth(groceries(), 3)

	want := map[string]int{
		"{woju}":             4,
		"{dounai}":           4,
		"{niaobu}":           4,
		"{putaojiu}":         3,
		"{dounai, woju}":     3,
		"{niaobu, woju}":     3,
		"{dounai, niaobu}":   3,
		"{niaobu, putaojiu}": 3,
	}
	if diff := cmp.Diff(want, supportsByString(sets)); diff != "" {
		t.Errorf("frequent item sets mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, sets, len(want), "no duplicates expected")
	assert.Equal(t, 10, stats.RootNodes)
	assert.Equal(t, 3, stats.ConditionalTrees)
}

func TestFPGrowth_DiscoveryOrder(t *testing.T) {
	sets, _ := FPGrowth(groceries(), 3)

	got := make([]string, 0, len(sets))
	for _, fs := range sets {
		got = append(got, fs.Items.String())
	}

	// Header items are visited in ascending identifier order at every level.
	want := []string{
		"{dounai}",
		"{niaobu}",
		"{dounai, niaobu}",
		"{putaojiu}",
		"{niaobu, putaojiu}",
		"{woju}",
		"{dounai, woju}",
		"{niaobu, woju}",
	}
	assert.Equal(t, want, got)
}

func TestFPGrowth_MinSupportAboveTransactionCount(t *testing.T) {
	sets, stats := FPGrowth(groceries(), 6)
	assert.Empty(t, sets)
	assert.Zero(t, stats.RootNodes)

	sets, _ = FPGrowth(nil, 1)
	assert.Empty(t, sets)
}

func TestFPGrowth_SupportMatchesScanForLookalikeLabels(t *testing.T) {
	transactions := []model.Transaction{
		model.NewTransaction("1", "a\x1fb"),
		model.NewTransaction("2", "a", "b"),
		model.NewTransaction("3", " a"),
		model.NewTransaction("4", "a"),
	}
	counter := NewSupportCounter(transactions)

	sets, _ := FPGrowth(transactions, 1)
	require.NotEmpty(t, sets)
	for _, fs := range sets {
		assert.Equal(t, counter.Support(fs.Items), fs.Support, "%q", fs.Items.Items())
	}

	got := supportsByString(sets)
	assert.Equal(t, 2, got["{a}"])
	assert.Equal(t, 1, got["{a, b}"])

	sets, _ = FPGrowth(transactions, 2)
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"a"}, sets[0].Items.Items())
}

func TestFPGrowth_DuplicateTransactions(t *testing.T) {
	transactions := []model.Transaction{
		model.NewTransaction("1", "a", "b", "c"),
		model.NewTransaction("2", "a", "b", "c"),
		model.NewTransaction("3", "c", "b", "a"),
	}

	sets, _ := FPGrowth(transactions, 3)

	got := supportsByString(sets)
	assert.Len(t, got, 7)
	assert.Equal(t, 3, got["{a, b, c}"])
}

func TestFPGrowth_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 40; round++ {
		transactions := randomTransactions(r, 5+r.Intn(20), 3+r.Intn(5))
		minSupport := 1 + r.Intn(4)

		t.Run(fmt.Sprintf("round_%d_minsup_%d", round, minSupport), func(t *testing.T) {
			sets, _ := FPGrowth(transactions, minSupport)
			got := supportsByString(sets)
			require.Len(t, got, len(sets), "mined item sets must be unique")

			want := bruteForce(transactions, minSupport)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("FP-Growth disagrees with brute force (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFPGrowth_SupportsHoldUnderFullScan(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	transactions := randomTransactions(r, 30, 6)
	counter := NewSupportCounter(transactions)

	sets, _ := FPGrowth(transactions, 3)
	require.NotEmpty(t, sets)

	for _, fs := range sets {
		scanned := counter.Support(fs.Items)
		assert.GreaterOrEqual(t, scanned, 3, fs.Items.String())
		assert.Equal(t, scanned, fs.Support, "tree count and full scan disagree for %s", fs.Items)
	}
}

func TestFPGrowth_DownwardClosure(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	transactions := randomTransactions(r, 25, 6)

	sets, _ := FPGrowth(transactions, 2)
	found := supportsByString(sets)

	for _, fs := range sets {
		for _, item := range fs.Items.Items() {
			sub := fs.Items.Without(item)
			if sub.Len() == 0 {
				continue
			}
			_, ok := found[sub.String()]
			assert.True(t, ok, "%s is frequent but its subset %s is missing", fs.Items, sub)
		}
	}
}

func TestFPGrowth_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	transactions := randomTransactions(r, 40, 7)

	first, _ := FPGrowth(transactions, 2)
	second, _ := FPGrowth(transactions, 2)

	keys := func(sets []model.FrequentItemSet) []string {
		out := make([]string, 0, len(sets))
		for _, fs := range sets {
			out = append(out, fs.Items.Key())
		}
		return out
	}
	assert.Equal(t, keys(first), keys(second))
}

func TestMiner_DoesNotMutateInputTree(t *testing.T) {
	weighted := model.Compact(groceries())
	tree, ok := fptree.Build(weighted, 3)
	require.True(t, ok)

	var before, after []int
	for i := 0; i < tree.Len(); i++ {
		before = append(before, tree.Node(fptree.NodeID(i)).Count)
	}

	var results []model.FrequentItemSet
	NewMiner(3).Mine(tree, model.NewItemSet(), &results)

	for i := 0; i < tree.Len(); i++ {
		after = append(after, tree.Node(fptree.NodeID(i)).Count)
	}
	assert.Equal(t, before, after)
}

func TestMiner_PrefixIsCarried(t *testing.T) {
	weighted := model.Compact(groceries())
	tree, ok := fptree.Build(weighted, 3)
	require.True(t, ok)

	var results []model.FrequentItemSet
	NewMiner(3).Mine(tree, model.NewItemSet("zz"), &results)

	require.NotEmpty(t, results)
	for _, fs := range results {
		assert.True(t, fs.Items.Has("zz"), fs.Items.String())
	}
}

func TestApriori_MatchesFPGrowth(t *testing.T) {
	r := rand.New(rand.NewSource(11))

	for round := 0; round < 20; round++ {
		transactions := randomTransactions(r, 10+r.Intn(15), 4+r.Intn(4))
		minSupport := 1 + r.Intn(3)

		fp, _ := FPGrowth(transactions, minSupport)
		ap := Apriori(transactions, minSupport)

		if diff := cmp.Diff(supportsByString(fp), supportsByString(ap)); diff != "" {
			t.Fatalf("round %d: apriori disagrees (-fpgrowth +apriori):\n%s", round, diff)
		}
	}
}

func TestApriori_LevelOrder(t *testing.T) {
	sets := Apriori(groceries(), 3)

	sizes := make([]int, 0, len(sets))
	for _, fs := range sets {
		sizes = append(sizes, fs.Items.Len())
	}
	assert.True(t, sort.IntsAreSorted(sizes), "apriori emits sets level by level: %v", sizes)
}

func TestMine_SelectsAlgorithm(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmFPGrowth, AlgorithmApriori} {
		sets, err := Mine(alg, groceries(), 3)
		require.NoError(t, err)
		assert.Len(t, sets, 8, string(alg))
	}

	_, err := Mine("eclat", groceries(), 3)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmFPGrowth, alg)

	alg, err = ParseAlgorithm("apriori")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmApriori, alg)

	_, err = ParseAlgorithm("nope")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestSupportCounter_ParallelMatchesSerial(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	transactions := randomTransactions(r, 50, 6)
	counter := NewSupportCounter(transactions)

	sets, _ := FPGrowth(transactions, 2)
	itemSets := make([]model.ItemSet, 0, len(sets))
	for _, fs := range sets {
		itemSets = append(itemSets, fs.Items)
	}

	ctx := context.Background()
	serial, err := counter.Count(ctx, itemSets, CountOptions{Workers: 1})
	require.NoError(t, err)

	var calls atomic.Int64
	parallel, err := counter.Count(ctx, itemSets, CountOptions{
		Workers:  4,
		Progress: func() { calls.Add(1) },
	})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.Equal(t, int64(len(itemSets)), calls.Load())
}

func TestSupportCounter_Cancelled(t *testing.T) {
	counter := NewSupportCounter(groceries())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := counter.Count(ctx, []model.ItemSet{model.NewItemSet("woju")}, CountOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
