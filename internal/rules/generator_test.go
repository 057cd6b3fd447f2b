package rules

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/mining"
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

// minedSets returns the grocery item sets the way the engine hands them over:
// discovery order, stably sorted by size.
func minedSets(t *testing.T, transactions []model.Transaction, minSupport int) []model.ItemSet {
	t.Helper()
	mined, _ := mining.FPGrowth(transactions, minSupport)
	sets := make([]model.ItemSet, 0, len(mined))
	for _, fs := range mined {
		sets = append(sets, fs.Items)
	}
	model.SortBySize(sets)
	return sets
}

func renderAll(rules []model.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.String())
	}
	return out
}

func TestGenerateRules_Groceries(t *testing.T) {
	rules, anomalies, err := GenerateRules(context.Background(), minedSets(t, groceries(), 3), groceries(), 0.7)
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	want := []string{
		"{niaobu} -> putaojiu, confidence = 100.00%",
		"{niaobu} -> dounai, confidence = 75.00%",
		"{dounai} -> niaobu, confidence = 75.00%",
		"{putaojiu} -> niaobu, confidence = 75.00%",
		"{woju} -> dounai, confidence = 75.00%",
		"{dounai} -> woju, confidence = 75.00%",
		"{woju} -> niaobu, confidence = 75.00%",
		"{niaobu} -> woju, confidence = 75.00%",
	}
	assert.Equal(t, want, renderAll(rules))
}

func TestGenerate_AntecedentBasis(t *testing.T) {
	g, err := NewGenerator(Options{MinConfidence: 0.7, Basis: BasisAntecedent})
	require.NoError(t, err)

	sets := minedSets(t, groceries(), 3)
	supports, err := mining.NewSupportCounter(groceries()).Count(context.Background(), g.Candidates(sets), mining.CountOptions{})
	require.NoError(t, err)

	rules, anomalies := g.Generate(sets, supports)
	assert.Empty(t, anomalies)
	require.Len(t, rules, 8)

	assert.Equal(t, "{putaojiu} -> niaobu, confidence = 100.00%", rules[0].String())
	assert.Equal(t, "{niaobu} -> putaojiu, confidence = 75.00%", rules[3].String())
}

func TestGenerate_ThresholdFilters(t *testing.T) {
	rules, _, err := GenerateRules(context.Background(), minedSets(t, groceries(), 3), groceries(), 0.8)
	require.NoError(t, err)

	require.Len(t, rules, 1)
	assert.Equal(t, "putaojiu", rules[0].Consequent)
	assert.Equal(t, []string{"niaobu"}, rules[0].Antecedent.Items())
	assert.InDelta(t, 1.0, rules[0].Confidence, 1e-9)
}

func TestGenerate_SkipsSingletons(t *testing.T) {
	g, err := NewGenerator(Options{MinConfidence: 0})
	require.NoError(t, err)

	sets := []model.ItemSet{model.NewItemSet("a"), model.NewItemSet("b")}
	rules, anomalies := g.Generate(sets, map[string]int{"a": 3, "b": 2})
	assert.Empty(t, rules)
	assert.Empty(t, anomalies)
}

func TestGenerate_ReportsAnomalies(t *testing.T) {
	g, err := NewGenerator(Options{MinConfidence: 0})
	require.NoError(t, err)

	ab := model.NewItemSet("a", "b")
	cd := model.NewItemSet("c", "d")
	ef := model.NewItemSet("e", "f")

	supports := map[string]int{
		// ab is missing entirely.
		cd.Key():                    2,
		model.NewItemSet("c").Key(): 4,
		// d singleton is missing.
		ef.Key():                    1,
		model.NewItemSet("e").Key(): 1,
		model.NewItemSet("f").Key(): 2,
	}

	rules, anomalies := g.Generate([]model.ItemSet{ab, cd, ef}, supports)

	require.Len(t, anomalies, 2)
	assert.True(t, anomalies[0].ItemSet.Equal(ab))
	assert.Empty(t, anomalies[0].Item)
	assert.True(t, anomalies[1].ItemSet.Equal(cd))
	assert.Equal(t, "{d}", anomalies[1].Item)
	assert.ErrorIs(t, anomalies[0], common.ErrSupportAnomaly)

	// The anomalous entries are skipped, everything else still produces rules.
	assert.Equal(t, []string{
		"{f} -> e, confidence = 100.00%",
		"{d} -> c, confidence = 50.00%",
		"{e} -> f, confidence = 50.00%",
	}, renderAll(rules))
}

func TestNewGenerator_Validation(t *testing.T) {
	for _, c := range []float64{-0.01, 1.5} {
		_, err := NewGenerator(Options{MinConfidence: c})
		assert.ErrorIs(t, err, common.ErrInvalidThreshold, "confidence %v", c)
	}

	_, err := NewGenerator(Options{MinConfidence: 0.5, Basis: "lift"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestCandidates(t *testing.T) {
	sets := []model.ItemSet{
		model.NewItemSet("a"),
		model.NewItemSet("a", "b", "c"),
	}

	consequent, err := NewGenerator(Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"{a}", "{a, b, c}", "{b}", "{c}"}, setStrings(consequent.Candidates(sets)))

	antecedent, err := NewGenerator(Options{Basis: BasisAntecedent})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"{a}", "{a, b, c}", "{b, c}", "{b}", "{a, c}", "{c}", "{a, b}"},
		setStrings(antecedent.Candidates(sets)))
}

func setStrings(sets []model.ItemSet) []string {
	out := make([]string, 0, len(sets))
	for _, s := range sets {
		out = append(out, s.String())
	}
	return out
}

func TestGenerateRules_Soundness(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	for round := 0; round < 15; round++ {
		var transactions []model.Transaction
		for i := 0; i < 30; i++ {
			var items []string
			for j := 0; j < 1+r.Intn(5); j++ {
				items = append(items, fmt.Sprintf("p%d", r.Intn(6)))
			}
			transactions = append(transactions, model.NewTransaction(fmt.Sprint(i), items...))
		}

		minConfidence := 0.3 + 0.1*float64(r.Intn(5))
		rules, anomalies, err := GenerateRules(context.Background(), minedSets(t, transactions, 3), transactions, minConfidence)
		require.NoError(t, err)
		assert.Empty(t, anomalies)

		counter := mining.NewSupportCounter(transactions)
		for i, rule := range rules {
			full := rule.Antecedent.With(rule.Consequent)
			want := float64(counter.Support(full)) / float64(counter.Support(model.NewItemSet(rule.Consequent)))
			assert.InDelta(t, want, rule.Confidence, 1e-9, rule.String())
			assert.GreaterOrEqual(t, rule.Confidence, minConfidence, rule.String())
			if i > 0 {
				assert.LessOrEqual(t, rule.Confidence, rules[i-1].Confidence, "rules must be sorted")
			}
		}
	}
}

func TestGenerateRules_Deterministic(t *testing.T) {
	first, _, err := GenerateRules(context.Background(), minedSets(t, groceries(), 2), groceries(), 0.3)
	require.NoError(t, err)
	second, _, err := GenerateRules(context.Background(), minedSets(t, groceries(), 2), groceries(), 0.3)
	require.NoError(t, err)

	assert.Equal(t, renderAll(first), renderAll(second))
	assert.NotEmpty(t, first)
}
