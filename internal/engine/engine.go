// Package engine runs the complete basket analysis: frequent item set mining,
// support verification and rule generation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/mining"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/rules"
)

// Config holds configuration options for an analysis run.
type Config struct {
	// Progress is called once per support lookup during the verification scan.
	Progress      func()
	Algorithm     mining.Algorithm
	Basis         rules.ConfidenceBasis
	MinSupport    int
	MinConfidence float64
	Workers       int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm:     mining.AlgorithmFPGrowth,
		Basis:         rules.BasisConsequent,
		MinSupport:    2,
		MinConfidence: 0.5,
		Workers:       1,
	}
}

// Result is the outcome of one run.
type Result struct {
	// ItemSets is sorted by size; sets of equal size keep discovery order.
	// Supports come from the verification scan.
	ItemSets     []model.FrequentItemSet
	Rules        []model.Rule
	Anomalies    []rules.Anomaly
	Stats        mining.Stats
	Transactions int
	Duration     time.Duration
}

// Engine mines transactions with a fixed configuration.
type Engine struct {
	generator *rules.Generator
	config    Config
}

// New validates config and creates an engine.
func New(config Config) (*Engine, error) {
	if err := common.ValidateThresholds(config.MinSupport, config.MinConfidence); err != nil {
		return nil, err
	}

	alg, err := mining.ParseAlgorithm(string(config.Algorithm))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	config.Algorithm = alg

	generator, err := rules.NewGenerator(rules.Options{
		Basis:         config.Basis,
		MinConfidence: config.MinConfidence,
	})
	if err != nil {
		return nil, err
	}

	if config.Workers < 1 {
		config.Workers = 1
	}

	return &Engine{config: config, generator: generator}, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Run mines transactions. Input with no frequent item yields an empty result
// rather than an error.
func (e *Engine) Run(ctx context.Context, transactions []model.Transaction) (*Result, error) {
	start := time.Now()
	result := &Result{Transactions: len(transactions)}

	slog.Info("Starting analysis",
		"transactions", len(transactions),
		"algorithm", e.config.Algorithm,
		"min_support", e.config.MinSupport,
		"min_confidence", e.config.MinConfidence)

	frequent, err := e.mine(transactions, result)
	if err != nil {
		return nil, err
	}
	common.LogDebug("Mined frequent item sets", common.Fields{
		"itemsets":          len(frequent),
		"root_nodes":        result.Stats.RootNodes,
		"conditional_trees": result.Stats.ConditionalTrees,
	})
	if len(frequent) == 0 {
		slog.Info("Nothing to analyze", "reason", common.ErrEmptyInput.Error())
		result.Duration = time.Since(start)
		return result, nil
	}

	sets := make([]model.ItemSet, 0, len(frequent))
	for _, fs := range frequent {
		sets = append(sets, fs.Items)
	}
	model.SortBySize(sets)

	counter := mining.NewSupportCounter(transactions)
	supports, err := counter.Count(ctx, e.generator.Candidates(sets), mining.CountOptions{
		Workers:  e.config.Workers,
		Progress: e.config.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify supports: %w", err)
	}

	result.ItemSets = make([]model.FrequentItemSet, 0, len(sets))
	for _, set := range sets {
		result.ItemSets = append(result.ItemSets, model.FrequentItemSet{
			Items:   set,
			Support: supports[set.Key()],
		})
	}

	result.Rules, result.Anomalies = e.generator.Generate(sets, supports)
	result.Duration = time.Since(start)

	slog.Info("Analysis complete",
		"itemsets", len(result.ItemSets),
		"rules", len(result.Rules),
		"anomalies", len(result.Anomalies),
		"duration", result.Duration)

	return result, nil
}

func (e *Engine) mine(transactions []model.Transaction, result *Result) ([]model.FrequentItemSet, error) {
	if e.config.Algorithm == mining.AlgorithmFPGrowth {
		sets, stats := mining.FPGrowth(transactions, e.config.MinSupport)
		result.Stats = stats
		return sets, nil
	}
	return mining.Mine(e.config.Algorithm, transactions, e.config.MinSupport)
}
