package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/engine"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/Veraticus/market-basket/internal/source"
	"github.com/Veraticus/market-basket/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// miningFlags maps command flags to configuration keys.
var miningFlags = map[string]string{
	"min-support":      config.KeyMinSupport,
	"min-confidence":   config.KeyMinConfidence,
	"algorithm":        config.KeyAlgorithm,
	"confidence-basis": config.KeyConfidenceBasis,
	"workers":          config.KeyWorkers,
}

// addMiningFlags registers the input and threshold flags shared by mine and
// browse.
func addMiningFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "basket file to mine (.csv, .json, .yaml)")
	cmd.Flags().StringP("dataset", "d", "", "stored dataset to mine")
	cmd.Flags().Int("min-support", 2, "minimum number of baskets an item set must appear in")
	cmd.Flags().Float64("min-confidence", 0.5, "minimum rule confidence between 0 and 1")
	cmd.Flags().String("algorithm", "fpgrowth", "mining algorithm (fpgrowth, apriori)")
	cmd.Flags().String("confidence-basis", "consequent", "confidence denominator (consequent, antecedent)")
	cmd.Flags().Int("workers", 1, "goroutines used to count supports")
	cmd.Flags().Bool("progress", false, "show a progress indicator while counting supports")
}

// bindMiningFlags binds the flags of cmd to viper. Binding happens at run time
// so that only the executing command's flags are bound.
func bindMiningFlags(cmd *cobra.Command) error {
	for flag, key := range miningFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

// loadTransactions reads baskets from --input or --dataset.
func loadTransactions(cmd *cobra.Command) ([]model.Transaction, error) {
	input, _ := cmd.Flags().GetString("input")
	dataset, _ := cmd.Flags().GetString("dataset")

	switch {
	case input != "" && dataset != "":
		return nil, common.NewUserError("choose either --input or --dataset", common.ErrInvalidConfig)
	case input != "":
		transactions, err := source.Load(config.ExpandPath(input))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", input, err)
		}
		return transactions, nil
	case dataset != "":
		store, err := initStorage(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() { _ = store.Close() }()

		transactions, err := store.GetTransactions(cmd.Context(), dataset)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.NewUserError(fmt.Sprintf("dataset %q does not exist", dataset), err)
			}
			return nil, err
		}
		return transactions, nil
	default:
		return nil, common.NewUserError("one of --input or --dataset is required", common.ErrInvalidConfig)
	}
}

// analyze runs the engine over transactions. Progress and interrupt messages
// go to w.
func analyze(ctx context.Context, w io.Writer, settings config.Mining, transactions []model.Transaction, showProgress bool) (*engine.Result, engine.Config, error) {
	cfg := settings.EngineConfig()

	var progress *cli.Progress
	if showProgress {
		progress = cli.NewProgress(w, -1, "Counting supports")
		cfg.Progress = progress.Increment
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return nil, engine.Config{}, err
	}

	handler := cli.NewInterruptHandler(w, "Mining")
	ctx, stop := handler.HandleInterrupts(ctx)
	defer stop()

	result, err := eng.Run(ctx, transactions)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		if handler.WasInterrupted() {
			return nil, engine.Config{}, common.NewUserError("mining interrupted", err)
		}
		return nil, engine.Config{}, err
	}

	return result, eng.Config(), nil
}
