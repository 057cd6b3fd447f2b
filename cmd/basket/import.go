package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/source"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import baskets from a CSV, JSON or YAML file",
		Long: `Import baskets into a named dataset in the local database.

CSV files hold one basket per line as "id,item;item;item" with an optional
"id,items" header. JSON and YAML files hold a list of baskets, each either a
list of items or an object with "id" and "items".

Baskets whose id already exists in the dataset are skipped, so importing the
same file twice is safe.

Examples:
  basket import groceries.csv
  basket import ~/exports/march.json --dataset march`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("dataset", "d", "", "dataset name (default: file name without extension)")
	cmd.Flags().Bool("dry-run", false, "parse the file without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	path := config.ExpandPath(args[0])
	dataset, _ := cmd.Flags().GetString("dataset")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dataset == "" {
		dataset = datasetName(path)
	}

	transactions, err := source.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	common.LogInfo("Loaded baskets", common.Fields{
		"file":    filepath.Base(path),
		"baskets": len(transactions),
	})
	return saveBaskets(cmd, dataset, path, transactions, dryRun)
}

// saveBaskets stores transactions in dataset and reports how many were new.
func saveBaskets(cmd *cobra.Command, dataset, origin string, transactions []model.Transaction, dryRun bool) error {
	out := cmd.OutOrStdout()

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d baskets would be imported into %q", len(transactions), dataset)))
		return nil
	}
	if len(transactions) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No baskets found"))
		return nil
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	saved, err := store.SaveTransactions(cmd.Context(), dataset, origin, transactions)
	if err != nil {
		return fmt.Errorf("failed to save baskets: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d baskets into %q", saved, dataset)))
	if skipped := len(transactions) - saved; skipped > 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d baskets already in the dataset", skipped)))
	}
	return nil
}

// datasetName derives a dataset name from a file path.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
