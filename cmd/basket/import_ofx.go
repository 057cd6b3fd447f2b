package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import baskets from OFX/QFX bank exports",
		Long: `Turn card and account statements exported from your bank into baskets.

Every account's purchases on one day form a basket whose items are the
normalized merchant names. Deposits and refunds are ignored.

Examples:
  # Import a single file
  basket import-ofx ~/Downloads/chase_jan_2024.qfx --dataset spending

  # Import every QFX file in a directory
  basket import-ofx ~/Downloads/*.qfx --dataset spending`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("dataset", "d", "ofx", "dataset name")
	cmd.Flags().Bool("dry-run", false, "parse the files without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dataset, _ := cmd.Flags().GetString("dataset")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var baskets []model.Transaction

	for _, path := range files {
		found, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
			continue
		}

		added := 0
		for _, b := range found {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			baskets = append(baskets, b)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"baskets_found", len(found),
			"added", added,
			"duplicates", len(found)-added)
	}

	return saveBaskets(cmd, dataset, "ofx", baskets, dryRun)
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseBaskets(cmd.Context(), f)
}

// expandFiles resolves glob patterns. Patterns matching nothing are kept when
// they name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	return files, nil
}
