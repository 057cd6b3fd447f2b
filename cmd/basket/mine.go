package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/fptree"
	"github.com/Veraticus/market-basket/internal/model"
)

func mineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Find frequent item sets and association rules",
		Long: `Mine frequent item sets from a basket file or a stored dataset and print
the association rules that meet the confidence threshold.

Examples:
  # Mine a CSV file
  basket mine --input baskets.csv --min-support 3 --min-confidence 0.7

  # Mine an imported dataset and emit JSON
  basket mine --dataset groceries --output json

  # Show the FP-tree built for the run
  basket mine --input baskets.csv --show-tree`,
		Args: cobra.NoArgs,
		RunE: runMine,
	}

	addMiningFlags(cmd)
	cmd.Flags().StringP("output", "o", cli.OutputText, "output format (text, json, yaml)")
	cmd.Flags().Bool("show-tree", false, "print the FP-tree before mining")
	cmd.Flags().Bool("no-itemsets", false, "omit the frequent item set table from text output")

	return cmd
}

func runMine(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	showTree, _ := cmd.Flags().GetBool("show-tree")
	noItemSets, _ := cmd.Flags().GetBool("no-itemsets")
	showProgress, _ := cmd.Flags().GetBool("progress")

	switch output {
	case cli.OutputText, cli.OutputJSON, cli.OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	if err := bindMiningFlags(cmd); err != nil {
		return err
	}
	settings, err := config.LoadMining(viper.GetViper())
	if err != nil {
		return err
	}

	transactions, err := loadTransactions(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showTree {
		if err := writeTree(out, transactions, settings.MinSupport); err != nil {
			return err
		}
	}

	result, cfg, err := analyze(cmd.Context(), cmd.ErrOrStderr(), settings, transactions, showProgress)
	if err != nil {
		return err
	}

	if output != cli.OutputText {
		return cli.WriteReport(out, result, output)
	}

	fmt.Fprintln(out, cli.FormatSummary(result, cfg))
	if !noItemSets {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatTitle("Frequent Item Sets"))
		fmt.Fprintln(out, cli.FormatItemSets(result.ItemSets, result.Transactions))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.FormatTitle("Association Rules"))
	fmt.Fprintln(out, cli.FormatRules(result.Rules))

	return nil
}

// writeTree prints the FP-tree built from transactions.
func writeTree(w io.Writer, transactions []model.Transaction, minSupport int) error {
	tree, ok := fptree.Build(model.Compact(transactions), minSupport)
	if !ok {
		fmt.Fprintln(w, cli.FormatInfo("FP-tree is empty: no item reaches the minimum support."))
		return nil
	}

	fmt.Fprintln(w, cli.TitleStyle.Render(cli.TreeIcon+" FP-tree"))
	if err := tree.Dump(w); err != nil {
		return fmt.Errorf("failed to print FP-tree: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}
