package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/Veraticus/market-basket/internal/config"
	"github.com/Veraticus/market-basket/internal/tui"
	"github.com/Veraticus/market-basket/internal/tui/themes"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore association rules interactively",
		Long: `Mine baskets and open the rules in an interactive browser where they can be
filtered by item, re-sorted and narrowed by confidence.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	addMiningFlags(cmd)
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin)")

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	theme, _ := cmd.Flags().GetString("theme")
	showProgress, _ := cmd.Flags().GetBool("progress")

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

	result, _, err := analyze(cmd.Context(), cmd.ErrOrStderr(), settings, transactions, showProgress)
	if err != nil {
		return err
	}

	if len(result.Rules) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No rules meet the confidence threshold."))
		return nil
	}

	return tui.Run(cmd.Context(), result.Rules, themes.ByName(theme))
}
