package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/market-basket/internal/cli"
)

func datasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Manage stored basket datasets",
	}

	cmd.AddCommand(datasetsListCmd())
	cmd.AddCommand(datasetsDeleteCmd())

	return cmd
}

func datasetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored datasets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			datasets, err := store.ListDatasets(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(datasets) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No datasets yet. Import some baskets with 'basket import'."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle("Datasets"))
			for _, d := range datasets {
				fmt.Fprintf(out, "%s %-20s %6d baskets  %s  %s\n",
					cli.FolderIcon, d.Name, d.Baskets,
					cli.SubtleStyle.Render(d.CreatedAt.Format(time.DateOnly)),
					cli.SubtleStyle.Render(d.Source))
			}
			return nil
		},
	}
}

func datasetsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a dataset and its baskets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			yes, _ := cmd.Flags().GetBool("yes")
			out := cmd.OutOrStdout()

			if !yes && !confirm(cmd, fmt.Sprintf("Delete dataset %q? [y/N]", name)) {
				fmt.Fprintln(out, cli.FormatInfo("Nothing deleted"))
				return nil
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteDataset(cmd.Context(), name); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted dataset %q", name)))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprint(cmd.OutOrStdout(), cli.FormatPrompt(question))

	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
