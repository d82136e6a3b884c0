package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [id] [id] [id]",
		Short: "Compare two or three documents",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			orch, err := app.orchestrator(nil, nil)
			if err != nil {
				return err
			}

			// Filenames in the prompt come from the mirrored list.
			orch.RefreshDocuments(cmd.Context())

			app.state.ClearCompareSelection()
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("not a document id: %s", arg)
				}
				if err := app.state.ToggleCompareSelection(id); err != nil {
					return err
				}
			}

			spinner := getSpinner(" Comparing documents...")
			result, err := orch.RunComparison(cmd.Context())
			spinner.Finish()
			fmt.Print("\n")
			if err != nil {
				return err
			}

			header := color.New(color.FgCyan, color.Bold).PrintfFunc()

			header("Overlap: %d%%\n", result.OverlapScorePercent)

			header("\nSimilarities\n")
			for _, item := range result.Similarities {
				fmt.Printf("  - %s\n", item)
			}
			header("\nDifferences\n")
			for _, item := range result.Differences {
				fmt.Printf("  - %s\n", item)
			}
			header("\nInsights\n")
			for _, item := range result.Insights {
				fmt.Printf("  - %s\n", item)
			}
			return nil
		},
	}
}
