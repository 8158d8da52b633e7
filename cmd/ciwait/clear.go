package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ciwait/ciwait/internal/gitcfg"
	"github.com/ciwait/ciwait/internal/history"
)

// clearCmd forgets the stored run durations for both outcome categories.
var clearCmd = &cobra.Command{
	Use:   "clear-history",
	Short: "Forget stored run durations",
	Long: `Remove the rolling run-duration history for both the success and the
failure category from the repository's git config.

Useful after a CI pipeline change that makes old durations misleading.
Clearing an already empty history is a no-op.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	store := gitcfg.New(configSection)
	hist := history.NewStore(store, 0, newLogger(verbose))

	for _, category := range []history.Category{history.CategorySuccess, history.CategoryFailure} {
		if err := hist.Clear(category); err != nil {
			return fmt.Errorf("failed to clear %s history: %w", category, err)
		}
	}

	cmd.Println("cleared stored run history")
	return nil
}
