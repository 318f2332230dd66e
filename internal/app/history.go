package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/output"
	"github.com/blackwell-systems/pkgsentry/internal/store"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show past audit runs",
		Long: `Display previously recorded audit runs, newest first.

Every completed 'pkgsentry audit' records its aggregated severity counts
and findings in the local history database.`,
		Example: `  # Show the last 20 runs
  pkgsentry history

  # Show the last 5 runs
  pkgsentry history --limit 5`,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("invalid limit: %d (must be positive)", historyLimit)
	}

	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	st, err := store.New(paths.DBFile)
	if err != nil {
		return fmt.Errorf("failed to open audit history: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		if errors.Is(err, store.ErrNotInitialized) {
			fmt.Println("No audit runs recorded yet. Run 'pkgsentry audit' first.")
			return nil
		}
		return err
	}

	fmt.Print(output.RenderHistoryTable(runs))
	return nil
}
