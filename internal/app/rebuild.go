package app

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/ledger"
)

var (
	ledgerCmd = &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and repair the analytics ledger",
	}

	ledgerRebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild a corrupt analytics ledger",
		Long: `Rebuild the analytics ledger after corruption.

The corrupt file is archived next to the ledger and a fresh ledger is
written. The profile uuid is salvaged from the damaged file when it can
still be decoded; otherwise a new profile identity is generated. Event
history in the corrupt file is not recovered.

A ledger that parses cleanly is left untouched.`,
		RunE: runLedgerRebuild,
	}
)

func init() {
	ledgerCmd.AddCommand(ledgerRebuildCmd)
	RootCmd.AddCommand(ledgerCmd)
}

func runLedgerRebuild(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	st := ledger.Open(paths.LedgerFile)
	_, err = st.Load()
	switch {
	case err == nil:
		fmt.Println("Ledger is valid; nothing to rebuild.")
		return nil
	case errors.Is(err, ledger.ErrNotInitialized):
		return err // init, not rebuild, creates the first ledger
	case errors.Is(err, ledger.ErrCorrupt):
		// fall through to the rebuild
	default:
		return err
	}

	archive, err := st.Rebuild(ledger.Profile{UUID: uuid.NewString()})
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Printf("Ledger rebuilt at %s\n", paths.LedgerFile)
	if archive != "" {
		fmt.Printf("Corrupt ledger archived at %s\n", archive)
	}
	return nil
}
