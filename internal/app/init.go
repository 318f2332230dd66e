package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/config"
	"github.com/blackwell-systems/pkgsentry/internal/ledger"
	"github.com/blackwell-systems/pkgsentry/internal/telemetry"
)

var (
	initNoCollect bool
	initIBM       bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the telemetry profile and analytics ledger",
		Long: `Create the anonymous profile and an empty analytics ledger.

This is the one operation that writes the profile; it is immutable
afterwards. init is also the remediation step when the config file is
missing or corrupt.

The profile registration event is reported to the collector during this
first-run window regardless of the opt-out setting, matching the package
manager's bootstrap behaviour.`,
		Example: `  # Standard setup
  pkgsentry init

  # Opt out of usage statistics
  pkgsentry init --no-collect`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVar(&initNoCollect, "no-collect", false, "disable usage statistics collection")
	initCmd.Flags().BoolVar(&initIBM, "ibm", false, "mark this profile as inside the IBM network")

	RootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	log := newLogger()

	st := ledger.Open(paths.LedgerFile)
	if st.Exists() {
		return fmt.Errorf("already initialized: ledger exists at %s (the profile is written once; use 'pkgsentry ledger rebuild' for a corrupt ledger)", paths.LedgerFile)
	}

	cfg := &config.Config{IsCollectingStats: !initNoCollect}
	if err := config.Save(paths.ConfigFile, cfg); err != nil {
		return err
	}

	profile := ledger.Profile{
		UUID:  uuid.NewString(),
		IsBot: runningUnderAutomation(),
		IsIBM: initIBM,
	}
	if err := st.Init(profile); err != nil {
		return err
	}

	// Profile registration happens inside the first-run window: the ledger
	// did not exist when this invocation started, so the gate permits it.
	if telemetry.Permitted(cfg, true) {
		r := telemetry.NewReporter(flagCollectorURL, log)
		r.Send(telemetry.Envelope{Type: telemetry.TypeProfile, Data: profile})
	}

	fmt.Printf("Initialized pkgsentry state in %s\n", paths.StateDir)
	fmt.Printf("Profile: %s\n", profile.UUID)
	if initNoCollect {
		fmt.Println("Usage statistics: disabled")
	} else {
		fmt.Println("Usage statistics: enabled (set is_collecting_stats to false to opt out)")
	}
	return nil
}

// runningUnderAutomation reports whether this looks like a CI or bot
// environment rather than an interactive user.
func runningUnderAutomation() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "JENKINS_URL", "BUILD_ID"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}
