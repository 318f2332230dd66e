package app

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/config"
	"github.com/blackwell-systems/pkgsentry/internal/ledger"
	"github.com/blackwell-systems/pkgsentry/internal/telemetry"
)

var (
	recordUpgrade    bool
	recordBuild      bool
	recordRuntimeDep bool

	recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Record a package event (invoked by the package manager hooks)",
		Long: `Record an install or remove event in the analytics ledger and forward it
to the collector.

These subcommands are the register hooks the install and remove flows call.
They are gated on the is_collecting_stats consent setting; when collection
is disabled they do nothing at all. The ledger append always happens before
the network post, and a failed post is logged and discarded so the calling
package operation never fails because of telemetry.`,
	}

	recordInstallCmd = &cobra.Command{
		Use:   "install <name> <version>",
		Short: "Record a package installation",
		Args:  cobra.ExactArgs(2),
		RunE:  runRecordInstall,
	}

	recordRemoveCmd = &cobra.Command{
		Use:   "remove <name> <version>",
		Short: "Record a package removal",
		Args:  cobra.ExactArgs(2),
		RunE:  runRecordRemove,
	}
)

func init() {
	recordInstallCmd.Flags().BoolVar(&recordUpgrade, "upgrade", false, "this install replaced an existing version")
	recordInstallCmd.Flags().BoolVar(&recordBuild, "build", false, "this install was part of a source build")
	recordInstallCmd.Flags().BoolVar(&recordRuntimeDep, "runtime-dep", false, "this install satisfied a runtime dependency")

	recordCmd.AddCommand(recordInstallCmd)
	recordCmd.AddCommand(recordRemoveCmd)
	RootCmd.AddCommand(recordCmd)
}

func runRecordInstall(cmd *cobra.Command, args []string) error {
	ev := ledger.InstallEvent{
		Name:                       args[0],
		Version:                    args[1],
		Timestamp:                  time.Now().Unix(),
		IsUpgrade:                  recordUpgrade,
		IsBuildInstall:             recordBuild,
		IsRuntimeDependencyInstall: recordRuntimeDep,
	}
	return recordEvent(telemetry.TypeInstalls, ev, func(st *ledger.Store) error {
		return st.AppendInstall(ev)
	})
}

func runRecordRemove(cmd *cobra.Command, args []string) error {
	ev := ledger.RemoveEvent{
		Name:      args[0],
		Version:   args[1],
		Timestamp: time.Now().Unix(),
	}
	return recordEvent(telemetry.TypeRemovals, ev, func(st *ledger.Store) error {
		return st.AppendRemove(ev)
	})
}

// recordEvent runs the shared gate → append → forward flow. Local
// durability comes first: the append must succeed before anything is sent,
// and the send outcome is ignored.
func recordEvent(envType string, data any, appendFn func(*ledger.Store) error) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	log := newLogger()

	// Config absence or corruption is fatal here: consent must never be
	// silently defaulted.
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return err
	}

	st := ledger.Open(paths.LedgerFile)
	if !telemetry.Permitted(cfg, !st.Exists()) {
		log.Debug("telemetry disabled, event discarded", "type", envType)
		return nil
	}

	if err := appendFn(st); err != nil {
		return err
	}

	r := telemetry.NewReporter(flagCollectorURL, log)
	r.Send(telemetry.Envelope{Type: envType, Data: data})
	return nil
}
