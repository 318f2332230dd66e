// Package telemetry implements the consent gate and the best-effort
// forwarding of recorded events to the remote collector.
package telemetry

import "github.com/blackwell-systems/pkgsentry/internal/config"

// Permitted reports whether telemetry may be recorded and transmitted.
//
// firstRun covers the bootstrap window before the ledger exists: profile
// registration happens before the user has had any chance to opt out, and
// collection is treated as granted for that one window. This mirrors the
// long-standing behaviour of the original consent check and is deliberately
// not extended to any other missing file.
func Permitted(cfg *config.Config, firstRun bool) bool {
	if firstRun {
		return true
	}
	return cfg.IsCollectingStats
}
