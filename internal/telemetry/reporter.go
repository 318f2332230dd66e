package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Envelope type discriminators accepted by the collector.
const (
	TypeInstalls = "installs"
	TypeRemovals = "removals"
	TypeProfile  = "profile"
)

// Envelope is the wire format posted to the collector.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ackResponse is the collector's acknowledgement body.
type ackResponse struct {
	Success bool `json:"success"`
}

// Reporter posts telemetry envelopes to the collector. Delivery is
// at-most-once and fire-and-forget: the event is already durable in the
// local ledger before Send is called, so every failure here is logged and
// discarded. There is no retry.
type Reporter struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewReporter creates a Reporter for the given collector base URL.
func NewReporter(baseURL string, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Send performs one POST of env to <base>/statistics and reports whether
// the collector acknowledged it. Send never returns an error: callers must
// not fail or block a package operation because of telemetry.
func (r *Reporter) Send(env Envelope) bool {
	body, err := json.Marshal(env)
	if err != nil {
		r.log.Error("telemetry: failed to encode envelope", "type", env.Type, "error", err)
		return false
	}

	resp, err := r.client.Post(r.baseURL+"/statistics", "application/json", bytes.NewReader(body))
	if err != nil {
		r.log.Error("telemetry: failed to reach collector", "type", env.Type, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Error("telemetry: collector rejected event", "type", env.Type, "status", resp.StatusCode)
		return false
	}

	var ack ackResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		r.log.Error("telemetry: unreadable collector acknowledgement", "type", env.Type, "error", err)
		return false
	}
	if !ack.Success {
		r.log.Error("telemetry: collector reported failure", "type", env.Type)
		return false
	}
	return true
}
