// Package metrics exposes Prometheus counters for arrbot.
//
// Counters are registered on the default registry at init and served by the
// webhook listener at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// CommandsTotal counts dispatched chat commands by name and outcome.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arrbot_commands_total",
			Help: "Total number of chat commands dispatched",
		},
		[]string{"command", "outcome"},
	)

	// WebhooksTotal counts received webhook deliveries by source, event type and HTTP status.
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arrbot_webhooks_total",
			Help: "Total number of webhook deliveries received",
		},
		[]string{"source", "event", "status"},
	)

	// UpstreamRequestsTotal counts outbound API calls to Sonarr, Radarr, TVDB and TMDB.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arrbot_upstream_requests_total",
			Help: "Total number of requests to upstream services",
		},
		[]string{"service", "outcome"},
	)

	// MessagesSentTotal counts chat messages sent.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arrbot_messages_sent_total",
			Help: "Total number of chat messages sent",
		},
		[]string{"outcome"},
	)
)

// RecordCommand records a dispatched command.
func RecordCommand(command string, err error) {
	CommandsTotal.WithLabelValues(command, outcome(err)).Inc()
}

// RecordUpstream records an outbound request.
func RecordUpstream(service string, err error) {
	UpstreamRequestsTotal.WithLabelValues(service, outcome(err)).Inc()
}

// RecordMessage records a chat send.
func RecordMessage(err error) {
	MessagesSentTotal.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
