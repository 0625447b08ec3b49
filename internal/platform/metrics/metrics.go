// Package metrics is the single source of truth for the Prometheus metric
// names, labels, and help strings exposed by the chat backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ConnectionsActive tracks the number of live websocket connections.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Current number of registered websocket connections.",
	},
)

// MessagesPersistedTotal counts messages durably appended to the store.
// Label:
//   - kind: "text", "file", or "audio"
var MessagesPersistedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_persisted_total",
		Help:      "Total number of chat messages persisted, by kind.",
	},
	[]string{"kind"},
)

// FanoutDeliveredTotal counts individual per-connection deliveries.
// Label:
//   - event: "chatMessage" or "typing"
var FanoutDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_delivered_total",
		Help:      "Total number of events delivered to individual connections.",
	},
	[]string{"event"},
)

// AuthFailuresTotal counts rejected connection handshakes.
// Label:
//   - reason: "missing", "invalid", or "unknown_user"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of websocket handshakes rejected by the credential verifier.",
	},
	[]string{"reason"},
)

// PresenceBroadcastsTotal counts presence recomputations published after
// registry mutations.
var PresenceBroadcastsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_broadcasts_total",
		Help:      "Total number of onlineUsers broadcasts triggered by register/deregister.",
	},
)

// StoreErrorsTotal counts failed message store operations.
// Label:
//   - op: "append" or "recent"
var StoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Total number of message store operations that failed.",
	},
	[]string{"op"},
)
