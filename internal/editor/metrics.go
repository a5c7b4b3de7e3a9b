package editor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// actionsTotal counts dispatched timeline actions.
	// Labels: type (wire name), undoable ("true"/"false")
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genesis_editor_actions_total",
		Help: "Timeline actions dispatched, by type",
	}, []string{"type", "undoable"})

	// historyOpsTotal counts undo and redo requests.
	// Labels: op ("undo"/"redo"), result ("applied"/"empty")
	historyOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genesis_editor_history_ops_total",
		Help: "Undo and redo requests by outcome",
	}, []string{"op", "result"})

	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genesis_editor_saves_total",
		Help: "Project saves by outcome",
	}, []string{"result"})

	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genesis_editor_open_sessions",
		Help: "Projects currently held open in memory",
	})

	documentBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "genesis_editor_document_bytes",
		Help:    "Size of saved interchange documents",
		Buckets: prometheus.ExponentialBuckets(512, 4, 8),
	})
)

func recordHistoryOp(op string, applied bool) {
	result := "empty"
	if applied {
		result = "applied"
	}
	historyOpsTotal.WithLabelValues(op, result).Inc()
}

func recordAction(actionType string, undoable bool) {
	actionsTotal.WithLabelValues(actionType, strconv.FormatBool(undoable)).Inc()
}
