// Package metrics defines the engine's Prometheus instrumentation,
// grounded on the package-level promauto var pattern used by
// m-lab-tcp-info/metrics/metrics.go and runZeroInc-conniver's exporter: a
// metric is a package var, registered at import time, incremented from
// wherever the event it counts actually occurs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PDUsReceived counts inbound PDUs by channel and logical type
	// (metadata, filedata, eof, ack, nak).
	PDUsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfdp_rx_pdus_received_total",
			Help: "PDUs received, by channel and PDU type.",
		},
		[]string{"channel", "pdu_type"},
	)

	// PDUsSent counts outbound PDUs (ACK, NAK, FIN) by channel and type.
	PDUsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfdp_rx_pdus_sent_total",
			Help: "PDUs sent, by channel and PDU type.",
		},
		[]string{"channel", "pdu_type"},
	)

	// TransactionsCompleted counts transactions that reached a terminal
	// state, by channel and resulting condition code.
	TransactionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfdp_rx_transactions_completed_total",
			Help: "Transactions completed, by channel and condition code.",
		},
		[]string{"channel", "condition_code"},
	)

	// ActiveTransactions reports the number of transactions currently
	// occupying a channel's transaction pool.
	ActiveTransactions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cfdp_rx_active_transactions",
			Help: "Transactions currently active, by channel.",
		},
		[]string{"channel"},
	)

	// GapListEvictions is registered for the times a transaction's chunk
	// list drops an interval because it exceeded its configured capacity.
	// Nothing in this module increments it, so it stays at zero.
	GapListEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfdp_rx_chunk_list_evictions_total",
			Help: "Chunk list entries evicted due to capacity overflow, by channel.",
		},
		[]string{"channel"},
	)

	// BytesReceived is registered for the bytes accepted into a file
	// sink, by channel, duplicates included (wire-received volume, not
	// unique file content). Nothing in this module increments it, so it
	// stays at zero.
	BytesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfdp_rx_bytes_received_total",
			Help: "File data bytes received, by channel.",
		},
		[]string{"channel"},
	)

	// CRCPassDuration tracks how long each background CRC pass wakeup
	// slice takes, to help tune rx_crc_calc_bytes_per_wakeup.
	CRCPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cfdp_rx_crc_pass_slice_seconds",
			Help:    "Wall-clock duration of one background CRC pass slice.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
		},
	)
)
