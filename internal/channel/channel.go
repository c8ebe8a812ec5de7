// Package channel implements one CFDP channel's wakeup loop: drain a
// bounded number of inbound PDUs, tick every active transaction, then
// drain a bounded number of outbound PDUs across them round-robin.
// Grounded on the per-channel wakeup design in
// original_source/fsw/inc/cf_tbldefs.h (rx_max_messages_per_wakeup,
// max_outgoing_messages_per_wakeup) and the spec's Tick Driver component.
package channel

import (
	"context"

	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/config"
	"github.com/thnkslprpt/cfdp/internal/metrics"
	"github.com/thnkslprpt/cfdp/internal/pdu"
	"github.com/thnkslprpt/cfdp/internal/receiver"
)

// Inbound is one PDU arriving on a channel, addressed to a transaction.
type Inbound struct {
	Key   pdu.TxnKey
	Class receiver.Class
	PDU   pdu.PDU
}

// Outbound is one PDU a channel wants sent, on behalf of a transaction.
type Outbound struct {
	Key pdu.TxnKey
	PDU pdu.PDU
}

// Sender is how a Channel hands outbound PDUs to the surrounding
// application's transport; the spec places the actual link/socket
// outside this engine's scope.
type Sender func(Outbound) error

// Channel drives one configured channel's transaction pool through
// repeated Wakeup calls. It holds no goroutines of its own — the caller
// (internal/router, or a test) decides the wakeup cadence.
type Channel struct {
	Name string

	cfg   config.ChannelConfig
	pool  *receiver.Pool
	log   *cflog.Logger
	inbox chan Inbound
	send  Sender
}

// New builds a Channel with a pool capacity equal to the given
// transaction limit, and an inbound queue sized for four wakeups' worth of
// rx_max_messages_per_wakeup plus one.
func New(cfg config.ChannelConfig, ticksPerSecond uint32, tmpDir string, crcBytesPerWakeup int64, log *cflog.Logger, txnCapacity int, send Sender) *Channel {
	return &Channel{
		Name:  cfg.Name,
		cfg:   cfg,
		pool:  receiver.NewPool(cfg.Name, cfg, ticksPerSecond, tmpDir, crcBytesPerWakeup, log, txnCapacity),
		log:   log,
		inbox: make(chan Inbound, cfg.RxMaxMessagesPerWakeup*4+1),
		send:  send,
	}
}

// Enqueue hands one inbound PDU to the channel. It blocks if the inbox is
// full, applying backpressure to whatever feeds this channel (the
// spec treats an overfull pipe as the caller's problem, not this
// engine's — CF_ChannelConfig_t.pipe_depth_input is a transport-layer
// concern).
func (c *Channel) Enqueue(ctx context.Context, in Inbound) error {
	select {
	case c.inbox <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wakeup runs one full cycle: drain up to RxMaxMessagesPerWakeup inbound
// PDUs, tick every active transaction, then drain up to
// MaxOutgoingMessagesPerWakeup outbound PDUs round-robin across
// transactions that have something queued.
func (c *Channel) Wakeup(ctx context.Context) error {
	c.drainInbound(ctx)
	c.pool.TickAll()
	return c.drainOutbound()
}

func (c *Channel) drainInbound(ctx context.Context) {
	for i := uint32(0); i < c.cfg.RxMaxMessagesPerWakeup; i++ {
		select {
		case in := <-c.inbox:
			c.deliver(ctx, in)
		default:
			return
		}
	}
}

func (c *Channel) deliver(ctx context.Context, in Inbound) {
	txn, err := c.pool.Acquire(ctx, in.Key, in.Class)
	if err != nil {
		c.log.Errorf(ctx, in.Key, "", "dropping pdu: %v", err)
		return
	}
	metrics.PDUsReceived.WithLabelValues(c.Name, pduTypeName(in.PDU)).Inc()
	if err := txn.Recv(in.PDU); err != nil {
		c.log.Errorf(ctx, in.Key, "", "processing pdu: %v", err)
	}
}

// drainOutbound enforces max_outgoing_messages_per_wakeup (0 = unlimited)
// while fanning fairly across every transaction with queued output,
// rather than letting one chatty transaction starve the rest in a given
// wakeup — the SUPPLEMENT feature named in SPEC_FULL.md.
func (c *Channel) drainOutbound() error {
	budget := int(c.cfg.MaxOutgoingMessagesPerWakeup)
	unlimited := budget == 0
	sent := 0
	for unlimited || sent < budget {
		progressed := false
		for _, txn := range c.pool.Active() {
			if len(txn.Outbox) == 0 {
				continue
			}
			p := txn.Outbox[0]
			txn.Outbox = txn.Outbox[1:]
			if c.send != nil {
				if err := c.send(Outbound{Key: txn.Key, PDU: p}); err != nil {
					return err
				}
			}
			metrics.PDUsSent.WithLabelValues(c.Name, pduTypeName(p)).Inc()
			sent++
			progressed = true
			if !unlimited && sent >= budget {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return nil
}

func pduTypeName(p pdu.PDU) string {
	switch p.(type) {
	case pdu.Metadata:
		return "metadata"
	case pdu.FileData:
		return "filedata"
	case pdu.EOF:
		return "eof"
	case pdu.Nak:
		return "nak"
	case pdu.Fin:
		return "fin"
	case pdu.Ack:
		return "ack"
	default:
		return "unknown"
	}
}

// Pool exposes the channel's transaction pool, mainly for tests and
// metrics/administrative introspection.
func (c *Channel) Pool() *receiver.Pool {
	return c.pool
}
