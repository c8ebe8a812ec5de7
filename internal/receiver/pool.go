package receiver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/config"
	"github.com/thnkslprpt/cfdp/internal/metrics"
	"github.com/thnkslprpt/cfdp/internal/pdu"
)

// ErrPoolExhausted is returned when a channel's transaction pool has no
// free slot for a new transaction. The spec's concurrency model is a
// fixed-capacity arena, not an unbounded map, so a flood of distinct new
// transactions is rejected rather than allowed to allocate without bound.
var ErrPoolExhausted = errors.New("transaction pool exhausted")

// Pool is a fixed-capacity set of Transactions, indexed by TxnKey, for
// one channel. The slot count is fixed at NewPool time and a slot returns
// to the free list once its transaction finishes. Acquire builds a new
// Transaction (New) for every transaction it admits; Transaction objects
// are not reused.
type Pool struct {
	channel           string
	cfg               config.ChannelConfig
	ticksPerSecond    uint32
	tmpDir            string
	crcBytesPerWakeup int64
	log               *cflog.Logger

	slots  []*Transaction
	byKey  map[pdu.TxnKey]*Transaction
	free   []int
}

// NewPool preallocates capacity Transaction slots for one channel.
func NewPool(channel string, cfg config.ChannelConfig, ticksPerSecond uint32, tmpDir string, crcBytesPerWakeup int64, log *cflog.Logger, capacity int) *Pool {
	p := &Pool{
		channel:           channel,
		cfg:               cfg,
		ticksPerSecond:    ticksPerSecond,
		tmpDir:            tmpDir,
		crcBytesPerWakeup: crcBytesPerWakeup,
		log:               log,
		slots:             make([]*Transaction, capacity),
		byKey:             make(map[pdu.TxnKey]*Transaction, capacity),
		free:              make([]int, capacity),
	}
	for i := 0; i < capacity; i++ {
		p.free[i] = capacity - 1 - i
	}
	return p
}

// Lookup returns the active transaction for key, if any.
func (p *Pool) Lookup(key pdu.TxnKey) (*Transaction, bool) {
	t, ok := p.byKey[key]
	return t, ok
}

// Acquire returns the active transaction for key, or allocates one from a
// free slot if this is a new transaction. It fails with ErrPoolExhausted
// if every slot is occupied by a still-active transaction.
func (p *Pool) Acquire(ctx context.Context, key pdu.TxnKey, class Class) (*Transaction, error) {
	if t, ok := p.byKey[key]; ok {
		return t, nil
	}
	if len(p.free) == 0 {
		return nil, errors.Wrapf(ErrPoolExhausted, "channel %q", p.channel)
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	t := New(ctx, key, class, p.cfg, p.ticksPerSecond, p.tmpDir, p.crcBytesPerWakeup, p.log)
	p.slots[idx] = t
	p.byKey[key] = t
	metrics.ActiveTransactions.WithLabelValues(p.channel).Inc()
	return t, nil
}

// ReapFinished scans every occupied slot, releasing any transaction that
// has reached a terminal state back to the free list and recording its
// outcome.
func (p *Pool) ReapFinished() {
	for idx, t := range p.slots {
		if t == nil || !t.Finished() {
			continue
		}
		metrics.TransactionsCompleted.WithLabelValues(p.channel, t.Status().String()).Inc()
		metrics.ActiveTransactions.WithLabelValues(p.channel).Dec()
		delete(p.byKey, t.Key)
		p.slots[idx] = nil
		p.free = append(p.free, idx)
	}
}

// Active returns every transaction currently occupying a slot, for the
// tick driver to sweep.
func (p *Pool) Active() []*Transaction {
	out := make([]*Transaction, 0, len(p.byKey))
	for _, t := range p.slots {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Len reports how many slots are currently occupied.
func (p *Pool) Len() int {
	return len(p.byKey)
}

// Capacity reports the pool's fixed slot count.
func (p *Pool) Capacity() int {
	return len(p.slots)
}
