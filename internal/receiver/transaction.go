// Package receiver implements the CFDP receive-side transaction state
// machines, Class 1 (unacknowledged, r1.go) and Class 2 (acknowledged,
// r2.go/nak.go/complete.go), grounded on the function-level design of
// original_source/fsw/src/cf_cfdp_r.h. A Transaction owns a ranges.ChunkList,
// a filesink.Sink, and a set of timer.Timer countdowns; nothing here reads
// a clock or touches the network — the channel layer feeds it PDUs and
// ticks, and drains Outbox for what to send back.
package receiver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/config"
	"github.com/thnkslprpt/cfdp/internal/crc"
	"github.com/thnkslprpt/cfdp/internal/filesink"
	"github.com/thnkslprpt/cfdp/internal/pdu"
	"github.com/thnkslprpt/cfdp/internal/ranges"
	"github.com/thnkslprpt/cfdp/internal/timer"
)

// Class distinguishes CFDP Class 1 (unacknowledged) from Class 2
// (acknowledged) transfer semantics.
type Class int

const (
	ClassUnacknowledged Class = 1
	ClassAcknowledged   Class = 2
)

// Substate tracks where a transaction is in its class-specific state
// machine. R1 stays in RecvFileData and signals its end through Finished;
// R2 moves through RecvFileData, SendNak, WaitCrc, SendFin and WaitFinAck.
// Neither class enters SubstateComplete.
type Substate int

const (
	SubstateRecvFileData Substate = iota
	SubstateSendNak
	SubstateWaitCrc
	SubstateSendFin
	SubstateWaitFinAck
	SubstateComplete
)

// Transaction is one receive-side CFDP transfer in progress: its chunk
// list, file sink, timers, and class-specific substate.
type Transaction struct {
	Key   pdu.TxnKey
	Corr  pdu.CorrelationID
	Class Class

	cfg               config.ChannelConfig
	ticksPerSecond    uint32
	tmpDirPath        string
	crcBytesPerWakeup int64
	crcScratch        []byte
	log               *cflog.Logger
	ctx               context.Context

	substate Substate

	gotMetadata     bool
	expectedSize    int64
	destName        string
	mismatchLogged  bool

	gotEOF        bool
	eofFileSize   int64
	eofCRC        uint32

	chunks *ranges.ChunkList
	sink   *filesink.Sink

	crcEngine *crc.Engine // R1: immediate, whole-file-at-EOF compare
	crcPass   *crc.Pass   // R2: deferred, tick-bounded compare

	ackTimer        timer.Timer
	nakTimer        timer.Timer
	inactivityTimer timer.Timer
	ackCount        uint32
	nakCount        uint32

	status       pdu.ConditionCode
	deliveryCode pdu.DeliveryCode
	fileStatus   pdu.FileStatus
	cancelled    bool
	finished     bool

	// Outbox accumulates PDUs the channel layer should send on this
	// transaction's behalf (EOF-ACK, NAK, FIN) for the current wakeup. It is
	// drained by the channel, respecting
	// ChannelConfig.MaxOutgoingMessagesPerWakeup.
	Outbox []pdu.PDU
}

// New allocates a fresh transaction for key, in the idle state a Pool
// hands out before the first PDU is processed.
func New(ctx context.Context, key pdu.TxnKey, class Class, cfg config.ChannelConfig, ticksPerSecond uint32, tmpDir string, crcBytesPerWakeup int64, log *cflog.Logger) *Transaction {
	t := &Transaction{
		Key:               key,
		Corr:              pdu.NewCorrelationID(),
		Class:             class,
		cfg:               cfg,
		ticksPerSecond:    ticksPerSecond,
		tmpDirPath:        tmpDir,
		crcBytesPerWakeup: crcBytesPerWakeup,
		log:               log,
		ctx:               ctx,
	}
	t.reset()
	return t
}

// reset puts a transaction in its just-allocated state; New calls it at
// construction, and the Pool does not reuse Transaction objects
// (CF_CFDP_R_Init / CF_CFDP_R1_Reset /
// CF_CFDP_R2_Reset collapse to one function here since Go has no
// per-class vtable to dispatch through).
func (t *Transaction) reset() {
	t.substate = SubstateRecvFileData
	t.gotMetadata = false
	t.expectedSize = 0
	t.destName = ""
	t.mismatchLogged = false
	t.gotEOF = false
	t.eofFileSize = 0
	t.eofCRC = 0
	t.chunks = ranges.NewChunkList(t.cfg.ChunkListCapacity)
	t.sink = nil
	t.crcEngine = crc.New()
	t.crcPass = nil
	t.ackTimer = timer.Timer{}
	t.nakTimer = timer.Timer{}
	t.inactivityTimer.InitRelSec(t.cfg.InactivityTimerS, t.ticksPerSecond)
	t.ackCount = 0
	t.nakCount = 0
	t.status = pdu.NoError
	t.deliveryCode = pdu.DeliveryIncomplete
	t.fileStatus = pdu.FileStatusUnreported
	t.cancelled = false
	t.finished = false
	t.Outbox = nil
}

// Finished reports whether the transaction has reached a terminal state
// and may be returned to the pool once the caller is done inspecting it.
func (t *Transaction) Finished() bool {
	return t.finished
}

// Status returns the transaction's terminal (or current, if not yet
// finished) condition code.
func (t *Transaction) Status() pdu.ConditionCode {
	return t.status
}

// setFinStatus records a terminal status code and arms the FIN directive
// atomically, so every code set through it is followed by a FIN —
// CF_CFDP_R2_SetFinTxnStatus in the original source. filestoreReject sets
// FilestoreRejection without arming FIN, and retryFin sets
// CheckLimitReached and finalizes without sending another FIN.
func (t *Transaction) setFinStatus(code pdu.ConditionCode) {
	t.status = code
	if code != pdu.NoError {
		t.cancelled = code == pdu.CancelRequestReceived
	}
	t.substate = SubstateSendFin
}

// Cancel aborts the transaction with CancelRequestReceived, the one
// externally-triggerable terminal condition (an application asking the
// engine to give up on a transfer already in progress).
func (t *Transaction) Cancel() {
	if t.finished {
		return
	}
	t.log.Noticef(t.ctx, t.Key, cflog.EventCancelled, "transaction cancelled")
	switch t.Class {
	case ClassUnacknowledged:
		t.status = pdu.CancelRequestReceived
		t.finalize(pdu.DeliveryIncomplete, pdu.FileStatusDiscarded)
	case ClassAcknowledged:
		t.setFinStatus(pdu.CancelRequestReceived)
	}
}

// ensureSink lazily opens the transaction's file sink: at its final path
// if Metadata has already named it, otherwise in a temp location pending
// a late Metadata PDU (spec §4.3's "file data may legally precede its
// metadata").
func (t *Transaction) ensureSink() error {
	if t.sink != nil {
		return nil
	}
	var (
		s   *filesink.Sink
		err error
	)
	if t.gotMetadata && t.destName != "" {
		s, err = filesink.OpenFinal(t.destName)
	} else {
		s, err = filesink.OpenAtTemp(t.tmpDirPath)
	}
	if err != nil {
		return errors.Wrap(err, "opening file sink")
	}
	t.sink = s
	return nil
}

// applyMetadata records the destination name and expected file size from
// a Metadata PDU, relocating an already-open temp sink to its final path
// if file data arrived first. A second Metadata PDU naming a different
// file is ignored per spec's literal text (Open Question (b)), but logged
// once as MD_MISMATCH so the anomaly is at least observable.
func (t *Transaction) applyMetadata(md pdu.Metadata) error {
	if t.gotMetadata {
		if md.DstName != t.destName && !t.mismatchLogged {
			t.mismatchLogged = true
			t.log.Warnf(t.ctx, t.Key, cflog.EventMetadataMismatch,
				"duplicate metadata names %q, first metadata named %q; ignoring", md.DstName, t.destName)
		}
		return nil
	}
	t.gotMetadata = true
	t.destName = md.DstName
	t.expectedSize = md.FileSize
	t.log.Noticef(t.ctx, t.Key, cflog.EventMetadataReceived, "metadata received: dst=%q size=%d", md.DstName, md.FileSize)

	if err := t.ensureSink(); err != nil {
		return t.filestoreReject(err)
	}
	if t.sink.IsTemp() {
		if err := t.sink.MoveTempToFinal(t.destName); err != nil {
			return t.filestoreReject(err)
		}
	}
	if t.substate == SubstateSendNak {
		// Was only waiting on the (0,0) Metadata-retransmission NAK;
		// Metadata has now arrived, so fall back to evaluating actual
		// file-data gaps (if EOF already arrived) or plain receiving.
		t.substate = SubstateRecvFileData
		if t.gotEOF {
			t.checkComplete(true)
		}
	}
	return nil
}

// filestoreReject records a filestore-rejection terminal status and
// returns the wrapped error for the caller's own error-return path; it
// neither finishes the transaction nor arms FIN. Only R2's CRC-pass paths
// (startCrcPass, advanceCrcPass) follow it with setFinStatus; after a
// failure on the Metadata or File Data path of either class, or in R1's
// EOF checksum read, the transaction stays in its current substate.
func (t *Transaction) filestoreReject(err error) error {
	t.status = pdu.FilestoreRejection
	t.log.Errorf(t.ctx, t.Key, cflog.EventFilestoreReject, "filestore rejection: %v", err)
	return err
}

// writeFileData writes one FileData PDU's payload into the sink and
// records the byte range as received.
func (t *Transaction) writeFileData(fd pdu.FileData) error {
	if err := t.ensureSink(); err != nil {
		return t.filestoreReject(err)
	}
	_, mismatch, err := t.sink.WriteAt(fd.Offset, fd.Data)
	if err != nil {
		return t.filestoreReject(err)
	}
	if mismatch {
		t.log.Warnf(t.ctx, t.Key, "", "overlapping file data disagreed with bytes already on disk at offset %d", fd.Offset)
	}
	t.chunks.Insert(fd.Offset, fd.Offset+int64(len(fd.Data)))
	t.inactivityTimer.InitRelSec(t.cfg.InactivityTimerS, t.ticksPerSecond)
	t.log.Debugf(t.ctx, t.Key, "file data: offset=%d len=%d", fd.Offset, len(fd.Data))
	return nil
}

// finalize closes out the transaction: stops the sink, records the
// delivery outcome, and marks it ready for the pool to reclaim.
func (t *Transaction) finalize(delivery pdu.DeliveryCode, status pdu.FileStatus) {
	t.deliveryCode = delivery
	t.fileStatus = status
	if t.sink != nil {
		if status == pdu.FileStatusDiscarded {
			_ = t.sink.Unlink()
		} else {
			_ = t.sink.Close()
		}
	}
	t.finished = true
}

