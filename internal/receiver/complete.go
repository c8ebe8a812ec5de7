package receiver

import (
	"time"

	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/metrics"
	"github.com/thnkslprpt/cfdp/internal/pdu"
)

// advanceCrcPass runs one tick's worth of the background checksum
// calculation (CF_CFDP_R2_CalcCrcChunk), bounded by
// rx_crc_calc_bytes_per_wakeup so a large file never blocks a channel
// wakeup on a single huge read. Once the pass completes it immediately
// decides the terminal condition code and arms FIN.
func (t *Transaction) advanceCrcPass() {
	start := time.Now()
	done, err := t.crcPass.Advance(t.sink, t.crcBytesPerWakeup, t.crcScratch)
	metrics.CRCPassDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		t.filestoreReject(err)
		t.setFinStatus(pdu.FilestoreRejection)
		return
	}
	if !done {
		return
	}
	if t.crcPass.Matches(t.eofCRC) {
		t.setFinStatus(pdu.NoError)
	} else {
		t.log.Errorf(t.ctx, t.Key, cflog.EventChecksumMismatch, "checksum mismatch: got %08x want %08x", t.crcPass.Result(), t.eofCRC)
		t.setFinStatus(pdu.ChecksumFailure)
	}
}

// emitFin queues a FIN PDU reflecting the transaction's current terminal
// status (CF_CFDP_R2_SubstateSendFin) and arms the ACK timer to await a
// FIN-ACK. Called both when first reaching SubstateSendFin and on every
// ACK-timer-driven retry.
func (t *Transaction) emitFin() {
	delivery, status := t.outcomeFromStatus()
	fin := pdu.Fin{
		ConditionCode: t.status,
		DeliveryCode:  delivery,
		FileStatus:    status,
	}
	t.Outbox = append(t.Outbox, fin)
	t.log.Noticef(t.ctx, t.Key, cflog.EventFinSent, "fin sent: condition=%s delivery=%v", t.status, delivery)
	t.substate = SubstateWaitFinAck
	t.ackTimer.InitRelSec(t.cfg.AckTimerS, t.ticksPerSecond)
}
