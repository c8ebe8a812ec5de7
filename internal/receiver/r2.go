package receiver

import (
	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/pdu"
)

// RecvR2 processes one incoming PDU on a Class 2 (acknowledged)
// transaction, dispatching by the transaction's current substate
// (CF_CFDP_R2_Recv).
func (t *Transaction) RecvR2(p pdu.PDU) error {
	if t.finished {
		return nil
	}
	switch v := p.(type) {
	case pdu.Metadata:
		return t.applyMetadata(v)
	case pdu.FileData:
		return t.recvFileDataR2(v)
	case pdu.EOF:
		return t.recvEOFR2(v)
	case pdu.Ack:
		return t.recvAckR2(v)
	case pdu.Nak:
		// The peer's own NAK, addressed to this entity by mistake; log
		// and drop (spec §6: receive-side only logs peer NAKs).
		t.log.Debugf(t.ctx, t.Key, "ignoring peer-originated NAK")
		return nil
	default:
		return nil
	}
}

func (t *Transaction) recvFileDataR2(fd pdu.FileData) error {
	if err := t.writeFileData(fd); err != nil {
		return err
	}
	// A File Data PDU is forward progress: give the NAK limit a fresh
	// budget instead of counting retries against gaps that have since
	// been closed (spec Testable Property #7).
	t.nakCount = 0
	if !t.gotMetadata {
		// CF_CFDP_R2_GapCompute's (0,0) special case: file data is
		// arriving but Metadata never has, so request retransmission of
		// Metadata itself rather than any file-content gap.
		if t.substate != SubstateSendNak {
			t.substate = SubstateSendNak
			t.sendNak()
		}
		return nil
	}
	if t.substate == SubstateSendNak || t.substate == SubstateWaitCrc {
		t.checkComplete(true)
	}
	return nil
}

func (t *Transaction) recvEOFR2(eof pdu.EOF) error {
	t.gotEOF = true
	t.eofFileSize = eof.FileSize
	t.eofCRC = eof.CRC
	t.log.Noticef(t.ctx, t.Key, cflog.EventEOFReceived, "eof received: size=%d crc=%08x condition=%s", eof.FileSize, eof.CRC, eof.ConditionCode)

	t.Outbox = append(t.Outbox, pdu.Ack{DirectiveCode: pdu.DirectiveEOF, ConditionCode: eof.ConditionCode})
	t.log.Noticef(t.ctx, t.Key, cflog.EventEOFAckSent, "eof-ack sent")

	if eof.ConditionCode != pdu.NoError {
		// A sender-initiated cancel: skip straight to FIN, no checksum,
		// no further NAK round trips.
		t.setFinStatus(eof.ConditionCode)
		return nil
	}

	t.checkComplete(true)
	return nil
}

func (t *Transaction) recvAckR2(ack pdu.Ack) error {
	if !ack.IsFinAck() {
		// EOF-ACK carries no information this receiver acts on.
		return nil
	}
	if t.substate != SubstateWaitFinAck {
		return nil
	}
	t.log.Noticef(t.ctx, t.Key, cflog.EventFinAckReceived, "fin-ack received")
	delivery, status := t.outcomeFromStatus()
	t.finalize(delivery, status)
	return nil
}

// outcomeFromStatus maps the transaction's terminal condition code onto
// the DeliveryCode/FileStatus pair reported once a FIN-ACK closes things
// out.
func (t *Transaction) outcomeFromStatus() (pdu.DeliveryCode, pdu.FileStatus) {
	if t.status == pdu.NoError {
		return pdu.DeliveryComplete, pdu.FileStatusRetained
	}
	if t.status == pdu.ChecksumFailure {
		return pdu.DeliveryIncomplete, pdu.FileStatusRejected
	}
	return pdu.DeliveryIncomplete, pdu.FileStatusDiscarded
}

// TickR2 advances every R2 timer once and acts on whichever expires,
// mirroring CF_CFDP_R_Tick's single entry point for inactivity, NAK, and
// ACK timer processing.
func (t *Transaction) TickR2() {
	if t.finished {
		return
	}

	t.inactivityTimer.Tick()
	if t.inactivityTimer.Expired() && t.substate != SubstateWaitFinAck {
		t.log.Errorf(t.ctx, t.Key, cflog.EventInactivityTimeout, "inactivity timeout")
		t.setFinStatus(pdu.InactivityDetected)
	}

	switch t.substate {
	case SubstateSendNak:
		t.nakTimer.Tick()
		if t.nakTimer.Expired() {
			t.retryNak()
		}
	case SubstateWaitCrc:
		t.advanceCrcPass()
	case SubstateSendFin:
		t.emitFin()
	case SubstateWaitFinAck:
		t.ackTimer.Tick()
		if t.ackTimer.Expired() {
			t.retryFin()
		}
	}
}

func (t *Transaction) retryNak() {
	t.nakCount++
	if t.nakCount > t.cfg.NakLimit {
		t.log.Errorf(t.ctx, t.Key, cflog.EventCheckLimitReached, "nak limit reached (%d)", t.cfg.NakLimit)
		t.setFinStatus(pdu.CheckLimitReached)
		return
	}
	t.sendNak()
}

func (t *Transaction) retryFin() {
	t.ackCount++
	if t.ackCount > t.cfg.AckLimit {
		t.log.Errorf(t.ctx, t.Key, cflog.EventCheckLimitReached, "ack limit reached (%d), giving up on fin-ack", t.cfg.AckLimit)
		// spec §7 groups this with NAK exhaustion: both terminate with
		// Check Limit Reached, not whatever status was already set.
		t.status = pdu.CheckLimitReached
		delivery, status := t.outcomeFromStatus()
		t.finalize(delivery, status)
		return
	}
	t.emitFin()
}
