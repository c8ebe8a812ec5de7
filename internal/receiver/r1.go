package receiver

import (
	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/pdu"
)

// RecvR1 processes one incoming PDU on a Class 1 (unacknowledged)
// transaction. R1 has exactly one substate worth tracking: receiving. On
// EOF it checks completeness and checksum immediately, in line, and
// terminates — there is no NAK, no FIN, no ACK exchange in Class 1
// (CF_CFDP_R1_Recv / CF_CFDP_R1_SubstateRecvFileData /
// CF_CFDP_R1_SubstateRecvEof).
func (t *Transaction) RecvR1(p pdu.PDU) error {
	if t.finished {
		return nil
	}
	switch v := p.(type) {
	case pdu.Metadata:
		return t.applyMetadata(v)
	case pdu.FileData:
		return t.writeFileData(v)
	case pdu.EOF:
		return t.recvEOFR1(v)
	case pdu.Nak, pdu.Ack, pdu.Fin:
		// Acknowledged-transfer directives have no meaning on a Class 1
		// transaction; a well-behaved peer never sends them here.
		t.log.Debugf(t.ctx, t.Key, "ignoring acknowledged-mode PDU on Class 1 transaction")
		return nil
	default:
		return nil
	}
}

func (t *Transaction) recvEOFR1(eof pdu.EOF) error {
	t.gotEOF = true
	t.eofFileSize = eof.FileSize
	t.eofCRC = eof.CRC
	t.log.Noticef(t.ctx, t.Key, cflog.EventEOFReceived, "eof received: size=%d crc=%08x condition=%s", eof.FileSize, eof.CRC, eof.ConditionCode)

	if eof.ConditionCode != pdu.NoError {
		t.status = eof.ConditionCode
		t.finalize(pdu.DeliveryIncomplete, pdu.FileStatusDiscarded)
		return nil
	}

	if !t.chunks.IsContiguous(eof.FileSize) {
		t.status = pdu.FileSizeError
		t.finalize(pdu.DeliveryIncomplete, pdu.FileStatusDiscarded)
		return nil
	}

	if err := t.computeWholeFileCrc(); err != nil {
		return t.filestoreReject(err)
	}
	if !t.crcEngine.Matches(eof.CRC) {
		t.status = pdu.ChecksumFailure
		t.log.Errorf(t.ctx, t.Key, cflog.EventChecksumMismatch, "checksum mismatch: got %08x want %08x", t.crcEngine.Finalize(), eof.CRC)
		t.finalize(pdu.DeliveryIncomplete, pdu.FileStatusRejected)
		return nil
	}

	t.status = pdu.NoError
	t.finalize(pdu.DeliveryComplete, pdu.FileStatusRetained)
	return nil
}

// computeWholeFileCrc reads the sink start-to-end and feeds every byte
// into crcEngine. R1 has no deferred/background CRC pass: by the time EOF
// arrives the whole file is already known to be contiguous, so there is
// no reason to spread the read across wakeups the way R2 does while a
// NAK round-trip might still be in flight.
func (t *Transaction) computeWholeFileCrc() error {
	if err := t.ensureSink(); err != nil {
		return err
	}
	t.crcEngine.Reset()
	const chunk = 64 * 1024
	buf := make([]byte, chunk)
	var offset int64
	for offset < t.eofFileSize {
		want := int64(chunk)
		if remaining := t.eofFileSize - offset; want > remaining {
			want = remaining
		}
		n, err := t.sink.ReadAt(buf[:want], offset)
		if n > 0 {
			t.crcEngine.DigestBytes(buf[:n])
			offset += int64(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// TickR1 advances a Class 1 transaction's inactivity timer. R1 has no
// ACK or NAK timers since it never retransmits.
func (t *Transaction) TickR1() {
	if t.finished {
		return
	}
	t.inactivityTimer.Tick()
	if t.inactivityTimer.Expired() {
		t.log.Errorf(t.ctx, t.Key, cflog.EventInactivityTimeout, "inactivity timeout")
		t.status = pdu.InactivityDetected
		t.finalize(pdu.DeliveryIncomplete, pdu.FileStatusDiscarded)
	}
}
