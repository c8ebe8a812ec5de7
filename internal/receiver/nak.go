package receiver

import (
	"github.com/thnkslprpt/cfdp/internal/cflog"
	"github.com/thnkslprpt/cfdp/internal/crc"
	"github.com/thnkslprpt/cfdp/internal/pdu"
)

// maxNakSegmentsPerPdu bounds how many gap segments one NAK PDU carries,
// mirroring the original source's fixed-size NAK segment array
// (CF_Logical_PduNak_t holds a bounded list, not an arbitrary one).
const maxNakSegmentsPerPdu = 58

// checkComplete is CF_CFDP_R2_Complete: it decides, any time new data or
// an EOF might have closed the last gap, whether the transaction can move
// on to checksum verification, and otherwise (re)arms NAK. okToSendNak
// lets a caller that already knows a NAK was just sent suppress sending
// a second one in the same reaction.
func (t *Transaction) checkComplete(okToSendNak bool) {
	if !t.gotEOF {
		return
	}
	if !t.chunks.IsContiguous(t.eofFileSize) {
		if okToSendNak && t.substate != SubstateSendNak {
			t.substate = SubstateSendNak
			t.sendNak()
		}
		return
	}
	t.startCrcPass()
}

// gapCompute walks the transaction's chunk list and builds the NAK
// segment list for everything still missing below the EOF-declared file
// size, capped at maxNakSegmentsPerPdu (CF_CFDP_R2_GapCompute).
func (t *Transaction) gapCompute() []pdu.NakSegment {
	segs := make([]pdu.NakSegment, 0, 8)
	t.chunks.ComputeGaps(t.eofFileSize, func(start, end int64) bool {
		segs = append(segs, pdu.NakSegment{Start: start, End: end})
		return len(segs) < maxNakSegmentsPerPdu
	})
	return segs
}

// sendNak queues a NAK PDU listing every currently-known gap
// (CF_CFDP_R_SubstateSendNak), subject to the channel's outgoing quota
// once drained.
func (t *Transaction) sendNak() {
	var segs []pdu.NakSegment
	if !t.gotMetadata {
		// spec's NAK assembly: Metadata hasn't arrived yet, so request
		// it with the reserved (0, 0) segment instead of any file-data
		// gap.
		segs = []pdu.NakSegment{{Start: 0, End: 0}}
	} else {
		segs = t.gapCompute()
		if len(segs) == 0 {
			// A gap closed between arming the NAK substate and firing;
			// the next checkComplete call will move on to the CRC pass.
			return
		}
	}
	nak := pdu.Nak{
		StartOfScope: 0,
		EndOfScope:   t.eofFileSize,
		Segments:     segs,
	}
	t.Outbox = append(t.Outbox, nak)
	t.log.Noticef(t.ctx, t.Key, cflog.EventNakSent, "nak sent: %d segment(s)", len(segs))
	t.nakTimer.InitRelSec(t.cfg.NakTimerS, t.ticksPerSecond)
}

// startCrcPass moves the transaction into the deferred, tick-bounded CRC
// verification substate once the chunk list shows the file complete.
func (t *Transaction) startCrcPass() {
	if t.substate == SubstateWaitCrc || t.substate == SubstateSendFin || t.substate == SubstateWaitFinAck {
		return
	}
	if err := t.ensureSink(); err != nil {
		t.filestoreReject(err)
		t.setFinStatus(pdu.FilestoreRejection)
		return
	}
	t.substate = SubstateWaitCrc
	t.crcPass = crc.NewPass(t.eofFileSize)
	t.crcScratch = make([]byte, t.crcBytesPerWakeup)
}
