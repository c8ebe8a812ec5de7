package crc

import (
	"io"
)

// Pass is the background, tick-driven CRC calculation over a completed
// (gap-free) file. It is grounded on the same idea as the teacher's
// fs/chunkedreader: a file is read through in bounded chunks across many
// calls rather than all at once, so a single tick never blocks the
// channel's wakeup loop on a large read.
type Pass struct {
	engine *Engine
	cursor int64
	total  int64
}

// NewPass starts a fresh background pass over a file of the given total
// size, which must be the EOF-declared size (the pass only ever runs once
// the transaction is known to be complete).
func NewPass(total int64) *Pass {
	return &Pass{engine: New(), total: total}
}

// Done reports whether the pass has consumed the whole file.
func (p *Pass) Done() bool {
	return p.cursor >= p.total
}

// Advance reads up to maxBytes (rounded down to whatever ReadAt returns)
// from r starting at the pass's cursor, feeding them into the running
// CRC, and reports whether the pass is now complete. maxBytes is the
// per-wakeup budget (rx_crc_calc_bytes_per_wakeup); the caller is
// responsible for ensuring it is a positive multiple of 1024.
func (p *Pass) Advance(r io.ReaderAt, maxBytes int64, buf []byte) (done bool, err error) {
	if p.Done() {
		return true, nil
	}
	want := maxBytes
	if remaining := p.total - p.cursor; want > remaining {
		want = remaining
	}
	if int64(len(buf)) < want {
		want = int64(len(buf))
	}
	n, err := r.ReadAt(buf[:want], p.cursor)
	if n > 0 {
		p.engine.DigestBytes(buf[:n])
		p.cursor += int64(n)
	}
	if err != nil && err != io.EOF {
		return p.Done(), err
	}
	return p.Done(), nil
}

// Result returns the checksum accumulated so far. Only meaningful once
// Done reports true.
func (p *Pass) Result() uint32 {
	return p.engine.Finalize()
}

// Matches reports whether the accumulated checksum equals expected, via
// the same Engine.Matches comparison R1 uses (CF_CFDP_R_CheckCrc).
func (p *Pass) Matches(expected uint32) bool {
	return p.engine.Matches(expected)
}
