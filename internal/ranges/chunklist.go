package ranges

// ChunkList is the receive-side "what bytes have I got?" structure from
// the CFDP receiver spec: a bounded, ordered set of half-open byte
// intervals representing data already written to the sink.
//
// It is not a general-purpose set: once full, it silently drops the least
// valuable interval on every insert that would otherwise grow past
// capacity. Gaps computed from a list that has evicted are therefore a
// safe over-approximation of what's actually missing — they can report a
// byte as missing when it was in fact received and then evicted, but
// never the reverse.
type ChunkList struct {
	spans    spans
	capacity int
}

// NewChunkList returns an empty ChunkList that holds at most capacity
// intervals before it starts evicting. A non-positive capacity means
// unbounded.
func NewChunkList(capacity int) *ChunkList {
	return &ChunkList{capacity: capacity}
}

// Insert records [start, end) as received, merging with any touching or
// overlapping interval already present. Inserting the same interval twice
// is a no-op the second time.
func (c *ChunkList) Insert(start, end int64) {
	c.spans, _ = c.spans.insert(Span{Start: start, End: end})
	c.evictOverflow()
}

// evictOverflow drops the smallest interval (ties broken by earliest
// Start) until the list is back within capacity.
func (c *ChunkList) evictOverflow() {
	if c.capacity <= 0 {
		return
	}
	for len(c.spans) > c.capacity {
		worst := 0
		for i := 1; i < len(c.spans); i++ {
			if smaller(c.spans[i], c.spans[worst]) {
				worst = i
			}
		}
		c.spans = append(c.spans[:worst], c.spans[worst+1:]...)
	}
}

func smaller(a, b Span) bool {
	if a.Size() != b.Size() {
		return a.Size() < b.Size()
	}
	return a.Start < b.Start
}

// IsContiguous reports whether a single interval [0, limit) is fully
// covered — i.e. the file has no gaps below limit.
func (c *ChunkList) IsContiguous(limit int64) bool {
	if limit <= 0 {
		return true
	}
	return c.spans.present(Span{Start: 0, End: limit})
}

// GapVisitor is called once per missing interval, in ascending order.
// Returning false stops enumeration early.
type GapVisitor func(start, end int64) (cont bool)

// ComputeGaps calls visit once for every interval in [0, limit) not
// covered by the list, in ascending order, until either every gap has
// been enumerated or visit returns false.
func (c *ChunkList) ComputeGaps(limit int64, visit GapVisitor) {
	if limit <= 0 {
		return
	}
	pos := int64(0)
	for _, s := range c.spans {
		if s.Start >= limit {
			break
		}
		if s.Start > pos {
			end := s.Start
			if end > limit {
				end = limit
			}
			if !visit(pos, end) {
				return
			}
		}
		if s.End > pos {
			pos = s.End
		}
	}
	if pos < limit {
		visit(pos, limit)
	}
}

// Clear empties the list, returning it to its post-NewChunkList state.
func (c *ChunkList) Clear() {
	c.spans = nil
}

// Len returns the number of intervals currently stored (for observability
// and tests, not part of the spec's operation set).
func (c *ChunkList) Len() int {
	return len(c.spans)
}

// HighestReceived returns the End of the last (highest-offset) interval,
// or 0 if the list is empty. Used by NAK assembly to bound gap scanning
// to data actually seen so far.
func (c *ChunkList) HighestReceived() int64 {
	if len(c.spans) == 0 {
		return 0
	}
	return c.spans[len(c.spans)-1].End
}

// BytesReceived returns the sum of all interval sizes currently recorded.
// Note this undercounts once eviction has occurred.
func (c *ChunkList) BytesReceived() int64 {
	var total int64
	for _, s := range c.spans {
		total += s.Size()
	}
	return total
}
