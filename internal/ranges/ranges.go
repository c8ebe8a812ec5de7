// Package ranges implements an ordered, non-overlapping set of half-open
// byte intervals and the gap arithmetic built on top of it.
//
// The core algorithm — sorted slice storage, binary-search insert,
// merge-on-overlap, coalesce of newly-adjacent neighbours — is the one
// used by the teacher's lib/ranges package. ChunkList adds the one thing
// a CFDP receiver needs that a download cache doesn't: a hard cap on the
// number of intervals, with eviction, because a transaction's chunk list
// is a fixed-size arena entry, not an unbounded slice.
package ranges

import "sort"

// Span is a half-open byte interval [Start, End).
type Span struct {
	Start, End int64
}

// Size returns the number of bytes covered by the span.
func (s Span) Size() int64 {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers zero or a negative number of bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// spans is a sorted, non-overlapping, non-touching list of Span.
//
// Invariant maintained by every method: for adjacent entries a, b in the
// slice, a.End < b.Start (touching or overlapping spans are always merged).
type spans []Span

// search returns the index of the first span whose End is >= pos, i.e. the
// first span which could possibly touch, overlap or follow pos.
func (ss spans) search(pos int64) int {
	return sort.Search(len(ss), func(i int) bool { return ss[i].End >= pos })
}

// merge folds `add` into `dst` in place if they touch or overlap, and
// reports whether it did.
func merge(add *Span, dst *Span) bool {
	if add.End < dst.Start || add.Start > dst.End {
		return false
	}
	if add.Start < dst.Start {
		dst.Start = add.Start
	}
	if add.End > dst.End {
		dst.End = add.End
	}
	return true
}

// insert adds add to the list, merging with any touching or overlapping
// neighbours, and returns the resulting list along with the index of the
// span the insert landed in (or -1 if add was empty and nothing changed).
func (ss spans) insert(add Span) (spans, int) {
	if add.IsEmpty() {
		return ss, -1
	}
	i := ss.search(add.Start)
	if i == len(ss) {
		return append(ss, add), len(ss)
	}
	if merge(&add, &ss[i]) {
		return ss.coalesceForward(i), i
	}
	// Doesn't touch ss[i]; insert before it.
	ss = append(ss, Span{})
	copy(ss[i+1:], ss[i:])
	ss[i] = add
	return ss, i
}

// coalesceForward merges ss[i] with any following spans it now touches or
// overlaps, after a merge may have grown ss[i].End.
func (ss spans) coalesceForward(i int) spans {
	j := i + 1
	for j < len(ss) && ss[j].Start <= ss[i].End {
		if ss[j].End > ss[i].End {
			ss[i].End = ss[j].End
		}
		j++
	}
	if j > i+1 {
		ss = append(ss[:i+1], ss[j:]...)
	}
	return ss
}

// present reports whether r is entirely covered by ss.
func (ss spans) present(r Span) bool {
	if r.IsEmpty() {
		return true
	}
	i := ss.search(r.Start)
	if i == len(ss) {
		return false
	}
	return ss[i].Start <= r.Start && ss[i].End >= r.End
}
