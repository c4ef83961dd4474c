// Package region models the location of tagged regions inside a raw
// document buffer. An Index holds the ordered start and end spans for one
// tag category; pairing and nesting correctness is the traversal's job,
// not the Index's.
package region

import "fmt"

// Span marks a half-open [Start, End) byte range in the raw document.
// Produced once per matched tag and never coalesced.
type Span struct {
	Start int
	End   int
}

// Index holds the ordered start and end spans for one tag category.
// Single-point categories (path) carry only start spans.
type Index struct {
	starts []Span
	ends   []Span
}

// New creates an Index over the given start and end spans. Both slices are
// kept in the order they were matched, which is document order.
func New(starts, ends []Span) *Index {
	return &Index{starts: starts, ends: ends}
}

// StartCount returns the number of start spans.
func (ix *Index) StartCount() int { return len(ix.starts) }

// EndCount returns the number of end spans.
func (ix *Index) EndCount() int { return len(ix.ends) }

// Balanced reports whether the start and end counts match. A mismatch
// indicates malformed source (a missing open or close tag).
func (ix *Index) Balanced() bool { return len(ix.starts) == len(ix.ends) }

// StartAt returns the start span at ordinal position i. Out-of-range
// access is a programming-contract violation; callers must bounds-check
// against StartCount first.
func (ix *Index) StartAt(i int) Span {
	if i < 0 || i >= len(ix.starts) {
		panic(fmt.Sprintf("region: start index %d out of range (%d spans)", i, len(ix.starts)))
	}
	return ix.starts[i]
}

// EndAt returns the end span at ordinal position i. Same contract as StartAt.
func (ix *Index) EndAt(i int) Span {
	if i < 0 || i >= len(ix.ends) {
		panic(fmt.Sprintf("region: end index %d out of range (%d spans)", i, len(ix.ends)))
	}
	return ix.ends[i]
}

// Position returns the ordinal position of the given span among the start
// spans. The boolean result distinguishes "not found" from position 0.
// Linear scan: inputs are single documentation files, correctness over speed.
func (ix *Index) Position(s Span) (int, bool) {
	for i, candidate := range ix.starts {
		if candidate == s {
			return i, true
		}
	}
	return 0, false
}

// Starts returns a fresh cursor over the start spans. A new cursor is
// created per traversal; exhausting one does not affect another.
func (ix *Index) Starts() *Cursor {
	return &Cursor{spans: ix.starts}
}

// Cursor is a finite, lazy iterator over an ordered sequence of spans.
type Cursor struct {
	spans []Span
	next  int
}

// Next returns the next span in order. The boolean result is false once
// the sequence is exhausted, which is the normal stop condition.
func (c *Cursor) Next() (Span, bool) {
	if c.next >= len(c.spans) {
		return Span{}, false
	}
	s := c.spans[c.next]
	c.next++
	return s, true
}
