package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosition_FirstSpan_DistinctFromNotFound(t *testing.T) {
	ix := New([]Span{{0, 10}, {20, 30}}, nil)

	pos, ok := ix.Position(Span{0, 10})
	require.True(t, ok)
	require.Equal(t, 0, pos)

	pos, ok = ix.Position(Span{5, 15})
	require.False(t, ok)
	require.Equal(t, 0, pos)
}

func TestPosition_LaterSpan_ReturnsOrdinal(t *testing.T) {
	ix := New([]Span{{0, 10}, {20, 30}, {40, 50}}, nil)

	pos, ok := ix.Position(Span{40, 50})
	require.True(t, ok)
	require.Equal(t, 2, pos)
}

func TestStartAtEndAt_InRange_ReturnsSpans(t *testing.T) {
	ix := New([]Span{{0, 10}}, []Span{{15, 20}})

	require.Equal(t, Span{0, 10}, ix.StartAt(0))
	require.Equal(t, Span{15, 20}, ix.EndAt(0))
}

func TestStartAt_OutOfRange_Panics(t *testing.T) {
	ix := New([]Span{{0, 10}}, nil)

	require.Panics(t, func() { ix.StartAt(1) })
	require.Panics(t, func() { ix.EndAt(0) })
}

func TestBalanced_MismatchedCounts_ReportsFalse(t *testing.T) {
	require.True(t, New([]Span{{0, 1}}, []Span{{2, 3}}).Balanced())
	require.False(t, New([]Span{{0, 1}, {4, 5}}, []Span{{2, 3}}).Balanced())
	require.True(t, New(nil, nil).Balanced())
}

func TestStarts_Cursor_IsRestartable(t *testing.T) {
	ix := New([]Span{{0, 1}, {2, 3}}, nil)

	first := ix.Starts()
	var seen []Span
	for s, ok := first.Next(); ok; s, ok = first.Next() {
		seen = append(seen, s)
	}
	require.Equal(t, []Span{{0, 1}, {2, 3}}, seen)

	_, ok := first.Next()
	require.False(t, ok)

	// A fresh cursor starts over regardless of the first one's state.
	second := ix.Starts()
	s, ok := second.Next()
	require.True(t, ok)
	require.Equal(t, Span{0, 1}, s)
}
