// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package peaks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrSelectionRange is returned when a selection refers to peaks outside
// the workspace.
var ErrSelectionRange = errors.New("selection out of range")

// Selection picks peaks out of a workspace by index. The implementations
// are Span and IndexSet; the set is closed.
type Selection interface {
	isSelection()
}

// Span selects the contiguous indices [Start, End).
type Span struct {
	Start int
	End   int
}

// IndexSet selects an arbitrary set of indices, visited in ascending order.
type IndexSet struct {
	bits *roaring.Bitmap
}

func (Span) isSelection()     {}
func (IndexSet) isSelection() {}

// NewIndexSet builds an IndexSet. Duplicate indices collapse.
func NewIndexSet(indices ...uint32) IndexSet {
	return IndexSet{bits: roaring.BitmapOf(indices...)}
}

// Indices returns the selected indices in ascending order.
func (s IndexSet) Indices() []int {
	if s.bits == nil {
		return nil
	}
	out := make([]int, 0, s.bits.GetCardinality())
	it := s.bits.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Len returns the number of selected indices.
func (s IndexSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.GetCardinality())
}

// ParseSelection parses "a-b" (inclusive range) into a Span and
// "i,j,k" or a single index into an IndexSet.
func ParseSelection(text string) (Selection, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty selection")
	}

	if lo, hi, ok := strings.Cut(text, "-"); ok {
		start, err := parseIndex(lo)
		if err != nil {
			return nil, err
		}
		end, err := parseIndex(hi)
		if err != nil {
			return nil, err
		}
		if end < start {
			return nil, fmt.Errorf("invalid range %q: end before start", text)
		}
		return Span{Start: start, End: end + 1}, nil
	}

	var indices []uint32
	for _, part := range strings.Split(text, ",") {
		i, err := parseIndex(part)
		if err != nil {
			return nil, err
		}
		indices = append(indices, uint32(i))
	}
	return NewIndexSet(indices...), nil
}

// parseIndex accepts indices in [0, 2^32), the range an IndexSet can hold.
func parseIndex(s string) (int, error) {
	i, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid peak index %q", s)
	}
	return int(i), nil
}

// Select returns a new workspace holding the selected peaks of ws, in
// workspace order, with the same instrument.
func Select(ws *Workspace, sel Selection) (*Workspace, error) {
	n := ws.Number()
	out := NewWorkspace(ws.inst)

	switch s := sel.(type) {
	case Span:
		if s.Start < 0 || s.End > n || s.Start > s.End {
			return nil, fmt.Errorf("%w: [%d, %d) of %d peaks", ErrSelectionRange, s.Start, s.End, n)
		}
		out.peaks = append(out.peaks, ws.peaks[s.Start:s.End]...)
	case IndexSet:
		if s.Len() > 0 && int(s.bits.Maximum()) >= n {
			return nil, fmt.Errorf("%w: index %d of %d peaks", ErrSelectionRange, s.bits.Maximum(), n)
		}
		for _, i := range s.Indices() {
			out.peaks = append(out.peaks, ws.peaks[i])
		}
	default:
		return nil, fmt.Errorf("unsupported selection %T", sel)
	}

	return out, nil
}
