// Package span defines the canonical byte-range representation used by every
// other analysis package. A Span is a half-open interval [Start, End) of byte
// offsets into a single immutable source buffer. Tree-sitter already reports
// half-open byte offsets; the constructors here exist so no other package
// reaches into parser types directly.
package span

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Span is a half-open byte range [Start, End) into a source buffer.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// New creates a Span, returning an error when start > end.
func New(start, end uint32) (Span, error) {
	if start > end {
		return Span{}, fmt.Errorf("invalid span: start %d > end %d", start, end)
	}
	return Span{Start: start, End: end}, nil
}

// FromNode builds a Span from a tree-sitter node's byte range.
func FromNode(n *sitter.Node) Span {
	return Span{Start: n.StartByte(), End: n.EndByte()}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

// IsZero reports whether the span is the zero value.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Contains reports whether the byte offset lies inside the span.
func (s Span) Contains(offset uint32) bool {
	return offset >= s.Start && offset < s.End
}

// ContainsSpan reports whether other is a subrange of (or equal to) s.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Clip returns the span clamped to [0, bufLen].
func (s Span) Clip(bufLen int) Span {
	n := uint32(bufLen)
	out := s
	if out.Start > n {
		out.Start = n
	}
	if out.End > n {
		out.End = n
	}
	return out
}

// Pad widens the span by before/after bytes, clamping at zero and bufLen.
func (s Span) Pad(before, after int, bufLen int) Span {
	start := int64(s.Start) - int64(before)
	if start < 0 {
		start = 0
	}
	end := int64(s.End) + int64(after)
	if end > int64(bufLen) {
		end = int64(bufLen)
	}
	if end < start {
		end = start
	}
	return Span{Start: uint32(start), End: uint32(end)}
}

// Text returns the bytes the span covers. The span must already be within
// bounds; use Clip first when offsets come from an untrusted caller.
func (s Span) Text(src []byte) []byte {
	return src[s.Start:s.End]
}

// Validate checks the span's internal invariant and its fit in a buffer.
func (s Span) Validate(bufLen int) error {
	if s.Start > s.End {
		return fmt.Errorf("invalid span: start %d > end %d", s.Start, s.End)
	}
	if int64(s.End) > int64(bufLen) {
		return fmt.Errorf("span end %d past buffer length %d", s.End, bufLen)
	}
	return nil
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
