package ops

import (
	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

// FilterRanges keeps only the bytes of h whose address falls in the union
// of ranges. Segments partially overlapping a range are clipped; the
// result is normalized. An empty ranges list clears the file entirely.
func FilterRanges(h *hexfile.HexFile, ranges []address.Range) {
	if len(ranges) == 0 {
		h.SetSegments(nil)
		return
	}
	result := hexfile.New()
	for _, s := range h.Normalize().Segments() {
		for _, r := range ranges {
			if clipped, ok := s.Slice(r); ok {
				result.AppendSegment(clipped)
			}
		}
	}
	result.NormalizeInPlace()
	h.SetSegments(result.Segments())
}

// subtractRangeFromSegment removes the portion of s covered by r, splitting
// s into the pieces (zero, one, or two) that remain.
func subtractRangeFromSegment(s segment.Segment, r address.Range) []segment.Segment {
	inter, ok := s.Range().Intersection(r)
	if !ok {
		return []segment.Segment{s}
	}
	var out []segment.Segment
	if inter.Start() > s.Start {
		before, _ := address.FromStartEnd(s.Start, inter.Start()-1)
		if piece, ok := s.Slice(before); ok {
			out = append(out, piece)
		}
	}
	if inter.End() < s.EndAddress() {
		after, _ := address.FromStartEnd(inter.End()+1, s.EndAddress())
		if piece, ok := s.Slice(after); ok {
			out = append(out, piece)
		}
	}
	return out
}

// Cut removes bytes of h in the union of ranges. A segment straddling a
// cut splits into two. Overlap among the cut ranges is allowed; each is
// applied independently, in order.
func Cut(h *hexfile.HexFile, ranges []address.Range) {
	for _, r := range ranges {
		pieces := make([]segment.Segment, 0, h.Len())
		for _, s := range h.Segments() {
			pieces = append(pieces, subtractRangeFromSegment(s, r)...)
		}
		h.SetSegments(pieces)
	}
}

func buildPatternData(pattern []byte, length uint32) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out
}

// Fill materializes pattern (repeated as needed) across each range. With
// overwrite=false (the default) the fill is low-priority: it is
// prepended, so any existing data at the same address wins when the file
// is next normalized. With overwrite=true the fill is high-priority: it
// is appended, so it wins instead. A zero-length pattern is an error.
func Fill(h *hexfile.HexFile, ranges []address.Range, pattern []byte, overwrite bool) error {
	if len(pattern) == 0 {
		return &Error{Kind: ErrInvalidParameter}
	}
	for _, r := range ranges {
		data := buildPatternData(pattern, r.Length())
		s := segment.New(r.Start(), data)
		if overwrite {
			h.AppendSegment(s)
		} else {
			h.PrependSegment(s)
		}
	}
	return nil
}

// FillAllGaps materializes the entire [span_start, span_end] of h as one
// contiguous segment, filling every gap with fillByte. A file with fewer
// than two addresses of span is left as a single segment unchanged.
func FillAllGaps(h *hexfile.HexFile, fillByte byte) {
	if h.IsEmpty() {
		return
	}
	start, _ := h.SpanStart()
	data := h.AsContiguous(fillByte)
	h.SetSegments([]segment.Segment{segment.New(start, data)})
}

// MergeMode selects whether an incoming HexFile's bytes win (Overwrite,
// opaque) or lose (Preserve, transparent) where they overlap existing
// data.
type MergeMode int

const (
	MergeOverwrite MergeMode = iota
	MergePreserve
)

// offsetSegments adds a signed offset to every segment's start address,
// checking against the 32-bit address domain. It is transactional: on
// error, none of the input segments are mutated.
func offsetSegments(segs []segment.Segment, offset int64) ([]segment.Segment, error) {
	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		na := int64(s.Start) + offset
		if na < 0 {
			return nil, &Error{Kind: ErrAddressUnderflow}
		}
		if na > 0xFFFFFFFF {
			return nil, &Error{Kind: ErrAddressOverflow}
		}
		out[i] = segment.New(uint32(na), s.Data)
	}
	return out, nil
}

// Merge applies an optional range filter to other (before offsetting),
// offsets every one of its segments by offset (checked against 32-bit
// overflow/underflow), then inserts the result into h under mode.
func Merge(h *hexfile.HexFile, other *hexfile.HexFile, mode MergeMode, offset int64, rng *address.Range) error {
	filtered := hexfile.WithSegments(other.Segments())
	if rng != nil {
		FilterRanges(filtered, []address.Range{*rng})
	}

	segs, err := offsetSegments(filtered.Segments(), offset)
	if err != nil {
		return WithContext("/MO", err)
	}

	for _, s := range segs {
		switch mode {
		case MergeOverwrite:
			h.AppendSegment(s)
		case MergePreserve:
			h.PrependSegment(s)
		}
	}
	return nil
}
