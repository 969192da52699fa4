package hexfile

import (
	"sort"

	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/segment"
)

// HexFile is the central mutable type of the engine: an ordered collection
// of segments, held in raw (insertion-ordered, overlap-permitted) form.
// Every pipeline operation takes a *HexFile and mutates it in place;
// normalized views are produced on demand and never replace the raw form
// as the file's resting state.
type HexFile struct {
	raw []segment.Segment
}

// New returns an empty HexFile.
func New() *HexFile {
	return &HexFile{}
}

// WithSegments builds a HexFile whose raw form is exactly segs, in the
// order given.
func WithSegments(segs []segment.Segment) *HexFile {
	h := &HexFile{raw: make([]segment.Segment, len(segs))}
	copy(h.raw, segs)
	return h
}

// AppendSegment pushes s onto the end of the raw form. Because normalize
// resolves overlap with last-writer-wins, an appended segment is
// high-priority: it wins over anything already present at the same
// address.
func (h *HexFile) AppendSegment(s segment.Segment) {
	h.raw = append(h.raw, s)
}

// PrependSegment pushes s onto the front of the raw form, giving it
// low priority: anything already present at the same address wins over
// it on normalize. Fill operations that must preserve existing data use
// this, not AppendSegment.
func (h *HexFile) PrependSegment(s segment.Segment) {
	h.raw = append([]segment.Segment{s}, h.raw...)
}

// Segments returns the raw, insertion-ordered segment list. The returned
// slice is owned by the caller; mutating it does not affect h.
func (h *HexFile) Segments() []segment.Segment {
	out := make([]segment.Segment, len(h.raw))
	copy(out, h.raw)
	return out
}

// SetSegments replaces the raw form wholesale, in the order given.
func (h *HexFile) SetSegments(segs []segment.Segment) {
	h.raw = make([]segment.Segment, len(segs))
	copy(h.raw, segs)
}

// Len returns the number of raw segments.
func (h *HexFile) Len() int { return len(h.raw) }

// IsEmpty reports whether the file has no raw segments.
func (h *HexFile) IsEmpty() bool { return len(h.raw) == 0 }

// Normalize returns a new HexFile holding the normalized form: segments
// sorted by start address, merged where adjacent, overlaps resolved by
// last-writer-wins using h's raw insertion order.
func (h *HexFile) Normalize() *HexFile {
	return &HexFile{raw: normalizeSegments(h.raw)}
}

// NormalizeInPlace replaces h's raw form with its normalized form.
// Because the normalized form is itself a valid (non-overlapping,
// sorted) raw form, this is safe and idempotent:
// Normalize(Normalize(h)) == Normalize(h).
func (h *HexFile) NormalizeInPlace() {
	h.raw = normalizeSegments(h.raw)
}

// NormalizeStrict returns the normalized form, failing instead of
// resolving if any two raw segments overlap. Used by validators and tests
// that want to assert the input had no last-writer-wins collisions to
// begin with.
func (h *HexFile) NormalizeStrict() (*HexFile, error) {
	sorted := make([]segment.Segment, len(h.raw))
	copy(sorted, h.raw)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Range().Overlaps(sorted[i].Range()) {
			return nil, &OverlapError{A: sorted[i-1].Start, B: sorted[i].Start}
		}
	}
	return h.Normalize(), nil
}

// SpanStart returns the lowest address covered by any raw segment, and
// false if the file is empty.
func (h *HexFile) SpanStart() (uint32, bool) {
	if len(h.raw) == 0 {
		return 0, false
	}
	start := h.raw[0].Start
	for _, s := range h.raw[1:] {
		if s.Start < start {
			start = s.Start
		}
	}
	return start, true
}

// SpanEnd returns the highest address covered by any raw segment, and
// false if the file is empty.
func (h *HexFile) SpanEnd() (uint32, bool) {
	if len(h.raw) == 0 {
		return 0, false
	}
	end := h.raw[0].EndAddress()
	for _, s := range h.raw[1:] {
		if e := s.EndAddress(); e > end {
			end = e
		}
	}
	return end, true
}

// AsContiguous materializes the closed span [SpanStart, SpanEnd] as a
// single byte slice, filling every gap with fillByte. An empty file
// yields an empty slice.
func (h *HexFile) AsContiguous(fillByte byte) []byte {
	start, ok := h.SpanStart()
	if !ok {
		return nil
	}
	end, _ := h.SpanEnd()
	length := uint64(end) - uint64(start) + 1
	out := make([]byte, length)
	for i := range out {
		out[i] = fillByte
	}
	for _, s := range normalizeSegments(h.raw) {
		offset := uint64(s.Start) - uint64(start)
		copy(out[offset:offset+uint64(len(s.Data))], s.Data)
	}
	return out
}

// normalizeSegments resolves raw (insertion-ordered, overlap-permitted)
// segments into sorted, merged, non-overlapping form under
// last-writer-wins: segments later in raw win over earlier ones at any
// address they share.
func normalizeSegments(raw []segment.Segment) []segment.Segment {
	var out []segment.Segment
	for _, s := range raw {
		if s.IsEmpty() {
			continue
		}
		out = paintSegment(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return mergeAdjacent(out)
}

// paintSegment inserts s into the non-overlapping set out, clipping away
// whatever portions of existing entries s covers (s always wins, since it
// is processed later in insertion order than everything already in out).
func paintSegment(out []segment.Segment, s segment.Segment) []segment.Segment {
	sRange := s.Range()
	next := make([]segment.Segment, 0, len(out)+1)
	for _, e := range out {
		eRange := e.Range()
		if !eRange.Overlaps(sRange) {
			next = append(next, e)
			continue
		}
		if e.Start < s.Start {
			beforeRange, _ := address.FromStartEnd(e.Start, s.Start-1)
			if piece, ok := e.Slice(beforeRange); ok {
				next = append(next, piece)
			}
		}
		eEnd := e.EndAddress()
		sEnd := s.EndAddress()
		if eEnd > sEnd {
			afterRange, _ := address.FromStartEnd(sEnd+1, eEnd)
			if piece, ok := e.Slice(afterRange); ok {
				next = append(next, piece)
			}
		}
	}
	next = append(next, s.Clone())
	return next
}

// mergeAdjacent coalesces a sorted, non-overlapping segment slice into
// contiguous runs.
func mergeAdjacent(sorted []segment.Segment) []segment.Segment {
	if len(sorted) == 0 {
		return nil
	}
	out := make([]segment.Segment, 0, len(sorted))
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if cur.IsContiguousWith(s) {
			cur = cur.Merge(s)
			continue
		}
		out = append(out, cur)
		cur = s
	}
	out = append(out, cur)
	return out
}
