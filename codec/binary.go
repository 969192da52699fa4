package codec

import (
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

// BinaryWriteOptions configures raw binary emission. The zero value
// concatenates h's raw segments in the order they appear (gaps unfilled),
// matching the reference tool's "/XN" default. Set FillGaps to switch to
// normalized, address-sorted, gap-filled output instead.
type BinaryWriteOptions struct {
	FillGaps *byte
}

// ParseBinary wraps the entire byte stream as a single segment at base.
func ParseBinary(data []byte, base uint32) (*hexfile.HexFile, error) {
	if len(data) == 0 {
		return nil, &ParseError{Format: "binary", Message: "empty input"}
	}
	h := hexfile.New()
	h.AppendSegment(segment.New(base, append([]byte(nil), data...)))
	return h, nil
}

// WriteBinary concatenates h's segment data. With opts.FillGaps unset, it
// walks h's raw (insertion-ordered) segments in appearance order and emits
// each one's bytes untouched — overlapping or out-of-address-order raw
// segments are never resolved against each other, matching §4.4.4's
// observable default. With opts.FillGaps set, it instead normalizes,
// address-sorts, and fills gaps with that byte across the full span.
func WriteBinary(h *hexfile.HexFile, opts BinaryWriteOptions) []byte {
	if opts.FillGaps != nil {
		return h.AsContiguous(*opts.FillGaps)
	}

	segs := h.Segments()
	if len(segs) == 0 {
		return []byte{}
	}
	total := 0
	for _, s := range segs {
		total += s.Len()
	}
	out := make([]byte, 0, total)
	for _, s := range segs {
		out = append(out, s.Data...)
	}
	return out
}

// SeparateBinaryFile is one output of WriteSeparateBinary: a single raw
// segment's bytes together with the base address a filename suffix should
// encode.
type SeparateBinaryFile struct {
	Address uint32
	Data    []byte
}

// WriteSeparateBinary emits one file per raw segment, in the order
// segments appear in h's raw (insertion-ordered) form — not normalized
// address order. This mirrors the reference tool's "/XSB" behavior, where
// overlapping raw segments each get their own untouched file rather than
// being resolved against each other.
func WriteSeparateBinary(h *hexfile.HexFile) []SeparateBinaryFile {
	segs := h.Segments()
	out := make([]SeparateBinaryFile, len(segs))
	for i, s := range segs {
		out[i] = SeparateBinaryFile{Address: s.Start, Data: append([]byte(nil), s.Data...)}
	}
	return out
}
