// Package hexfile implements the canonical in-memory model of a hex file:
// a finite ordered sequence of segments that can be viewed two ways.
//
// The raw form keeps segments in insertion order and permits overlap; it is
// the operand form for operations where insertion order is itself
// observable (binary emit, merge semantics). The normalized form sorts
// segments by address and collapses overlaps under last-writer-wins: when
// two raw segments occupy the same address, the one inserted later
// supplies the byte. Normalized form is produced on demand by Normalize
// and is never the file's resting state.
//
// Example:
//
//	h := hexfile.New()
//	h.PrependSegment(segment.New(0x1000, []byte{0xFF, 0xFF, 0xFF, 0xFF})) // fill, low priority
//	h.AppendSegment(segment.New(0x1001, []byte{0xAA, 0xBB}))              // data, high priority
//	norm := h.Normalize()
//	// norm holds one segment: 0x1000:[FF AA BB FF]
package hexfile
