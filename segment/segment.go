package segment

import "github.com/h3xy/h3xy/address"

// Segment is a contiguous byte run tagged with a base address. Equality is
// structural: two segments are equal when their start address and data are
// identical.
type Segment struct {
	Start uint32
	Data  []byte
}

// New builds a Segment. Data is kept by reference; callers that need an
// independent copy should clone it first.
func New(start uint32, data []byte) Segment {
	return Segment{Start: start, Data: data}
}

// EndAddress returns the inclusive last address covered by the segment.
// It saturates at 0xFFFFFFFF instead of wrapping, matching the one
// documented saturating arithmetic path in the hex-file model; all other
// address arithmetic in the engine is checked.
func (s Segment) EndAddress() uint32 {
	if len(s.Data) == 0 {
		return s.Start
	}
	end := s.Start + uint32(len(s.Data)) - 1
	if end < s.Start {
		return 0xFFFFFFFF
	}
	return end
}

// Len returns the number of bytes in the segment.
func (s Segment) Len() int { return len(s.Data) }

// IsEmpty reports whether the segment holds no bytes.
func (s Segment) IsEmpty() bool { return len(s.Data) == 0 }

// IsContiguousWith reports whether other begins exactly one address past
// the end of s. Address-space overflow when computing s's successor
// address returns false rather than wrapping.
func (s Segment) IsContiguousWith(other Segment) bool {
	end := s.EndAddress()
	next := end + 1
	if next == 0 && end == 0xFFFFFFFF {
		return false
	}
	return next == other.Start
}

// Merge appends other's data onto s. Callers must ensure IsContiguousWith
// holds; Merge does not itself validate contiguity.
func (s Segment) Merge(other Segment) Segment {
	data := make([]byte, 0, len(s.Data)+len(other.Data))
	data = append(data, s.Data...)
	data = append(data, other.Data...)
	return Segment{Start: s.Start, Data: data}
}

// Range returns the closed address range covered by the segment.
func (s Segment) Range() address.Range {
	r, _ := address.FromStartEnd(s.Start, s.EndAddress())
	return r
}

// Slice clips the segment to its intersection with r, returning ok=false
// if the two do not overlap. Slicing is total: the caller never needs to
// pre-check overlap.
func (s Segment) Slice(r address.Range) (Segment, bool) {
	own := s.Range()
	inter, ok := own.Intersection(r)
	if !ok {
		return Segment{}, false
	}
	offset := inter.Start() - s.Start
	length := inter.Length()
	return Segment{Start: inter.Start(), Data: s.Data[offset : offset+length]}, true
}

// Clone returns a Segment with an independent copy of Data.
func (s Segment) Clone() Segment {
	data := make([]byte, len(s.Data))
	copy(data, s.Data)
	return Segment{Start: s.Start, Data: data}
}
