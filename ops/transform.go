package ops

import (
	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

// SwapMode selects the chunk size for byte-order swapping.
type SwapMode int

const (
	SwapWord  SwapMode = iota // 2-byte chunks
	SwapDWord                 // 4-byte chunks
)

func (m SwapMode) size() int {
	if m == SwapDWord {
		return 4
	}
	return 2
}

// AlignOptions controls address alignment.
type AlignOptions struct {
	// Alignment must be non-zero.
	Alignment uint32
	// FillByte pads the alignment gap; it is used as given, so the zero
	// value pads with 0x00.
	FillByte byte
	// AlignLength additionally pads each segment's end up to alignment.
	AlignLength bool
}

// RemapOptions controls banked-to-linear address remapping.
type RemapOptions struct {
	Start, End uint32
	Linear     uint32
	Size       uint32
	Inc        uint32
}

// BankedMapOptions controls the star12/star12x-style banked memory map.
type BankedMapOptions struct {
	BankMin, BankMax               uint8
	LinearBase                     uint32
	NonbankLowBase, NonbankHighBase uint32
}

func isValidAlignment(n uint32) bool { return n != 0 }

func alignDown(addr, alignment uint32) uint32 {
	return addr - (addr % alignment)
}

func alignUp(length, alignment uint32) uint32 {
	rem := length % alignment
	if rem == 0 {
		return length
	}
	return length + (alignment - rem)
}

// Align rounds every segment's start address down to a multiple of
// Alignment, prepending fill bytes for the gap (low priority: real data
// wins on overlap). With AlignLength it also pads each segment's end up
// to the next multiple.
func Align(h *hexfile.HexFile, opts AlignOptions) error {
	if !isValidAlignment(opts.Alignment) {
		return &Error{Kind: ErrInvalidAlignment, Value: opts.Alignment}
	}

	normalized := h.Normalize().Segments()
	result := hexfile.New()

	for _, s := range normalized {
		alignedStart := alignDown(s.Start, opts.Alignment)
		if alignedStart < s.Start {
			fillLen := s.Start - alignedStart
			result.PrependSegment(segment.New(alignedStart, buildPatternData([]byte{opts.FillByte}, fillLen)))
		}
		if opts.AlignLength {
			endAddr := s.EndAddress() + 1
			alignedEnd := alignUp(endAddr, opts.Alignment)
			if alignedEnd > endAddr {
				fillLen := alignedEnd - endAddr
				result.PrependSegment(segment.New(endAddr, buildPatternData([]byte{opts.FillByte}, fillLen)))
			}
		}
	}
	for _, s := range normalized {
		result.AppendSegment(s)
	}

	result.NormalizeInPlace()
	h.SetSegments(result.Segments())
	return nil
}

// Split breaks any raw segment longer than maxSize into consecutive
// pieces no larger than maxSize. maxSize of zero is a no-op.
func Split(h *hexfile.HexFile, maxSize uint32) {
	if maxSize == 0 {
		return
	}
	var out []segment.Segment
	for _, s := range h.Segments() {
		if uint32(s.Len()) <= maxSize {
			out = append(out, s)
			continue
		}
		addr := s.Start
		data := s.Data
		for len(data) > 0 {
			n := int(maxSize)
			if n > len(data) {
				n = len(data)
			}
			out = append(out, segment.New(addr, data[:n]))
			addr += uint32(n)
			data = data[n:]
		}
	}
	h.SetSegments(out)
}

// Swap reverses byte order within complete size-byte chunks of every raw
// segment. A trailing partial chunk is left untouched.
func Swap(h *hexfile.HexFile, mode SwapMode) {
	SwapParallel(h, mode, 1)
}

// SwapParallel is Swap with the per-segment work spread across up to
// parallelism goroutines. Segments are independent, so the result is
// identical to Swap regardless of parallelism.
func SwapParallel(h *hexfile.HexFile, mode SwapMode, parallelism int) {
	size := mode.size()
	segs := h.Segments()
	swapped, _ := ParallelMap(segs, parallelism, func(s segment.Segment) (segment.Segment, error) {
		data := make([]byte, len(s.Data))
		copy(data, s.Data)
		full := len(data) - len(data)%size
		for off := 0; off < full; off += size {
			chunk := data[off : off+size]
			for a, b := 0, len(chunk)-1; a < b; a, b = a+1, b-1 {
				chunk[a], chunk[b] = chunk[b], chunk[a]
			}
		}
		return segment.New(s.Start, data), nil
	})
	h.SetSegments(swapped)
}

// ScaleAddresses multiplies every segment's start address by factor.
// Validation runs over every segment before any mutation, so a failure
// leaves h untouched.
func ScaleAddresses(h *hexfile.HexFile, factor uint32) error {
	segs := h.Segments()
	scaled := make([]uint64, len(segs))
	for i, s := range segs {
		v := uint64(s.Start) * uint64(factor)
		if v > 0xFFFFFFFF {
			return &Error{Kind: ErrAddressOverflow, Address: s.Start, Value: factor}
		}
		scaled[i] = v
	}
	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		out[i] = segment.New(uint32(scaled[i]), s.Data)
	}
	h.SetSegments(out)
	return nil
}

// UnscaleAddresses divides every segment's start address by divisor.
// Every address must be evenly divisible; validation runs before any
// mutation.
func UnscaleAddresses(h *hexfile.HexFile, divisor uint32) error {
	if divisor == 0 {
		return &Error{Kind: ErrAddressNotDivisible, Address: 0, Divisor: 0}
	}
	segs := h.Segments()
	for _, s := range segs {
		if s.Start%divisor != 0 {
			return &Error{Kind: ErrAddressNotDivisible, Address: s.Start, Divisor: divisor}
		}
	}
	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		out[i] = segment.New(s.Start/divisor, s.Data)
	}
	h.SetSegments(out)
	return nil
}

// Remap relocates segments that fit entirely within a bank window
// [Start,End] sliced into Inc-sized banks of Size bytes, placing bank N
// at Linear + N*Size. Segments outside [Start,End], or that don't fit
// within their computed bank window, pass through unchanged.
func Remap(h *hexfile.HexFile, opts RemapOptions) error {
	if opts.Size == 0 || opts.Inc == 0 {
		return &Error{Kind: ErrInvalidParameter}
	}
	if opts.Start > opts.End {
		return &Error{Kind: ErrInvalidParameter}
	}

	segs := h.Segments()
	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		segStart, segEnd := s.Start, s.EndAddress()
		if segStart < opts.Start || segEnd > opts.End {
			out[i] = s
			continue
		}

		offset := segStart - opts.Start
		bankIndex := offset / opts.Inc

		bankBaseSpan := uint64(bankIndex) * uint64(opts.Inc)
		bankBase64 := uint64(opts.Start) + bankBaseSpan
		if bankBase64 > 0xFFFFFFFF {
			return &Error{Kind: ErrAddressOverflow}
		}
		bankBase := uint32(bankBase64)

		bankEnd64 := uint64(bankBase) + uint64(opts.Size) - 1
		if bankEnd64 > 0xFFFFFFFF {
			return &Error{Kind: ErrAddressOverflow}
		}
		bankEnd := uint32(bankEnd64)

		if segEnd > bankEnd {
			out[i] = s
			continue
		}

		bankOffset := segStart - bankBase
		newStart64 := uint64(opts.Linear) + uint64(bankIndex)*uint64(opts.Size) + uint64(bankOffset)
		if newStart64 > 0xFFFFFFFF {
			return &Error{Kind: ErrAddressOverflow}
		}
		out[i] = segment.New(uint32(newStart64), s.Data)
	}
	h.SetSegments(out)
	return nil
}

// MapBanked remaps a Motorola-style banked memory layout: segments fully
// within [0x4000,0x7FFF] and [0xC000,0xFFFF] move to the two fixed
// non-banked windows, and segments fully within a single 16KiB bank
// window [bank<<16+0x8000, bank<<16+0xBFFF] for a bank in
// [BankMin,BankMax] move into a linear window at
// LinearBase + (bank-BankMin)*0x4000. Anything else passes through
// unchanged.
func MapBanked(h *hexfile.HexFile, opts BankedMapOptions) error {
	if opts.BankMin > opts.BankMax {
		return &Error{Kind: ErrInvalidParameter}
	}

	segs := h.Segments()
	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		start, end := s.Start, s.EndAddress()

		if start >= 0x4000 && end <= 0x7FFF {
			offset := start - 0x4000
			na, err := checkedAdd32(opts.NonbankLowBase, offset)
			if err != nil {
				return err
			}
			out[i] = segment.New(na, s.Data)
			continue
		}
		if start >= 0xC000 && end <= 0xFFFF {
			offset := start - 0xC000
			na, err := checkedAdd32(opts.NonbankHighBase, offset)
			if err != nil {
				return err
			}
			out[i] = segment.New(na, s.Data)
			continue
		}

		bank := uint8(start >> 16)
		if bank < opts.BankMin || bank > opts.BankMax {
			out[i] = s
			continue
		}

		bankBase := uint32(bank)<<16 + 0x8000
		bankEnd := bankBase + 0x3FFF
		if start < bankBase || end > bankEnd {
			out[i] = s
			continue
		}

		bankIndex := uint32(bank - opts.BankMin)
		linearBankBase, err := checkedAdd32(opts.LinearBase, bankIndex*0x4000)
		if err != nil {
			return err
		}
		na, err := checkedAdd32(linearBankBase, start-bankBase)
		if err != nil {
			return err
		}
		out[i] = segment.New(na, s.Data)
	}
	h.SetSegments(out)
	return nil
}

func checkedAdd32(a, b uint32) (uint32, error) {
	sum := uint64(a) + uint64(b)
	if sum > 0xFFFFFFFF {
		return 0, &Error{Kind: ErrAddressOverflow}
	}
	return uint32(sum), nil
}

// MapStar12 applies the Freescale HC12/S12 banked memory map: banks
// 0x30-0x3F mapped linearly at 0x0C0000, with fixed non-banked windows at
// 0x0F8000 and 0x0FC000.
func MapStar12(h *hexfile.HexFile) error {
	return MapBanked(h, BankedMapOptions{
		BankMin: 0x30, BankMax: 0x3F,
		LinearBase:      0x0C0000,
		NonbankLowBase:  0x0F8000,
		NonbankHighBase: 0x0FC000,
	})
}

// MapStar12X applies the S12X extended banked memory map.
func MapStar12X(h *hexfile.HexFile) error {
	return MapBanked(h, BankedMapOptions{
		BankMin: 0xE0, BankMax: 0xFF,
		LinearBase:      0x780000,
		NonbankLowBase:  0x7F4000,
		NonbankHighBase: 0x7FC000,
	})
}

// MapStar08 applies the HC08 memory map: [0x4000,0x7FFF] moves to
// 0x104000, and each 16KiB bank at [bank*0x10000+0x8000,+0x3FFF] moves
// to 0x100000+bank*0x4000.
func MapStar08(h *hexfile.HexFile) error {
	segs := h.Segments()
	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		start, end := s.Start, s.EndAddress()

		if start >= 0x4000 && end <= 0x7FFF {
			na, err := checkedAdd32(0x104000, start-0x4000)
			if err != nil {
				return err
			}
			out[i] = segment.New(na, s.Data)
			continue
		}

		bank := uint8(start >> 16)
		bankBase := uint32(bank)<<16 + 0x8000
		bankEnd := bankBase + 0x3FFF
		if start < bankBase || end > bankEnd {
			out[i] = s
			continue
		}

		linearBankBase, err := checkedAdd32(0x100000, uint32(bank)*0x4000)
		if err != nil {
			return err
		}
		na, err := checkedAdd32(linearBankBase, start-bankBase)
		if err != nil {
			return err
		}
		out[i] = segment.New(na, s.Data)
	}
	h.SetSegments(out)
	return nil
}

// readContiguous reads length bytes starting at start from h's normalized
// view, or reports ok=false if any byte in the range isn't covered.
func readContiguous(h *hexfile.HexFile, start uint32, length int) ([]byte, bool) {
	if length == 0 {
		return nil, true
	}
	end := start + uint32(length) - 1
	r, err := address.FromStartEnd(start, end)
	if err != nil {
		return nil, false
	}
	out := make([]byte, 0, length)
	for _, s := range h.Normalize().Segments() {
		if !s.Range().Overlaps(r) {
			continue
		}
		clipped, ok := s.Slice(r)
		if !ok {
			continue
		}
		if clipped.Start != start+uint32(len(out)) {
			return nil, false
		}
		out = append(out, clipped.Data...)
	}
	if len(out) != length {
		return nil, false
	}
	return out, true
}

// DspicExpand widens dsPIC-style 24-bit program memory: every 2-byte
// chunk of range becomes a 4-byte chunk with two appended zero bytes,
// written starting at target (default range.Start()*2).
func DspicExpand(h *hexfile.HexFile, r address.Range, target *uint32) error {
	length := int(r.Length())
	if length%2 != 0 {
		return &Error{Kind: ErrLengthNotMultiple, Length: length, Expected: 2, Operation: "/CDSPX"}
	}
	src, ok := readContiguous(h, r.Start(), length)
	if !ok {
		return &Error{Kind: ErrInvalidParameter, Operation: "/CDSPX"}
	}

	out := make([]byte, 0, length*2)
	for i := 0; i+2 <= len(src); i += 2 {
		out = append(out, src[i], src[i+1], 0x00, 0x00)
	}

	var dst uint32
	if target != nil {
		dst = *target
	} else {
		v := uint64(r.Start()) * 2
		if v > 0xFFFFFFFF {
			return &Error{Kind: ErrAddressOverflow}
		}
		dst = uint32(v)
	}
	h.AppendSegment(segment.New(dst, out))
	return nil
}

// DspicShrink narrows dsPIC-style 32-bit words: every 4-byte chunk of
// range keeps only its low 2 bytes, written starting at target (default
// range.Start()/2, which requires range.Start() to be even).
func DspicShrink(h *hexfile.HexFile, r address.Range, target *uint32) error {
	length := int(r.Length())
	if length%4 != 0 {
		return &Error{Kind: ErrLengthNotMultiple, Length: length, Expected: 4, Operation: "/CDSPS"}
	}
	if target == nil && r.Start()%2 != 0 {
		return &Error{Kind: ErrAddressNotDivisible, Address: r.Start(), Divisor: 2}
	}
	src, ok := readContiguous(h, r.Start(), length)
	if !ok {
		return &Error{Kind: ErrInvalidParameter, Operation: "/CDSPS"}
	}

	out := make([]byte, 0, length/2)
	for i := 0; i+4 <= len(src); i += 4 {
		out = append(out, src[i], src[i+1])
	}

	dst := r.Start() / 2
	if target != nil {
		dst = *target
	}
	h.AppendSegment(segment.New(dst, out))
	return nil
}

// DspicClearGhost zeroes the fourth byte of every 4-byte chunk in range
// in place.
func DspicClearGhost(h *hexfile.HexFile, r address.Range) error {
	length := int(r.Length())
	if length%4 != 0 {
		return &Error{Kind: ErrLengthNotMultiple, Length: length, Expected: 4, Operation: "/CDSPG"}
	}
	data, ok := readContiguous(h, r.Start(), length)
	if !ok {
		return &Error{Kind: ErrInvalidParameter, Operation: "/CDSPG"}
	}

	for i := 0; i+4 <= len(data); i += 4 {
		data[i+3] = 0x00
	}
	h.AppendSegment(segment.New(r.Start(), data))
	return nil
}
