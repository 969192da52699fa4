package ops

import (
	"encoding/binary"
	"hash/crc32"
	"sort"

	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

// ChecksumAlgorithm identifies a HexView-compatible checksum algorithm by
// its historical index.
type ChecksumAlgorithm uint8

const (
	ByteSumBe               ChecksumAlgorithm = 0
	ByteSumLe               ChecksumAlgorithm = 1
	WordSumBe               ChecksumAlgorithm = 2
	WordSumLe               ChecksumAlgorithm = 3
	ByteSumTwosComplement   ChecksumAlgorithm = 4
	WordSumBeTwosComplement ChecksumAlgorithm = 5
	WordSumLeTwosComplement ChecksumAlgorithm = 6
	Crc16                   ChecksumAlgorithm = 7
	Crc32                   ChecksumAlgorithm = 9
	ModularSum              ChecksumAlgorithm = 12
	Crc16CcittLe            ChecksumAlgorithm = 13
	Crc16CcittBe            ChecksumAlgorithm = 14
	Crc16CcittLeInit0       ChecksumAlgorithm = 17
	Crc16CcittBeInit0       ChecksumAlgorithm = 18
)

// ChecksumAlgorithmFromIndex validates a raw HexView algorithm index.
func ChecksumAlgorithmFromIndex(index uint8) (ChecksumAlgorithm, error) {
	switch index {
	case 0, 1, 2, 3, 4, 5, 6, 7, 9, 12, 13, 14, 17, 18:
		return ChecksumAlgorithm(index), nil
	default:
		return 0, &Error{Kind: ErrInvalidParameter, Value: uint32(index)}
	}
}

// ResultSize is the checksum's output width in bytes.
func (a ChecksumAlgorithm) ResultSize() int {
	if a == Crc32 {
		return 4
	}
	return 2
}

// NativeLittleEndian reports whether the algorithm's own defined byte
// order is little-endian. "Little-endian CRC-32" (ISO-HDLC) describes
// the algorithm's bit-reflected processing, not its output byte order,
// which is serialized big-endian (MSB first) by default like the other
// non-"Le"-suffixed algorithms.
func (a ChecksumAlgorithm) NativeLittleEndian() bool {
	switch a {
	case ByteSumLe, WordSumLe, WordSumLeTwosComplement, Crc16CcittLe, Crc16CcittLeInit0:
		return true
	default:
		return false
	}
}

// ChecksumTargetKind selects where a computed checksum is written.
type ChecksumTargetKind int

const (
	TargetAddress ChecksumTargetKind = iota
	TargetAppend
	TargetPrepend
	TargetOverwriteEnd
	TargetFile
)

// ChecksumTarget is the placement for a computed checksum. Address is
// only meaningful when Kind is TargetAddress; FilePath only when Kind is
// TargetFile.
type ChecksumTarget struct {
	Kind     ChecksumTargetKind
	Address  uint32
	FilePath string
}

// ForcedRange overrides checksum data collection to always cover exactly
// this range, filling any address not backed by real data with Pattern
// (repeated, default 0xFF).
type ForcedRange struct {
	Range   address.Range
	Pattern []byte
}

// ChecksumOptions configures a checksum calculation.
type ChecksumOptions struct {
	Algorithm          ChecksumAlgorithm
	Range              *address.Range
	LittleEndianOutput bool
	ForcedRange        *ForcedRange
	ExcludeRanges       []address.Range
	targetExclude       *address.Range
}

// Calculate computes the checksum over h's data per opts, returning the
// result bytes in the requested endianness. It does not mutate h.
func Calculate(h *hexfile.HexFile, opts ChecksumOptions) ([]byte, error) {
	data, err := collectDataForChecksum(h, opts)
	if err != nil {
		return nil, err
	}

	useLE := opts.Algorithm.NativeLittleEndian() != opts.LittleEndianOutput

	u16Bytes := func(v uint16) []byte {
		b := make([]byte, 2)
		if useLE {
			binary.LittleEndian.PutUint16(b, v)
		} else {
			binary.BigEndian.PutUint16(b, v)
		}
		return b
	}
	u32Bytes := func(v uint32) []byte {
		b := make([]byte, 4)
		if useLE {
			binary.LittleEndian.PutUint32(b, v)
		} else {
			binary.BigEndian.PutUint32(b, v)
		}
		return b
	}

	switch opts.Algorithm {
	case ByteSumBe, ByteSumLe, ModularSum:
		return u16Bytes(byteSum(data)), nil
	case WordSumBe:
		sum, err := wordSumBe(data)
		if err != nil {
			return nil, err
		}
		return u16Bytes(sum), nil
	case WordSumLe:
		sum, err := wordSumLe(data)
		if err != nil {
			return nil, err
		}
		return u16Bytes(sum), nil
	case ByteSumTwosComplement:
		return u16Bytes(twosComplement16(byteSum(data))), nil
	case WordSumBeTwosComplement:
		sum, err := wordSumBe(data)
		if err != nil {
			return nil, err
		}
		return u16Bytes(twosComplement16(sum)), nil
	case WordSumLeTwosComplement:
		sum, err := wordSumLe(data)
		if err != nil {
			return nil, err
		}
		return u16Bytes(twosComplement16(sum)), nil
	case Crc16:
		return u16Bytes(crc16Arc(data)), nil
	case Crc32:
		return u32Bytes(crc32.ChecksumIEEE(data)), nil
	case Crc16CcittLe, Crc16CcittBe:
		return u16Bytes(crc16IBMSDLC(data)), nil
	case Crc16CcittLeInit0, Crc16CcittBeInit0:
		return u16Bytes(crc16XModem(data)), nil
	default:
		return nil, &Error{Kind: ErrInvalidParameter}
	}
}

// Checksum computes the checksum per opts and writes it into h at
// target, returning the raw result bytes. TargetFile is a no-op on h;
// the caller is responsible for writing the file.
func Checksum(h *hexfile.HexFile, opts ChecksumOptions, target ChecksumTarget) ([]byte, error) {
	effective := opts
	size := uint32(opts.Algorithm.ResultSize())

	switch target.Kind {
	case TargetAddress:
		if r, err := address.FromStartLength(target.Address, size); err == nil {
			effective.targetExclude = &r
		}
	case TargetOverwriteEnd:
		if end, ok := h.SpanEnd(); ok {
			offset := size - 1
			writeAddr := end - offset
			if writeAddr <= end {
				if r, err := address.FromStartLength(writeAddr, size); err == nil {
					effective.targetExclude = &r
				}
			}
		}
	}

	result, err := Calculate(h, effective)
	if err != nil {
		return nil, err
	}

	switch target.Kind {
	case TargetAddress:
		h.AppendSegment(segment.New(target.Address, result))
	case TargetAppend:
		if end, ok := h.SpanEnd(); ok {
			addr, err := checkedAdd32(end, 1)
			if err != nil {
				return nil, &Error{Kind: ErrAddressOverflow}
			}
			h.AppendSegment(segment.New(addr, result))
		}
	case TargetPrepend:
		if start, ok := h.SpanStart(); ok {
			if start < uint32(len(result)) {
				return nil, &Error{Kind: ErrAddressUnderflow}
			}
			h.AppendSegment(segment.New(start-uint32(len(result)), result))
		}
	case TargetOverwriteEnd:
		if end, ok := h.SpanEnd(); ok {
			offset := uint32(len(result)) - 1
			if end < offset {
				return nil, &Error{Kind: ErrAddressUnderflow}
			}
			h.AppendSegment(segment.New(end-offset, result))
		}
	case TargetFile:
		// caller writes result to target.FilePath
	}

	return result, nil
}

func buildFillPattern(r address.Range, pattern []byte) []byte {
	if r.Length() == 0 {
		return nil
	}
	fill := pattern
	if len(fill) == 0 {
		fill = []byte{0xFF}
	}
	return buildPatternData(fill, r.Length())
}

func mergeRanges(ranges []address.Range) []address.Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]address.Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start() < sorted[j].Start() })

	var merged []address.Range
	for _, r := range sorted {
		if len(merged) > 0 {
			last := merged[len(merged)-1]
			extend := last.End() != 0xFFFFFFFF && r.Start() <= last.End()+1
			if r.Start() <= last.End() || extend {
				end := last.End()
				if r.End() > end {
					end = r.End()
				}
				nr, _ := address.FromStartEnd(last.Start(), end)
				merged[len(merged)-1] = nr
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged
}

func subtractRanges(r address.Range, excludes []address.Range) []address.Range {
	if len(excludes) == 0 {
		return []address.Range{r}
	}
	var out []address.Range
	cursor := r.Start()
	for _, ex := range excludes {
		if ex.End() < cursor {
			continue
		}
		if ex.Start() > r.End() {
			break
		}
		exStart, exEnd := ex.Start(), ex.End()
		if exStart < r.Start() {
			exStart = r.Start()
		}
		if exEnd > r.End() {
			exEnd = r.End()
		}
		if cursor < exStart {
			if nr, err := address.FromStartEnd(cursor, exStart-1); err == nil {
				out = append(out, nr)
			}
		}
		if exEnd == 0xFFFFFFFF {
			return out
		}
		cursor = exEnd + 1
		if cursor > r.End() {
			return out
		}
	}
	if cursor <= r.End() {
		if nr, err := address.FromStartEnd(cursor, r.End()); err == nil {
			out = append(out, nr)
		}
	}
	return out
}

// collectDataForChecksum gathers the byte stream a checksum runs over:
// the union of the effective range minus any excluded sub-ranges,
// intersected with the segments that actually cover it (or, with a
// ForcedRange, backed by its fill pattern wherever real data is absent).
func collectDataForChecksum(h *hexfile.HexFile, opts ChecksumOptions) ([]byte, error) {
	normalized := h.Normalize()
	needsWordAlignment := opts.Algorithm == WordSumBe || opts.Algorithm == WordSumLe ||
		opts.Algorithm == WordSumBeTwosComplement || opts.Algorithm == WordSumLeTwosComplement

	working := normalized
	if opts.ForcedRange != nil {
		combined := hexfile.New()
		combined.AppendSegment(segment.New(opts.ForcedRange.Range.Start(), buildFillPattern(opts.ForcedRange.Range, opts.ForcedRange.Pattern)))
		for _, s := range normalized.Segments() {
			combined.AppendSegment(s)
		}
		working = combined.Normalize()
	}

	var effectiveRange *address.Range
	switch {
	case opts.Range != nil:
		effectiveRange = opts.Range
	case opts.ForcedRange != nil:
		effectiveRange = &opts.ForcedRange.Range
	default:
		if start, ok := working.SpanStart(); ok {
			end, _ := working.SpanEnd()
			r, err := address.FromStartEnd(start, end)
			if err != nil {
				return nil, &Error{Kind: ErrAddressOverflow}
			}
			effectiveRange = &r
		}
	}
	if effectiveRange == nil {
		return nil, nil
	}

	excludes := append([]address.Range(nil), opts.ExcludeRanges...)
	if opts.targetExclude != nil {
		excludes = append(excludes, *opts.targetExclude)
	}
	includeRanges := subtractRanges(*effectiveRange, mergeRanges(excludes))
	if len(includeRanges) == 0 {
		return nil, nil
	}

	segs := working.Segments()
	var data []byte

	finalizeRun := func(runStart uint32, runLen int) error {
		if !needsWordAlignment {
			return nil
		}
		if runStart%2 != 0 {
			return &Error{Kind: ErrAddressNotDivisible, Address: runStart, Divisor: 2}
		}
		if runLen%2 != 0 {
			return &Error{Kind: ErrLengthNotMultiple, Length: runLen, Expected: 2, Operation: "checksum word range"}
		}
		return nil
	}

	if opts.ForcedRange != nil {
		for _, r := range includeRanges {
			if err := finalizeRun(r.Start(), int(r.Length())); err != nil {
				return nil, err
			}
		}
		segIdx := 0
		for _, r := range includeRanges {
			addr := r.Start()
			for segIdx < len(segs) && segs[segIdx].EndAddress() < addr {
				segIdx++
			}
			for addr <= r.End() {
				if segIdx >= len(segs) || segs[segIdx].Start > r.End() {
					n := int(r.End()-addr) + 1
					data = append(data, buildPatternData([]byte{0xFF}, uint32(n))...)
					break
				}
				seg := segs[segIdx]
				if seg.Start > addr {
					gapEnd := seg.Start - 1
					if gapEnd > r.End() {
						gapEnd = r.End()
					}
					n := int(gapEnd-addr) + 1
					data = append(data, buildPatternData([]byte{0xFF}, uint32(n))...)
					addr = gapEnd + 1
					continue
				}
				segStart := addr
				segEnd := seg.EndAddress()
				if segEnd > r.End() {
					segEnd = r.End()
				}
				offset := segStart - seg.Start
				n := segEnd - segStart + 1
				data = append(data, seg.Data[offset:offset+n]...)
				if seg.EndAddress() <= segEnd {
					segIdx++
				}
				addr = segEnd + 1
			}
		}
	} else {
		var runStart *uint32
		runLen := 0
		var prevEnd *uint32
		segIdx, incIdx := 0, 0

		for segIdx < len(segs) && incIdx < len(includeRanges) {
			seg := segs[segIdx]
			inc := includeRanges[incIdx]
			if seg.EndAddress() < inc.Start() {
				segIdx++
				continue
			}
			if seg.Start > inc.End() {
				incIdx++
				continue
			}
			start := seg.Start
			if inc.Start() > start {
				start = inc.Start()
			}
			end := seg.EndAddress()
			if inc.End() < end {
				end = inc.End()
			}

			if prevEnd != nil && start != *prevEnd+1 {
				if runStart != nil {
					if err := finalizeRun(*runStart, runLen); err != nil {
						return nil, err
					}
				}
				runStart = nil
				runLen = 0
			}
			if runStart == nil {
				s := start
				runStart = &s
			}

			offset := start - seg.Start
			n := end - start + 1
			data = append(data, seg.Data[offset:offset+n]...)
			runLen += int(n)
			e := end
			prevEnd = &e

			if seg.EndAddress() <= inc.End() {
				segIdx++
			} else {
				incIdx++
			}
		}
		if runStart != nil {
			if err := finalizeRun(*runStart, runLen); err != nil {
				return nil, err
			}
		}
	}

	return data, nil
}

func byteSum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

func wordSumBe(data []byte) (uint16, error) {
	if len(data)%2 != 0 {
		return 0, &Error{Kind: ErrLengthNotMultiple, Length: len(data), Expected: 2, Operation: "word sum BE"}
	}
	var sum uint16
	for i := 0; i < len(data); i += 2 {
		sum += binary.BigEndian.Uint16(data[i : i+2])
	}
	return sum, nil
}

func wordSumLe(data []byte) (uint16, error) {
	if len(data)%2 != 0 {
		return 0, &Error{Kind: ErrLengthNotMultiple, Length: len(data), Expected: 2, Operation: "word sum LE"}
	}
	var sum uint16
	for i := 0; i < len(data); i += 2 {
		sum += binary.LittleEndian.Uint16(data[i : i+2])
	}
	return sum, nil
}

func twosComplement16(v uint16) uint16 {
	return ^v + 1
}

// crc16Arc computes CRC-16/ARC: poly 0x8005 reflected, init 0, no xorout.
func crc16Arc(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// crc16IBMSDLC computes CRC-16/IBM-SDLC (a.k.a. X.25, ISO-HDLC): poly
// 0x1021 reflected, init 0xFFFF, xorout 0xFFFF.
func crc16IBMSDLC(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}
	return crc ^ 0xFFFF
}

// crc16XModem computes CRC-16/XMODEM: poly 0x1021 non-reflected, init 0,
// no xorout.
func crc16XModem(data []byte) uint16 {
	crc := uint16(0)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
