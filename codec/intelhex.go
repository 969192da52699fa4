package codec

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

// Intel HEX record types.
const (
	ihRecData            = 0x00
	ihRecEOF             = 0x01
	ihRecExtendedSegment = 0x02
	ihRecStartSegment    = 0x03
	ihRecExtendedLinear  = 0x04
	ihRecStartLinear     = 0x05
)

// IntelHexMode selects which extended-address record family the writer
// uses, or lets it choose automatically based on the maximum address
// present.
type IntelHexMode int

const (
	// IntelHexAuto picks segment (02) or linear (04) extended records
	// based on the file's maximum address.
	IntelHexAuto IntelHexMode = iota
	// IntelHexForcedSegment always uses type-02 extended segment records.
	IntelHexForcedSegment
	// IntelHexForcedLinear always uses type-04 extended linear records.
	IntelHexForcedLinear
)

// IntelHexWriteOptions configures Intel HEX emission.
type IntelHexWriteOptions struct {
	// BytesPerLine is the data payload per record. 0 selects the default
	// of 16.
	BytesPerLine int
	Mode         IntelHexMode
}

// ParseIntelHex decodes an Intel HEX byte stream into a HexFile. Segments
// are appended in line order, so the raw form mirrors the file's record
// order.
func ParseIntelHex(data []byte) (*hexfile.HexFile, error) {
	return parseIntelHex(data, true)
}

// ParseIntelHex16Bit decodes an Intel HEX stream that ignores extended
// address records entirely: every address is the raw 16-bit field from
// the record. This matches the /II2 input mode.
func ParseIntelHex16Bit(data []byte) (*hexfile.HexFile, error) {
	return parseIntelHex(data, false)
}

func parseIntelHex(data []byte, extended bool) (*hexfile.HexFile, error) {
	h := hexfile.New()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var base uint32
	line := 0
	seenEOF := false
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text[0] != ':' {
			return nil, &ParseError{Format: "intel-hex", Line: line, Message: "record must start with ':'"}
		}
		body := text[1:]
		if len(body)%2 != 0 || len(body) < 8 {
			return nil, &ParseError{Format: "intel-hex", Line: line, Message: "truncated record"}
		}
		raw, err := hex.DecodeString(body)
		if err != nil {
			return nil, &ParseError{Format: "intel-hex", Line: line, Message: "invalid hex digit"}
		}
		if len(raw) < 5 {
			return nil, &ParseError{Format: "intel-hex", Line: line, Message: "truncated record"}
		}
		byteCount := raw[0]
		addr := uint16(raw[1])<<8 | uint16(raw[2])
		recType := raw[3]
		expectedLen := 5 + int(byteCount)
		if len(raw) != expectedLen {
			return nil, &ParseError{Format: "intel-hex", Line: line, Message: "byte count does not match record length"}
		}
		var sum byte
		for _, b := range raw {
			sum += b
		}
		if sum != 0 {
			expected := byte(0) - (sum - raw[len(raw)-1])
			return nil, &ChecksumMismatchError{Format: "intel-hex", Line: line, Expected: expected, Actual: raw[len(raw)-1]}
		}

		payload := raw[4 : 4+byteCount]
		switch recType {
		case ihRecData:
			address := base + uint32(addr)
			if len(payload) > 0 {
				h.AppendSegment(segment.New(address, append([]byte(nil), payload...)))
			}
		case ihRecEOF:
			seenEOF = true
		case ihRecExtendedSegment:
			if !extended || len(payload) != 2 {
				continue
			}
			value := uint32(payload[0])<<8 | uint32(payload[1])
			base = value << 4
		case ihRecExtendedLinear:
			if !extended || len(payload) != 2 {
				continue
			}
			value := uint32(payload[0])<<8 | uint32(payload[1])
			base = value << 16
		case ihRecStartSegment, ihRecStartLinear:
			// parsed, intentionally ignored
		default:
			return nil, &ParseError{Format: "intel-hex", Line: line, Message: fmt.Sprintf("unsupported record type %02X", recType)}
		}
		if seenEOF {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("intel-hex: %w", err)
	}
	if !seenEOF {
		return nil, &ParseError{Format: "intel-hex", Message: "missing EOF record"}
	}
	return h, nil
}

func intelHexChecksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return byte(0) - sum
}

func writeIntelHexRecord(buf *bytes.Buffer, addr uint16, recType byte, payload []byte) {
	row := make([]byte, 0, 5+len(payload))
	row = append(row, byte(len(payload)), byte(addr>>8), byte(addr), recType)
	row = append(row, payload...)
	row = append(row, intelHexChecksum(row))
	buf.WriteByte(':')
	buf.WriteString(strings.ToUpper(hex.EncodeToString(row)))
	buf.WriteString("\r\n")
}

// WriteIntelHex emits the normalized form of h as Intel HEX text.
func WriteIntelHex(h *hexfile.HexFile, opts IntelHexWriteOptions) ([]byte, error) {
	bytesPerLine := opts.BytesPerLine
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}

	segs := h.Normalize().Segments()

	recType := byte(ihRecExtendedSegment)
	switch opts.Mode {
	case IntelHexForcedLinear:
		recType = ihRecExtendedLinear
	case IntelHexForcedSegment:
		recType = ihRecExtendedSegment
	default:
		var maxAddr uint32
		for _, s := range segs {
			if e := s.EndAddress(); e > maxAddr {
				maxAddr = e
			}
		}
		if maxAddr > 0xFFFFF {
			recType = ihRecExtendedLinear
		}
	}

	var buf bytes.Buffer
	var currentWindow uint32 // implicit base-0 window is active before any record is written

	for _, s := range segs {
		offset := 0
		for offset < len(s.Data) {
			addr := s.Start + uint32(offset)
			window := addr &^ 0xFFFF
			remainInWindow := int(0x10000 - (addr & 0xFFFF))
			chunk := bytesPerLine
			if remainInWindow < chunk {
				chunk = remainInWindow
			}
			if len(s.Data)-offset < chunk {
				chunk = len(s.Data) - offset
			}

			if window != currentWindow {
				emitExtendedAddressRecord(&buf, recType, window)
				currentWindow = window
			}

			writeIntelHexRecord(&buf, uint16(addr&0xFFFF), ihRecData, s.Data[offset:offset+chunk])
			offset += chunk
		}
	}

	writeIntelHexRecord(&buf, 0, ihRecEOF, nil)
	return buf.Bytes(), nil
}

func emitExtendedAddressRecord(buf *bytes.Buffer, recType byte, window uint32) {
	switch recType {
	case ihRecExtendedLinear:
		value := window >> 16
		writeIntelHexRecord(buf, 0, ihRecExtendedLinear, []byte{byte(value >> 8), byte(value)})
	default:
		value := (window >> 16) << 12
		writeIntelHexRecord(buf, 0, ihRecExtendedSegment, []byte{byte(value >> 8), byte(value)})
	}
}
