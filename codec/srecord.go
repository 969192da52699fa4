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

// SRecordType selects the address width of S1/S2/S3 data records (and,
// for writing, can be forced rather than auto-selected).
type SRecordType int

const (
	// SRecordAuto selects the smallest of S1/S2/S3 that covers the
	// file's maximum address.
	SRecordAuto SRecordType = iota
	SRecord1    // 16-bit address
	SRecord2    // 24-bit address
	SRecord3    // 32-bit address
)

// SRecordWriteOptions configures S-Record emission.
type SRecordWriteOptions struct {
	BytesPerLine int // 0 selects a default of 16
	Type         SRecordType
}

func srecAddrWidth(t byte) int {
	switch t {
	case '1':
		return 2
	case '2':
		return 3
	case '3':
		return 4
	default:
		return 0
	}
}

func srecChecksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return ^sum
}

// ParseSRecord decodes a Motorola S-Record stream. Lowercase 's' prefixes
// are accepted.
func ParseSRecord(data []byte) (*hexfile.HexFile, error) {
	h := hexfile.New()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if len(text) < 2 || (text[0] != 'S' && text[0] != 's') {
			return nil, &ParseError{Format: "srecord", Line: line, Message: "record must start with 'S'"}
		}
		recType := text[1]
		body := text[2:]
		if len(body) < 2 || len(body)%2 != 0 {
			return nil, &ParseError{Format: "srecord", Line: line, Message: "truncated record"}
		}
		raw, err := hex.DecodeString(body)
		if err != nil {
			return nil, &ParseError{Format: "srecord", Line: line, Message: "invalid hex digit"}
		}
		count := raw[0]
		if int(count) != len(raw)-1 {
			return nil, &ParseError{Format: "srecord", Line: line, Message: "count does not match record length"}
		}
		expected := srecChecksum(raw[:len(raw)-1])
		actual := raw[len(raw)-1]
		if actual != expected {
			return nil, &ChecksumMismatchError{Format: "srecord", Line: line, Expected: expected, Actual: actual}
		}

		switch recType {
		case '0', '5', '6', '7', '8', '9':
			// header, count, and terminator records carry no payload data
			continue
		case '1', '2', '3':
			width := srecAddrWidth(recType)
			if len(raw) < 1+width+1 {
				return nil, &ParseError{Format: "srecord", Line: line, Message: "truncated data record"}
			}
			var addr uint32
			for i := 0; i < width; i++ {
				addr = addr<<8 | uint32(raw[1+i])
			}
			payload := raw[1+width : len(raw)-1]
			if len(payload) > 0 {
				h.AppendSegment(segment.New(addr, append([]byte(nil), payload...)))
			}
		default:
			return nil, &ParseError{Format: "srecord", Line: line, Message: fmt.Sprintf("unsupported record type S%c", recType)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("srecord: %w", err)
	}
	return h, nil
}

func writeSRecordLine(buf *bytes.Buffer, recType byte, addrWidth int, addr uint32, payload []byte) {
	row := make([]byte, 0, 1+addrWidth+len(payload))
	row = append(row, byte(addrWidth+len(payload)+1))
	for i := addrWidth - 1; i >= 0; i-- {
		row = append(row, byte(addr>>(8*uint(i))))
	}
	row = append(row, payload...)
	row = append(row, srecChecksum(row))
	buf.WriteByte('S')
	buf.WriteByte(recType)
	buf.WriteString(strings.ToUpper(hex.EncodeToString(row)))
	buf.WriteString("\r\n")
}

// WriteSRecord emits the normalized form of h as a Motorola S-Record
// stream, auto-selecting (or using the forced) address width.
func WriteSRecord(h *hexfile.HexFile, opts SRecordWriteOptions) ([]byte, error) {
	bytesPerLine := opts.BytesPerLine
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}
	segs := h.Normalize().Segments()

	dataType := byte('3')
	termType := byte('7')
	addrWidth := 4
	switch opts.Type {
	case SRecord1:
		dataType, termType, addrWidth = '1', '9', 2
	case SRecord2:
		dataType, termType, addrWidth = '2', '8', 3
	case SRecord3:
		dataType, termType, addrWidth = '3', '7', 4
	default:
		var maxAddr uint32
		for _, s := range segs {
			if e := s.EndAddress(); e > maxAddr {
				maxAddr = e
			}
		}
		switch {
		case maxAddr <= 0xFFFF:
			dataType, termType, addrWidth = '1', '9', 2
		case maxAddr <= 0xFFFFFF:
			dataType, termType, addrWidth = '2', '8', 3
		default:
			dataType, termType, addrWidth = '3', '7', 4
		}
	}

	var buf bytes.Buffer
	writeSRecordLine(&buf, '0', 2, 0, []byte("h3xy"))

	for _, s := range segs {
		for offset := 0; offset < len(s.Data); offset += bytesPerLine {
			end := offset + bytesPerLine
			if end > len(s.Data) {
				end = len(s.Data)
			}
			writeSRecordLine(&buf, dataType, addrWidth, s.Start+uint32(offset), s.Data[offset:end])
		}
	}

	writeSRecordLine(&buf, termType, addrWidth, 0, nil)
	return buf.Bytes(), nil
}
