package codec

import (
	"strings"

	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

// HexAsciiWriteOptions configures HEX-ASCII emission.
type HexAsciiWriteOptions struct {
	// Separator is written between byte tokens. A zero value defaults to
	// a single space.
	Separator string
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// ParseHexAscii decodes a whitespace/separator-delimited stream of hex
// byte tokens into a single segment starting at base. Any non-hex
// character is treated as a token separator; "0x" prefixes on individual
// tokens are tolerated.
//
// If existing already covers any address the new data would occupy, the
// import is dropped in its entirety and ok reports false, matching the
// one documented non-fatal warning in the parity contract: callers should
// log it rather than treat it as an error.
func ParseHexAscii(data []byte, base uint32, existing *hexfile.HexFile) (seg segment.Segment, ok bool, err error) {
	var bytesOut []byte
	text := string(data)
	i := 0
	for i < len(text) {
		for i < len(text) && !isHexDigit(rune(text[i])) {
			i++
		}
		if i >= len(text) {
			break
		}
		if text[i] == '0' && i+2 < len(text) && (text[i+1] == 'x' || text[i+1] == 'X') && isHexDigit(rune(text[i+2])) {
			i += 2
		}
		start := i
		for i < len(text) && isHexDigit(rune(text[i])) && i-start < 2 {
			i++
		}
		token := text[start:i]
		if strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X") {
			token = token[2:]
		}
		if token == "" {
			continue
		}
		v, perr := parseHexByte(token)
		if perr != nil {
			return segment.Segment{}, false, &ParseError{Format: "hex-ascii", Message: "invalid hex digit"}
		}
		bytesOut = append(bytesOut, v)
	}

	if len(bytesOut) == 0 {
		return segment.Segment{}, false, &ParseError{Format: "hex-ascii", Message: "no data"}
	}

	s := segment.New(base, bytesOut)

	if existing != nil {
		r := s.Range()
		for _, e := range existing.Segments() {
			if e.Range().Overlaps(r) {
				return segment.Segment{}, false, nil
			}
		}
	}
	return s, true, nil
}

func parseHexByte(tok string) (byte, error) {
	var v int
	for _, c := range tok {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		default:
			return 0, &ParseError{Format: "hex-ascii", Message: "invalid hex digit"}
		}
	}
	if len(tok) == 1 {
		return byte(v), nil
	}
	return byte(v), nil
}

// WriteHexAscii renders the normalized form of h as a separator-delimited
// stream of two-hex-digit byte tokens, in ascending address order.
func WriteHexAscii(h *hexfile.HexFile, opts HexAsciiWriteOptions) []byte {
	sep := opts.Separator
	if sep == "" {
		sep = " "
	}
	const hexDigits = "0123456789ABCDEF"
	var buf []byte
	first := true
	for _, s := range h.Normalize().Segments() {
		for _, b := range s.Data {
			if !first {
				buf = append(buf, sep...)
			}
			first = false
			buf = append(buf, hexDigits[b>>4], hexDigits[b&0xF])
		}
	}
	return buf
}
