package codec

import (
	"fmt"
	"strings"

	"github.com/h3xy/h3xy/hexfile"
)

// CCodeWordType selects the byte order used to pack multi-byte elements
// into the emitted C array, matching the reference tool's "/XC" word-type
// flag.
type CCodeWordType int

const (
	CCodeIntel CCodeWordType = iota
	CCodeMotorola
)

const ccodeValuesPerLine = 12

// CCodeWriteOptions configures C source/header emission, the reference
// tool's fifth real output format alongside Intel HEX, S-Record,
// HEX-ASCII, and binary (distinct from the OEM formats the reference CLI
// itself stubs as unimplemented).
type CCodeWriteOptions struct {
	Prefix       string
	HeaderName   string
	WordSize     int // 0=byte, 1=ushort, 2=ulong
	WordType     CCodeWordType
	Decrypt      bool
	DecryptValue uint32
}

// CCodeOutput is the pair of files WriteCCode produces: a .c source
// defining one array per normalized segment, and a .h header declaring
// them plus per-block address/length macros.
type CCodeOutput struct {
	C []byte
	H []byte
}

// WriteCCode renders h's normalized segments as a C source/header pair.
// Each segment becomes one array named "<prefix>Blk<N>"; the header gets
// an ADDRESS/LENGTH_BYTES/LENGTH_ELEMENTS macro triple per block plus an
// extern declaration. A segment whose length isn't a multiple of the
// selected word size cannot be packed into elements and is an error, as
// is an empty prefix or header name.
func WriteCCode(h *hexfile.HexFile, opts CCodeWriteOptions) (CCodeOutput, error) {
	elemBytes, cType, err := ccodeElemSize(opts.WordSize)
	if err != nil {
		return CCodeOutput{}, err
	}

	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		return CCodeOutput{}, &ParseError{Format: "ccode", Message: "prefix must not be empty"}
	}
	headerName := strings.TrimSpace(opts.HeaderName)
	if headerName == "" {
		return CCodeOutput{}, &ParseError{Format: "ccode", Message: "header name must not be empty"}
	}

	segs := h.Normalize().Segments()
	upper := ccodeSanitizeDefine(prefix)

	var header, source strings.Builder
	header.WriteString("#pragma once\n#include <stdint.h>\n\n")
	fmt.Fprintf(&header, "#define %s_BLOCK_COUNT %d\n\n", upper, len(segs))
	fmt.Fprintf(&source, "#include \"%s.h\"\n\n", headerName)

	for idx, s := range segs {
		if s.Len()%elemBytes != 0 {
			return CCodeOutput{}, &ParseError{Format: "ccode", Message: fmt.Sprintf(
				"segment %d length %d not multiple of %d", idx, s.Len(), elemBytes)}
		}
		elemCount := s.Len() / elemBytes
		fmt.Fprintf(&header, "#define %s_BLOCK%d_ADDRESS 0x%08Xu\n", upper, idx, s.Start)
		fmt.Fprintf(&header, "#define %s_BLOCK%d_LENGTH_BYTES 0x%Xu\n", upper, idx, s.Len())
		fmt.Fprintf(&header, "#define %s_BLOCK%d_LENGTH_ELEMENTS 0x%Xu\n", upper, idx, elemCount)
		fmt.Fprintf(&header, "extern const %s %sBlk%d[];\n\n", cType, prefix, idx)

		fmt.Fprintf(&source, "const %s %sBlk%d[] = {\n", cType, prefix, idx)
		values, err := ccodeSegmentValues(s.Data, elemBytes, opts)
		if err != nil {
			return CCodeOutput{}, err
		}
		ccodeWriteValues(&source, values, elemBytes)
		source.WriteString("};\n\n")
	}

	return CCodeOutput{C: []byte(source.String()), H: []byte(header.String())}, nil
}

func ccodeElemSize(wordSize int) (int, string, error) {
	switch wordSize {
	case 0:
		return 1, "uint8_t", nil
	case 1:
		return 2, "uint16_t", nil
	case 2:
		return 4, "uint32_t", nil
	default:
		return 0, "", &ParseError{Format: "ccode", Message: fmt.Sprintf("unsupported word size %d", wordSize)}
	}
}

func ccodeSegmentValues(data []byte, elemBytes int, opts CCodeWriteOptions) ([]uint32, error) {
	values := make([]uint32, 0, len(data)/elemBytes)
	for i := 0; i < len(data); i += elemBytes {
		chunk := data[i : i+elemBytes]
		var val uint32
		switch {
		case elemBytes == 1:
			val = uint32(chunk[0])
		case elemBytes == 2 && opts.WordType == CCodeIntel:
			val = uint32(chunk[0]) | uint32(chunk[1])<<8
		case elemBytes == 2 && opts.WordType == CCodeMotorola:
			val = uint32(chunk[0])<<8 | uint32(chunk[1])
		case elemBytes == 4 && opts.WordType == CCodeIntel:
			val = uint32(chunk[0]) | uint32(chunk[1])<<8 | uint32(chunk[2])<<16 | uint32(chunk[3])<<24
		case elemBytes == 4 && opts.WordType == CCodeMotorola:
			val = uint32(chunk[0])<<24 | uint32(chunk[1])<<16 | uint32(chunk[2])<<8 | uint32(chunk[3])
		default:
			return nil, &ParseError{Format: "ccode", Message: "unsupported word size"}
		}
		if opts.Decrypt {
			var mask uint32
			switch elemBytes {
			case 1:
				mask = opts.DecryptValue & 0xFF
			case 2:
				mask = opts.DecryptValue & 0xFFFF
			case 4:
				mask = opts.DecryptValue
			}
			val ^= mask
		}
		values = append(values, val)
	}
	return values, nil
}

func ccodeWriteValues(out *strings.Builder, values []uint32, elemBytes int) {
	width := elemBytes * 2
	for idx, value := range values {
		if idx%ccodeValuesPerLine == 0 {
			out.WriteString("    ")
		}
		fmt.Fprintf(out, "0x%0*X", width, value)
		if idx+1 != len(values) {
			out.WriteString(", ")
		}
		if (idx+1)%ccodeValuesPerLine == 0 || idx+1 == len(values) {
			out.WriteString("\n")
		}
	}
}

// ccodeSanitizeDefine uppercases ASCII alphanumerics and replaces
// everything else with an underscore, matching the reference tool's
// macro-name sanitization so the generated header is valid C.
func ccodeSanitizeDefine(prefix string) string {
	out := make([]byte, len(prefix))
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = c - ('a' - 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
