package ops

import (
	"bytes"
	"testing"

	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

func TestByteSum(t *testing.T) {
	if got := byteSum([]byte{0x01, 0x02, 0x03, 0x04}); got != 0x000A {
		t.Fatalf("got %#x", got)
	}
	if got := byteSum(bytes.Repeat([]byte{0xFF}, 257)); got != 0xFFFF {
		t.Fatalf("got %#x", got)
	}
	if got := byteSum(bytes.Repeat([]byte{0xFF}, 258)); got != 0x00FE {
		t.Fatalf("got %#x", got)
	}
}

func TestWordSumBeLe(t *testing.T) {
	sum, err := wordSumBe([]byte{0x12, 0x34, 0x56, 0x78})
	if err != nil || sum != 0x68AC {
		t.Fatalf("got %#x, err %v", sum, err)
	}
	sum, err = wordSumLe([]byte{0x34, 0x12, 0x78, 0x56})
	if err != nil || sum != 0x68AC {
		t.Fatalf("got %#x, err %v", sum, err)
	}
	if _, err := wordSumBe([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected error")
	}
}

// Known test vectors for "123456789".
var crcCheckInput = []byte("123456789")

func TestCrc16Arc(t *testing.T) {
	if got := crc16Arc(crcCheckInput); got != 0xBB3D {
		t.Fatalf("got %#x", got)
	}
}

func TestCrc16IBMSDLC(t *testing.T) {
	if got := crc16IBMSDLC(crcCheckInput); got != 0x906E {
		t.Fatalf("got %#x", got)
	}
}

func TestCrc16XModem(t *testing.T) {
	if got := crc16XModem(crcCheckInput); got != 0x31C3 {
		t.Fatalf("got %#x", got)
	}
}

func TestChecksumWordSumOddStartRejects(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1001, []byte{0xAA, 0xBB})})
	_, err := Calculate(h, ChecksumOptions{Algorithm: WordSumBe})
	opsErr, ok := err.(*Error)
	if !ok || opsErr.Kind != ErrAddressNotDivisible || opsErr.Address != 0x1001 {
		t.Fatalf("got %v", err)
	}
}

func TestChecksumWordSumOddLengthRejects(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0xAA, 0xBB, 0xCC})})
	_, err := Calculate(h, ChecksumOptions{Algorithm: WordSumLe})
	opsErr, ok := err.(*Error)
	if !ok || opsErr.Kind != ErrLengthNotMultiple || opsErr.Length != 3 || opsErr.Expected != 2 {
		t.Fatalf("got %v", err)
	}
}

func TestChecksumByteSumBeTarget(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x01, 0x02, 0x03, 0x04})})
	result, err := Checksum(h, ChecksumOptions{Algorithm: ByteSumBe}, ChecksumTarget{Kind: TargetAppend})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x00, 0x0A}
	if !bytes.Equal(result, want) {
		t.Fatalf("got %x, want %x", result, want)
	}
	raw := h.Segments()
	last := raw[len(raw)-1]
	if last.Start != 0x1004 || !bytes.Equal(last.Data, want) {
		t.Fatalf("got %+v", last)
	}
}

func TestChecksumRangeAndExclude(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06})})
	rng, _ := address.FromStartEnd(0x1000, 0x1005)
	excl, _ := address.FromStartEnd(0x1002, 0x1003)
	result, err := Calculate(h, ChecksumOptions{
		Algorithm:     ByteSumBe,
		Range:         &rng,
		ExcludeRanges: []address.Range{excl},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := byteSum([]byte{0x01, 0x02, 0x05, 0x06})
	if binary16(result) != want {
		t.Fatalf("got %x", result)
	}
}

func binary16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func TestChecksumForcedRangeFillsGaps(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1002, []byte{0x01, 0x02})})
	rng, _ := address.FromStartEnd(0x1000, 0x1005)
	result, err := Calculate(h, ChecksumOptions{
		Algorithm:   ByteSumBe,
		ForcedRange: &ForcedRange{Range: rng, Pattern: []byte{0x00}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := byteSum([]byte{0x00, 0x00, 0x01, 0x02, 0x00, 0x00})
	if binary16(result) != want {
		t.Fatalf("got %x, want %#x", result, want)
	}
}
