package segment

import (
	"bytes"
	"testing"

	"github.com/h3xy/h3xy/address"
)

func TestEndAddressSaturatesOnOverflow(t *testing.T) {
	s := New(0xFFFFFFFF, []byte{0xAA, 0xBB})
	if s.EndAddress() != 0xFFFFFFFF {
		t.Fatalf("got %#x", s.EndAddress())
	}
}

func TestIsContiguousWithOverflowFalse(t *testing.T) {
	s := New(0xFFFFFFFF, []byte{0xAA, 0xBB})
	next := New(0, []byte{0xCC})
	if s.IsContiguousWith(next) {
		t.Fatal("expected false across address-space overflow")
	}
}

func TestIsContiguousWith(t *testing.T) {
	a := New(0x1000, []byte{0x01, 0x02})
	b := New(0x1002, []byte{0x03})
	if !a.IsContiguousWith(b) {
		t.Fatal("expected contiguous")
	}
}

func TestMerge(t *testing.T) {
	a := New(0x1000, []byte{0x01, 0x02})
	b := New(0x1002, []byte{0x03})
	m := a.Merge(b)
	if !bytes.Equal(m.Data, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("got %x", m.Data)
	}
}

func TestSlice(t *testing.T) {
	s := New(0x1000, []byte{0x01, 0x02, 0x03, 0x04})
	r, _ := address.FromStartEnd(0x1001, 0x1002)
	clipped, ok := s.Slice(r)
	if !ok {
		t.Fatal("expected overlap")
	}
	if clipped.Start != 0x1001 || !bytes.Equal(clipped.Data, []byte{0x02, 0x03}) {
		t.Fatalf("got %+v", clipped)
	}

	rNone, _ := address.FromStartEnd(0x2000, 0x2001)
	if _, ok := s.Slice(rNone); ok {
		t.Fatal("expected no overlap")
	}
}
