package ops

import (
	"bytes"
	"testing"

	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/segment"
)

func TestAlignPrependsFill(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1001, []byte{0xAA, 0xBB})})
	if err := Align(h, AlignOptions{Alignment: 4, FillByte: 0xFF}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	segs := h.Segments()
	if len(segs) != 1 || segs[0].Start != 0x1000 {
		t.Fatalf("got %+v", segs)
	}
	if !bytes.Equal(segs[0].Data, []byte{0xFF, 0xAA, 0xBB}) {
		t.Fatalf("got %x", segs[0].Data)
	}
}

func TestAlignWithLength(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1001, []byte{0xAA, 0xBB})})
	if err := Align(h, AlignOptions{Alignment: 4, FillByte: 0xFF, AlignLength: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	segs := h.Segments()
	want := []byte{0xFF, 0xAA, 0xBB, 0xFF}
	if len(segs) != 1 || segs[0].Start != 0x1000 || !bytes.Equal(segs[0].Data, want) {
		t.Fatalf("got %+v", segs)
	}
}

func TestAlignInvalidAlignment(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0xAA})})
	if err := Align(h, AlignOptions{Alignment: 0, FillByte: 0xFF}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSplitSegments(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, bytes.Repeat([]byte{0xAA}, 10))})
	Split(h, 4)
	segs := h.Segments()
	if len(segs) != 3 {
		t.Fatalf("got %d segments", len(segs))
	}
	if segs[0].Start != 0x1000 || segs[0].Len() != 4 {
		t.Fatalf("got first=%+v", segs[0])
	}
	if segs[1].Start != 0x1004 || segs[1].Len() != 4 {
		t.Fatalf("got second=%+v", segs[1])
	}
	if segs[2].Start != 0x1008 || segs[2].Len() != 2 {
		t.Fatalf("got third=%+v", segs[2])
	}
}

func TestSwapWord(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x21, 0x46, 0x01, 0x36, 0x99})})
	Swap(h, SwapWord)
	want := []byte{0x46, 0x21, 0x36, 0x01, 0x99}
	if !bytes.Equal(h.Segments()[0].Data, want) {
		t.Fatalf("got %x, want %x", h.Segments()[0].Data, want)
	}
}

func TestSwapDWord(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x01, 0x02, 0x03, 0x04})})
	Swap(h, SwapDWord)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(h.Segments()[0].Data, want) {
		t.Fatalf("got %x, want %x", h.Segments()[0].Data, want)
	}
}

func TestScaleAddresses(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{1})})
	if err := ScaleAddresses(h, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Segments()[0].Start != 0x2000 {
		t.Fatalf("got %+v", h.Segments()[0])
	}
}

func TestScaleAddressesOverflow(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x80000000, []byte{1})})
	if err := ScaleAddresses(h, 4); err == nil {
		t.Fatal("expected error")
	}
	if h.Segments()[0].Start != 0x80000000 {
		t.Fatal("file should be untouched on error")
	}
}

func TestUnscaleAddresses(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x2000, []byte{1})})
	if err := UnscaleAddresses(h, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Segments()[0].Start != 0x1000 {
		t.Fatalf("got %+v", h.Segments()[0])
	}
}

func TestUnscaleAddressesNotDivisible(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x2001, []byte{1})})
	if err := UnscaleAddresses(h, 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestRemapBanked(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x8100, []byte{0xAA})})
	err := Remap(h, RemapOptions{Start: 0x8000, End: 0xBFFF, Linear: 0x10000, Size: 0x4000, Inc: 0x4000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint32(0x10000 + 0x100)
	if h.Segments()[0].Start != want {
		t.Fatalf("got %#x, want %#x", h.Segments()[0].Start, want)
	}
}

func TestRemapPassthroughOutsideWindow(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0xAA})})
	if err := Remap(h, RemapOptions{Start: 0x8000, End: 0xBFFF, Linear: 0x10000, Size: 0x4000, Inc: 0x4000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Segments()[0].Start != 0x1000 {
		t.Fatalf("segment should pass through unchanged, got %+v", h.Segments()[0])
	}
}

func TestMapStar12LowWindow(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x4100, []byte{0xAA})})
	if err := MapStar12(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint32(0x0F8000 + 0x100)
	if h.Segments()[0].Start != want {
		t.Fatalf("got %#x, want %#x", h.Segments()[0].Start, want)
	}
}

func TestMapStar12Bank(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x308100, []byte{0xAA})})
	if err := MapStar12(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint32(0x0C0000 + 0x100)
	if h.Segments()[0].Start != want {
		t.Fatalf("got %#x, want %#x", h.Segments()[0].Start, want)
	}
}

func TestDspicExpand(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x11, 0x22, 0x33, 0x44})})
	r, _ := address.FromStartLength(0x1000, 4)
	if err := DspicExpand(h, r, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	norm := h.Normalize().Segments()
	found := false
	for _, s := range norm {
		if s.Start == 0x2000 {
			found = true
			if !bytes.Equal(s.Data, []byte{0x11, 0x22, 0x00, 0x00, 0x33, 0x44, 0x00, 0x00}) {
				t.Fatalf("got %x", s.Data)
			}
		}
	}
	if !found {
		t.Fatalf("expected segment at 0x2000, got %+v", norm)
	}
}

func TestDspicShrink(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x2000, []byte{0x11, 0x22, 0x00, 0x00, 0x33, 0x44, 0x00, 0x00})})
	r, _ := address.FromStartLength(0x2000, 8)
	if err := DspicShrink(h, r, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	norm := h.Normalize().Segments()
	found := false
	for _, s := range norm {
		if s.Start == 0x1000 {
			found = true
			if !bytes.Equal(s.Data, []byte{0x11, 0x22, 0x33, 0x44}) {
				t.Fatalf("got %x", s.Data)
			}
		}
	}
	if !found {
		t.Fatalf("expected segment at 0x1000, got %+v", norm)
	}
}

func TestDspicShrinkOddStartRequiresTarget(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x2001, bytes.Repeat([]byte{0}, 4))})
	r, _ := address.FromStartLength(0x2001, 4)
	if err := DspicShrink(h, r, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestDspicClearGhost(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x11, 0x22, 0x33, 0xFF})})
	r, _ := address.FromStartLength(0x1000, 4)
	if err := DspicClearGhost(h, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	norm := h.Normalize().Segments()
	if !bytes.Equal(norm[0].Data, []byte{0x11, 0x22, 0x33, 0x00}) {
		t.Fatalf("got %x", norm[0].Data)
	}
}

func TestDspicExpandRangeNotCovered(t *testing.T) {
	h := hexfile.WithSegments([]segment.Segment{segment.New(0x1000, []byte{0x11, 0x22})})
	r, _ := address.FromStartLength(0x1000, 4)
	if err := DspicExpand(h, r, nil); err == nil {
		t.Fatal("expected error: range not fully covered")
	}
}
