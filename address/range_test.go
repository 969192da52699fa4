package address

import "testing"

func TestFromStartLength(t *testing.T) {
	r, err := FromStartLength(0x1000, 0x200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Start() != 0x1000 || r.End() != 0x11FF || r.Length() != 0x200 {
		t.Fatalf("got start=%#x end=%#x length=%#x", r.Start(), r.End(), r.Length())
	}
}

func TestFromStartEnd(t *testing.T) {
	r, err := FromStartEnd(0x1000, 0x11FF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Length() != 0x200 {
		t.Fatalf("got length=%#x", r.Length())
	}
}

func TestContains(t *testing.T) {
	r, _ := FromStartEnd(0x1000, 0x1FFF)
	cases := []struct {
		addr uint32
		want bool
	}{
		{0x1000, true},
		{0x1500, true},
		{0x1FFF, true},
		{0x0FFF, false},
		{0x2000, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.addr); got != c.want {
			t.Errorf("Contains(%#x) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	r1, _ := FromStartEnd(0x1000, 0x1FFF)
	r2, _ := FromStartEnd(0x1800, 0x2800)
	r3, _ := FromStartEnd(0x2000, 0x3000)
	r4, _ := FromStartEnd(0x0500, 0x0FFF)

	if !r1.Overlaps(r2) {
		t.Error("expected r1 to overlap r2")
	}
	if r1.Overlaps(r3) {
		t.Error("did not expect r1 to overlap r3 (adjacent)")
	}
	if r1.Overlaps(r4) {
		t.Error("did not expect r1 to overlap r4")
	}
}

func TestIntersection(t *testing.T) {
	r1, _ := FromStartEnd(0x1000, 0x1FFF)
	r2, _ := FromStartEnd(0x1800, 0x2800)

	i, ok := r1.Intersection(r2)
	if !ok || i.Start() != 0x1800 || i.End() != 0x1FFF {
		t.Fatalf("got intersection=%+v ok=%v", i, ok)
	}

	r3, _ := FromStartEnd(0x2000, 0x3000)
	if _, ok := r1.Intersection(r3); ok {
		t.Fatal("expected no intersection")
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		name  string
		token string
		start uint32
		end   uint32
	}{
		{"start_length_hex", "0x1000,0x200", 0x1000, 0x11FF},
		{"start_end_hex", "0x1000-0x11FF", 0x1000, 0x11FF},
		{"decimal", "4096,512", 4096, 4607},
		{"binary_prefix", "0b1000,0b100", 8, 11},
		{"binary_suffix", "1000b,100b", 8, 11},
		{"h_suffix", "1000h-11FFh", 0x1000, 0x11FF},
		{"u_suffix", "0x1000u-0x11FFu", 0x1000, 0x11FF},
		{"separators", "0x10_00-0x11.FF", 0x1000, 0x11FF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := ParseRange(c.token)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Start() != c.start || r.End() != c.end {
				t.Fatalf("got start=%#x end=%#x, want start=%#x end=%#x", r.Start(), r.End(), c.start, c.end)
			}
		})
	}
}

func TestParseRangesMultiple(t *testing.T) {
	ranges, err := ParseRanges("0x1000,0x100:0x2000-0x2FFF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges", len(ranges))
	}
	if ranges[0].Start() != 0x1000 || ranges[0].End() != 0x10FF {
		t.Errorf("unexpected first range: %+v", ranges[0])
	}
	if ranges[1].Start() != 0x2000 || ranges[1].End() != 0x2FFF {
		t.Errorf("unexpected second range: %+v", ranges[1])
	}
}

func TestZeroLengthError(t *testing.T) {
	if _, err := FromStartLength(0x1000, 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestStartExceedsEndError(t *testing.T) {
	if _, err := FromStartEnd(0x2000, 0x1000); err == nil {
		t.Fatal("expected error")
	}
}

func TestFull4GiBRangeRejected(t *testing.T) {
	if _, err := FromStartEnd(0, 0xFFFFFFFF); err == nil {
		t.Fatal("expected error")
	}
}

func TestNearMaxRangeAllowed(t *testing.T) {
	r, err := FromStartEnd(1, 0xFFFFFFFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Length() != 0xFFFFFFFF {
		t.Fatalf("got length=%#x", r.Length())
	}
}

func TestParseEmptyString(t *testing.T) {
	if _, err := ParseRange(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseMalformedComma(t *testing.T) {
	if _, err := ParseRange("0x1000,"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddressOverflowInStartLength(t *testing.T) {
	if _, err := FromStartLength(0xFFFFFFFF, 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestRangeRoundTrip(t *testing.T) {
	r, _ := FromStartEnd(0x1000, 0x11FF)
	parsed, err := ParseRange(r.Format())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != r {
		t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, r)
	}
}
