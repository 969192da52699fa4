package codec

import (
	"bytes"
	"testing"
)

func TestParseCyacd(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		wantHeader CyacdHeader
		wantAddrs  []uint32
		wantData   [][]byte
	}{
		{
			name: "single row",
			input: "1E9602AA0000\n" +
				"000000040001020304F2\n",
			wantHeader: CyacdHeader{SiliconID: 0x1E9602AA, SiliconRev: 0x00, ChecksumType: 0x00},
			wantAddrs:  []uint32{cyacdRowAddress(0x00, 0x0000)},
			wantData:   [][]byte{{0x01, 0x02, 0x03, 0x04}},
		},
		{
			name: "multiple rows preserve file order",
			input: "1E9602AA0000\n" +
				"000000040001020304F2\n" +
				"000100040005060708E1\n",
			wantHeader: CyacdHeader{SiliconID: 0x1E9602AA, SiliconRev: 0x00, ChecksumType: 0x00},
			wantAddrs:  []uint32{cyacdRowAddress(0x00, 0x0000), cyacdRowAddress(0x00, 0x0001)},
			wantData:   [][]byte{{0x01, 0x02, 0x03, 0x04}, {0x05, 0x06, 0x07, 0x08}},
		},
		{
			name:    "bad checksum",
			input:   "1E9602AA0000\n000000040001020304FF\n",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "bad checksum type",
			input:   "1E9602AA0002\n000000040001020304F2\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, header, err := ParseCyacd([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if header != tt.wantHeader {
				t.Fatalf("header = %+v, want %+v", header, tt.wantHeader)
			}
			segs := h.Segments()
			if len(segs) != len(tt.wantAddrs) {
				t.Fatalf("got %d segments, want %d", len(segs), len(tt.wantAddrs))
			}
			for i, s := range segs {
				if s.Start != tt.wantAddrs[i] {
					t.Errorf("segment %d start = 0x%X, want 0x%X", i, s.Start, tt.wantAddrs[i])
				}
				if !bytes.Equal(s.Data, tt.wantData[i]) {
					t.Errorf("segment %d data = %X, want %X", i, s.Data, tt.wantData[i])
				}
			}
		})
	}
}

func TestCyacdRoundTrip(t *testing.T) {
	input := "1E9602AA0000\n" +
		"000000040001020304F2\n" +
		"000100040005060708E1\n"

	h, header, err := ParseCyacd([]byte(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := WriteCyacd(h, header)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	h2, header2, err := ParseCyacd(out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if header2 != header {
		t.Fatalf("header round-trip mismatch: %+v vs %+v", header2, header)
	}
	if h.Normalize().Len() != h2.Normalize().Len() {
		t.Fatalf("segment count round-trip mismatch: %d vs %d", h.Normalize().Len(), h2.Normalize().Len())
	}
}
