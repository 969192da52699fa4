package report

import (
	"encoding/hex"

	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml"
)

// StageSummary records one pipeline stage's cost and effect.
type StageSummary struct {
	Name         string `toml:"name" json:"name"`
	Elapsed      string `toml:"elapsed" json:"elapsed"`
	SegmentCount int    `toml:"segment_count" json:"segment_count"`
	ByteCount    int    `toml:"byte_count" json:"byte_count"`
}

// Report summarizes a full pipeline run: every stage that executed, the
// final file's shape, and the checksum result if one was computed.
type Report struct {
	Stages            []StageSummary `toml:"stages" json:"stages"`
	TotalElapsed      string         `toml:"total_elapsed" json:"total_elapsed"`
	FinalSegmentCount int            `toml:"final_segment_count" json:"final_segment_count"`
	FinalByteCount    int            `toml:"final_byte_count" json:"final_byte_count"`
	ChecksumHex       string         `toml:"checksum,omitempty" json:"checksum,omitempty"`
}

// WithChecksum sets ChecksumHex from raw checksum bytes; a nil/empty
// slice leaves ChecksumHex unset.
func (r Report) WithChecksum(raw []byte) Report {
	if len(raw) == 0 {
		return r
	}
	r.ChecksumHex = hex.EncodeToString(raw)
	return r
}

// TOML marshals r to TOML bytes.
func TOML(r Report) ([]byte, error) {
	return toml.Marshal(r)
}

// JSON marshals r to JSON bytes using sonic's encoder.
func JSON(r Report) ([]byte, error) {
	return sonic.Marshal(r)
}
