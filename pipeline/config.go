package pipeline

import (
	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/hexfile"
	"github.com/h3xy/h3xy/ops"
	"github.com/h3xy/h3xy/report"
)

// MergeSpec is one configured merge: Other's bytes are optionally
// filtered to Range, offset by Offset, then inserted into the working
// HexFile under Mode. Merges run in the order they appear in
// Config.Merges, matching the user's `/MT`/`/MO` flag order.
type MergeSpec struct {
	Other  *hexfile.HexFile
	Mode   ops.MergeMode
	Offset int64
	Range  *address.Range
}

// ChecksumSpec configures the single checksum stage.
type ChecksumSpec struct {
	Algorithm          ops.ChecksumAlgorithm
	Range              *address.Range
	LittleEndianOutput bool
	ForcedRange        *ops.ForcedRange
	ExcludeRanges      []address.Range
	Target             ops.ChecksumTarget
}

// DspicSpec configures a dsPIC data-expansion/shrink operation: the
// source range, plus an optional explicit target address overriding the
// operation's default (range.Start scaled by its natural factor).
type DspicSpec struct {
	Range  address.Range
	Target *uint32
}

// Thresholds carries the three legacy flags the reference tool parses
// but never acts on (`/BHFCT`, `/BTFST`, `/BTBS`). They exist purely so
// a configuration built from the CLI's flag set round-trips; Run warns
// once if any is set and otherwise ignores them.
type Thresholds struct {
	BHFCT *uint32
	BTFST *uint32
	BTBS  *uint32
}

func (t Thresholds) any() bool {
	return t.BHFCT != nil || t.BTFST != nil || t.BTBS != nil
}

// Config is the parsed configuration aggregate a pipeline run executes.
// It mirrors §6.1's CLI flag categories: one field or group of fields
// per category. The CLI (an external collaborator) is responsible for
// parsing flags into a Config; Run never looks at argv.
type Config struct {
	// HexFile is the already-parsed input, mutated in place by Run.
	HexFile *hexfile.HexFile

	// FillRanges / FillPattern: `/FR`, `/FP`, `/FA`. When FillPattern is
	// nil, RandomFill (passed to Run) supplies the bytes instead.
	FillRanges  []address.Range
	FillPattern []byte

	// CutRanges: `/CR`.
	CutRanges []address.Range

	// Merges: `/MT` / `/MO`, applied in the order given.
	Merges []MergeSpec

	// FilterEnabled / AddressRanges: `/AR`, the keep-range filter. An
	// empty AddressRanges with FilterEnabled true clears the file
	// entirely, matching ops.FilterRanges; FilterEnabled false skips
	// the stage regardless of AddressRanges' contents.
	FilterEnabled bool
	AddressRanges []address.Range

	// FillAll: `/AF`, fills every gap in the file's span with this byte.
	FillAll *byte

	// Align: `/AD`, `/AL`.
	Align *ops.AlignOptions

	// Scale / Unscale: address scale/unscale (§4.5.9). No dedicated CLI
	// flag is documented in §6.1; these exist for parity with reference
	// tool scripts that encode the factor/divisor in a load script.
	Scale   *uint32
	Unscale *uint32

	// DspicExpand / DspicShrink / DspicClearGhost: `/CDSPX`, `/CDSPS`,
	// `/CDSPG`.
	DspicExpand     *DspicSpec
	DspicShrink     *DspicSpec
	DspicClearGhost *address.Range

	// Split: `/SB`.
	Split *uint32

	// SwapWord / SwapLong: `/SWAPWORD`, `/SWAPLONG`.
	SwapWord bool
	SwapLong bool

	// Checksum: `/CS0..N`, `/CSR`.
	Checksum *ChecksumSpec

	// MapStar12 / MapStar12X / MapStar08 / Remap: `/S12MAP`, `/S12XMAP`,
	// `/S08MAP`, `/REMAP`.
	MapStar12  bool
	MapStar12X bool
	MapStar08  bool
	Remap      *ops.RemapOptions

	// RemapAfterChecksum moves the Remap stage to run after the
	// checksum stage instead of its default position alongside the
	// other mapping ops, for the rare case where the user's flag order
	// placed `/REMAP` after the checksum flags on the command line.
	RemapAfterChecksum bool

	// Thresholds: `/BHFCT`, `/BTFST`, `/BTBS`.
	Thresholds Thresholds
}

// Result is what a pipeline run produces: the transformed HexFile plus
// the checksum bytes, if a checksum stage was configured.
type Result struct {
	HexFile       *hexfile.HexFile
	ChecksumBytes []byte
	Report        report.Report
}
