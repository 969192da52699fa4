package pipeline

import (
	"time"

	"github.com/hako/durafmt"

	"github.com/h3xy/h3xy/address"
	"github.com/h3xy/h3xy/ops"
	"github.com/h3xy/h3xy/report"
)

// RandomFill supplies fill bytes for a range when a fill stage has no
// explicit pattern configured (`/FA` without `/FP`).
type RandomFill func(address.Range) []byte

// Run executes the configured stages over cfg.HexFile in the fixed
// order the reference tool uses, mutating it in place, and returns the
// resulting HexFile plus any checksum bytes produced. Stages absent
// from cfg are skipped; this order is itself part of the parity
// contract and must never be permuted based on which stages are set.
func Run(cfg Config, randomFill RandomFill, opts ...Option) (*Result, error) {
	ro := defaultRunOptions()
	for _, opt := range opts {
		opt(&ro)
	}
	log := ro.logger

	h := cfg.HexFile
	if h == nil {
		return nil, &StageError{Stage: "input", Err: &ops.Error{Kind: ops.ErrInvalidParameter}}
	}

	if cfg.Thresholds.any() {
		log.Info("legacy threshold flags parsed but ignored", "bhfct_set", cfg.Thresholds.BHFCT != nil,
			"btfst_set", cfg.Thresholds.BTFST != nil, "btbs_set", cfg.Thresholds.BTBS != nil)
	}

	runStart := time.Now()
	var stages []report.StageSummary

	runStage := func(name string, fn func() error) error {
		start := time.Now()
		log.Debug("stage start", "stage", name)
		err := fn()
		elapsed := durafmt.Parse(time.Since(start)).LimitFirstN(2).String()
		if err != nil {
			log.Error("stage failed", "stage", name, "elapsed", elapsed, "error", err)
			return &StageError{Stage: name, Err: err}
		}
		log.Debug("stage done", "stage", name, "elapsed", elapsed)
		byteCount := 0
		for _, s := range h.Segments() {
			byteCount += s.Len()
		}
		stages = append(stages, report.StageSummary{
			Name:         name,
			Elapsed:      elapsed,
			SegmentCount: h.Len(),
			ByteCount:    byteCount,
		})
		return nil
	}

	// 2. range filter (keep ranges)
	if cfg.FilterEnabled {
		if err := runStage("filter_range", func() error {
			ops.FilterRanges(h, cfg.AddressRanges)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 3. merges, in user order
	for _, m := range cfg.Merges {
		m := m
		if err := runStage("merge", func() error {
			return ops.Merge(h, m.Other, m.Mode, m.Offset, m.Range)
		}); err != nil {
			return nil, err
		}
	}

	// 4. cuts
	if len(cfg.CutRanges) > 0 {
		if err := runStage("cut", func() error {
			ops.Cut(h, cfg.CutRanges)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 5. fills
	if len(cfg.FillRanges) > 0 {
		if err := runStage("fill", func() error {
			for _, r := range cfg.FillRanges {
				pattern := cfg.FillPattern
				if pattern == nil {
					pattern = randomFill(r)
				}
				if err := ops.Fill(h, []address.Range{r}, pattern, false); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 6. fill-all-gaps
	if cfg.FillAll != nil {
		if err := runStage("fill_all", func() error {
			ops.FillAllGaps(h, *cfg.FillAll)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 7. align
	if cfg.Align != nil {
		if err := runStage("align", func() error {
			return ops.Align(h, *cfg.Align)
		}); err != nil {
			return nil, err
		}
	}

	// 8. address scale / unscale / mapping
	if cfg.Scale != nil {
		if err := runStage("scale", func() error { return ops.ScaleAddresses(h, *cfg.Scale) }); err != nil {
			return nil, err
		}
	}
	if cfg.Unscale != nil {
		if err := runStage("unscale", func() error { return ops.UnscaleAddresses(h, *cfg.Unscale) }); err != nil {
			return nil, err
		}
	}
	if cfg.DspicExpand != nil {
		if err := runStage("dspic_expand", func() error {
			return ops.DspicExpand(h, cfg.DspicExpand.Range, cfg.DspicExpand.Target)
		}); err != nil {
			return nil, err
		}
	}
	if cfg.DspicShrink != nil {
		if err := runStage("dspic_shrink", func() error {
			return ops.DspicShrink(h, cfg.DspicShrink.Range, cfg.DspicShrink.Target)
		}); err != nil {
			return nil, err
		}
	}
	if cfg.DspicClearGhost != nil {
		if err := runStage("dspic_clear_ghost", func() error {
			return ops.DspicClearGhost(h, *cfg.DspicClearGhost)
		}); err != nil {
			return nil, err
		}
	}
	if cfg.MapStar12 {
		if err := runStage("map_star12", func() error { return ops.MapStar12(h) }); err != nil {
			return nil, err
		}
	}
	if cfg.MapStar12X {
		if err := runStage("map_star12x", func() error { return ops.MapStar12X(h) }); err != nil {
			return nil, err
		}
	}
	if cfg.MapStar08 {
		if err := runStage("map_star08", func() error { return ops.MapStar08(h) }); err != nil {
			return nil, err
		}
	}
	if cfg.Remap != nil && !cfg.RemapAfterChecksum {
		if err := runStage("remap", func() error { return ops.Remap(h, *cfg.Remap) }); err != nil {
			return nil, err
		}
	}

	// 9. swap
	if cfg.SwapWord {
		if err := runStage("swap_word", func() error {
			ops.SwapParallel(h, ops.SwapWord, ro.parallelism)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	if cfg.SwapLong {
		if err := runStage("swap_long", func() error {
			ops.SwapParallel(h, ops.SwapDWord, ro.parallelism)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 10. split
	if cfg.Split != nil {
		if err := runStage("split", func() error {
			ops.Split(h, *cfg.Split)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 11. checksum
	var checksumBytes []byte
	if cfg.Checksum != nil {
		if err := runStage("checksum", func() error {
			result, err := ops.Checksum(h, ops.ChecksumOptions{
				Algorithm:          cfg.Checksum.Algorithm,
				Range:              cfg.Checksum.Range,
				LittleEndianOutput: cfg.Checksum.LittleEndianOutput,
				ForcedRange:        cfg.Checksum.ForcedRange,
				ExcludeRanges:      cfg.Checksum.ExcludeRanges,
			}, cfg.Checksum.Target)
			if err != nil {
				return err
			}
			checksumBytes = result
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// 12. remap, when the user's flag order placed it after checksum
	if cfg.Remap != nil && cfg.RemapAfterChecksum {
		if err := runStage("remap", func() error { return ops.Remap(h, *cfg.Remap) }); err != nil {
			return nil, err
		}
	}

	finalByteCount := 0
	for _, s := range h.Segments() {
		finalByteCount += s.Len()
	}
	rpt := report.Report{
		Stages:            stages,
		TotalElapsed:      durafmt.Parse(time.Since(runStart)).LimitFirstN(2).String(),
		FinalSegmentCount: h.Len(),
		FinalByteCount:    finalByteCount,
	}.WithChecksum(checksumBytes)

	return &Result{HexFile: h, ChecksumBytes: checksumBytes, Report: rpt}, nil
}
