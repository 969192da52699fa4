// Package pipeline composes the ops package's individual operations into
// the fixed-order apply sequence the reference tool runs: range filter,
// merge, cut, fill, fill-all-gaps, align, scale/unscale/dsPIC/banked
// mapping, swap, split, checksum, and (when the user's flag order placed
// it last) remap. A Config aggregates every optional stage; stages absent
// from Config are skipped. The order itself is part of the parity
// contract and is never reordered based on which stages are set.
package pipeline
