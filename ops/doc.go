// Package ops implements the mutating operations that transform a
// hexfile.HexFile: range filtering, cutting, filling, merging, alignment,
// splitting, byte-order swapping, address scaling and remapping, and
// checksum calculation. Every operation is a pure function of its
// arguments and the HexFile it mutates; composing them in the pipeline's
// fixed order is what reproduces the reference tool's behavior.
package ops
