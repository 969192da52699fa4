// Package codec parses and emits the hex-file wire formats the engine must
// reproduce byte-for-byte: Intel HEX, Motorola S-Record, HEX-ASCII, and raw
// binary, plus C source/header emission and a supplemental CYACD
// firmware-image codec. Every function in this package operates on
// in-memory byte slices; opening files, writing to disk, and path
// handling are the caller's concern.
package codec
