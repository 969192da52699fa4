// Package segment defines the contiguous byte run that is the atom of the
// hex-file model: a base address paired with a non-empty byte sequence.
package segment
