package hexfile

import "fmt"

// OverlapError is returned by NormalizeStrict when two raw segments
// overlap and the caller has asked to reject that rather than resolve it
// with last-writer-wins.
type OverlapError struct {
	A, B uint32 // start addresses of the two overlapping segments
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("segments at 0x%X and 0x%X overlap", e.A, e.B)
}
