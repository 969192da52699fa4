package ops

import "fmt"

// Error is the taxonomy of failures an operation can report, mirroring
// the reference tool's error kinds (§7 of the parity contract): address
// overflow/underflow, an address that must be divisible by some value but
// isn't, a length that must be a multiple of some chunk size but isn't,
// and an invalid parameter such as a non-positive alignment.
type Error struct {
	Kind      ErrorKind
	Address   uint32
	Divisor   uint32
	Length    int
	Expected  int
	Operation string
	Value     uint32
}

// ErrorKind identifies which invariant an Error violates.
type ErrorKind int

const (
	ErrAddressOverflow ErrorKind = iota
	ErrAddressUnderflow
	ErrAddressNotDivisible
	ErrLengthNotMultiple
	ErrInvalidAlignment
	ErrInvalidParameter
)

func (e *Error) Error() string {
	switch e.Kind {
	case ErrAddressOverflow:
		return "address overflow"
	case ErrAddressUnderflow:
		return "address underflow"
	case ErrAddressNotDivisible:
		return fmt.Sprintf("address 0x%X not divisible by %d", e.Address, e.Divisor)
	case ErrLengthNotMultiple:
		return fmt.Sprintf("segment length %d not a multiple of %d for %s", e.Length, e.Expected, e.Operation)
	case ErrInvalidAlignment:
		return fmt.Sprintf("alignment must be at least 1, got %d", e.Value)
	default:
		return "invalid parameter"
	}
}

// Context wraps an inner error with the operation tag that produced it
// (e.g. "/SWAPWORD", "/MO", "/REMAP"), the way the reference tool's error
// log annotates failures. Wrapping is cumulative: a Context wrapping
// another Context renders the full tag chain and errors.As/errors.Is
// still reach the innermost typed error through Unwrap.
type Context struct {
	Op    string
	Inner error
}

func (c *Context) Error() string {
	return fmt.Sprintf("%s: %s", c.Op, c.Inner.Error())
}

// Unwrap exposes the wrapped error to errors.As/errors.Is.
func (c *Context) Unwrap() error { return c.Inner }

// WithContext wraps err with an operation tag, or returns nil if err is
// nil.
func WithContext(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Context{Op: op, Inner: err}
}
