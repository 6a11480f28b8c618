package hwio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize   = errors.New("invalid table size")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrOutOfRange    = errors.New("mapping out of range")
	ErrBankIndex     = errors.New("bank index out of range")
	ErrBankSize      = errors.New("bank size mismatch")
	ErrNoBank        = errors.New("segment has no bank")
)

// AccessError reports a read or write to an address that has no binding in
// the active configuration of a table. It's raised with panic by Read8 and
// Write8 since it reveals a bug in the machine setup rather than a runtime
// condition of the emulated program.
type AccessError struct {
	Table  string
	Op     string // "read" or "write"
	Addr   uint16
	Config int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: unmapped %s at $%04X (config %d)", e.Table, e.Op, e.Addr, e.Config)
}
