package hwio

import (
	"fmt"

	"sixfive/emu/log"
)

// RWFlags selects which accesses a register mapping binds.
type RWFlags uint8

const (
	ReadWrite RWFlags = iota
	ReadOnly
	WriteOnly
)

func (f RWFlags) String() string {
	switch f {
	case ReadWrite:
		return "rw"
	case ReadOnly:
		return "r"
	case WriteOnly:
		return "w"
	}
	return fmt.Sprintf("RWFlags(%d)", uint8(f))
}

// Reg8 is a single byte register of a peripheral, such as the 6510 processor
// port. Without callbacks it behaves as a plain byte of storage.
type Reg8 struct {
	Name  string
	Value uint8

	// Bits set in RoMask are preserved across writes.
	RoMask uint8

	// ReadCb, if set, is called on reads and its result is returned.
	ReadCb func(val uint8) uint8

	// PeekCb, if set, is called by debuggers instead of ReadCb.
	PeekCb func(val uint8) uint8

	// WriteCb, if set, is called after a write with the previous value and
	// the new one.
	WriteCb func(old, val uint8)
}

func (reg *Reg8) Read() uint8 {
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg8) Peek() uint8 {
	if reg.PeekCb != nil {
		return reg.PeekCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg8) Write(val uint8) {
	old := reg.Value
	reg.Value = (val &^ reg.RoMask) | (old & reg.RoMask)
	if reg.RoMask != 0 && val&reg.RoMask != old&reg.RoMask {
		log.ModHwIo.DebugZ("write to read-only bits").
			String("name", reg.Name).
			Hex8("old", old).
			Hex8("val", val).
			End()
	}
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

func (reg Reg8) String() string {
	return fmt.Sprintf("%s{%02x}", reg.Name, reg.Value)
}
