package hw

// P is the processor status register.
type P uint8

const (
	Carry P = 1 << iota
	Zero
	IntDisable
	Decimal
	Break
	Unused
	Overflow
	Negative
)

func (p P) Carry() bool      { return p&Carry != 0 }
func (p P) Zero() bool       { return p&Zero != 0 }
func (p P) IntDisable() bool { return p&IntDisable != 0 }
func (p P) Decimal() bool    { return p&Decimal != 0 }
func (p P) Break() bool      { return p&Break != 0 }
func (p P) Unused() bool     { return p&Unused != 0 }
func (p P) Overflow() bool   { return p&Overflow != 0 }
func (p P) Negative() bool   { return p&Negative != 0 }

func (p P) set(flag P, v bool) P {
	if v {
		return p | flag
	}
	return p &^ flag
}

func (p P) SetCarry(v bool) P      { return p.set(Carry, v) }
func (p P) SetZero(v bool) P       { return p.set(Zero, v) }
func (p P) SetIntDisable(v bool) P { return p.set(IntDisable, v) }
func (p P) SetDecimal(v bool) P    { return p.set(Decimal, v) }
func (p P) SetBreak(v bool) P      { return p.set(Break, v) }
func (p P) SetUnused(v bool) P     { return p.set(Unused, v) }
func (p P) SetOverflow(v bool) P   { return p.set(Overflow, v) }
func (p P) SetNegative(v bool) P   { return p.set(Negative, v) }

// checkNZ sets Z if v is 0 and N if bit 7 of v is set, clears them otherwise.
func (p P) checkNZ(v uint8) P {
	return p.SetZero(v == 0).SetNegative(v&0x80 != 0)
}

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(p) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}
