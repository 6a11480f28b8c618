package hw

// AddWithCarry returns a+b+carry modulo 256 and the updated flags. Carry is
// bit 8 of the 9-bit sum, Overflow is set when both operands share a sign
// that differs from the result's. Decimal mode is ignored.
func AddWithCarry(p P, a, b uint8) (uint8, P) {
	sum := uint16(a) + uint16(b)
	if p.Carry() {
		sum++
	}
	res := uint8(sum)

	v := (a ^ res) & (b ^ res) & 0x80
	p = p.SetCarry(sum > 0xFF).SetOverflow(v != 0)
	return res, p.checkNZ(res)
}

// SubtractWithCarry is AddWithCarry with the complement of b, the carry
// flag acting as an inverted borrow.
func SubtractWithCarry(p P, a, b uint8) (uint8, P) {
	return AddWithCarry(p, a, ^b)
}

// Compare sets the flags as CMP/CPX/CPY do. The comparison is unsigned.
func Compare(p P, reg, val uint8) P {
	return p.SetCarry(reg >= val).checkNZ(reg - val)
}

func ShiftLeft(p P, v uint8) (uint8, P) {
	res := v << 1
	return res, p.SetCarry(v&0x80 != 0).checkNZ(res)
}

func ShiftRight(p P, v uint8) (uint8, P) {
	res := v >> 1
	return res, p.SetCarry(v&0x01 != 0).checkNZ(res)
}

func RotateLeft(p P, v uint8) (uint8, P) {
	res := v << 1
	if p.Carry() {
		res |= 0x01
	}
	return res, p.SetCarry(v&0x80 != 0).checkNZ(res)
}

func RotateRight(p P, v uint8) (uint8, P) {
	res := v >> 1
	if p.Carry() {
		res |= 0x80
	}
	return res, p.SetCarry(v&0x01 != 0).checkNZ(res)
}

// BitTest sets the flags as BIT does: Z from a&v, V and N copied from bits 6
// and 7 of v.
func BitTest(p P, a, v uint8) P {
	return p.SetZero(a&v == 0).SetOverflow(v&0x40 != 0).SetNegative(v&0x80 != 0)
}
