package hw

// opcodes lists the documented NMOS 6502 instructions. Cycles are the base
// counts, the page policy adds the extra indexing cycles.
var opcodes = [...]Instruction{
	// loads
	{0xA9, "LDA", Immediate, 2, NoPageCycle, value(lda)},
	{0xA5, "LDA", ZeroPage, 3, NoPageCycle, value(lda)},
	{0xB5, "LDA", ZeroPageX, 4, NoPageCycle, value(lda)},
	{0xAD, "LDA", Absolute, 4, NoPageCycle, value(lda)},
	{0xBD, "LDA", AbsoluteX, 4, PageCrossCycle, value(lda)},
	{0xB9, "LDA", AbsoluteY, 4, PageCrossCycle, value(lda)},
	{0xA1, "LDA", IndexedIndirect, 6, NoPageCycle, value(lda)},
	{0xB1, "LDA", IndirectIndexed, 5, PageCrossCycle, value(lda)},
	{0xA2, "LDX", Immediate, 2, NoPageCycle, value(ldx)},
	{0xA6, "LDX", ZeroPage, 3, NoPageCycle, value(ldx)},
	{0xB6, "LDX", ZeroPageY, 4, NoPageCycle, value(ldx)},
	{0xAE, "LDX", Absolute, 4, NoPageCycle, value(ldx)},
	{0xBE, "LDX", AbsoluteY, 4, PageCrossCycle, value(ldx)},
	{0xA0, "LDY", Immediate, 2, NoPageCycle, value(ldy)},
	{0xA4, "LDY", ZeroPage, 3, NoPageCycle, value(ldy)},
	{0xB4, "LDY", ZeroPageX, 4, NoPageCycle, value(ldy)},
	{0xAC, "LDY", Absolute, 4, NoPageCycle, value(ldy)},
	{0xBC, "LDY", AbsoluteX, 4, PageCrossCycle, value(ldy)},

	// stores
	{0x85, "STA", ZeroPage, 3, NoPageCycle, address(sta)},
	{0x95, "STA", ZeroPageX, 4, NoPageCycle, address(sta)},
	{0x8D, "STA", Absolute, 4, NoPageCycle, address(sta)},
	{0x9D, "STA", AbsoluteX, 4, AlwaysFixupCycle, address(sta)},
	{0x99, "STA", AbsoluteY, 4, AlwaysFixupCycle, address(sta)},
	{0x81, "STA", IndexedIndirect, 6, NoPageCycle, address(sta)},
	{0x91, "STA", IndirectIndexed, 5, AlwaysFixupCycle, address(sta)},
	{0x86, "STX", ZeroPage, 3, NoPageCycle, address(stx)},
	{0x96, "STX", ZeroPageY, 4, NoPageCycle, address(stx)},
	{0x8E, "STX", Absolute, 4, NoPageCycle, address(stx)},
	{0x84, "STY", ZeroPage, 3, NoPageCycle, address(sty)},
	{0x94, "STY", ZeroPageX, 4, NoPageCycle, address(sty)},
	{0x8C, "STY", Absolute, 4, NoPageCycle, address(sty)},

	// transfers
	{0xAA, "TAX", Implied, 2, NoPageCycle, implied(tax)},
	{0xA8, "TAY", Implied, 2, NoPageCycle, implied(tay)},
	{0x8A, "TXA", Implied, 2, NoPageCycle, implied(txa)},
	{0x98, "TYA", Implied, 2, NoPageCycle, implied(tya)},
	{0xBA, "TSX", Implied, 2, NoPageCycle, implied(tsx)},
	{0x9A, "TXS", Implied, 2, NoPageCycle, implied(txs)},

	// arithmetic and logic
	{0x69, "ADC", Immediate, 2, NoPageCycle, value(adc)},
	{0x65, "ADC", ZeroPage, 3, NoPageCycle, value(adc)},
	{0x75, "ADC", ZeroPageX, 4, NoPageCycle, value(adc)},
	{0x6D, "ADC", Absolute, 4, NoPageCycle, value(adc)},
	{0x7D, "ADC", AbsoluteX, 4, PageCrossCycle, value(adc)},
	{0x79, "ADC", AbsoluteY, 4, PageCrossCycle, value(adc)},
	{0x61, "ADC", IndexedIndirect, 6, NoPageCycle, value(adc)},
	{0x71, "ADC", IndirectIndexed, 5, PageCrossCycle, value(adc)},
	{0xE9, "SBC", Immediate, 2, NoPageCycle, value(sbc)},
	{0xE5, "SBC", ZeroPage, 3, NoPageCycle, value(sbc)},
	{0xF5, "SBC", ZeroPageX, 4, NoPageCycle, value(sbc)},
	{0xED, "SBC", Absolute, 4, NoPageCycle, value(sbc)},
	{0xFD, "SBC", AbsoluteX, 4, PageCrossCycle, value(sbc)},
	{0xF9, "SBC", AbsoluteY, 4, PageCrossCycle, value(sbc)},
	{0xE1, "SBC", IndexedIndirect, 6, NoPageCycle, value(sbc)},
	{0xF1, "SBC", IndirectIndexed, 5, PageCrossCycle, value(sbc)},
	{0x29, "AND", Immediate, 2, NoPageCycle, value(and)},
	{0x25, "AND", ZeroPage, 3, NoPageCycle, value(and)},
	{0x35, "AND", ZeroPageX, 4, NoPageCycle, value(and)},
	{0x2D, "AND", Absolute, 4, NoPageCycle, value(and)},
	{0x3D, "AND", AbsoluteX, 4, PageCrossCycle, value(and)},
	{0x39, "AND", AbsoluteY, 4, PageCrossCycle, value(and)},
	{0x21, "AND", IndexedIndirect, 6, NoPageCycle, value(and)},
	{0x31, "AND", IndirectIndexed, 5, PageCrossCycle, value(and)},
	{0x09, "ORA", Immediate, 2, NoPageCycle, value(ora)},
	{0x05, "ORA", ZeroPage, 3, NoPageCycle, value(ora)},
	{0x15, "ORA", ZeroPageX, 4, NoPageCycle, value(ora)},
	{0x0D, "ORA", Absolute, 4, NoPageCycle, value(ora)},
	{0x1D, "ORA", AbsoluteX, 4, PageCrossCycle, value(ora)},
	{0x19, "ORA", AbsoluteY, 4, PageCrossCycle, value(ora)},
	{0x01, "ORA", IndexedIndirect, 6, NoPageCycle, value(ora)},
	{0x11, "ORA", IndirectIndexed, 5, PageCrossCycle, value(ora)},
	{0x49, "EOR", Immediate, 2, NoPageCycle, value(eor)},
	{0x45, "EOR", ZeroPage, 3, NoPageCycle, value(eor)},
	{0x55, "EOR", ZeroPageX, 4, NoPageCycle, value(eor)},
	{0x4D, "EOR", Absolute, 4, NoPageCycle, value(eor)},
	{0x5D, "EOR", AbsoluteX, 4, PageCrossCycle, value(eor)},
	{0x59, "EOR", AbsoluteY, 4, PageCrossCycle, value(eor)},
	{0x41, "EOR", IndexedIndirect, 6, NoPageCycle, value(eor)},
	{0x51, "EOR", IndirectIndexed, 5, PageCrossCycle, value(eor)},
	{0x24, "BIT", ZeroPage, 3, NoPageCycle, value(bit)},
	{0x2C, "BIT", Absolute, 4, NoPageCycle, value(bit)},

	// comparisons
	{0xC9, "CMP", Immediate, 2, NoPageCycle, value(cmp)},
	{0xC5, "CMP", ZeroPage, 3, NoPageCycle, value(cmp)},
	{0xD5, "CMP", ZeroPageX, 4, NoPageCycle, value(cmp)},
	{0xCD, "CMP", Absolute, 4, NoPageCycle, value(cmp)},
	{0xDD, "CMP", AbsoluteX, 4, PageCrossCycle, value(cmp)},
	{0xD9, "CMP", AbsoluteY, 4, PageCrossCycle, value(cmp)},
	{0xC1, "CMP", IndexedIndirect, 6, NoPageCycle, value(cmp)},
	{0xD1, "CMP", IndirectIndexed, 5, PageCrossCycle, value(cmp)},
	{0xE0, "CPX", Immediate, 2, NoPageCycle, value(cpx)},
	{0xE4, "CPX", ZeroPage, 3, NoPageCycle, value(cpx)},
	{0xEC, "CPX", Absolute, 4, NoPageCycle, value(cpx)},
	{0xC0, "CPY", Immediate, 2, NoPageCycle, value(cpy)},
	{0xC4, "CPY", ZeroPage, 3, NoPageCycle, value(cpy)},
	{0xCC, "CPY", Absolute, 4, NoPageCycle, value(cpy)},

	// increments and decrements
	{0xE6, "INC", ZeroPage, 5, NoPageCycle, address(inc)},
	{0xF6, "INC", ZeroPageX, 6, NoPageCycle, address(inc)},
	{0xEE, "INC", Absolute, 6, NoPageCycle, address(inc)},
	{0xFE, "INC", AbsoluteX, 6, AlwaysFixupCycle, address(inc)},
	{0xC6, "DEC", ZeroPage, 5, NoPageCycle, address(dec)},
	{0xD6, "DEC", ZeroPageX, 6, NoPageCycle, address(dec)},
	{0xCE, "DEC", Absolute, 6, NoPageCycle, address(dec)},
	{0xDE, "DEC", AbsoluteX, 6, AlwaysFixupCycle, address(dec)},
	{0xE8, "INX", Implied, 2, NoPageCycle, implied(inx)},
	{0xC8, "INY", Implied, 2, NoPageCycle, implied(iny)},
	{0xCA, "DEX", Implied, 2, NoPageCycle, implied(dex)},
	{0x88, "DEY", Implied, 2, NoPageCycle, implied(dey)},

	// shifts and rotates
	{0x0A, "ASL", Accumulator, 2, NoPageCycle, implied(accumulator(ShiftLeft))},
	{0x06, "ASL", ZeroPage, 5, NoPageCycle, address(rmw(ShiftLeft))},
	{0x16, "ASL", ZeroPageX, 6, NoPageCycle, address(rmw(ShiftLeft))},
	{0x0E, "ASL", Absolute, 6, NoPageCycle, address(rmw(ShiftLeft))},
	{0x1E, "ASL", AbsoluteX, 6, AlwaysFixupCycle, address(rmw(ShiftLeft))},
	{0x4A, "LSR", Accumulator, 2, NoPageCycle, implied(accumulator(ShiftRight))},
	{0x46, "LSR", ZeroPage, 5, NoPageCycle, address(rmw(ShiftRight))},
	{0x56, "LSR", ZeroPageX, 6, NoPageCycle, address(rmw(ShiftRight))},
	{0x4E, "LSR", Absolute, 6, NoPageCycle, address(rmw(ShiftRight))},
	{0x5E, "LSR", AbsoluteX, 6, AlwaysFixupCycle, address(rmw(ShiftRight))},
	{0x2A, "ROL", Accumulator, 2, NoPageCycle, implied(accumulator(RotateLeft))},
	{0x26, "ROL", ZeroPage, 5, NoPageCycle, address(rmw(RotateLeft))},
	{0x36, "ROL", ZeroPageX, 6, NoPageCycle, address(rmw(RotateLeft))},
	{0x2E, "ROL", Absolute, 6, NoPageCycle, address(rmw(RotateLeft))},
	{0x3E, "ROL", AbsoluteX, 6, AlwaysFixupCycle, address(rmw(RotateLeft))},
	{0x6A, "ROR", Accumulator, 2, NoPageCycle, implied(accumulator(RotateRight))},
	{0x66, "ROR", ZeroPage, 5, NoPageCycle, address(rmw(RotateRight))},
	{0x76, "ROR", ZeroPageX, 6, NoPageCycle, address(rmw(RotateRight))},
	{0x6E, "ROR", Absolute, 6, NoPageCycle, address(rmw(RotateRight))},
	{0x7E, "ROR", AbsoluteX, 6, AlwaysFixupCycle, address(rmw(RotateRight))},

	// flags
	{0x18, "CLC", Implied, 2, NoPageCycle, implied(clc)},
	{0x38, "SEC", Implied, 2, NoPageCycle, implied(sec)},
	{0x58, "CLI", Implied, 2, NoPageCycle, implied(cli)},
	{0x78, "SEI", Implied, 2, NoPageCycle, implied(sei)},
	{0xD8, "CLD", Implied, 2, NoPageCycle, implied(cld)},
	{0xF8, "SED", Implied, 2, NoPageCycle, implied(sed)},
	{0xB8, "CLV", Implied, 2, NoPageCycle, implied(clv)},

	// branches
	{0x90, "BCC", Relative, 2, NoPageCycle, value(branch(not(P.Carry)))},
	{0xB0, "BCS", Relative, 2, NoPageCycle, value(branch(P.Carry))},
	{0xD0, "BNE", Relative, 2, NoPageCycle, value(branch(not(P.Zero)))},
	{0xF0, "BEQ", Relative, 2, NoPageCycle, value(branch(P.Zero))},
	{0x10, "BPL", Relative, 2, NoPageCycle, value(branch(not(P.Negative)))},
	{0x30, "BMI", Relative, 2, NoPageCycle, value(branch(P.Negative))},
	{0x50, "BVC", Relative, 2, NoPageCycle, value(branch(not(P.Overflow)))},
	{0x70, "BVS", Relative, 2, NoPageCycle, value(branch(P.Overflow))},

	// jumps and subroutines
	{0x4C, "JMP", Absolute, 3, NoPageCycle, address(jmp)},
	{0x6C, "JMP", Indirect, 5, NoPageCycle, address(jmp)},
	{0x20, "JSR", Absolute, 6, NoPageCycle, address(jsr)},
	{0x60, "RTS", Implied, 6, NoPageCycle, stack(rts)},
	{0x00, "BRK", Implied, 7, NoPageCycle, stack(brk)},
	{0x40, "RTI", Implied, 6, NoPageCycle, stack(rti)},

	// stack
	{0x48, "PHA", Implied, 3, NoPageCycle, stack(pha)},
	{0x08, "PHP", Implied, 3, NoPageCycle, stack(php)},
	{0x68, "PLA", Implied, 4, NoPageCycle, stack(pla)},
	{0x28, "PLP", Implied, 4, NoPageCycle, stack(plp)},

	{0xEA, "NOP", Implied, 2, NoPageCycle, implied(nop)},
}
