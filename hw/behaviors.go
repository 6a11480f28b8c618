package hw

/* loads and stores */

func lda(s *State, v uint8) int { s.A = v; s.P = s.P.checkNZ(v); return 0 }
func ldx(s *State, v uint8) int { s.X = v; s.P = s.P.checkNZ(v); return 0 }
func ldy(s *State, v uint8) int { s.Y = v; s.P = s.P.checkNZ(v); return 0 }

func sta(s *State, mem Memory, addr uint16) int { mem.Write8(addr, s.A); return 0 }
func stx(s *State, mem Memory, addr uint16) int { mem.Write8(addr, s.X); return 0 }
func sty(s *State, mem Memory, addr uint16) int { mem.Write8(addr, s.Y); return 0 }

/* transfers */

func tax(s *State) int { s.X = s.A; s.P = s.P.checkNZ(s.X); return 0 }
func tay(s *State) int { s.Y = s.A; s.P = s.P.checkNZ(s.Y); return 0 }
func txa(s *State) int { s.A = s.X; s.P = s.P.checkNZ(s.A); return 0 }
func tya(s *State) int { s.A = s.Y; s.P = s.P.checkNZ(s.A); return 0 }
func tsx(s *State) int { s.X = s.SP; s.P = s.P.checkNZ(s.X); return 0 }
func txs(s *State) int { s.SP = s.X; return 0 }

/* arithmetic and logic */

func adc(s *State, v uint8) int { s.A, s.P = AddWithCarry(s.P, s.A, v); return 0 }
func sbc(s *State, v uint8) int { s.A, s.P = SubtractWithCarry(s.P, s.A, v); return 0 }

func and(s *State, v uint8) int { s.A &= v; s.P = s.P.checkNZ(s.A); return 0 }
func ora(s *State, v uint8) int { s.A |= v; s.P = s.P.checkNZ(s.A); return 0 }
func eor(s *State, v uint8) int { s.A ^= v; s.P = s.P.checkNZ(s.A); return 0 }

func cmp(s *State, v uint8) int { s.P = Compare(s.P, s.A, v); return 0 }
func cpx(s *State, v uint8) int { s.P = Compare(s.P, s.X, v); return 0 }
func cpy(s *State, v uint8) int { s.P = Compare(s.P, s.Y, v); return 0 }

func bit(s *State, v uint8) int { s.P = BitTest(s.P, s.A, v); return 0 }

/* increments and decrements */

func inx(s *State) int { s.X++; s.P = s.P.checkNZ(s.X); return 0 }
func iny(s *State) int { s.Y++; s.P = s.P.checkNZ(s.Y); return 0 }
func dex(s *State) int { s.X--; s.P = s.P.checkNZ(s.X); return 0 }
func dey(s *State) int { s.Y--; s.P = s.P.checkNZ(s.Y); return 0 }

func inc(s *State, mem Memory, addr uint16) int {
	v := mem.Read8(addr) + 1
	mem.Write8(addr, v)
	s.P = s.P.checkNZ(v)
	return 0
}

func dec(s *State, mem Memory, addr uint16) int {
	v := mem.Read8(addr) - 1
	mem.Write8(addr, v)
	s.P = s.P.checkNZ(v)
	return 0
}

/* shifts and rotates */

type shiftFunc func(p P, v uint8) (uint8, P)

// accumulator returns the accumulator form of a shift or rotate.
func accumulator(f shiftFunc) func(s *State) int {
	return func(s *State) int {
		s.A, s.P = f(s.P, s.A)
		return 0
	}
}

// rmw returns the read-modify-write memory form of a shift or rotate.
func rmw(f shiftFunc) func(s *State, mem Memory, addr uint16) int {
	return func(s *State, mem Memory, addr uint16) int {
		var v uint8
		v, s.P = f(s.P, mem.Read8(addr))
		mem.Write8(addr, v)
		return 0
	}
}

/* flags */

func clc(s *State) int { s.P = s.P.SetCarry(false); return 0 }
func sec(s *State) int { s.P = s.P.SetCarry(true); return 0 }
func cli(s *State) int { s.P = s.P.SetIntDisable(false); return 0 }
func sei(s *State) int { s.P = s.P.SetIntDisable(true); return 0 }
func cld(s *State) int { s.P = s.P.SetDecimal(false); return 0 }
func sed(s *State) int { s.P = s.P.SetDecimal(true); return 0 }
func clv(s *State) int { s.P = s.P.SetOverflow(false); return 0 }

func nop(s *State) int { return 0 }

/* branches and jumps */

// branch returns a relative branch behavior, taken when cond holds. v is
// the signed offset from the address following the branch.
func branch(cond func(p P) bool) func(s *State, v uint8) int {
	return func(s *State, v uint8) int {
		if !cond(s.P) {
			return 0
		}
		prev := s.PC
		s.PC += uint16(int8(v))
		if pageCrossed(prev, s.PC) {
			return BranchTakenPenalty + BranchPagePenalty
		}
		return BranchTakenPenalty
	}
}

func not(cond func(p P) bool) func(p P) bool {
	return func(p P) bool { return !cond(p) }
}

func jmp(s *State, mem Memory, addr uint16) int { s.PC = addr; return 0 }

func jsr(s *State, mem Memory, addr uint16) int {
	// The pushed return address is the last byte of the JSR instruction.
	s.Push16(mem, s.PC-1)
	s.PC = addr
	return 0
}

/* stack */

func pha(s *State, mem Memory) int { s.Push8(mem, s.A); return 0 }

func php(s *State, mem Memory) int {
	s.Push8(mem, uint8(s.P|Break|Unused))
	return 0
}

func pla(s *State, mem Memory) int {
	s.A = s.Pull8(mem)
	s.P = s.P.checkNZ(s.A)
	return 0
}

// pullP restores P from the stack. Break and Unused only exist on the stack
// copy, they're left untouched in the register.
func pullP(s *State, mem Memory) {
	const mask = Break | Unused
	s.P = P(s.Pull8(mem))&^mask | s.P&mask
}

func plp(s *State, mem Memory) int { pullP(s, mem); return 0 }

func rts(s *State, mem Memory) int {
	s.PC = s.Pull16(mem) + 1
	return 0
}

func rti(s *State, mem Memory) int {
	pullP(s, mem)
	s.PC = s.Pull16(mem)
	return 0
}

// brk pushes the address of the opcode plus 2, skipping the padding byte
// following BRK.
func brk(s *State, mem Memory) int {
	s.Push16(mem, s.PC+1)
	s.Push8(mem, uint8(s.P|Break|Unused))
	s.P = s.P.SetIntDisable(true)
	s.PC = mem.Read16(IRQVector)
	return 0
}
