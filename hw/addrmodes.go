package hw

import "fmt"

// AddrMode is an addressing mode, the rule locating an instruction operand.
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	Relative
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

var addrModeNames = [...]string{
	Implied:         "imp",
	Accumulator:     "acc",
	Immediate:       "imm",
	Relative:        "rel",
	ZeroPage:        "zpg",
	ZeroPageX:       "zpx",
	ZeroPageY:       "zpy",
	Absolute:        "abs",
	AbsoluteX:       "abx",
	AbsoluteY:       "aby",
	Indirect:        "ind",
	IndexedIndirect: "izx",
	IndirectIndexed: "izy",
}

func (m AddrMode) String() string {
	if int(m) < len(addrModeNames) {
		return addrModeNames[m]
	}
	return fmt.Sprintf("AddrMode(%d)", uint8(m))
}

// Size returns the encoded size, in bytes, of an instruction using m.
func (m AddrMode) Size() int {
	switch m {
	case Implied, Accumulator:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	}
	return 2
}

type OperandKind uint8

const (
	NoOperand OperandKind = iota
	ValueOperand
	AddressOperand
)

// Operand is the result of resolving an addressing mode, valid for a single
// instruction step.
type Operand struct {
	Kind        OperandKind
	Value       uint8
	Addr        uint16
	PageCrossed bool
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// Resolve consumes the operand bytes of mode m at s.PC, advancing PC past
// them, and returns the resolved operand.
func (m AddrMode) Resolve(s *State, mem Memory) Operand {
	switch m {
	case Implied, Accumulator:
		return Operand{}

	case Immediate, Relative:
		v := mem.Read8(s.PC)
		s.PC++
		return Operand{Kind: ValueOperand, Value: v}

	case ZeroPage:
		return Operand{Kind: AddressOperand, Addr: uint16(s.fetch8(mem))}

	case ZeroPageX:
		return Operand{Kind: AddressOperand, Addr: uint16(s.fetch8(mem) + s.X)}

	case ZeroPageY:
		return Operand{Kind: AddressOperand, Addr: uint16(s.fetch8(mem) + s.Y)}

	case Absolute:
		return Operand{Kind: AddressOperand, Addr: s.fetch16(mem)}

	case AbsoluteX:
		return indexed(s.fetch16(mem), s.X)

	case AbsoluteY:
		return indexed(s.fetch16(mem), s.Y)

	case Indirect:
		ptr := s.fetch16(mem)
		// The pointer high byte is read from the same page: JMP ($30FF)
		// reads its target from $30FF and $3000.
		lo := mem.Read8(ptr)
		hi := mem.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		return Operand{Kind: AddressOperand, Addr: uint16(hi)<<8 | uint16(lo)}

	case IndexedIndirect:
		zp := s.fetch8(mem) + s.X
		return Operand{Kind: AddressOperand, Addr: zpRead16(mem, zp)}

	case IndirectIndexed:
		zp := s.fetch8(mem)
		return indexed(zpRead16(mem, zp), s.Y)
	}

	panic(fmt.Sprintf("unexpected addressing mode %d", m))
}

func indexed(base uint16, idx uint8) Operand {
	return Operand{
		Kind:        AddressOperand,
		Addr:        base + uint16(idx),
		PageCrossed: uint16(base&0xFF)+uint16(idx) > 0xFF,
	}
}

// zpRead16 reads a word from page 0, the high byte address wrapping to $00.
func zpRead16(mem Memory, zp uint8) uint16 {
	lo := mem.Read8(uint16(zp))
	hi := mem.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

func (s *State) fetch8(mem Memory) uint8 {
	v := mem.Read8(s.PC)
	s.PC++
	return v
}

func (s *State) fetch16(mem Memory) uint16 {
	v := mem.Read16(s.PC)
	s.PC += 2
	return v
}
