package hw

import "fmt"

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request and BRK
)

// StackBase is the address of the stack page.
const StackBase = uint16(0x0100)

// State holds the 6502 registers.
type State struct {
	PC      uint16
	SP      uint8
	A, X, Y uint8
	P       P
}

// Clone returns a copy of the state.
func (s *State) Clone() *State {
	c := *s
	return &c
}

func (s State) String() string {
	return fmt.Sprintf("PC:%04X A:%02X X:%02X Y:%02X P:%02X(%s) SP:%02X",
		s.PC, s.A, s.X, s.Y, uint8(s.P), s.P, s.SP)
}

// Memory is the address space the CPU executes from. *hwio.Table implements
// it.
type Memory interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	Peek8(addr uint16) uint8
	Read16(addr uint16) uint16
}

/* stack operations */

func (s *State) Push8(mem Memory, val uint8) {
	mem.Write8(StackBase+uint16(s.SP), val)
	s.SP--
}

func (s *State) Push16(mem Memory, val uint16) {
	s.Push8(mem, uint8(val>>8))
	s.Push8(mem, uint8(val))
}

func (s *State) Pull8(mem Memory) uint8 {
	s.SP++
	return mem.Read8(StackBase + uint16(s.SP))
}

func (s *State) Pull16(mem Memory) uint16 {
	lo := s.Pull8(mem)
	hi := s.Pull8(mem)
	return uint16(hi)<<8 | uint16(lo)
}
