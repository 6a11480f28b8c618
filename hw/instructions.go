package hw

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrDuplicateOpcode    = errors.New("duplicate opcode")
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// Extra cycles added to the base cycle count of an instruction. These are
// the documented NMOS 6502 timings.
const (
	// Indexed reads crossing a page boundary take one more cycle.
	PageCrossPenalty = 1

	// Indexed writes and read-modify-writes always pay the extra cycle of the
	// address high byte fixup, crossing or not.
	IndexedWriteFixup = 1

	// A taken branch costs one cycle, and one more when the target is on
	// another page.
	BranchTakenPenalty = 1
	BranchPagePenalty  = 1
)

// PagePolicy tells how page boundary crossing impacts an instruction cycle
// count.
type PagePolicy uint8

const (
	NoPageCycle PagePolicy = iota
	PageCrossCycle
	AlwaysFixupCycle
)

func (p PagePolicy) String() string {
	switch p {
	case NoPageCycle:
		return "none"
	case PageCrossCycle:
		return "+1 on page cross"
	case AlwaysFixupCycle:
		return "+1 fixup"
	}
	return fmt.Sprintf("PagePolicy(%d)", uint8(p))
}

// BehaviorKind selects which of the Behavior functions is set.
type BehaviorKind uint8

const (
	// ImpliedBehavior operates on registers and flags only.
	ImpliedBehavior BehaviorKind = iota + 1
	// ValueBehavior consumes the operand byte, immediate or read from the
	// resolved address.
	ValueBehavior
	// AddressBehavior consumes the resolved address without reading it.
	AddressBehavior
	// StackBehavior manipulates the stack directly.
	StackBehavior
)

func (k BehaviorKind) String() string {
	switch k {
	case ImpliedBehavior:
		return "implied"
	case ValueBehavior:
		return "value"
	case AddressBehavior:
		return "address"
	case StackBehavior:
		return "stack"
	}
	return fmt.Sprintf("BehaviorKind(%d)", uint8(k))
}

// Behavior is what an instruction does. Exactly one function matching Kind
// is set. Each function returns the extra cycles spent beyond the base
// cycle count.
type Behavior struct {
	Kind BehaviorKind

	Implied func(s *State) int
	Value   func(s *State, v uint8) int
	Address func(s *State, mem Memory, addr uint16) int
	Stack   func(s *State, mem Memory) int
}

func implied(f func(s *State) int) Behavior {
	return Behavior{Kind: ImpliedBehavior, Implied: f}
}

func value(f func(s *State, v uint8) int) Behavior {
	return Behavior{Kind: ValueBehavior, Value: f}
}

func address(f func(s *State, mem Memory, addr uint16) int) Behavior {
	return Behavior{Kind: AddressBehavior, Address: f}
}

func stack(f func(s *State, mem Memory) int) Behavior {
	return Behavior{Kind: StackBehavior, Stack: f}
}

// Instruction describes one opcode.
type Instruction struct {
	Opcode   uint8
	Mnemonic string
	Mode     AddrMode
	Cycles   int
	Page     PagePolicy
	Behavior Behavior
}

// Size returns the encoded size of the instruction, in bytes.
func (in *Instruction) Size() int { return in.Mode.Size() }

func (in *Instruction) validate() error {
	b := in.Behavior
	var ok bool
	switch b.Kind {
	case ImpliedBehavior:
		ok = b.Implied != nil && (in.Mode == Implied || in.Mode == Accumulator)
	case ValueBehavior:
		ok = b.Value != nil && in.Mode != Implied && in.Mode != Accumulator && in.Mode != Indirect
	case AddressBehavior:
		ok = b.Address != nil && in.Mode != Implied && in.Mode != Accumulator && in.Mode != Immediate && in.Mode != Relative
	case StackBehavior:
		ok = b.Stack != nil && in.Mode == Implied
	}
	if !ok || in.Cycles <= 0 || in.Mnemonic == "" {
		return fmt.Errorf("%w: %02X %s %s (%s behavior, %d cycles)",
			ErrInvalidInstruction, in.Opcode, in.Mnemonic, in.Mode, b.Kind, in.Cycles)
	}
	return nil
}

// InstructionTable maps opcodes to instructions.
type InstructionTable struct {
	ops [256]*Instruction
}

func NewInstructionTable(defs ...Instruction) (*InstructionTable, error) {
	tbl := &InstructionTable{}
	for _, def := range defs {
		if err := tbl.Register(def); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// Register adds an instruction to the table. An opcode can only be
// registered once.
func (t *InstructionTable) Register(in Instruction) error {
	if err := in.validate(); err != nil {
		return err
	}
	if prev := t.ops[in.Opcode]; prev != nil {
		return fmt.Errorf("%w: %02X already registered as %s %s", ErrDuplicateOpcode, in.Opcode, prev.Mnemonic, prev.Mode)
	}
	t.ops[in.Opcode] = &in
	return nil
}

// Lookup returns the instruction for opcode, or nil if opcode is unknown.
func (t *InstructionTable) Lookup(opcode uint8) *Instruction {
	return t.ops[opcode]
}

// Len returns the number of registered opcodes.
func (t *InstructionTable) Len() int {
	n := 0
	for _, in := range t.ops {
		if in != nil {
			n++
		}
	}
	return n
}

// All returns the registered instructions sorted by opcode.
func (t *InstructionTable) All() []*Instruction {
	all := make([]*Instruction, 0, 256)
	for _, in := range t.ops {
		if in != nil {
			all = append(all, in)
		}
	}
	return slices.Clip(all)
}

var defaultTable = sync.OnceValue(func() *InstructionTable {
	tbl, err := NewInstructionTable(opcodes[:]...)
	if err != nil {
		panic(err)
	}
	return tbl
})

// DefaultTable returns the table of the 151 documented NMOS 6502 opcodes. It
// is built once and shared, it must not be modified.
func DefaultTable() *InstructionTable {
	return defaultTable()
}
