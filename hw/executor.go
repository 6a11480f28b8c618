package hw

// StepResult reports the execution of a single instruction.
type StepResult struct {
	Opcode  uint8
	PC      uint16 // address of the opcode
	Cycles  int
	Unknown bool

	// Instr is nil for unknown opcodes.
	Instr *Instruction
}

// Executor executes one instruction at a time, out of an instruction table.
type Executor struct {
	table *InstructionTable
}

func NewExecutor(table *InstructionTable) *Executor {
	return &Executor{table: table}
}

func (e *Executor) Table() *InstructionTable { return e.table }

// Step fetches, decodes and executes the instruction at s.PC. Unknown
// opcodes cost 1 cycle and only the opcode byte is consumed.
func (e *Executor) Step(s *State, mem Memory) StepResult {
	res := StepResult{PC: s.PC}
	res.Opcode = mem.Read8(s.PC)
	s.PC++

	in := e.table.ops[res.Opcode]
	if in == nil {
		res.Unknown = true
		res.Cycles = 1
		return res
	}
	res.Instr = in

	op := in.Mode.Resolve(s, mem)

	var extra int
	switch b := &in.Behavior; b.Kind {
	case ImpliedBehavior:
		extra = b.Implied(s)
	case ValueBehavior:
		v := op.Value
		if op.Kind == AddressOperand {
			v = mem.Read8(op.Addr)
		}
		extra = b.Value(s, v)
	case AddressBehavior:
		extra = b.Address(s, mem, op.Addr)
	case StackBehavior:
		extra = b.Stack(s, mem)
	}

	switch in.Page {
	case PageCrossCycle:
		if op.PageCrossed {
			extra += PageCrossPenalty
		}
	case AlwaysFixupCycle:
		extra += IndexedWriteFixup
	}

	res.Cycles = in.Cycles + extra
	return res
}
