package hw

import (
	"fmt"

	"sixfive/emu/log"
	"sixfive/hw/hwio"
)

// InterruptCycles is the cost of servicing an IRQ or NMI.
const InterruptCycles = 7

// Register values after reset.
const (
	resetSP = 0xFD
	resetP  = IntDisable | Break | Unused
)

type CPU struct {
	State

	Bus        Memory
	Interrupts Interrupts

	exec      *Executor
	observers []Observer
	lifetime  ExecState
}

// NewCPU creates a CPU executing the documented 6502 instruction set out of
// bus.
func NewCPU(bus Memory) *CPU {
	return NewCPUWithTable(bus, DefaultTable())
}

// NewCPUWithTable creates a CPU executing instructions from table.
func NewCPUWithTable(bus Memory, table *InstructionTable) *CPU {
	return &CPU{
		State: State{SP: resetSP, P: resetP},
		Bus:   bus,
		exec:  NewExecutor(table),
	}
}

// Reset resets the registers and loads PC from the reset vector.
func (c *CPU) Reset() (err error) {
	defer c.recoverAccess(&err, nil)

	c.ResetTo(c.Bus.Read16(ResetVector))
	return nil
}

// ResetTo resets the registers and starts execution at pc.
func (c *CPU) ResetTo(pc uint16) {
	c.State = State{PC: pc, SP: resetSP, P: resetP}
	c.Interrupts.Reset()

	log.ModCPU.InfoZ("reset").Hex16("pc", pc).End()
}

func (c *CPU) Table() *InstructionTable { return c.exec.Table() }

// Lifetime returns the execution counters accumulated since the CPU creation.
func (c *CPU) Lifetime() ExecState { return c.lifetime }

// SetLifetime restores the lifetime counters, for snapshots.
func (c *CPU) SetLifetime(st ExecState) { c.lifetime = st }

func (c *CPU) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// AddLogContext implements log.LogContextAdder.
func (c *CPU) AddLogContext(z *log.EntryZ) {
	z.Hex16("pc", c.PC)
}

// Run executes instructions for at least ncycles cycles.
func (c *CPU) Run(ncycles int64) (ExecState, error) {
	return c.Execute(ExecOptions{Cycles: ncycles})
}

// Execute runs instructions until one of the stop conditions of opts is met.
// Interrupts are polled before each instruction.
//
// An unknown opcode only stops execution if opts.UnknownIsFatal is set, in
// which case the returned error is an *UnknownOpcodeError. A memory access to
// an unmapped address stops execution with an *hwio.AccessError.
func (c *CPU) Execute(opts ExecOptions) (st ExecState, err error) {
	if !opts.bounded() {
		return st, ErrUnbounded
	}

	var opset [256]bool
	for _, op := range opts.UntilOpcodes {
		opset[op] = true
	}

	defer c.recoverAccess(&err, &st.Stop)

	for {
		if cycles := c.pollInterrupts(); cycles != 0 {
			st.addInterrupt(cycles)
			c.lifetime.addInterrupt(cycles)
		}

		for _, o := range c.observers {
			o.BeforeInstruction(c, c.PC)
		}

		res := c.exec.Step(&c.State, c.Bus)
		st.Add(res)
		c.lifetime.Add(res)

		if res.Unknown {
			log.ModCPU.DebugZ("unknown opcode").
				Hex8("opcode", res.Opcode).
				Hex16("pc", res.PC).
				End()
			for _, o := range c.observers {
				o.UnknownInstruction(c, res)
			}
			if opts.UnknownIsFatal {
				st.Stop = StopUnknownOpcode
				return st, &UnknownOpcodeError{Opcode: res.Opcode, PC: res.PC}
			}
		} else {
			for _, o := range c.observers {
				o.AfterInstruction(c, res)
			}
		}

		if st.Stop, err = opts.stop(c, &st, &opset); st.Stop != NotStopped {
			return st, err
		}
	}
}

// pollInterrupts services a pending interrupt, NMI first, and returns the
// cycles it took.
func (c *CPU) pollInterrupts() int {
	switch {
	case c.Interrupts.takeNMI():
		c.interrupt(NMIVector, true)
	case c.Interrupts.IRQ() && !c.P.IntDisable():
		c.interrupt(IRQVector, false)
		c.Interrupts.ack()
	default:
		return 0
	}
	return InterruptCycles
}

func (c *CPU) interrupt(vector uint16, isNMI bool) {
	prevpc := c.PC
	c.Push16(c.Bus, c.PC)
	c.Push8(c.Bus, uint8(c.P&^Break|Unused))
	c.P = c.P.SetIntDisable(true)
	c.PC = c.Bus.Read16(vector)

	log.ModIRQ.DebugZ("interrupt").
		Bool("nmi", isNMI).
		Hex16("from", prevpc).
		Hex16("to", c.PC).
		End()

	for _, o := range c.observers {
		o.Interrupt(c, prevpc, c.PC, isNMI)
	}
}

// recoverAccess must be deferred. It recovers a panic caused by an
// *hwio.AccessError into *err, other panics are propagated.
func (c *CPU) recoverAccess(err *error, stop *StopReason) {
	r := recover()
	if r == nil {
		return
	}
	aerr, ok := r.(*hwio.AccessError)
	if !ok {
		panic(r)
	}

	log.ModCPU.ErrorZ("invalid memory access").
		Hex16("pc", c.PC).
		Error("err", aerr).
		End()
	*err = aerr
	if stop != nil {
		*stop = StopError
	}
}

// UnknownOpcodeError is returned by Execute when an opcode absent from the
// instruction table is executed while UnknownIsFatal is set.
type UnknownOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%02X at $%04X", e.Opcode, e.PC)
}
