package hw

import (
	"errors"
	"strconv"

	"sixfive/hw/hwio"
)

// ErrUnbounded is returned by CPU.Execute when given options without any stop
// condition.
var ErrUnbounded = errors.New("execution options have no stop condition")

// Target is an optional address or opcode. The zero value is unset.
type Target struct {
	v  uint16
	ok bool
}

// At returns a Target set to v.
func At(v uint16) Target { return Target{v: v, ok: true} }

func (t Target) Get() (uint16, bool) { return t.v, t.ok }

func (t Target) match(v uint16) bool { return t.ok && t.v == v }

// An Evaluator decides whether execution should stop. It's consulted after
// each instruction.
type Evaluator interface {
	ShouldStop(cpu *CPU, st ExecState) (bool, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(cpu *CPU, st ExecState) (bool, error)

func (f EvaluatorFunc) ShouldStop(cpu *CPU, st ExecState) (bool, error) {
	return f(cpu, st)
}

// ExecOptions holds the stop conditions of a CPU.Execute call. Execution
// stops as soon as any of the set conditions holds.
type ExecOptions struct {
	// Stop once at least Cycles cycles have been spent.
	Cycles int64

	// Stop after Instructions steps.
	Instructions int64

	// Stop when PC reaches UntilPC, before executing the instruction there.
	UntilPC Target

	// Stop after executing UntilOpcode.
	UntilOpcode Target

	// Stop after executing the instruction at UntilExecutedAt.
	UntilExecutedAt Target

	// Stop after executing any of these opcodes.
	UntilOpcodes []uint8

	// Stop when PC reaches any address of the set.
	Breakpoints *hwio.Bitset

	// Return an *UnknownOpcodeError when an unknown opcode is executed.
	UnknownIsFatal bool

	Evaluators []Evaluator
}

func (o *ExecOptions) bounded() bool {
	return o.Cycles > 0 ||
		o.Instructions > 0 ||
		o.UntilPC.ok ||
		o.UntilOpcode.ok ||
		o.UntilExecutedAt.ok ||
		len(o.UntilOpcodes) != 0 ||
		o.Breakpoints != nil ||
		len(o.Evaluators) != 0
}

// StopReason tells which condition stopped execution.
type StopReason uint8

const (
	NotStopped StopReason = iota
	StopCycles
	StopInstructions
	StopPC
	StopOpcode
	StopExecutedAt
	StopOpcodeSet
	StopBreakpoint
	StopEvaluator
	StopUnknownOpcode
	StopError
)

var stopReasonNames = [...]string{
	NotStopped:        "not stopped",
	StopCycles:        "cycle budget",
	StopInstructions:  "instruction budget",
	StopPC:            "pc reached",
	StopOpcode:        "opcode executed",
	StopExecutedAt:    "address executed",
	StopOpcodeSet:     "opcode set",
	StopBreakpoint:    "breakpoint",
	StopEvaluator:     "evaluator",
	StopUnknownOpcode: "unknown opcode",
	StopError:         "error",
}

func (r StopReason) String() string {
	if int(r) < len(stopReasonNames) {
		return stopReasonNames[r]
	}
	return "StopReason(" + strconv.Itoa(int(r)) + ")"
}

func (o *ExecOptions) stop(cpu *CPU, st *ExecState, opset *[256]bool) (StopReason, error) {
	switch {
	case o.Cycles > 0 && st.Cycles >= o.Cycles:
		return StopCycles, nil
	case o.Instructions > 0 && st.Instructions >= o.Instructions:
		return StopInstructions, nil
	case o.UntilPC.match(cpu.PC):
		return StopPC, nil
	case o.UntilOpcode.match(uint16(st.LastOpcode)):
		return StopOpcode, nil
	case o.UntilExecutedAt.match(st.LastPC):
		return StopExecutedAt, nil
	case opset[st.LastOpcode]:
		return StopOpcodeSet, nil
	case o.Breakpoints != nil && o.Breakpoints.Test(cpu.PC):
		return StopBreakpoint, nil
	}

	for _, ev := range o.Evaluators {
		stop, err := ev.ShouldStop(cpu, *st)
		if err != nil {
			return StopError, err
		}
		if stop {
			return StopEvaluator, nil
		}
	}
	return NotStopped, nil
}

// ExecState holds execution counters.
type ExecState struct {
	Cycles int64

	// Instructions counts all executed opcodes, unknown ones included.
	Instructions int64
	Unknown      int64
	Interrupts   int64

	LastOpcode  uint8
	LastPC      uint16 // PC of the last executed opcode
	LastUnknown uint8

	// Stop is the reason the Execute call returned. It's not set in the
	// lifetime state.
	Stop StopReason
}

// Add accounts for one instruction step.
func (st *ExecState) Add(res StepResult) {
	st.Cycles += int64(res.Cycles)
	st.Instructions++
	st.LastOpcode = res.Opcode
	st.LastPC = res.PC
	if res.Unknown {
		st.Unknown++
		st.LastUnknown = res.Opcode
	}
}

func (st *ExecState) addInterrupt(cycles int) {
	st.Cycles += int64(cycles)
	st.Interrupts++
}
