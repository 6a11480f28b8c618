// Package debugger provides execution observers helping to debug 6502
// programs.
package debugger

import (
	"fmt"
	"io"
	"slices"

	"sixfive/emu/log"
	"sixfive/hw"
)

type stackFrameFlag uint8

const (
	sffNone stackFrameFlag = iota
	sffNMI
	sffIRQ
	sffBRK
)

type stackFrame struct {
	src    uint16
	target uint16
	ret    uint16
	flag   stackFrameFlag
}

// maxDepth bounds the call stack of programs leaving subroutines by other
// means than RTS or RTI.
const maxDepth = 128

type callStack []stackFrame

func (cs *callStack) push(src, dst, ret uint16, flag stackFrameFlag) {
	if cs.len() == maxDepth {
		*cs = slices.Delete(*cs, 0, 1)
	}
	*cs = append(*cs, stackFrame{
		src:    src,
		target: dst,
		ret:    ret,
		flag:   flag,
	})
}

func (cs *callStack) len() int {
	return len(*cs)
}

func (cs *callStack) pop() {
	if cs.len() == 0 {
		return
	}
	*cs = (*cs)[:cs.len()-1]
}

func (cs *callStack) reset() {
	*cs = (*cs)[:0]
}

// FrameInfo holds the entry point of a frame and the address executing in
// it.
type FrameInfo [2]string

func (cs *callStack) build(pc uint16) []FrameInfo {
	nfos := make([]FrameInfo, 0, cs.len()+1)
	var curf *stackFrame
	for i, f := range *cs {
		if i > 0 {
			curf = &((*cs)[i-1])
		}
		src := fmt.Sprintf("$%04X", f.src)
		nfos = slices.Insert(nfos, 0, FrameInfo{
			cs.entryPoint(curf),
			src,
		})
	}

	// Current frame
	curf = nil
	if cs.len() > 0 {
		curf = &((*cs)[cs.len()-1])
	}

	return slices.Insert(nfos, 0, FrameInfo{
		cs.entryPoint(curf),
		fmt.Sprintf("$%04X", pc),
	})
}

func (callStack) entryPoint(f *stackFrame) string {
	if f == nil {
		return "[bottom of stack]"
	}

	str := fmt.Sprintf("%04X", f.target)
	switch f.flag {
	case sffNMI:
		return "[nmi] $" + str
	case sffIRQ:
		return "[irq] $" + str
	case sffBRK:
		return "[brk] $" + str
	default:
		return str
	}
}

// CallStack is a CPU observer tracking subroutine calls and interrupts.
type CallStack struct {
	hw.NopObserver

	cs callStack
}

func NewCallStack() *CallStack {
	return &CallStack{}
}

const (
	opBRK = 0x00
	opJSR = 0x20
	opRTI = 0x40
	opRTS = 0x60
)

func (c *CallStack) AfterInstruction(cpu *hw.CPU, res hw.StepResult) {
	switch res.Opcode {
	case opJSR:
		c.cs.push(res.PC, cpu.PC, res.PC+3, sffNone)
	case opBRK:
		c.cs.push(res.PC, cpu.PC, res.PC+2, sffBRK)
	case opRTS, opRTI:
		if n := c.cs.len(); n != 0 && c.cs[n-1].ret != cpu.PC {
			log.ModCPU.DebugZ("unbalanced return").
				Hex16("pc", cpu.PC).
				Hex16("want", c.cs[n-1].ret).
				End()
		}
		c.cs.pop()
	}
}

func (c *CallStack) Interrupt(cpu *hw.CPU, prevpc, curpc uint16, isNMI bool) {
	flag := sffIRQ
	if isNMI {
		flag = sffNMI
	}
	c.cs.push(prevpc, curpc, prevpc, flag)
}

// Depth returns the number of frames above the bottom of the stack.
func (c *CallStack) Depth() int { return c.cs.len() }

func (c *CallStack) Reset() { c.cs.reset() }

// Frames returns the frames of the call stack, innermost first, pc being the
// address currently executing.
func (c *CallStack) Frames(pc uint16) []FrameInfo {
	return c.cs.build(pc)
}

// Write prints the call stack into w.
func (c *CallStack) Write(w io.Writer, pc uint16) error {
	for i, f := range c.Frames(pc) {
		if _, err := fmt.Fprintf(w, "#%-3d %-20s %s\n", i, f[0], f[1]); err != nil {
			return err
		}
	}
	return nil
}
