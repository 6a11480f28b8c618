package hw

import (
	"io"
	"strconv"

	"sixfive/emu/log"
)

// Tracer is an Observer writing one line per executed instruction, in the
// form:
//
//	C000  4C F5 C5  JMP $C5F5         A:00 X:00 Y:00 P:24 S:FD CYC:7
//
// Registers and cycle count are those before the instruction executes.
//
// Tracing stops at the first write error, which is logged and reported by
// Err.
type Tracer struct {
	NopObserver

	w   io.Writer
	buf []byte
	err error
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w, buf: make([]byte, 0, 96)}
}

func (t *Tracer) BeforeInstruction(cpu *CPU, pc uint16) {
	t.write(cpu.Disasm(pc), cpu.State, cpu.lifetime.Cycles)
}

func (t *Tracer) Interrupt(cpu *CPU, prevpc, curpc uint16, isNMI bool) {
	t.buf = t.buf[:0]
	if isNMI {
		t.buf = append(t.buf, "---- NMI "...)
	} else {
		t.buf = append(t.buf, "---- IRQ "...)
	}
	t.buf = appendHex16(t.buf, prevpc)
	t.buf = append(t.buf, " -> "...)
	t.buf = appendHex16(t.buf, curpc)
	t.buf = append(t.buf, '\n')
	t.flush(t.buf)
}

func (t *Tracer) write(dis DisasmOp, s State, cycles int64) {
	buf := append(t.buf[:0], dis.Bytes()...)
	buf = appendReg(buf, "A:", s.A)
	buf = appendReg(buf, "X:", s.X)
	buf = appendReg(buf, "Y:", s.Y)
	buf = appendReg(buf, "P:", uint8(s.P))
	buf = appendReg(buf, "S:", s.SP)
	buf = append(buf, "CYC:"...)
	buf = strconv.AppendInt(buf, cycles, 10)
	buf = append(buf, '\n')
	t.buf = buf
	t.flush(buf)
}

func (t *Tracer) flush(buf []byte) {
	if t.err != nil {
		return
	}
	if _, err := t.w.Write(buf); err != nil {
		t.err = err
		log.ModCPU.ErrorZ("trace output failed, tracing disabled").Error("err", err).End()
	}
}

// Err returns the error that stopped the tracer, if any.
func (t *Tracer) Err() error { return t.err }

func appendReg(dst []byte, name string, v uint8) []byte {
	dst = append(dst, name...)
	dst = appendHex8(dst, v)
	return append(dst, ' ')
}

// SetTraceOutput adds a Tracer writing to w.
func (c *CPU) SetTraceOutput(w io.Writer) {
	c.AddObserver(NewTracer(w))
}
