package hw

import "fmt"

// DisasmOp is a disassembled instruction.
type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	return string(d.Bytes())
}

// Bytes returns the text representation of d, padded to a fixed width, such
// as "C000  4C F5 C5  JMP $C5F5".
func (d DisasmOp) Bytes() []byte {
	const width = 34

	buf := make([]byte, 0, width+8)
	buf = appendHex16(buf, d.PC)
	buf = append(buf, ' ', ' ')
	for _, b := range d.Buf {
		buf = appendHex8(buf, b)
		buf = append(buf, ' ')
	}
	for len(buf) < 16 {
		buf = append(buf, ' ')
	}
	buf = append(buf, d.Opcode...)
	if d.Oper != "" {
		buf = append(buf, ' ')
		buf = append(buf, d.Oper...)
	}
	for len(buf) < width {
		buf = append(buf, ' ')
	}
	return buf
}

const hextable = "0123456789ABCDEF"

func appendHex8(dst []byte, v uint8) []byte {
	return append(dst, hextable[v>>4], hextable[v&0x0f])
}

func appendHex16(dst []byte, v uint16) []byte {
	return appendHex8(appendHex8(dst, uint8(v>>8)), uint8(v))
}

// Disasm disassembles the instruction at pc, reading memory with Peek8 so
// that disassembling has no side effect.
func Disasm(table *InstructionTable, mem Memory, pc uint16) DisasmOp {
	opcode := mem.Peek8(pc)
	in := table.Lookup(opcode)
	if in == nil {
		return DisasmOp{Opcode: "???", Buf: []byte{opcode}, PC: pc}
	}

	d := DisasmOp{
		Opcode: in.Mnemonic,
		Buf:    make([]byte, in.Size()),
		PC:     pc,
	}
	for i := range d.Buf {
		d.Buf[i] = mem.Peek8(pc + uint16(i))
	}

	var oper uint16
	switch len(d.Buf) {
	case 2:
		oper = uint16(d.Buf[1])
	case 3:
		oper = uint16(d.Buf[2])<<8 | uint16(d.Buf[1])
	}

	switch in.Mode {
	case Accumulator:
		d.Oper = "A"
	case Immediate:
		d.Oper = fmt.Sprintf("#$%02X", oper)
	case Relative:
		d.Oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(oper)))
	case ZeroPage:
		d.Oper = fmt.Sprintf("$%02X", oper)
	case ZeroPageX:
		d.Oper = fmt.Sprintf("$%02X,X", oper)
	case ZeroPageY:
		d.Oper = fmt.Sprintf("$%02X,Y", oper)
	case Absolute:
		d.Oper = fmt.Sprintf("$%04X", oper)
	case AbsoluteX:
		d.Oper = fmt.Sprintf("$%04X,X", oper)
	case AbsoluteY:
		d.Oper = fmt.Sprintf("$%04X,Y", oper)
	case Indirect:
		d.Oper = fmt.Sprintf("($%04X)", oper)
	case IndexedIndirect:
		d.Oper = fmt.Sprintf("($%02X,X)", oper)
	case IndirectIndexed:
		d.Oper = fmt.Sprintf("($%02X),Y", oper)
	}
	return d
}

func (c *CPU) Disasm(pc uint16) DisasmOp {
	return Disasm(c.exec.Table(), c.Bus, pc)
}
