package hw

import (
	"errors"
	"fmt"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"

	"sixfive/hw/hwio"
)

func TestStackWord(t *testing.T) {
	cpu, mem := newTestCPU(t, ``)
	if cpu.SP != 0xFD {
		t.Fatalf("SP = %02X after reset, want FD", cpu.SP)
	}

	cpu.Push16(mem, 0xBEEF)
	if cpu.SP != 0xFB {
		t.Errorf("SP = %02X after push, want FB", cpu.SP)
	}
	if hi, lo := mem.Read8(0x01FD), mem.Read8(0x01FC); hi != 0xBE || lo != 0xEF {
		t.Errorf("stack = %02X %02X, want BE EF", hi, lo)
	}
	if got := cpu.Pull16(mem); got != 0xBEEF {
		t.Errorf("Pull16() = %04X, want BEEF", got)
	}
	if cpu.SP != 0xFD {
		t.Errorf("SP = %02X after pull, want FD", cpu.SP)
	}
}

func TestStackWraps(t *testing.T) {
	cpu, mem := newTestCPU(t, ``)
	cpu.SP = 0x00
	cpu.Push8(mem, 0x42)
	if cpu.SP != 0xFF || mem.Read8(0x0100) != 0x42 {
		t.Errorf("SP = %02X, $0100 = %02X", cpu.SP, mem.Read8(0x0100))
	}
	if got := cpu.Pull8(mem); got != 0x42 || cpu.SP != 0x00 {
		t.Errorf("Pull8() = %02X, SP = %02X", got, cpu.SP)
	}
}

func TestReset(t *testing.T) {
	cpu, _ := newTestCPU(t, `fffc: 00 c0`)
	cpu.A, cpu.X, cpu.Y = 1, 2, 3

	tcheck(t, cpu.Reset())
	want := State{PC: 0xC000, SP: 0xFD, P: IntDisable | Break | Unused}
	if diff := gocmp.Diff(want, cpu.State); diff != "" {
		t.Errorf("state mismatch after reset (-want +got):\n%s", diff)
	}
}

func TestLoadStore(t *testing.T) {
	// LDA #$01
	// STA $0200
	// LDX #$FF
	// INX
	// STX $0201
	// LDY $0200
	cpu, _ := newTestCPU(t, `0600: a9 01 8d 00 02 a2 ff e8 8e 01 02 ac 00 02`)
	runAndCheckState(t, cpu, 6,
		"A", uint8(0x01),
		"X", uint8(0x00),
		"Y", uint8(0x01),
		"PC", uint16(0x060E),
		"Pnz", uint8(0),
		"mem", `0200: 01 00`,
		"cycles", 2+4+2+2+4+4,
	)
}

func TestCompareOpcodes(t *testing.T) {
	tests := []struct {
		name string
		dump string
		p    uint8
	}{
		// LDX #$40 ; CPX #$41
		{"40 - 41", `0600: a2 40 e0 41`, 0b10110100},
		// LDX #$40 ; CPX #$40
		{"40 - 40", `0600: a2 40 e0 40`, 0b00110111},
		// LDX #$40 ; CPX #$39
		{"40 - 39", `0600: a2 40 e0 39`, 0b00110101},
		// LDA #$82 ; CMP #$1A
		{"82 - 1A", `0600: a9 82 c9 1a`, 0b00110101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, tt.dump)
			runAndCheckState(t, cpu, 2, "P", tt.p)
		})
	}
}

func TestJSRRTS(t *testing.T) {
	cpu, _ := newTestCPU(t, `
0600: 20 00 07 ea
0700: 60`)

	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0700),
		"SP", uint8(0xFB),
		"mem", `01fc: 02 06`,
	)
	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0603),
		"SP", uint8(0xFD),
	)
}

func TestBRKRTI(t *testing.T) {
	cpu, _ := newTestCPU(t, `
0600: 00 ff ea
0700: 40
fffe: 00 07`)
	cpu.P = Break | Unused | Carry

	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0700),
		"SP", uint8(0xFA),
		"Pi", uint8(1),
		"mem", `01fb: 31 02 06`,
	)
	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0602),
		"SP", uint8(0xFD),
		"P", uint8(Break|Unused|Carry),
	)
}

func TestPLPIgnoresBreak(t *testing.T) {
	// LDA #$CF ; PHA ; PLP
	cpu, _ := newTestCPU(t, `0600: a9 cf 48 28`)
	cpu.P = Unused

	runAndCheckState(t, cpu, 3, "P", uint8(0xCF|Unused))
}

func TestExecuteInstructions(t *testing.T) {
	cpu, _ := newTestCPU(t, `0600: ea ea ea ea ea ea ea ea ea ea`)

	st := runAndCheckState(t, cpu, 5, "PC", uint16(0x0605))
	want := ExecState{Cycles: 10, Instructions: 5, LastOpcode: 0xEA, LastPC: 0x0604, Stop: StopInstructions}
	if diff := gocmp.Diff(want, st); diff != "" {
		t.Errorf("ExecState mismatch (-want +got):\n%s", diff)
	}

	st, err := cpu.Execute(ExecOptions{Instructions: 5, Cycles: 1000})
	tcheck(t, err)
	if st.Instructions != 5 || cpu.PC != 0x060A {
		t.Errorf("got %d instructions, PC=$%04X, want 5, $060A", st.Instructions, cpu.PC)
	}

	if lt := cpu.Lifetime(); lt.Instructions != 10 || lt.Cycles != 20 {
		t.Errorf("lifetime = %+v, want 10 instructions in 20 cycles", lt)
	}
}

func TestExecuteCycles(t *testing.T) {
	// LDA abs (4) in loop with JMP (3)
	cpu, _ := newTestCPU(t, `0600: ad 00 02 4c 00 06`)

	st, err := cpu.Run(10)
	tcheck(t, err)
	if st.Cycles != 11 || st.Instructions != 3 {
		t.Errorf("got %d cycles, %d instructions, want 11, 3", st.Cycles, st.Instructions)
	}
}

func TestExecuteUnbounded(t *testing.T) {
	cpu, _ := newTestCPU(t, `0600: ea`)
	if _, err := cpu.Execute(ExecOptions{UnknownIsFatal: true}); !errors.Is(err, ErrUnbounded) {
		t.Errorf("err = %v, want ErrUnbounded", err)
	}
}

func TestExecuteUnknown(t *testing.T) {
	const prog = `0600: 02 02 ea`

	t.Run("counted", func(t *testing.T) {
		cpu, _ := newTestCPU(t, prog)
		st, err := cpu.Execute(ExecOptions{Instructions: 3})
		tcheck(t, err)
		want := ExecState{
			Cycles:       1 + 1 + 2,
			Instructions: 3,
			Unknown:      2,
			LastOpcode:   0xEA,
			LastPC:       0x0602,
			LastUnknown:  0x02,
			Stop:         StopInstructions,
		}
		if diff := gocmp.Diff(want, st); diff != "" {
			t.Errorf("ExecState mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("fatal", func(t *testing.T) {
		cpu, _ := newTestCPU(t, prog)
		st, err := cpu.Execute(ExecOptions{Instructions: 3, UnknownIsFatal: true})

		var uerr *UnknownOpcodeError
		if !errors.As(err, &uerr) {
			t.Fatalf("err = %v, want *UnknownOpcodeError", err)
		}
		if uerr.Opcode != 0x02 || uerr.PC != 0x0600 {
			t.Errorf("got %+v", uerr)
		}
		if st.Unknown != 1 || cpu.PC != 0x0601 {
			t.Errorf("got %d unknown, PC=$%04X, want 1, $0601", st.Unknown, cpu.PC)
		}
	})
}

func TestExecuteAccessError(t *testing.T) {
	mem := hwio.MustNewTable("small", 0x10000, 1)
	tcheck(t, mem.MapRAM(0, 0, make([]byte, 0x1000), 0, 0x1000))
	mem.WriteBlock(0x0600, []byte{0xAD, 0x00, 0x20}) // LDA $2000

	cpu := NewCPU(mem)
	if err := cpu.Reset(); err == nil {
		t.Fatalf("Reset() with unmapped vector should fail")
	}
	cpu.ResetTo(0x0600)

	st, err := cpu.Execute(ExecOptions{Instructions: 1})
	if st.Stop != StopError {
		t.Errorf("stop reason = %s, want %s", st.Stop, StopError)
	}
	var aerr *hwio.AccessError
	if !errors.As(err, &aerr) {
		t.Fatalf("err = %v, want *hwio.AccessError", err)
	}
	if aerr.Addr != 0x2000 || aerr.Op != "read" {
		t.Errorf("got %+v", aerr)
	}
}

func TestExecuteStopConditions(t *testing.T) {
	// loop:
	//  INX
	//  JMP loop
	const prog = `0600: e8 4c 00 06`

	tests := []struct {
		name   string
		opts   ExecOptions
		ninstr int64
		reason StopReason
	}{
		{"until pc", ExecOptions{UntilPC: At(0x0600)}, 2, StopPC},
		{"until opcode", ExecOptions{UntilOpcode: At(0x4C)}, 2, StopOpcode},
		{"until executed at", ExecOptions{UntilExecutedAt: At(0x0600)}, 1, StopExecutedAt},
		{"opcode set", ExecOptions{UntilOpcodes: []uint8{0x4C, 0x60}}, 2, StopOpcodeSet},
		{"breakpoint", ExecOptions{Breakpoints: hwio.NewBitset(0x0601)}, 1, StopBreakpoint},
		{"evaluator", ExecOptions{Evaluators: []Evaluator{
			EvaluatorFunc(func(cpu *CPU, st ExecState) (bool, error) {
				return cpu.X == 3, nil
			}),
		}}, 5, StopEvaluator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, prog)
			st, err := cpu.Execute(tt.opts)
			tcheck(t, err)
			if st.Instructions != tt.ninstr || st.Stop != tt.reason {
				t.Errorf("executed %d instructions (%s), want %d (%s)", st.Instructions, st.Stop, tt.ninstr, tt.reason)
			}
		})
	}

	t.Run("evaluator error", func(t *testing.T) {
		cpu, _ := newTestCPU(t, prog)
		want := errors.New("boom")
		_, err := cpu.Execute(ExecOptions{Evaluators: []Evaluator{
			EvaluatorFunc(func(*CPU, ExecState) (bool, error) { return false, want }),
		}})
		if !errors.Is(err, want) {
			t.Errorf("err = %v, want %v", err, want)
		}
	})
}

func TestInterruptPriority(t *testing.T) {
	cpu, _ := newTestCPU(t, `
0600: ea ea ea ea
0700: ea ea
0800: ea
fffa: 00 07
fffe: 00 08`)
	cpu.P = Unused

	cpu.Interrupts.SetIRQ("timer", false)
	cpu.Interrupts.SetNMI("restore")

	st := runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0701),
		"SP", uint8(0xFA),
		"Pi", uint8(1),
		"mem", `01fb: 20 00 06`,
	)
	if st.Interrupts != 1 || st.Cycles != InterruptCycles+2 {
		t.Errorf("got %d interrupts in %d cycles", st.Interrupts, st.Cycles)
	}
	if !cpu.Interrupts.IRQ() {
		t.Errorf("IRQ should still be pending")
	}

	// NMI is edge triggered, IRQ is masked.
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0702))

	// RTI-less handler: clearing I lets the pending IRQ in.
	cpu.P = cpu.P.SetIntDisable(false)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0801))
	if !cpu.Interrupts.IRQ() {
		t.Errorf("non auto-acknowledged IRQ should still be asserted")
	}

	irqs, nmis := cpu.Interrupts.Sources()
	if diff := gocmp.Diff([]string{"timer"}, irqs); diff != "" {
		t.Errorf("irq sources mismatch (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff([]string{"restore"}, nmis); diff != "" {
		t.Errorf("nmi sources mismatch (-want +got):\n%s", diff)
	}
}

func TestInterruptAutoAck(t *testing.T) {
	cpu, _ := newTestCPU(t, `
0600: ea
0800: ea
fffe: 00 08`)
	cpu.P = Unused

	cpu.Interrupts.SetIRQ("cia1", true)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0801))
	if cpu.Interrupts.IRQ() {
		t.Errorf("auto-acknowledged IRQ should be released")
	}
}

func TestNMIEdge(t *testing.T) {
	var it Interrupts
	it.SetNMI("a")
	it.SetNMI("a")
	if !it.takeNMI() || it.takeNMI() {
		t.Fatalf("asserting a held source twice should latch one edge")
	}

	// A second source fires while the first one is still held.
	it.SetNMI("b")
	if !it.takeNMI() || it.takeNMI() {
		t.Fatalf("second source should latch its own edge")
	}

	it.ClearNMI("a")
	it.ClearNMI("b")
	if it.NMI() {
		t.Fatalf("NMI line should be released")
	}
	it.SetNMI("a")
	if !it.takeNMI() {
		t.Fatalf("new edge should be latched")
	}
}

func TestNMISecondSource(t *testing.T) {
	cpu, _ := newTestCPU(t, `
0600: ea ea
0700: ea ea ea
fffa: 00 07`)

	cpu.Interrupts.SetNMI("restore")
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0701))

	// "restore" stays asserted, "cia2" is serviced nonetheless.
	cpu.Interrupts.SetNMI("cia2")
	st := runAndCheckState(t, cpu, 1, "PC", uint16(0x0701))
	if st.Interrupts != 1 {
		t.Errorf("got %d interrupts, want 1", st.Interrupts)
	}

	// No new edge.
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0702))
}

type recorder struct {
	events []string
}

func (r *recorder) BeforeInstruction(cpu *CPU, pc uint16) {
	r.events = append(r.events, fmt.Sprintf("before %04X", pc))
}

func (r *recorder) AfterInstruction(cpu *CPU, res StepResult) {
	r.events = append(r.events, fmt.Sprintf("after %02X %d", res.Opcode, res.Cycles))
}

func (r *recorder) UnknownInstruction(cpu *CPU, res StepResult) {
	r.events = append(r.events, fmt.Sprintf("unknown %02X", res.Opcode))
}

func (r *recorder) Interrupt(cpu *CPU, prevpc, curpc uint16, isNMI bool) {
	r.events = append(r.events, fmt.Sprintf("interrupt %04X->%04X nmi=%t", prevpc, curpc, isNMI))
}

func TestObservers(t *testing.T) {
	cpu, _ := newTestCPU(t, `
0600: ea 02
0700: ea
fffa: 00 07`)

	var r recorder
	cpu.AddObserver(&r)
	cpu.AddObserver(NopObserver{})

	_, err := cpu.Execute(ExecOptions{Instructions: 2})
	tcheck(t, err)
	cpu.Interrupts.SetNMI("nmi")
	_, err = cpu.Execute(ExecOptions{Instructions: 1})
	tcheck(t, err)

	want := []string{
		"before 0600",
		"after EA 2",
		"before 0601",
		"unknown 02",
		"interrupt 0602->0700 nmi=true",
		"before 0700",
		"after EA 2",
	}
	if diff := gocmp.Diff(want, r.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
