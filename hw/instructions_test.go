package hw

import (
	"errors"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	tbl := DefaultTable()
	if got := tbl.Len(); got != 151 {
		t.Fatalf("DefaultTable has %d opcodes, want 151", got)
	}

	mnemonics := make(map[string]int)
	for _, in := range tbl.All() {
		mnemonics[in.Mnemonic]++
		if tbl.Lookup(in.Opcode) != in {
			t.Errorf("Lookup(%02X) returned a different instruction", in.Opcode)
		}
	}
	if len(mnemonics) != 56 {
		t.Errorf("got %d mnemonics, want 56", len(mnemonics))
	}

	for _, op := range []uint8{0x02, 0x03, 0x80, 0xFF} {
		if in := tbl.Lookup(op); in != nil {
			t.Errorf("Lookup(%02X) = %s, want nil", op, in.Mnemonic)
		}
	}
}

func TestRegister(t *testing.T) {
	tbl, err := NewInstructionTable(
		Instruction{0xEA, "NOP", Implied, 2, NoPageCycle, implied(nop)},
	)
	tcheck(t, err)

	err = tbl.Register(Instruction{0xEA, "NOP", Implied, 2, NoPageCycle, implied(nop)})
	if !errors.Is(err, ErrDuplicateOpcode) {
		t.Errorf("duplicate Register: err = %v, want ErrDuplicateOpcode", err)
	}

	invalid := []Instruction{
		{0x01, "LDA", Implied, 2, NoPageCycle, value(lda)},
		{0x01, "STA", Immediate, 2, NoPageCycle, address(sta)},
		{0x01, "PHA", Absolute, 3, NoPageCycle, stack(pha)},
		{0x01, "INX", Implied, 0, NoPageCycle, implied(inx)},
		{0x01, "NOP", Implied, 2, NoPageCycle, Behavior{Kind: ImpliedBehavior}},
	}
	for _, in := range invalid {
		if err := tbl.Register(in); !errors.Is(err, ErrInvalidInstruction) {
			t.Errorf("Register(%s %s): err = %v, want ErrInvalidInstruction", in.Mnemonic, in.Mode, err)
		}
	}

	if _, err := NewInstructionTable(opcodes[0], opcodes[0]); !errors.Is(err, ErrDuplicateOpcode) {
		t.Errorf("NewInstructionTable with duplicates: err = %v, want ErrDuplicateOpcode", err)
	}
}

func TestStepUnknownOpcode(t *testing.T) {
	cpu, mem := newTestCPU(t, `0600: 02 a9 01`)

	res := NewExecutor(DefaultTable()).Step(&cpu.State, mem)
	if !res.Unknown || res.Cycles != 1 || res.Opcode != 0x02 || res.Instr != nil {
		t.Errorf("Step() = %+v, want unknown 02 in 1 cycle", res)
	}
	if cpu.PC != 0x0601 {
		t.Errorf("PC = $%04X, want $0601", cpu.PC)
	}
}

// Cycle counts from the documented NMOS 6502 timings.
func TestCycles(t *testing.T) {
	tests := []struct {
		name   string
		dump   string
		ninstr int64
		cycles int
	}{
		{"LDA imm", `0600: a9 01`, 1, 2},
		{"LDA abs,X", `0600: a2 01 bd 00 10`, 2, 2 + 4},
		{"LDA abs,X crossing", `0600: a2 01 bd ff 10`, 2, 2 + 5},
		{"LDX abs,Y crossing", `0600: a0 01 be ff 10`, 2, 2 + 5},
		{"LDA (zp),Y", `0600: a0 01 b1 10`, 2, 2 + 5},
		{"LDA (zp),Y crossing", "0010: ff 10\n0600: a0 01 b1 10", 2, 2 + 6},
		{"LDA (zp,X)", `0600: a1 10`, 1, 6},
		{"STA abs,X", `0600: a2 01 9d 00 10`, 2, 2 + 5},
		{"STA abs,Y crossing", `0600: a0 01 99 ff 10`, 2, 2 + 5},
		{"STA (zp),Y", `0600: a0 01 91 10`, 2, 2 + 6},
		{"STA zp,X", `0600: 95 10`, 1, 4},
		{"ASL A", `0600: 0a`, 1, 2},
		{"ASL abs", `0600: 0e 00 10`, 1, 6},
		{"ASL abs,X", `0600: a2 01 1e 00 10`, 2, 2 + 7},
		{"INC abs,X crossing", `0600: a2 01 fe ff 10`, 2, 2 + 7},
		{"BCS not taken", `0600: 18 b0 10`, 2, 2 + 2},
		{"BCC taken", `0600: 18 90 10`, 2, 2 + 3},
		{"BCC taken crossing", `0600: 18 90 80`, 2, 2 + 4},
		{"JMP abs", `0600: 4c 00 10`, 1, 3},
		{"JMP ind", `0600: 6c 00 10`, 1, 5},
		{"JSR", `0600: 20 00 10`, 1, 6},
		{"BRK", `0600: 00`, 1, 7},
		{"PHA PLA", `0600: 48 68`, 2, 3 + 4},
		{"PHP PLP", `0600: 08 28`, 2, 3 + 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, tt.dump)
			runAndCheckState(t, cpu, tt.ninstr, "cycles", tt.cycles)
		})
	}
}
