package debugger

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sixfive/hw"
	"sixfive/hw/hwio"
)

func TestCallStack(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		var cstack callStack
		cstack.push(0xC7C2, 0xC7E7, 0xC7C5, sffNone)
		cstack.push(0xC801, 0xCBAE, 0xC804, sffNone)

		fi := cstack.build(0xF099)
		want := []FrameInfo{
			{"CBAE", "$F099"},
			{"C7E7", "$C801"},
			{"[bottom of stack]", "$C7C2"},
		}
		if diff := cmp.Diff(fi, want); diff != "" {
			t.Fatalf("callstack differs (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		var cstack callStack
		fi := cstack.build(0xF099)
		want := []FrameInfo{
			{"[bottom of stack]", "$F099"},
		}
		if diff := cmp.Diff(fi, want); diff != "" {
			t.Fatalf("callstack differs (-want +got):\n%s", diff)
		}
	})

	t.Run("max depth", func(t *testing.T) {
		var cstack callStack
		for i := range maxDepth + 10 {
			cstack.push(uint16(i), 0x1000, uint16(i+3), sffNone)
		}
		if cstack.len() != maxDepth || cstack[0].src != 10 {
			t.Fatalf("depth = %d, bottom src = %d, want %d and 10", cstack.len(), cstack[0].src, maxDepth)
		}
	})
}

func newCPU(t *testing.T, code map[uint16][]byte) *hw.CPU {
	t.Helper()
	mem := hwio.MustNewTable("test", hwio.MaxSize, 1)
	if err := mem.MapRAMAll(0, make([]byte, hwio.MaxSize)); err != nil {
		t.Fatal(err)
	}
	for addr, b := range code {
		mem.WriteBlock(addr, b)
	}
	cpu := hw.NewCPU(mem)
	cpu.ResetTo(0x0600)
	return cpu
}

func TestCallStackObserver(t *testing.T) {
	cpu := newCPU(t, map[uint16][]byte{
		0x0600: {0x20, 0x10, 0x06}, // JSR $0610
		0x0610: {0x20, 0x20, 0x06}, // JSR $0620
		0x0620: {0xEA, 0x60},       // NOP; RTS
		0x0700: {0x40},             // RTI
		0xFFFA: {0x00, 0x07},
	})
	cs := NewCallStack()
	cpu.AddObserver(cs)

	if _, err := cpu.Execute(hw.ExecOptions{Instructions: 3}); err != nil {
		t.Fatal(err)
	}
	want := []FrameInfo{
		{"0620", "$0621"},
		{"0610", "$0610"},
		{"[bottom of stack]", "$0600"},
	}
	if diff := cmp.Diff(want, cs.Frames(cpu.PC)); diff != "" {
		t.Fatalf("callstack differs (-want +got):\n%s", diff)
	}

	cpu.Interrupts.SetNMI("test")
	if _, err := cpu.Execute(hw.ExecOptions{Instructions: 1}); err != nil {
		t.Fatal(err)
	}
	if cs.Depth() != 2 {
		t.Fatalf("depth = %d after NMI and RTI, want 2", cs.Depth())
	}

	if _, err := cpu.Execute(hw.ExecOptions{Instructions: 1}); err != nil {
		t.Fatal(err)
	}
	if cs.Depth() != 1 {
		t.Fatalf("depth = %d after RTS, want 1", cs.Depth())
	}

	var buf bytes.Buffer
	if err := cs.Write(&buf, cpu.PC); err != nil {
		t.Fatal(err)
	}
	wantOut := "#0   0610                 $0613\n" +
		"#1   [bottom of stack]    $0600\n"
	if buf.String() != wantOut {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), wantOut)
	}
}
