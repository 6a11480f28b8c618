package emu

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sixfive/emu/log"
	"sixfive/hw"
	"sixfive/hw/snapshot"
)

// loop increments X forever.
//
//	0600 A2 00     LDX #$00
//	0602 E8        INX
//	0603 4C 02 06  JMP $0602
var loop = []byte{0xA2, 0x00, 0xE8, 0x4C, 0x02, 0x06}

func newFlatMachine(tb testing.TB, cyclesPerFrame int64, code []byte) *Machine {
	tb.Helper()
	m, err := NewFlat(0x10000, nil, cyclesPerFrame)
	if err != nil {
		tb.Fatal(err)
	}
	m.Mem.WriteBlock(0x0600, code)
	m.CPU.ResetTo(0x0600)
	return m
}

func TestRunFrames(t *testing.T) {
	m := newFlatMachine(t, 100, loop)

	st, err := m.Run(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if m.Frame() != 3 {
		t.Errorf("ran %d frames, want 3", m.Frame())
	}
	if st.Stop != hw.StopCycles {
		t.Errorf("stop reason = %s, want %s", st.Stop, hw.StopCycles)
	}

	// Instructions take at most 3 cycles, the overshoot of a frame is
	// deducted from the next.
	if st.Cycles < 300 || st.Cycles > 302 {
		t.Errorf("ran %d cycles, want 300-302", st.Cycles)
	}
	if st.Cycles != m.CPU.Lifetime().Cycles {
		t.Errorf("run cycles %d, lifetime %d", st.Cycles, m.CPU.Lifetime().Cycles)
	}
}

func TestRunStopConditions(t *testing.T) {
	t.Run("breakpoint", func(t *testing.T) {
		m := newFlatMachine(t, 100, loop)
		m.Opts.UntilPC = hw.At(0x0603)

		st, err := m.Run(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if st.Stop != hw.StopPC || m.CPU.PC != 0x0603 {
			t.Errorf("stopped at $%04X (%s), want $0603 (%s)", m.CPU.PC, st.Stop, hw.StopPC)
		}
		if m.Frame() != 0 {
			t.Errorf("frame = %d, want 0", m.Frame())
		}
	})

	t.Run("max instructions", func(t *testing.T) {
		m := newFlatMachine(t, 10, loop)
		m.MaxInstructions = 25

		st, err := m.Run(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if st.Instructions != 25 || st.Stop != hw.StopInstructions {
			t.Errorf("executed %d instructions (%s), want 25 (%s)", st.Instructions, st.Stop, hw.StopInstructions)
		}
	})

	t.Run("unknown fatal", func(t *testing.T) {
		m := newFlatMachine(t, 100, []byte{0xEA, 0x02})
		m.Opts.UnknownIsFatal = true

		st, err := m.Run(context.Background(), 0)
		var uerr *hw.UnknownOpcodeError
		if !errors.As(err, &uerr) {
			t.Fatalf("got error %v, want *UnknownOpcodeError", err)
		}
		if uerr.PC != 0x0601 || st.Unknown != 1 {
			t.Errorf("unknown opcode at $%04X (count %d), want $0601 (count 1)", uerr.PC, st.Unknown)
		}
	})

	t.Run("context", func(t *testing.T) {
		m := newFlatMachine(t, 100, loop)
		ctx, cancel := context.WithCancel(context.Background())
		m.OnFrame = func(frame int64) {
			if frame == 2 {
				cancel()
			}
		}

		_, err := m.Run(ctx, 0)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got error %v, want %v", err, context.Canceled)
		}
		if m.Frame() != 2 {
			t.Errorf("frame = %d, want 2", m.Frame())
		}
	})

	t.Run("stop", func(t *testing.T) {
		m := newFlatMachine(t, 100, loop)
		m.OnFrame = func(int64) { m.Stop() }

		if _, err := m.Run(context.Background(), 10); err != nil {
			t.Fatal(err)
		}
		if m.Frame() != 1 {
			t.Errorf("frame = %d, want 1", m.Frame())
		}
	})
}

func TestFlatUnmapped(t *testing.T) {
	m, err := NewFlat(0x1000, []ROM{{Addr: 0xFFFC, Data: []byte{0x00, 0x02, 0, 0}}}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.CPU.Reset(); err != nil {
		t.Fatal(err)
	}
	if m.CPU.PC != 0x0200 {
		t.Fatalf("PC = $%04X, want $0200", m.CPU.PC)
	}

	// LDA $2000 reads outside of the 4KB of RAM.
	m.Mem.WriteBlock(0x0200, []byte{0xAD, 0x00, 0x20})
	_, err = m.Run(context.Background(), 1)
	if err == nil {
		t.Fatal("expected an access error")
	}
}

func TestSnapshot(t *testing.T) {
	m := newFlatMachine(t, 100, loop)
	if _, err := m.Run(context.Background(), 2); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := m.SaveSnapshot(&buf); err != nil {
		t.Fatal(err)
	}
	want := m.Snapshot()

	m.Mem.Write8(0x0000, 0xFF)
	if _, err := m.Run(context.Background(), 2); err != nil {
		t.Fatal(err)
	}

	if err := m.LoadSnapshot(&buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("restored snapshot mismatch (-want +got):\n%s", diff)
	}
	if m.Mem.Peek8(0x0000) != 0 {
		t.Errorf("ram not restored")
	}
}

func TestSnapshotMismatch(t *testing.T) {
	small, err := NewFlat(0x1000, nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	m := newFlatMachine(t, 100, loop)

	err = small.Restore(m.Snapshot())
	if !errors.Is(err, ErrSnapshotMismatch) {
		t.Errorf("got error %v, want %v", err, ErrSnapshotMismatch)
	}

	sm := m.Snapshot()
	sm.Version = 42
	if err := m.Restore(sm); !errors.Is(err, snapshot.ErrVersion) {
		t.Errorf("got error %v, want %v", err, snapshot.ErrVersion)
	}
}

func BenchmarkRunFrame(b *testing.B) {
	log.Disable()
	b.ReportAllocs()

	m := newFlatMachine(b, PALFrameCycles, loop)
	for b.Loop() {
		if _, err := m.RunOneFrame(); err != nil {
			b.Fatal(err)
		}
	}
}

func TestRemoteControl(t *testing.T) {
	m := newFlatMachine(t, 100, loop)
	m.Mem.Write16(0xFFFC, 0x0602)

	m.Reset()
	if _, err := m.Run(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	st := m.Status()
	if st.Frame != 1 || st.Lifetime.Cycles < 100 {
		t.Errorf("status frame = %d, cycles = %d, want 1 and >= 100", st.Frame, st.Lifetime.Cycles)
	}
	// LDX #0 has been skipped.
	if st.State.X == 0 {
		t.Errorf("X = 0, reset vector not followed")
	}

	m.SetPause(true)
	done := make(chan error)
	go func() {
		_, err := m.Run(context.Background(), 1)
		done <- err
	}()

	for !m.Status().Paused {
		time.Sleep(time.Millisecond)
	}
	if st := m.Status(); st.Frame != 1 {
		t.Errorf("frame = %d while paused, want 1", st.Frame)
	}
	m.SetPause(false)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if st := m.Status(); st.Frame != 2 || st.Paused {
		t.Errorf("status = %+v, want frame 2, not paused", st)
	}
}
