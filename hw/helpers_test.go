package hw

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"sixfive/hw/hwio"
)

func tcheck(tb testing.TB, err error) {
	if err == nil {
		return
	}

	tb.Helper()
	tb.Fatalf("fatal error:\n\n%s\n", err)
}

type dumpline struct {
	off   uint16
	bytes []byte
}

// loadDump parses an hexdump-like memory description:
//
//	0600: a9 01 8d 00 02
//	# comment
//	fffc: 00 06
func loadDump(tb testing.TB, dump string) []dumpline {
	tb.Helper()

	var lines []dumpline
	scan := bufio.NewScanner(strings.NewReader(dump))
	for scan.Scan() {
		line := scan.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed line: %s", line)
		}

		ioff, err := strconv.ParseUint(strings.TrimSpace(off), 16, 16)
		if err != nil {
			tb.Fatalf("malformed offset %s: %s", off, err)
		}
		buf, err := hex.DecodeString(strings.ReplaceAll(octets, " ", ""))
		if err != nil {
			tb.Fatalf("hex decode: %s", err)
		}
		lines = append(lines, dumpline{off: uint16(ioff), bytes: buf})
	}
	if scan.Err() != nil {
		tb.Fatalf("scan error: %s", scan.Err())
	}

	return lines
}

// newTestCPU returns a CPU on a 64K RAM table loaded with dump. PC is set to
// $0600 unless the dump sets the reset vector.
func newTestCPU(tb testing.TB, dump string) (*CPU, *hwio.Table) {
	tb.Helper()

	mem := hwio.MustNewTable("test", 0x10000, 1)
	tcheck(tb, mem.MapRAMAll(0, make([]byte, 0x10000)))
	mem.Write16(ResetVector, 0x0600)
	for _, line := range loadDump(tb, dump) {
		mem.WriteBlock(line.off, line.bytes)
	}

	cpu := NewCPU(mem)
	tcheck(tb, cpu.Reset())
	if testing.Verbose() {
		cpu.SetTraceOutput(tbwriter{tb})
	}
	return cpu, mem
}

type tbwriter struct {
	testing.TB
}

func (t tbwriter) Write(p []byte) (int, error) {
	t.TB.Helper()
	t.TB.Log(string(bytes.TrimSpace(p)))
	return len(p), nil
}

func b2i(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// runAndCheckState executes ninstrs instructions and checks the
// state against the provided name/value pairs.
func runAndCheckState(t *testing.T, cpu *CPU, ninstrs int64, states ...any) ExecState {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	checkuint8 := func(name string, got, want uint8) {
		t.Helper()
		if got != want {
			t.Errorf("got %s=$%02X, want $%02X", name, got, want)
		}
	}
	checkuint16 := func(name string, got, want uint16) {
		t.Helper()
		if got != want {
			t.Errorf("got %s=$%04X, want $%04X", name, got, want)
		}
	}

	st, err := cpu.Execute(ExecOptions{Instructions: ninstrs, UnknownIsFatal: true})
	tcheck(t, err)

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch {
		case s == "A":
			checkuint8("A", cpu.A, states[i+1].(uint8))
		case s == "X":
			checkuint8("X", cpu.X, states[i+1].(uint8))
		case s == "Y":
			checkuint8("Y", cpu.Y, states[i+1].(uint8))
		case s == "PC":
			checkuint16("PC", cpu.PC, states[i+1].(uint16))
		case s == "SP":
			checkuint8("SP", cpu.SP, states[i+1].(uint8))
		case s == "cycles":
			if got, want := st.Cycles, int64(states[i+1].(int)); got != want {
				t.Errorf("got cycles=%d, want %d", got, want)
			}
		case s == "P":
			if got, want := uint8(cpu.P), states[i+1].(uint8); got != want {
				t.Errorf("got P=$%02X(%s), want $%02X(%s)", got, P(got), want, P(want))
			}
		case len(s) > 1 && s[0] == 'P':
			bit := states[i+1].(uint8)
			for j := 1; j < len(s); j++ {
				var got bool
				switch s[j] {
				case 'n':
					got = cpu.P.Negative()
				case 'v':
					got = cpu.P.Overflow()
				case 'd':
					got = cpu.P.Decimal()
				case 'i':
					got = cpu.P.IntDisable()
				case 'z':
					got = cpu.P.Zero()
				case 'c':
					got = cpu.P.Carry()
				default:
					panic("unknown P bit: " + string(s[j]))
				}
				if b2i(got) != bit {
					t.Errorf("got P%c=%d, want %d", s[j], b2i(got), bit)
				}
			}
		case s == "mem":
			for _, line := range loadDump(t, states[i+1].(string)) {
				got := cpu.Bus.(*hwio.Table).ReadBlock(line.off, len(line.bytes))
				if !bytes.Equal(got, line.bytes) {
					t.Errorf("mem mismatch at $%04X\ngot:  % x\nwant: % x", line.off, got, line.bytes)
				}
			}
		default:
			panic("unknown state: " + s)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
	return st
}
