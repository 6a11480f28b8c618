package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"sixfive/emu/log"
	"sixfive/hw"
	"sixfive/hw/hwio"
	"sixfive/hw/snapshot"
	"sixfive/prg"
)

var ErrSnapshotMismatch = errors.New("snapshot does not match the machine memory layout")

// Machine is a 6502 connected to a banked memory table, run one frame of
// cycles at a time.
type Machine struct {
	CPU *hw.CPU
	Mem *hwio.Table

	// Opts holds the stop conditions applied to every frame. The cycle
	// budget is overwritten by the frame loop.
	Opts hw.ExecOptions

	// MaxInstructions bounds the total number of instructions executed by
	// Run, 0 means no bound.
	MaxInstructions int64

	// OnFrame, if set, is called at the end of each frame.
	OnFrame func(frame int64)

	cyclesPerFrame int64
	frame          int64
	overshoot      int64 // cycles spent beyond the previous frame budget

	segments  []*hwio.Segment
	onRestore func()

	// These are accessed concurrently by the frame loop and remote
	// controllers.
	quit   atomic.Bool
	paused atomic.Bool
	reset  atomic.Bool
	status atomic.Pointer[Status]
}

// Status is the machine state published at the end of each frame.
type Status struct {
	Frame    int64
	Paused   bool
	State    hw.State
	Lifetime hw.ExecState
}

func newMachine(mem *hwio.Table, cyclesPerFrame int64) *Machine {
	return &Machine{
		CPU:            hw.NewCPU(mem),
		Mem:            mem,
		cyclesPerFrame: cyclesPerFrame,
	}
}

// NewMachine builds the machine described by cfg. ROM files are read from
// the file system.
func NewMachine(cfg Config) (*Machine, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	var (
		m   *Machine
		err error
	)
	switch cfg.Machine.Layout {
	case LayoutFlat:
		m, err = newFlatFromConfig(cfg.Machine, cfg.Execution.CyclesPerFrame)
	case LayoutC64:
		var roms C64ROMs
		if roms, err = readC64ROMs(cfg.Machine.C64); err != nil {
			return nil, err
		}
		c64, err := NewC64(roms, cfg.Execution.CyclesPerFrame)
		if err != nil {
			return nil, err
		}
		m = c64.Machine
		if cfg.Machine.C64.FrameIRQ {
			m.OnFrame = func(int64) { m.CPU.Interrupts.SetIRQ("frame", true) }
		}
	}
	if err != nil {
		return nil, err
	}

	ex := cfg.Execution
	m.Opts.UnknownIsFatal = ex.UnknownFatal
	m.MaxInstructions = ex.MaxInstructions
	if ex.StopPC != nil {
		m.Opts.UntilPC = hw.At(*ex.StopPC)
	}
	if len(ex.Breakpoints) != 0 {
		m.Opts.Breakpoints = hwio.NewBitset(ex.Breakpoints...)
	}
	m.Opts.UntilOpcodes = ex.StopOpcodes
	return m, nil
}

func newFlatFromConfig(mc MachineConfig, cyclesPerFrame int64) (*Machine, error) {
	roms := make([]ROM, 0, len(mc.ROMs))
	for _, rc := range mc.ROMs {
		data, err := os.ReadFile(rc.File)
		if err != nil {
			return nil, fmt.Errorf("rom: %w", err)
		}
		roms = append(roms, ROM{Addr: rc.Addr, Data: data})
	}
	return NewFlat(mc.MemSize, roms, cyclesPerFrame)
}

// ROM is a read-only image mapped over RAM.
type ROM struct {
	Addr uint16
	Data []byte
}

// NewFlat creates a machine with memSize bytes of RAM at $0000 and roms
// mapped above it. Addresses covered by neither are unmapped.
func NewFlat(memSize int, roms []ROM, cyclesPerFrame int64) (*Machine, error) {
	mem, err := hwio.NewTable("flat", hwio.MaxSize, 1)
	if err != nil {
		return nil, err
	}
	if err := mem.MapRAMAll(0, make([]byte, memSize)); err != nil {
		return nil, err
	}
	for _, rom := range roms {
		if err := mem.MapROM(hwio.AllConfigs, rom.Addr, rom.Data); err != nil {
			return nil, fmt.Errorf("rom at $%04X: %w", rom.Addr, err)
		}
	}
	return newMachine(mem, cyclesPerFrame), nil
}

// LoadImage loads the program image file at path into memory.
func (m *Machine) LoadImage(path string, opts prg.Options) (prg.Image, error) {
	return prg.Open(path, m.Mem, opts)
}

// Start resets the CPU according to the entry point mode (see
// MachineConfig.EntryPoint). img is the loaded image, used by the "load"
// mode.
func (m *Machine) Start(mode string, addr uint16, img prg.Image) error {
	switch mode {
	case "reset":
		return m.CPU.Reset()
	case "load":
		if img.Size == 0 {
			return errors.New("no image loaded to start from")
		}
		m.CPU.ResetTo(img.Addr)
	case "addr":
		m.CPU.ResetTo(addr)
	default:
		return fmt.Errorf("unknown entry mode %q", mode)
	}
	return nil
}

func (m *Machine) AddEvaluator(ev hw.Evaluator) {
	m.Opts.Evaluators = append(m.Opts.Evaluators, ev)
}

func (m *Machine) SetTraceOutput(w io.Writer) {
	m.CPU.SetTraceOutput(w)
}

// Frame returns the number of frames run so far.
func (m *Machine) Frame() int64 { return m.frame }

// Stop, SetPause and Reset control the frame loop in a concurrent-safe way,
// they take effect at the next frame boundary.

func (m *Machine) Stop()               { m.quit.Store(true) }
func (m *Machine) SetPause(pause bool) { m.paused.Store(pause) }
func (m *Machine) Reset()              { m.reset.Store(true) }

// Status returns the state published at the end of the last frame.
func (m *Machine) Status() Status {
	if st := m.status.Load(); st != nil {
		return *st
	}
	return Status{}
}

func (m *Machine) publish() {
	m.status.Store(&Status{
		Frame:    m.frame,
		Paused:   m.paused.Load(),
		State:    m.CPU.State,
		Lifetime: m.CPU.Lifetime(),
	})
}

// RunOneFrame executes a frame worth of cycles. Cycles spent beyond the
// budget of the previous frame, because the last instruction overlapped the
// frame boundary, are deducted.
func (m *Machine) RunOneFrame() (hw.ExecState, error) {
	opts := m.Opts
	opts.Cycles = max(m.cyclesPerFrame-m.overshoot, 1)

	st, err := m.CPU.Execute(opts)
	if st.Stop == hw.StopCycles {
		m.overshoot = st.Cycles - opts.Cycles
		m.frame++
		if m.OnFrame != nil {
			m.OnFrame(m.frame)
		}
	}

	log.ModEmu.DebugZ("frame done").
		Int64("frame", m.frame).
		Int64("cycles", st.Cycles).
		Stringer("stop", st.Stop).
		End()
	return st, err
}

// Run runs frames until ctx is done, Stop is called, nframes frames have
// been run (0 means no limit) or a stop condition other than the frame
// budget is met. The returned state accumulates all the frames.
func (m *Machine) Run(ctx context.Context, nframes int) (hw.ExecState, error) {
	var total hw.ExecState
	m.quit.Store(false)
	m.publish()
	defer m.publish()

	for i := 0; nframes == 0 || i < nframes; {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if m.quit.Load() {
			return total, nil
		}
		if m.reset.Swap(false) {
			m.overshoot = 0
			if err := m.CPU.Reset(); err != nil {
				return total, err
			}
		}
		if m.paused.Load() {
			// Don't burn cpu while paused.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		saved := m.Opts.Instructions
		if m.MaxInstructions > 0 {
			left := m.MaxInstructions - total.Instructions
			if left <= 0 {
				total.Stop = hw.StopInstructions
				return total, nil
			}
			m.Opts.Instructions = left
		}
		st, err := m.RunOneFrame()
		m.Opts.Instructions = saved

		accumulate(&total, st)
		if err != nil || st.Stop != hw.StopCycles {
			return total, err
		}
		m.publish()
		i++
	}
	return total, nil
}

func accumulate(total *hw.ExecState, st hw.ExecState) {
	total.Cycles += st.Cycles
	total.Instructions += st.Instructions
	total.Unknown += st.Unknown
	total.Interrupts += st.Interrupts
	if st.Instructions != 0 {
		total.LastOpcode = st.LastOpcode
		total.LastPC = st.LastPC
	}
	if st.Unknown != 0 {
		total.LastUnknown = st.LastUnknown
	}
	total.Stop = st.Stop
}

// Snapshot captures the machine state.
func (m *Machine) Snapshot() *snapshot.Machine {
	lt := m.CPU.Lifetime()
	sm := &snapshot.Machine{
		Version: snapshot.Version,
		CPU: snapshot.CPU{
			PC:           m.CPU.PC,
			SP:           m.CPU.SP,
			P:            uint8(m.CPU.P),
			A:            m.CPU.A,
			X:            m.CPU.X,
			Y:            m.CPU.Y,
			Cycles:       lt.Cycles,
			Instructions: lt.Instructions,
			Unknown:      lt.Unknown,
			Interrupts:   lt.Interrupts,
		},
		Config: m.Mem.Config(),
	}
	for _, buf := range m.Mem.RAM() {
		sm.RAM = append(sm.RAM, append([]byte(nil), buf...))
	}
	for _, seg := range m.segments {
		sm.Banks = append(sm.Banks, seg.Bank())
	}
	return sm
}

// Restore brings the machine back to the state of a snapshot taken from a
// machine with the same memory layout.
func (m *Machine) Restore(sm *snapshot.Machine) error {
	if sm.Version != snapshot.Version {
		return fmt.Errorf("%w: %d", snapshot.ErrVersion, sm.Version)
	}

	ram := m.Mem.RAM()
	if len(ram) != len(sm.RAM) || len(m.segments) != len(sm.Banks) {
		return ErrSnapshotMismatch
	}
	for i := range ram {
		if len(ram[i]) != len(sm.RAM[i]) {
			return fmt.Errorf("%w: ram buffer %d is %d bytes, snapshot has %d",
				ErrSnapshotMismatch, i, len(ram[i]), len(sm.RAM[i]))
		}
	}
	if err := m.Mem.SetConfig(sm.Config); err != nil {
		return err
	}
	for i, seg := range m.segments {
		if err := seg.SetBank(sm.Banks[i]); err != nil {
			return err
		}
	}
	for i := range ram {
		copy(ram[i], sm.RAM[i])
	}

	c := sm.CPU
	m.CPU.State = hw.State{PC: c.PC, SP: c.SP, P: hw.P(c.P), A: c.A, X: c.X, Y: c.Y}
	m.CPU.SetLifetime(hw.ExecState{
		Cycles:       c.Cycles,
		Instructions: c.Instructions,
		Unknown:      c.Unknown,
		Interrupts:   c.Interrupts,
	})
	if m.onRestore != nil {
		m.onRestore()
	}

	log.ModEmu.InfoZ("snapshot restored").Hex16("pc", c.PC).Int("config", sm.Config).End()
	return nil
}

// SaveSnapshot writes the machine state to w.
func (m *Machine) SaveSnapshot(w io.Writer) error {
	return snapshot.Write(w, m.Snapshot())
}

// LoadSnapshot restores the machine state from r.
func (m *Machine) LoadSnapshot(r io.Reader) error {
	sm, err := snapshot.Read(r)
	if err != nil {
		return err
	}
	return m.Restore(sm)
}
