// Package hwio implements the banked address space of the emulated machine.
//
// A Table maps every address of each of its configurations to a read binding
// and a write binding. A binding refers to memory owned by the table (RAM and
// ROM buffers, bank-switched segments) or to a peripheral (single registers,
// address range devices). Only one configuration is active at a time and
// switching configuration is a single index change.
package hwio

import (
	"fmt"
	"slices"

	"sixfive/emu/log"
)

// AllConfigs can be passed to mapping functions to install a mapping in every
// configuration of a Table.
const AllConfigs = -1

// MaxSize is the size of the 6502 address space.
const MaxSize = 0x10000

type bindKind uint8

const (
	unmapped bindKind = iota
	bindRAM
	bindROM
	bindReg
	bindDev
	bindSeg
)

func (k bindKind) String() string {
	switch k {
	case unmapped:
		return "unmapped"
	case bindRAM:
		return "ram"
	case bindROM:
		return "rom"
	case bindReg:
		return "reg"
	case bindDev:
		return "dev"
	case bindSeg:
		return "seg"
	}
	return "?"
}

// binding resolves one address. idx refers to the table slice matching kind
// (bufs, regs, devs or segs) and off is the byte offset inside the buffer or
// segment bank.
type binding struct {
	kind bindKind
	idx  uint16
	off  uint32
}

type config struct {
	rd []binding
	wr []binding
}

func newConfig(size int) *config {
	return &config{
		rd: make([]binding, size),
		wr: make([]binding, size),
	}
}

func (c *config) clone() *config {
	return &config{
		rd: append([]binding(nil), c.rd...),
		wr: append([]binding(nil), c.wr...),
	}
}

type Table struct {
	Name string

	cur     *config
	curIdx  int
	configs []*config

	bufs [][]byte
	regs []*Reg8
	devs []*Device
	segs []*Segment
}

// NewTable creates a Table of size bytes (at most 64KB) with nconfigs
// configurations. Configuration 0 is active.
func NewTable(name string, size, nconfigs int) (*Table, error) {
	if size <= 0 || size > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, size)
	}
	if nconfigs <= 0 {
		return nil, fmt.Errorf("%w: %d configurations", ErrInvalidConfig, nconfigs)
	}

	t := &Table{Name: name}
	for range nconfigs {
		t.configs = append(t.configs, newConfig(size))
	}
	t.cur = t.configs[0]
	return t, nil
}

// MustNewTable is like NewTable but panics on error.
func MustNewTable(name string, size, nconfigs int) *Table {
	t, err := NewTable(name, size, nconfigs)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Size() int       { return len(t.cur.rd) }
func (t *Table) NumConfigs() int { return len(t.configs) }
func (t *Table) Config() int     { return t.curIdx }

// SetConfig selects the active configuration.
func (t *Table) SetConfig(i int) error {
	if i < 0 || i >= len(t.configs) {
		return fmt.Errorf("%w: %d (table %q has %d)", ErrInvalidConfig, i, t.Name, len(t.configs))
	}
	t.cur = t.configs[i]
	t.curIdx = i
	return nil
}

// configsFor returns the configurations targeted by cfg, which is either a
// configuration index or AllConfigs.
func (t *Table) configsFor(cfg int) ([]*config, error) {
	if cfg == AllConfigs {
		return t.configs, nil
	}
	if cfg < 0 || cfg >= len(t.configs) {
		return nil, fmt.Errorf("%w: %d (table %q has %d)", ErrInvalidConfig, cfg, t.Name, len(t.configs))
	}
	return t.configs[cfg : cfg+1], nil
}

func (t *Table) checkRange(base uint16, length int) error {
	if length <= 0 || int(base)+length > t.Size() {
		return fmt.Errorf("%w: $%04X+%d exceeds %q size %d", ErrOutOfRange, base, length, t.Name, t.Size())
	}
	return nil
}

// bufIndex returns the index of buf in the table buffers, adding it if it's
// not there yet. Mirrors of the same slice share the same index.
func (t *Table) bufIndex(buf []byte) uint16 {
	for i, b := range t.bufs {
		if len(b) == len(buf) && &b[0] == &buf[0] {
			return uint16(i)
		}
	}
	t.bufs = append(t.bufs, buf)
	return uint16(len(t.bufs) - 1)
}

// indexOf returns the index of v in *s, appending it if it's not there yet,
// so that an item mapped several times is stored once.
func indexOf[T comparable](s *[]T, v T) uint16 {
	if i := slices.Index(*s, v); i >= 0 {
		return uint16(i)
	}
	*s = append(*s, v)
	return uint16(len(*s) - 1)
}

// MapRAM maps length bytes of buf, starting at offset, at base in the
// configuration cfg. Both reads and writes are bound to the buffer. Mapping
// the same buffer at several places creates mirrors.
func (t *Table) MapRAM(cfg int, base uint16, buf []byte, offset, length int) error {
	if offset < 0 || offset+length > len(buf) {
		return fmt.Errorf("%w: ram window [%d:%d] of %d bytes buffer", ErrOutOfRange, offset, offset+length, len(buf))
	}
	if err := t.checkRange(base, length); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}

	idx := t.bufIndex(buf)
	for _, c := range configs {
		for i := range length {
			b := binding{kind: bindRAM, idx: idx, off: uint32(offset + i)}
			c.rd[int(base)+i] = b
			c.wr[int(base)+i] = b
		}
	}

	log.ModHwIo.DebugZ("mapping ram").
		String("bus", t.Name).
		Int("config", cfg).
		Hex16("addr", base).
		Int("len", length).
		End()
	return nil
}

// MapRAMAll maps the whole of buf at base in every configuration.
func (t *Table) MapRAMAll(base uint16, buf []byte) error {
	return t.MapRAM(AllConfigs, base, buf, 0, len(buf))
}

// MapROM maps rom at base in the configuration cfg. Only reads are bound:
// whatever write binding was installed at these addresses is kept, so that
// writes to a ROM overlaying RAM land in the RAM below, and become visible
// once the ROM is unmapped or another configuration is selected. Writes to
// addresses where nothing but a ROM is mapped are dropped and logged.
func (t *Table) MapROM(cfg int, base uint16, rom []byte) error {
	if err := t.checkRange(base, len(rom)); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}

	idx := t.bufIndex(rom)
	for _, c := range configs {
		for i := range rom {
			c.rd[int(base)+i] = binding{kind: bindROM, idx: idx, off: uint32(i)}
		}
	}

	log.ModHwIo.DebugZ("mapping rom").
		String("bus", t.Name).
		Int("config", cfg).
		Hex16("addr", base).
		Int("len", len(rom)).
		End()
	return nil
}

// MapRegister maps a single register at addr. mode selects whether reads,
// writes or both are bound to the register.
func (t *Table) MapRegister(cfg int, addr uint16, reg *Reg8, mode RWFlags) error {
	if err := t.checkRange(addr, 1); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}

	b := binding{kind: bindReg, idx: indexOf(&t.regs, reg)}
	for _, c := range configs {
		if mode != WriteOnly {
			c.rd[addr] = b
		}
		if mode != ReadOnly {
			c.wr[addr] = b
		}
	}
	return nil
}

// MapDevice maps dev over dev.Size bytes starting at base. Reads are bound if
// the device has a read callback, writes if it has a write callback.
func (t *Table) MapDevice(cfg int, base uint16, dev *Device) error {
	if err := t.checkRange(base, dev.Size); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}

	idx := indexOf(&t.devs, dev)
	for _, c := range configs {
		for i := range dev.Size {
			b := binding{kind: bindDev, idx: idx, off: uint32(i)}
			if dev.ReadCb != nil {
				c.rd[int(base)+i] = b
			}
			if dev.WriteCb != nil {
				c.wr[int(base)+i] = b
			}
		}
	}
	return nil
}

// MapSegment maps a bank-switched segment at its origin. The active bank is
// resolved at each access, so Segment.SetBank never requires remapping.
// Writes are bound unless the segment is read-only.
func (t *Table) MapSegment(cfg int, seg *Segment) error {
	if seg.NumBanks() == 0 {
		return fmt.Errorf("%w: segment %q", ErrNoBank, seg.Name)
	}
	if err := t.checkRange(seg.Origin, seg.Size); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}

	idx := indexOf(&t.segs, seg)

	for _, c := range configs {
		for i := range seg.Size {
			b := binding{kind: bindSeg, idx: idx, off: uint32(i)}
			c.rd[int(seg.Origin)+i] = b
			if !seg.ReadOnly {
				c.wr[int(seg.Origin)+i] = b
			}
		}
	}
	return nil
}

// Unmap removes read and write bindings in [begin, end].
func (t *Table) Unmap(cfg int, begin, end uint16) error {
	if end < begin {
		return fmt.Errorf("%w: $%04X-$%04X", ErrOutOfRange, begin, end)
	}
	if err := t.checkRange(begin, int(end-begin)+1); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}
	for _, c := range configs {
		clear(c.rd[begin : int(end)+1])
		clear(c.wr[begin : int(end)+1])
	}
	return nil
}

// UnmapROM removes the ROM read bindings in [begin, end], turning reads back
// to the RAM underneath when the addresses are RAM-backed for writing.
func (t *Table) UnmapROM(cfg int, begin, end uint16) error {
	if end < begin {
		return fmt.Errorf("%w: $%04X-$%04X", ErrOutOfRange, begin, end)
	}
	if err := t.checkRange(begin, int(end-begin)+1); err != nil {
		return err
	}
	configs, err := t.configsFor(cfg)
	if err != nil {
		return err
	}
	for _, c := range configs {
		for a := int(begin); a <= int(end); a++ {
			if c.rd[a].kind != bindROM {
				continue
			}
			if c.wr[a].kind == bindRAM {
				c.rd[a] = c.wr[a]
			} else {
				c.rd[a] = binding{}
			}
		}
	}
	return nil
}

func (t *Table) accessError(op string, addr uint16) *AccessError {
	return &AccessError{Table: t.Name, Op: op, Addr: addr, Config: t.curIdx}
}

// Read8 reads the byte at addr through the active configuration. Reading an
// address with no binding is a setup defect, Read8 panics with an
// *AccessError.
func (t *Table) Read8(addr uint16) uint8 {
	if int(addr) >= len(t.cur.rd) {
		panic(t.accessError("read", addr))
	}

	b := t.cur.rd[addr]
	switch b.kind {
	case bindRAM, bindROM:
		return t.bufs[b.idx][b.off]
	case bindSeg:
		return t.segs[b.idx].Data()[b.off]
	case bindReg:
		return t.regs[b.idx].Read()
	case bindDev:
		return t.devs[b.idx].ReadCb(addr)
	}

	if t.cur.wr[addr].kind != unmapped {
		log.ModHwIo.ErrorZ("Read8 from write-only address").
			String("bus", t.Name).
			Hex16("addr", addr).
			End()
		return 0
	}
	panic(t.accessError("read", addr))
}

// Peek8 reads the byte at addr without side effects, for debuggers and
// tracers. Unmapped addresses read as 0.
func (t *Table) Peek8(addr uint16) uint8 {
	if int(addr) >= len(t.cur.rd) {
		return 0
	}

	b := t.cur.rd[addr]
	switch b.kind {
	case bindRAM, bindROM:
		return t.bufs[b.idx][b.off]
	case bindSeg:
		return t.segs[b.idx].Data()[b.off]
	case bindReg:
		return t.regs[b.idx].Peek()
	case bindDev:
		if pcb := t.devs[b.idx].PeekCb; pcb != nil {
			return pcb(addr)
		}
	}
	return 0
}

// Write8 writes val at addr through the active configuration. A write to an
// address having only a read binding (ROM, read-only register) is dropped and
// logged. Writing an address with no binding at all panics with an
// *AccessError.
func (t *Table) Write8(addr uint16, val uint8) {
	if int(addr) >= len(t.cur.wr) {
		panic(t.accessError("write", addr))
	}

	b := t.cur.wr[addr]
	switch b.kind {
	case bindRAM:
		t.bufs[b.idx][b.off] = val
		return
	case bindSeg:
		t.segs[b.idx].Data()[b.off] = val
		return
	case bindReg:
		t.regs[b.idx].Write(val)
		return
	case bindDev:
		t.devs[b.idx].WriteCb(addr, val)
		return
	}

	if rd := t.cur.rd[addr]; rd.kind != unmapped {
		log.ModHwIo.ErrorZ("Write8 to read-only address").
			String("bus", t.Name).
			Stringer("kind", rd.kind).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return
	}
	panic(t.accessError("write", addr))
}

// Read16 reads a little-endian word at addr. The high byte address wraps
// around the 16-bit address space.
func (t *Table) Read16(addr uint16) uint16 {
	lo := t.Read8(addr)
	hi := t.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes val as a little-endian word at addr.
func (t *Table) Write16(addr uint16, val uint16) {
	t.Write8(addr, uint8(val))
	t.Write8(addr+1, uint8(val>>8))
}

// WriteBlock writes data starting at addr, wrapping at the end of the
// address space.
func (t *Table) WriteBlock(addr uint16, data []byte) {
	for i, v := range data {
		t.Write8(addr+uint16(i), v)
	}
}

// ReadBlock reads n bytes starting at addr.
func (t *Table) ReadBlock(addr uint16, n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = t.Read8(addr + uint16(i))
	}
	return buf
}

// RAM returns the buffers bound as RAM in any configuration, in mapping
// order. Snapshots use it to save and restore the memory contents.
func (t *Table) RAM() [][]byte {
	isRAM := make([]bool, len(t.bufs))
	for _, c := range t.configs {
		for _, b := range c.wr {
			if b.kind == bindRAM {
				isRAM[b.idx] = true
			}
		}
	}

	var ram [][]byte
	for i, buf := range t.bufs {
		if isRAM[i] {
			ram = append(ram, buf)
		}
	}
	return ram
}

// Clone returns a copy of the table. A shallow clone shares the backing
// buffers and segments with t, so that writes through one table are visible
// through the other, while a deep clone duplicates them. Registers and
// devices belong to peripherals and are always shared. In both cases the
// mappings are independent: mapping a new buffer on one table has no effect
// on the other.
func (t *Table) Clone(deep bool) *Table {
	nt := &Table{
		Name:   t.Name,
		curIdx: t.curIdx,
		bufs:   slices.Clone(t.bufs),
		regs:   slices.Clone(t.regs),
		devs:   slices.Clone(t.devs),
		segs:   slices.Clone(t.segs),
	}
	for _, c := range t.configs {
		nt.configs = append(nt.configs, c.clone())
	}
	nt.cur = nt.configs[nt.curIdx]

	if deep {
		nt.bufs = make([][]byte, len(t.bufs))
		for i, b := range t.bufs {
			nt.bufs[i] = append([]byte(nil), b...)
		}
		nt.segs = make([]*Segment, len(t.segs))
		for i, s := range t.segs {
			nt.segs[i] = s.clone()
		}
	}
	return nt
}
