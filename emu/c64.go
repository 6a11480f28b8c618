package emu

import (
	"errors"
	"fmt"
	"os"

	"sixfive/emu/log"
	"sixfive/hw/hwio"
)

// C64 memory map.
const (
	c64BasicAddr   = 0xA000
	c64KernalAddr  = 0xE000
	c64IOAddr      = 0xD000
	c64CartAddr    = 0x8000
	c64CartBankReg = 0xDE00

	c64BasicSize   = 0x2000
	c64KernalSize  = 0x2000
	c64ChargenSize = 0x1000
	c64IOSize      = 0x1000
	c64CartSize    = 0x2000
)

// Processor port lines selecting the memory configuration.
const (
	portLORAM  = 1 << 0
	portHIRAM  = 1 << 1
	portCHAREN = 1 << 2

	portDDRReset  = 0x2F
	portDataReset = 0x37
)

var ErrROMSize = errors.New("invalid rom size")

// C64ROMs holds the ROM images of a C64. A nil image leaves RAM visible in
// its place. Cartridge holds the 8KB banks of a cartridge mapped at $8000.
type C64ROMs struct {
	Basic     []byte
	Kernal    []byte
	Chargen   []byte
	Cartridge [][]byte
}

func readC64ROMs(cfg C64Config) (C64ROMs, error) {
	var roms C64ROMs
	read := func(path string) ([]byte, error) {
		if path == "" {
			return nil, nil
		}
		return os.ReadFile(path)
	}

	var err error
	if roms.Basic, err = read(cfg.Basic); err != nil {
		return roms, err
	}
	if roms.Kernal, err = read(cfg.Kernal); err != nil {
		return roms, err
	}
	if roms.Chargen, err = read(cfg.Chargen); err != nil {
		return roms, err
	}
	cart, err := read(cfg.Cartridge)
	if err != nil {
		return roms, err
	}
	for len(cart) > 0 {
		n := min(len(cart), c64CartSize)
		bank := make([]byte, c64CartSize)
		copy(bank, cart[:n])
		roms.Cartridge = append(roms.Cartridge, bank)
		cart = cart[n:]
	}
	return roms, nil
}

func checkROMSize(name string, rom []byte, size int) error {
	if rom != nil && len(rom) != size {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrROMSize, name, len(rom), size)
	}
	return nil
}

// c64Visibility tells, for each of the 8 memory configurations selected by
// the LORAM, HIRAM and CHAREN lines, which areas overlay the RAM.
type c64Visibility struct {
	basic, kernal, chargen, io bool
}

func c64Config(cfg int) c64Visibility {
	loram := cfg&portLORAM != 0
	hiram := cfg&portHIRAM != 0
	charen := cfg&portCHAREN != 0
	return c64Visibility{
		basic:   loram && hiram,
		kernal:  hiram,
		chargen: (loram || hiram) && !charen,
		io:      (loram || hiram) && charen,
	}
}

// C64 is the memory layout of a Commodore 64 without cartridge banking
// lines: 64KB of RAM overlaid by the BASIC, KERNAL and character ROMs and by
// the I/O area, as selected by the 6510 processor port at $0000-$0001.
type C64 struct {
	*Machine

	RAM []byte

	// IO is the device mapped at $D000-$DFFF. Its default implementation is
	// plain memory, hosts replace the callbacks to emulate the I/O chips.
	IO *hwio.Device

	DDR  hwio.Reg8
	Port hwio.Reg8

	Cart *hwio.Segment
}

// NewC64 creates a C64 machine out of roms. The processor port is reset to
// its power-on value, which selects BASIC, KERNAL and I/O.
func NewC64(roms C64ROMs, cyclesPerFrame int64) (*C64, error) {
	if err := checkROMSize("basic", roms.Basic, c64BasicSize); err != nil {
		return nil, err
	}
	if err := checkROMSize("kernal", roms.Kernal, c64KernalSize); err != nil {
		return nil, err
	}
	if err := checkROMSize("chargen", roms.Chargen, c64ChargenSize); err != nil {
		return nil, err
	}

	mem, err := hwio.NewTable("c64", hwio.MaxSize, 8)
	if err != nil {
		return nil, err
	}

	c64 := &C64{
		RAM: make([]byte, hwio.MaxSize),
		IO:  hwio.NewRAMDevice("io", c64IOAddr, make([]byte, c64IOSize)),
	}
	if err := mem.MapRAMAll(0, c64.RAM); err != nil {
		return nil, err
	}

	if len(roms.Cartridge) != 0 {
		cart, err := hwio.NewSegment("cartridge", c64CartAddr, c64CartSize, true)
		if err != nil {
			return nil, err
		}
		for _, bank := range roms.Cartridge {
			if _, err := cart.AddBank(bank); err != nil {
				return nil, err
			}
		}
		c64.Cart = cart
	}

	for cfg := range 8 {
		vis := c64Config(cfg)
		if vis.basic && roms.Basic != nil {
			if err := mem.MapROM(cfg, c64BasicAddr, roms.Basic); err != nil {
				return nil, err
			}
		}
		if vis.kernal && roms.Kernal != nil {
			if err := mem.MapROM(cfg, c64KernalAddr, roms.Kernal); err != nil {
				return nil, err
			}
		}
		if vis.chargen && roms.Chargen != nil {
			if err := mem.MapROM(cfg, c64IOAddr, roms.Chargen); err != nil {
				return nil, err
			}
		}
		if vis.io {
			if err := mem.MapDevice(cfg, c64IOAddr, c64.IO); err != nil {
				return nil, err
			}
		}
		if c64.Cart != nil && vis.basic {
			if err := mem.MapSegment(cfg, c64.Cart); err != nil {
				return nil, err
			}
		}
	}

	c64.Machine = newMachine(mem, cyclesPerFrame)
	if c64.Cart != nil {
		c64.segments = append(c64.segments, c64.Cart)
		bankReg := &hwio.Reg8{
			Name:    "cartbank",
			WriteCb: func(_, val uint8) { c64.setCartBank(val) },
		}
		for cfg := range 8 {
			if !c64Config(cfg).io {
				continue
			}
			if err := mem.MapRegister(cfg, c64CartBankReg, bankReg, hwio.WriteOnly); err != nil {
				return nil, err
			}
		}
	}

	c64.DDR = hwio.Reg8{Name: "ddr", Value: portDDRReset, WriteCb: c64.writePort(0)}
	c64.Port = hwio.Reg8{Name: "port", Value: portDataReset, WriteCb: c64.writePort(1)}
	if err := mem.MapRegister(hwio.AllConfigs, 0x0000, &c64.DDR, hwio.ReadWrite); err != nil {
		return nil, err
	}
	if err := mem.MapRegister(hwio.AllConfigs, 0x0001, &c64.Port, hwio.ReadWrite); err != nil {
		return nil, err
	}
	c64.RAM[0], c64.RAM[1] = portDDRReset, portDataReset
	c64.onRestore = c64.restorePort
	if err := c64.updateConfig(); err != nil {
		return nil, err
	}
	return c64, nil
}

// writePort returns the write callback of the port register at addr. Writes
// also reach the RAM below the register.
func (c64 *C64) writePort(addr uint16) func(old, val uint8) {
	return func(old, val uint8) {
		c64.RAM[addr] = val
		if err := c64.updateConfig(); err != nil {
			log.ModMem.ErrorZ("invalid memory configuration").Error("err", err).End()
		}
	}
}

// PortConfig returns the memory configuration selected by the processor
// port. Lines configured as inputs are pulled up.
func (c64 *C64) PortConfig() int {
	return int((c64.Port.Value | ^c64.DDR.Value) & 7)
}

func (c64 *C64) updateConfig() error {
	cfg := c64.PortConfig()
	if cfg == c64.Mem.Config() {
		return nil
	}
	log.ModMem.DebugZ("memory configuration").
		Int("config", cfg).
		Hex8("ddr", c64.DDR.Value).
		Hex8("port", c64.Port.Value).
		End()
	return c64.Mem.SetConfig(cfg)
}

func (c64 *C64) restorePort() {
	c64.DDR.Value = c64.RAM[0]
	c64.Port.Value = c64.RAM[1]
	if err := c64.updateConfig(); err != nil {
		log.ModMem.ErrorZ("invalid memory configuration").Error("err", err).End()
	}
}

func (c64 *C64) setCartBank(val uint8) {
	bank := int(val) % c64.Cart.NumBanks()
	if err := c64.Cart.SetBank(bank); err != nil {
		log.ModMem.ErrorZ("cartridge bank switch").Error("err", err).End()
		return
	}
	log.ModMem.DebugZ("cartridge bank").Int("bank", bank).End()
}
