package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"sixfive/emu/log"
)

// Memory layouts.
const (
	LayoutFlat = "flat"
	LayoutC64  = "c64"
)

// PALFrameCycles is the number of cycles of a PAL C64 video frame.
const PALFrameCycles = 312 * 63

type Config struct {
	Machine   MachineConfig   `toml:"machine"`
	Execution ExecutionConfig `toml:"execution"`
	Trace     TraceConfig     `toml:"trace"`
	Script    ScriptConfig    `toml:"script"`
}

type MachineConfig struct {
	Layout string `toml:"layout"`

	// Size of the RAM mapped at $0000 by the flat layout.
	MemSize int         `toml:"mem_size"`
	ROMs    []ROMConfig `toml:"rom"`

	C64 C64Config `toml:"c64"`

	// Entry is where execution starts: "reset" to follow the reset vector,
	// "load" for the load address of the image, or an hex address.
	Entry string `toml:"entry"`
}

// ROMConfig describes a ROM file mapped at Addr by the flat layout.
type ROMConfig struct {
	File string `toml:"file"`
	Addr uint16 `toml:"addr"`
}

type C64Config struct {
	Basic     string `toml:"basic"`
	Kernal    string `toml:"kernal"`
	Chargen   string `toml:"chargen"`
	Cartridge string `toml:"cartridge"`

	// FrameIRQ raises an IRQ at the end of each frame, standing in for the
	// CIA timer interrupt.
	FrameIRQ bool `toml:"frame_irq"`
}

type ExecutionConfig struct {
	CyclesPerFrame  int64    `toml:"cycles_per_frame"`
	Frames          int      `toml:"frames"`
	MaxInstructions int64    `toml:"max_instructions"`
	UnknownFatal    bool     `toml:"unknown_fatal"`
	StopPC          *uint16  `toml:"stop_pc"`
	Breakpoints     []uint16 `toml:"breakpoints"`
	StopOpcodes     []uint8  `toml:"stop_opcodes"`
}

type TraceConfig struct {
	File string `toml:"file"`
}

type ScriptConfig struct {
	File string `toml:"file"`
}

// DefaultConfig returns the configuration of a flat 64KB RAM machine
// starting execution at the load address of its image.
func DefaultConfig() Config {
	return Config{
		Machine: MachineConfig{
			Layout:  LayoutFlat,
			MemSize: 0x10000,
			Entry:   "load",
		},
		Execution: ExecutionConfig{
			CyclesPerFrame: PALFrameCycles,
		},
	}
}

// EntryPoint parses the Entry field. The returned mode is either "reset",
// "load" or "addr", in which case addr holds the parsed address.
func (mc *MachineConfig) EntryPoint() (mode string, addr uint16, err error) {
	switch e := strings.ToLower(mc.Entry); e {
	case "", "load":
		return "load", 0, nil
	case "reset":
		return "reset", 0, nil
	default:
		e = strings.TrimPrefix(strings.TrimPrefix(e, "$"), "0x")
		v, err := strconv.ParseUint(e, 16, 16)
		if err != nil {
			return "", 0, fmt.Errorf("invalid entry point %q: %w", mc.Entry, err)
		}
		return "addr", uint16(v), nil
	}
}

// Check validates the configuration.
func (cfg *Config) Check() error {
	switch cfg.Machine.Layout {
	case LayoutFlat:
		if cfg.Machine.MemSize <= 0 || cfg.Machine.MemSize > 0x10000 {
			return fmt.Errorf("invalid memory size %d", cfg.Machine.MemSize)
		}
	case LayoutC64:
	default:
		return fmt.Errorf("unknown memory layout %q", cfg.Machine.Layout)
	}
	if cfg.Execution.CyclesPerFrame <= 0 {
		return fmt.Errorf("invalid cycles per frame %d", cfg.Execution.CyclesPerFrame)
	}
	_, _, err := cfg.Machine.EntryPoint()
	return err
}

// LoadConfigOrDefault loads the configuration file at path on top of the
// default configuration. A missing file, or an empty path, gives the default
// configuration.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").String("key", key.String()).End()
	}
	if err := cfg.Check(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg into the file at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
