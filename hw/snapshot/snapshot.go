// Package snapshot defines the saved state of a machine and its JSON
// encoding.
package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-faster/jx"
)

// Version is the current snapshot format version.
const Version = 1

var ErrVersion = errors.New("unsupported snapshot version")

type Machine struct {
	Version int
	CPU     CPU

	// Config is the active memory configuration.
	Config int

	// RAM holds the content of all RAM buffers, in mapping order.
	RAM [][]byte

	// Banks holds the active bank of each bank-switched segment.
	Banks []int
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles       int64
	Instructions int64
	Unknown      int64
	Interrupts   int64
}

func (c *CPU) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(c.PC) })
		e.Field("sp", func(e *jx.Encoder) { e.UInt8(c.SP) })
		e.Field("p", func(e *jx.Encoder) { e.UInt8(c.P) })
		e.Field("a", func(e *jx.Encoder) { e.UInt8(c.A) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(c.X) })
		e.Field("y", func(e *jx.Encoder) { e.UInt8(c.Y) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(c.Cycles) })
		e.Field("instructions", func(e *jx.Encoder) { e.Int64(c.Instructions) })
		e.Field("unknown", func(e *jx.Encoder) { e.Int64(c.Unknown) })
		e.Field("interrupts", func(e *jx.Encoder) { e.Int64(c.Interrupts) })
	})
}

func (c *CPU) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			c.PC, err = d.UInt16()
		case "sp":
			c.SP, err = d.UInt8()
		case "p":
			c.P, err = d.UInt8()
		case "a":
			c.A, err = d.UInt8()
		case "x":
			c.X, err = d.UInt8()
		case "y":
			c.Y, err = d.UInt8()
		case "cycles":
			c.Cycles, err = d.Int64()
		case "instructions":
			c.Instructions, err = d.Int64()
		case "unknown":
			c.Unknown, err = d.Int64()
		case "interrupts":
			c.Interrupts, err = d.Int64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("cpu.%s: %w", key, err)
		}
		return nil
	})
}

func (m *Machine) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(m.Version) })
		e.Field("cpu", m.CPU.Encode)
		e.Field("config", func(e *jx.Encoder) { e.Int(m.Config) })
		e.Field("ram", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, buf := range m.RAM {
					e.Base64(buf)
				}
			})
		})
		e.Field("banks", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, b := range m.Banks {
					e.Int(b)
				}
			})
		})
	})
}

func (m *Machine) Decode(d *jx.Decoder) error {
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			m.Version, err = d.Int()
		case "cpu":
			err = m.CPU.Decode(d)
		case "config":
			m.Config, err = d.Int()
		case "ram":
			m.RAM = m.RAM[:0]
			err = d.Arr(func(d *jx.Decoder) error {
				buf, err := d.Base64()
				if err != nil {
					return err
				}
				m.RAM = append(m.RAM, buf)
				return nil
			})
		case "banks":
			m.Banks = m.Banks[:0]
			err = d.Arr(func(d *jx.Decoder) error {
				b, err := d.Int()
				if err != nil {
					return err
				}
				m.Banks = append(m.Banks, b)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if m.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, m.Version)
	}
	return nil
}

// Write encodes m to w.
func Write(w io.Writer, m *Machine) error {
	var e jx.Encoder
	m.Encode(&e)
	_, err := w.Write(e.Bytes())
	return err
}

// Read decodes a snapshot from r.
func Read(r io.Reader) (*Machine, error) {
	m := &Machine{}
	if err := m.Decode(jx.Decode(r, 4096)); err != nil {
		return nil, err
	}
	return m, nil
}
