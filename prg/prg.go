// Package prg loads and saves binary program images, raw or prefixed with
// their 2-byte little endian load address.
package prg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"sixfive/emu/log"
)

var (
	ErrEmpty       = errors.New("empty image")
	ErrShortHeader = errors.New("image too short for a load address")
	ErrTooLarge    = errors.New("image does not fit in the address space")
	ErrRange       = errors.New("invalid address range")
)

// Memory is the bus images are loaded into and saved from.
type Memory interface {
	Write8(addr uint16, val uint8)
	Peek8(addr uint16) uint8
}

type Options struct {
	// Raw images have no header, they're loaded at Addr.
	Raw  bool
	Addr uint16

	// Override, if set, loads a headered image at Addr, ignoring its header.
	Override bool
}

// Image describes a loaded image.
type Image struct {
	Addr uint16 // load address
	Size int
}

// End returns the address of the last byte of the image.
func (img Image) End() uint16 { return img.Addr + uint16(img.Size-1) }

func (img Image) String() string {
	return fmt.Sprintf("$%04X-$%04X (%d bytes)", img.Addr, img.End(), img.Size)
}

// Load reads an image from r and writes it into mem.
func Load(r io.Reader, mem Memory, opts Options) (Image, error) {
	buf, err := io.ReadAll(io.LimitReader(r, 0x10000+3))
	if err != nil {
		return Image{}, err
	}

	img := Image{Addr: opts.Addr}
	if !opts.Raw {
		if len(buf) < 2 {
			return Image{}, ErrShortHeader
		}
		if !opts.Override {
			img.Addr = uint16(buf[0]) | uint16(buf[1])<<8
		}
		buf = buf[2:]
	}
	if len(buf) == 0 {
		return Image{}, ErrEmpty
	}
	if int(img.Addr)+len(buf) > 0x10000 {
		return Image{}, fmt.Errorf("%w: %d bytes at $%04X", ErrTooLarge, len(buf), img.Addr)
	}

	img.Size = len(buf)
	for i, b := range buf {
		mem.Write8(img.Addr+uint16(i), b)
	}

	log.ModLoader.InfoZ("image loaded").
		Hex16("addr", img.Addr).
		Hex16("end", img.End()).
		Int("size", img.Size).
		End()
	return img, nil
}

// Open loads the image file at path into mem.
func Open(path string, mem Memory, opts Options) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, err
	}
	defer f.Close()

	img, err := Load(bufio.NewReader(f), mem, opts)
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Save writes the memory range [start, end] to w, preceded by start when
// header is set. Memory is peeked, so saving has no side effects on I/O.
func Save(w io.Writer, mem Memory, start, end uint16, header bool) error {
	if end < start {
		return fmt.Errorf("%w: $%04X-$%04X", ErrRange, start, end)
	}

	buf := make([]byte, 0, int(end-start)+3)
	if header {
		buf = append(buf, uint8(start), uint8(start>>8))
	}
	for addr := int(start); addr <= int(end); addr++ {
		buf = append(buf, mem.Peek8(uint16(addr)))
	}
	_, err := w.Write(buf)
	return err
}

// WriteFile saves the memory range [start, end] into the file at path.
func WriteFile(path string, mem Memory, start, end uint16, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, mem, start, end, header); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
