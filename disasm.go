package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"sixfive/hw"
	"sixfive/hw/hwio"
	"sixfive/prg"
)

// disasmMain disassembles an image loaded in a 64KB RAM.
func disasmMain(args Disasm) error {
	mem, err := hwio.NewTable("disasm", hwio.MaxSize, 1)
	if err != nil {
		return err
	}
	if err := mem.MapRAMAll(0, make([]byte, hwio.MaxSize)); err != nil {
		return err
	}

	opts := prg.Options{Raw: args.Raw}
	if args.Addr != nil {
		opts.Addr = uint16(*args.Addr)
		opts.Override = !args.Raw
	}
	img, err := prg.Open(args.Image, mem, opts)
	if err != nil {
		return err
	}

	start := img.Addr
	if args.Start != nil {
		start = uint16(*args.Start)
	}

	w := bufio.NewWriter(os.Stdout)
	disasm(w, hw.DefaultTable(), mem, start, img.End(), args.Count)
	return w.Flush()
}

// disasm writes count instructions starting at pc, or all of the
// instructions up to end if count is 0.
func disasm(w io.Writer, table *hw.InstructionTable, mem hw.Memory, pc, end uint16, count int) {
	for n := 0; count == 0 || n < count; n++ {
		d := hw.Disasm(table, mem, pc)
		fmt.Fprintf(w, "%s\n", d.Bytes())

		next := int(pc) + len(d.Buf)
		if (count == 0 && next > int(end)) || next > 0xFFFF {
			return
		}
		pc = uint16(next)
	}
}

// opcodesMain lists the instruction table.
func opcodesMain() {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, in := range hw.DefaultTable().All() {
		fmt.Fprintf(w, "%02X  %s  %-4s %d  %d", in.Opcode, in.Mnemonic, in.Mode, in.Size(), in.Cycles)
		if in.Page != hw.NoPageCycle {
			fmt.Fprintf(w, "  %s", in.Page)
		}
		fmt.Fprintln(w)
	}
}
