package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"golang.org/x/term"

	"sixfive/emu"
	"sixfive/emu/log"
)

func main() {
	log.SetColors(term.IsTerminal(int(os.Stderr.Fd())))

	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		fmt.Println("sixfive", version())
	case opcodesMode:
		opcodesMain()
	case disasmMode:
		checkf(disasmMain(cli.Disasm), "disassembly failed")
	case runMode:
		cfg, err := emu.LoadConfigOrDefault(cli.Config)
		checkf(err, "failed to load configuration")
		checkf(runMain(cli.Run, cfg), "execution failed")
	}
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}
