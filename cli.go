package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"sixfive/emu/log"
)

type mode byte

const (
	runMode     mode = iota // Run images
	disasmMode              // Disassemble an image
	opcodesMode             // List the instruction table
	versionMode             // Show sixfive version
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run images, each in its own machine."`
		Disasm  Disasm  `cmd:"" help:"Disassemble an image."`
		Opcodes Opcodes `cmd:"" help:"List the instruction table."`
		Version Version `cmd:"" help:"Show sixfive version."`

		Config string     `name:"config" short:"c" help:"${config_help}" type:"path" placeholder:"FILE"`
		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		Images []string `arg:"" name:"/path/to/image" help:"${image_help}" type:"existingfile"`

		Raw       bool      `name:"raw" help:"Images have no load address header."`
		Addr      *hexAddr  `name:"addr" help:"Load address, overrides the image header." placeholder:"ADDR"`
		Entry     string    `name:"entry" help:"${entry_help}" placeholder:"reset|load|ADDR"`
		Frames    int       `name:"frames" help:"Number of frames to run, 0 for no limit." default:"-1"`
		Trace     *outfile  `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Script    string    `name:"script" help:"Lua script defining a stop(cpu) function." type:"existingfile"`
		Break     []string  `name:"break" help:"Stop when PC reaches these addresses." placeholder:"ADDR,..."`
		CallStack bool      `name:"callstack" help:"Print the call stack when execution stops."`
		SaveState string    `name:"save-state" help:"Write a snapshot of the machine when execution stops." type:"path"`
		LoadState string    `name:"load-state" help:"Restore a machine snapshot before running." type:"existingfile"`
		Port      int       `name:"port" help:"Serve remote control of the machine on this TCP port." placeholder:"PORT"`
	}

	Disasm struct {
		Image string   `arg:"" name:"/path/to/image" type:"existingfile"`
		Raw   bool     `name:"raw" help:"The image has no load address header."`
		Addr  *hexAddr `name:"addr" help:"Load address, overrides the image header." placeholder:"ADDR"`
		Start *hexAddr `name:"start" help:"Address to disassemble from, defaults to the load address." placeholder:"ADDR"`
		Count int      `name:"count" short:"n" help:"Number of instructions, 0 for the whole image." default:"0"`
	}

	Opcodes struct{}
	Version struct{}
)

var vars = kong.Vars{
	"config_help": "TOML configuration file.",
	"log_help":    "Enable logging for specified modules.",
	"image_help":  "Program images, prefixed with their load address unless --raw is given.",
	"entry_help":  "Where execution starts, overrides the configuration.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("sixfive"),
		kong.Description("6502 emulator with banked memory."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch ctx.Command() {
	case "disasm </path/to/image>":
		cfg.mode = disasmMode
	case "opcodes":
		cfg.mode = opcodesMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	return f.open(tok.Value.(string))
}

func (f *outfile) open(name string) error {
	f.name = name
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

// hexAddr is a 16-bit address given in hexadecimal, with an optional $ or 0x
// prefix.
type hexAddr uint16

// Decode implements kong.MapperValue interface.
func (a *hexAddr) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s, ok := tok.Value.(string)
	if !ok {
		return fmt.Errorf("expected an address, got %v", tok.Value)
	}
	v, err := parseHexAddr(s)
	if err != nil {
		return err
	}
	*a = hexAddr(v)
	return nil
}

func parseHexAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
