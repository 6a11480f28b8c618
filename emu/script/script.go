// Package script implements execution stop conditions written in Lua.
//
// A script defines a global function stop(cpu), called after each executed
// instruction with a table holding the registers and execution counters.
// Execution stops when it returns true. Scripts can read memory with
// peek(addr) and log messages with log(msg).
package script

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"sixfive/emu/log"
	"sixfive/hw"
)

var ErrNoStopFunc = errors.New("script does not define a stop function")

// Evaluator is an hw.Evaluator running a Lua script. It's not safe for
// concurrent use, each machine needs its own.
type Evaluator struct {
	name string
	L    *lua.LState
	stop *lua.LFunction
	regs *lua.LTable

	cpu *hw.CPU
}

// Open loads the script file at path.
func Open(path string) (*Evaluator, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(path, string(src))
}

// New compiles and runs the script src, which must define stop.
func New(name, src string) (*Evaluator, error) {
	ev := &Evaluator{
		name: name,
		L:    lua.NewState(),
	}
	ev.regs = ev.L.NewTable()
	ev.L.SetGlobal("peek", ev.L.NewFunction(ev.peek))
	ev.L.SetGlobal("log", ev.L.NewFunction(ev.log))

	if err := ev.L.DoString(src); err != nil {
		ev.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	fn, ok := ev.L.GetGlobal("stop").(*lua.LFunction)
	if !ok {
		ev.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoStopFunc)
	}
	ev.stop = fn

	log.ModScript.InfoZ("script loaded").String("name", name).End()
	return ev, nil
}

func (ev *Evaluator) Close() { ev.L.Close() }

// ShouldStop implements hw.Evaluator.
func (ev *Evaluator) ShouldStop(cpu *hw.CPU, st hw.ExecState) (bool, error) {
	ev.cpu = cpu
	defer func() { ev.cpu = nil }()

	regs := ev.regs
	regs.RawSetString("pc", lua.LNumber(cpu.PC))
	regs.RawSetString("a", lua.LNumber(cpu.A))
	regs.RawSetString("x", lua.LNumber(cpu.X))
	regs.RawSetString("y", lua.LNumber(cpu.Y))
	regs.RawSetString("sp", lua.LNumber(cpu.SP))
	regs.RawSetString("p", lua.LNumber(cpu.P))
	regs.RawSetString("cycles", lua.LNumber(st.Cycles))
	regs.RawSetString("instructions", lua.LNumber(st.Instructions))
	regs.RawSetString("opcode", lua.LNumber(st.LastOpcode))

	err := ev.L.CallByParam(lua.P{
		Fn:      ev.stop,
		NRet:    1,
		Protect: true,
	}, regs)
	if err != nil {
		log.ModScript.ErrorZ("stop function failed").
			String("name", ev.name).
			Error("err", err).
			End()
		return false, fmt.Errorf("%s: %w", ev.name, err)
	}

	ret := ev.L.Get(-1)
	ev.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

func (ev *Evaluator) peek(L *lua.LState) int {
	addr := L.CheckInt(1)
	if addr < 0 || addr > 0xFFFF {
		L.ArgError(1, "address out of range")
		return 0
	}
	var val uint8
	if ev.cpu != nil {
		val = ev.cpu.Bus.Peek8(uint16(addr))
	}
	L.Push(lua.LNumber(val))
	return 1
}

func (ev *Evaluator) log(L *lua.LState) int {
	msg := L.CheckString(1)
	z := log.ModScript.InfoZ(msg).String("name", ev.name)
	if ev.cpu != nil {
		z.Hex16("pc", ev.cpu.PC)
	}
	z.End()
	return 0
}
