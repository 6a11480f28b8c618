package rpc

import (
	"io"
	"net"
	"net/http"
	"net/rpc"
	"strconv"

	"sixfive/emu"
)

// Machine is the part of emu.Machine that can be controlled remotely. All
// methods must be safe for concurrent use.
type Machine interface {
	Reset()
	SetPause(pause bool)
	Stop()
	Status() emu.Status
}

type machineProxy struct {
	m Machine
}

func (mp *machineProxy) Reset(_, _ *struct{}) error             { mp.m.Reset(); return nil }
func (mp *machineProxy) SetPause(pause bool, _ *struct{}) error { mp.m.SetPause(pause); return nil }
func (mp *machineProxy) Stop(_ *struct{}, _ *struct{}) error    { mp.m.Stop(); return nil }

func (mp *machineProxy) Status(_ *struct{}, reply *emu.Status) error {
	*reply = mp.m.Status()
	return nil
}

func (mp *machineProxy) IsReady(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

type Server struct {
	io.Closer
}

// NewServer serves remote control of m on the given TCP port, until Close
// is called.
func NewServer(port int, m Machine) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("machine", &machineProxy{m: m}); err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	go http.Serve(l, srv)
	return &Server{Closer: l}, nil
}
