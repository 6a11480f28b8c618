package hwio

// Device covers a range of addresses with callbacks receiving the absolute
// accessed address. It's the mapping used for I/O chips whose registers are
// mirrored or decoded by the host.
type Device struct {
	Name string
	Size int

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

// NewRAMDevice returns a device backed by a plain byte slice, read and
// written with the address relative to base. It's handy to stand in for an
// I/O area whose chips are not emulated.
func NewRAMDevice(name string, base uint16, buf []byte) *Device {
	return &Device{
		Name:    name,
		Size:    len(buf),
		ReadCb:  func(addr uint16) uint8 { return buf[addr-base] },
		PeekCb:  func(addr uint16) uint8 { return buf[addr-base] },
		WriteCb: func(addr uint16, val uint8) { buf[addr-base] = val },
	}
}
