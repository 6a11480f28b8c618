package hwio

// Sizes returns the number of buffers, registers, devices and segments
// stored by t.
func (t *Table) Sizes() (bufs, regs, devs, segs int) {
	return len(t.bufs), len(t.regs), len(t.devs), len(t.segs)
}
