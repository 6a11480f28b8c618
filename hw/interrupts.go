package hw

import (
	"maps"
	"slices"

	"sixfive/emu/log"
)

// Interrupts is the set of asserted interrupt sources. Peripherals assert and
// release named sources, the IRQ and NMI lines are asserted as long as at
// least one source of their kind is.
//
// Each NMI source is edge sensitive: asserting a source that is not asserted
// yet latches one NMI, serviced once however long the source stays asserted.
// Sources are independent, asserting a second source while the first one is
// held latches another NMI. A source must be cleared before it can fire
// again, asserting it twice in a row latches a single NMI.
type Interrupts struct {
	irq map[string]bool // source name -> auto-acknowledge
	nmi map[string]struct{}

	nmiPending int
}

// SetIRQ asserts the IRQ source name. Auto-acknowledged sources are released
// as soon as the CPU services the interrupt, others must be cleared by the
// peripheral.
func (it *Interrupts) SetIRQ(name string, autoAck bool) {
	if it.irq == nil {
		it.irq = make(map[string]bool)
	}
	it.irq[name] = autoAck
	log.ModIRQ.DebugZ("irq set").String("src", name).Bool("autoack", autoAck).End()
}

func (it *Interrupts) ClearIRQ(name string) {
	delete(it.irq, name)
}

// SetNMI asserts the NMI source name.
func (it *Interrupts) SetNMI(name string) {
	if it.nmi == nil {
		it.nmi = make(map[string]struct{})
	}
	if _, ok := it.nmi[name]; ok {
		return
	}
	it.nmi[name] = struct{}{}
	it.nmiPending++
	log.ModIRQ.DebugZ("nmi set").String("src", name).End()
}

func (it *Interrupts) ClearNMI(name string) {
	delete(it.nmi, name)
}

// IRQ reports whether the IRQ line is asserted.
func (it *Interrupts) IRQ() bool { return len(it.irq) != 0 }

// NMI reports whether the NMI line is asserted.
func (it *Interrupts) NMI() bool { return len(it.nmi) != 0 }

// Sources returns the names of the asserted sources, sorted.
func (it *Interrupts) Sources() (irqs, nmis []string) {
	return slices.Sorted(maps.Keys(it.irq)), slices.Sorted(maps.Keys(it.nmi))
}

// takeNMI reports whether an NMI edge is pending, and consumes it.
func (it *Interrupts) takeNMI() bool {
	if it.nmiPending > 0 {
		it.nmiPending--
		return true
	}
	return false
}

// ack releases the auto-acknowledged IRQ sources.
func (it *Interrupts) ack() {
	maps.DeleteFunc(it.irq, func(_ string, autoAck bool) bool { return autoAck })
}

// Reset releases all sources.
func (it *Interrupts) Reset() {
	clear(it.irq)
	clear(it.nmi)
	it.nmiPending = 0
}
