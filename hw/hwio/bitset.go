package hwio

import "math/bits"

const (
	wordSize = 64
	numWords = MaxSize / wordSize
)

// Bitset holds one bit per address of the 64K address space. It's used for
// PC breakpoints and stop sets. The zero value is an empty set.
type Bitset struct {
	words [numWords]uint64
}

// NewBitset returns a set containing addrs.
func NewBitset(addrs ...uint16) *Bitset {
	b := new(Bitset)
	for _, a := range addrs {
		b.Set(a)
	}
	return b
}

func (b *Bitset) Set(addr uint16) {
	b.words[addr/wordSize] |= 1 << (addr % wordSize)
}

func (b *Bitset) Clear(addr uint16) {
	b.words[addr/wordSize] &^= 1 << (addr % wordSize)
}

func (b *Bitset) Test(addr uint16) bool {
	return b.words[addr/wordSize]&(1<<(addr%wordSize)) != 0
}

// SetRange sets all addresses in [begin, end].
func (b *Bitset) SetRange(begin, end uint16) {
	for a := int(begin); a <= int(end); a++ {
		b.Set(uint16(a))
	}
}

// Len returns the number of addresses in the set.
func (b *Bitset) Len() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Addrs returns the addresses in the set, in increasing order.
func (b *Bitset) Addrs() []uint16 {
	var addrs []uint16
	for i, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			addrs = append(addrs, uint16(i*wordSize+tz))
			w &^= 1 << tz
		}
	}
	return addrs
}

func (b *Bitset) Reset() {
	clear(b.words[:])
}
