package hwio

import "fmt"

// Segment is a bank-switched window of the address space, such as a
// cartridge ROM area. All banks have the same size and exactly one of them
// is active at any time.
type Segment struct {
	Name     string
	Origin   uint16
	Size     int
	ReadOnly bool

	banks [][]byte
	cur   int
}

func NewSegment(name string, origin uint16, size int, readonly bool) (*Segment, error) {
	if size <= 0 || int(origin)+size > MaxSize {
		return nil, fmt.Errorf("%w: segment %q at $%04X+%d", ErrOutOfRange, name, origin, size)
	}
	return &Segment{Name: name, Origin: origin, Size: size, ReadOnly: readonly}, nil
}

// AddBank appends a bank and returns its index. The bank data is used
// in place, not copied.
func (s *Segment) AddBank(data []byte) (int, error) {
	if len(data) != s.Size {
		return 0, fmt.Errorf("%w: segment %q wants %d bytes, got %d", ErrBankSize, s.Name, s.Size, len(data))
	}
	s.banks = append(s.banks, data)
	return len(s.banks) - 1, nil
}

// SetBank selects the active bank.
func (s *Segment) SetBank(i int) error {
	if i < 0 || i >= len(s.banks) {
		return fmt.Errorf("%w: segment %q bank %d (has %d)", ErrBankIndex, s.Name, i, len(s.banks))
	}
	s.cur = i
	return nil
}

func (s *Segment) Bank() int     { return s.cur }
func (s *Segment) NumBanks() int { return len(s.banks) }

// Data returns the active bank.
func (s *Segment) Data() []byte { return s.banks[s.cur] }

func (s *Segment) clone() *Segment {
	ns := *s
	ns.banks = make([][]byte, len(s.banks))
	for i, b := range s.banks {
		ns.banks[i] = append([]byte(nil), b...)
	}
	return &ns
}
