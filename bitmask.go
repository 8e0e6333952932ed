package nlcodec

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// maxBit is the highest group position a 32-bit mask can address.
const maxBit = 32

// BitFlag is a single multicast group position in [1, 32].
type BitFlag struct {
	pos uint32
}

// NewBitFlag validates pos and returns the flag for it.
// Position 0 does not address a bit and is rejected along with anything above 32.
func NewBitFlag(pos uint32) (BitFlag, error) {
	if pos == 0 || pos > maxBit {
		return BitFlag{}, fmt.Errorf("%w: %d is not in [1, %d]", ErrBitOutOfRange, pos, maxBit)
	}
	return BitFlag{pos: pos}, nil
}

// Position returns the 1-based bit position.
func (f BitFlag) Position() uint32 { return f.pos }

// Mask returns a mask with only this flag's bit set.
// The zero BitFlag maps to the empty mask.
func (f BitFlag) Mask() Bitmask {
	if f.pos == 0 {
		return 0
	}
	return Bitmask(setMask(f.pos))
}

// Or returns the union of f and m.
func (f BitFlag) Or(m Bitmask) Bitmask { return f.Mask() | m }

func (f BitFlag) String() string { return "bit " + strconv.FormatUint(uint64(f.pos), 10) }

// Bitmask is a set of group positions, bit n-1 standing for group n.
// The conversion Bitmask(v) from a raw uint32 is total.
type Bitmask uint32

// EmptyBitmask returns a mask with no group set.
func EmptyBitmask() Bitmask { return 0 }

// NewBitmask converts a raw kernel group mask.
func NewBitmask(v uint32) Bitmask { return Bitmask(v) }

func (m Bitmask) Uint32() uint32 { return uint32(m) }
func (m Bitmask) IsEmpty() bool  { return m == 0 }

// IsSet reports whether group bit is in m. Positions outside [1, 32] cannot be
// represented by the mask and report false.
func (m Bitmask) IsSet(bit uint32) bool {
	if bit == 0 || bit > maxBit {
		return false
	}
	set := setMask(bit)
	return uint32(m)&set == set
}

func (m Bitmask) Or(o Bitmask) Bitmask      { return m | o }
func (m Bitmask) OrFlag(f BitFlag) Bitmask  { return m | f.Mask() }
func (m Bitmask) Sub(o Bitmask) Bitmask     { return m &^ o }
func (m Bitmask) SubFlag(f BitFlag) Bitmask { return m &^ f.Mask() }

// Add sets f's bit in m.
func (m *Bitmask) Add(f BitFlag) { *m |= f.Mask() }

// Remove clears f's bit in m.
func (m *Bitmask) Remove(f BitFlag) { *m &^= f.Mask() }

// Groups returns the set positions in ascending order.
func (m Bitmask) Groups() []uint32 {
	groups := make([]uint32, 0, bits.OnesCount32(uint32(m)))
	for v := uint32(m); v != 0; v &= v - 1 {
		groups = append(groups, uint32(bits.TrailingZeros32(v))+1)
	}
	return groups
}

// Flags returns one BitFlag per set position.
func (m Bitmask) Flags() []BitFlag {
	groups := m.Groups()
	flags := make([]BitFlag, len(groups))
	for i, g := range groups {
		flags[i] = BitFlag{pos: g}
	}
	return flags
}

func (m Bitmask) String() string {
	groups := m.Groups()
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = strconv.FormatUint(uint64(g), 10)
	}
	return fmt.Sprintf("0x%08x{%s}", uint32(m), strings.Join(parts, ","))
}

// setMask maps a group position to the bit that selects it.
func setMask(pos uint32) uint32 { return 1 << (pos - 1) }
