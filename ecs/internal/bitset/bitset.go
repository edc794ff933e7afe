// Package bitset implements the fixed-width bit vector used for component
// and system index sets.
package bitset

import "math/bits"

// Width is the number of bits in a Mask. It bounds both the component ID
// space and the system index space.
const Width = 256

const words = Width / 64

// Mask is a fixed-width set of small integers. The zero value is empty.
type Mask [words]uint64

// Set enables bit. Bits outside [0, Width) panic.
func (m *Mask) Set(bit int) {
	m[bit>>6] |= 1 << (bit & 63)
}

// Clear disables bit.
func (m *Mask) Clear(bit int) {
	m[bit>>6] &^= 1 << (bit & 63)
}

// Test reports whether bit is set.
func (m *Mask) Test(bit int) bool {
	return m[bit>>6]&(1<<(bit&63)) != 0
}

// Any reports whether any bit is set.
func (m *Mask) Any() bool {
	return m[0]|m[1]|m[2]|m[3] != 0
}

// None reports whether no bit is set.
func (m *Mask) None() bool {
	return !m.Any()
}

// Zero clears all bits.
func (m *Mask) Zero() {
	*m = Mask{}
}

// Or returns the union of m and o.
func (m Mask) Or(o Mask) Mask {
	return Mask{m[0] | o[0], m[1] | o[1], m[2] | o[2], m[3] | o[3]}
}

// And returns the intersection of m and o.
func (m Mask) And(o Mask) Mask {
	return Mask{m[0] & o[0], m[1] & o[1], m[2] & o[2], m[3] & o[3]}
}

// AndNot returns the bits of m that are not in o.
func (m Mask) AndNot(o Mask) Mask {
	return Mask{m[0] &^ o[0], m[1] &^ o[1], m[2] &^ o[2], m[3] &^ o[3]}
}

// OrInto adds all bits of o into m.
func (m *Mask) OrInto(o Mask) {
	m[0] |= o[0]
	m[1] |= o[1]
	m[2] |= o[2]
	m[3] |= o[3]
}

// Intersects reports whether m and o share any bit.
func (m Mask) Intersects(o Mask) bool {
	return m[0]&o[0]|m[1]&o[1]|m[2]&o[2]|m[3]&o[3] != 0
}

// Contains reports whether every bit of sub is set in m.
func (m Mask) Contains(sub Mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// Count returns the number of set bits.
func (m Mask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// ForEach calls fn for every set bit in strictly ascending order.
func (m Mask) ForEach(fn func(bit int)) {
	for w := 0; w < words; w++ {
		word := m[w]
		for word != 0 {
			fn(w<<6 + bits.TrailingZeros64(word))
			word &= word - 1
		}
	}
}
