// Package sparse implements the sparse-set index and the typed byte store
// backing component pools.
package sparse

// Set is a sparse/dense index pair over int32 keys. sparse[k] holds the
// dense index plus one, so zero means absent and the sparse array never
// needs initialisation beyond zeroing. The dense array stays contiguous
// under removal via swap-with-last.
type Set struct {
	sparse []int32
	dense  []int32
}

// Len returns the number of keys present.
func (s *Set) Len() int {
	return len(s.dense)
}

// Dense returns the packed key array. Valid until the next mutation.
func (s *Set) Dense() []int32 {
	return s.dense
}

// Has reports whether k is present. Keys beyond the sparse array are absent.
func (s *Set) Has(k int32) bool {
	return int(k) < len(s.sparse) && s.sparse[k] != 0
}

// IndexOf returns the dense index of k. k must be present.
func (s *Set) IndexOf(k int32) int {
	return int(s.sparse[k]) - 1
}

// Insert adds k and returns true, or returns false if already present.
func (s *Set) Insert(k int32) bool {
	s.reserveSparse(int(k) + 1)
	if s.sparse[k] != 0 {
		return false
	}
	s.dense = append(s.dense, k)
	s.sparse[k] = int32(len(s.dense))
	return true
}

// Remove deletes k and returns true, or returns false if absent. The last
// dense entry is swapped into the hole.
func (s *Set) Remove(k int32) bool {
	if !s.Has(k) {
		return false
	}
	idx := int(s.sparse[k]) - 1
	last := len(s.dense) - 1
	lastKey := s.dense[last]

	s.dense[idx] = lastKey
	s.dense = s.dense[:last]

	s.sparse[k] = 0
	if idx != last {
		s.sparse[lastKey] = int32(idx) + 1
	}
	return true
}

func (s *Set) reserveSparse(need int) {
	if need <= len(s.sparse) {
		return
	}
	capacity := len(s.sparse)
	if capacity == 0 {
		capacity = 1
	}
	for capacity < need {
		capacity <<= 1
	}
	grown := make([]int32, capacity)
	copy(grown, s.sparse)
	s.sparse = grown
}
