package sparse

// Store is a component pool: a sparse set of entities plus a contiguous
// byte blob holding one fixed-size payload per dense slot. data[i] is the
// payload of Dense()[i].
type Store struct {
	set      Set
	data     []byte
	elemSize int
}

// NewStore creates a store for payloads of elemSize bytes. Zero-size
// payloads are allowed; such a store acts as a tag set.
func NewStore(elemSize int) *Store {
	return &Store{elemSize: elemSize}
}

// ElemSize returns the payload size in bytes.
func (st *Store) ElemSize() int {
	return st.elemSize
}

// Len returns the number of entities present.
func (st *Store) Len() int {
	return st.set.Len()
}

// Dense returns the packed entity array. Valid until the next mutation.
func (st *Store) Dense() []int32 {
	return st.set.Dense()
}

// Has reports whether e has a payload in this store.
func (st *Store) Has(e int32) bool {
	return st.set.Has(e)
}

// At returns the payload slice of the entity at dense index i.
func (st *Store) At(i int) []byte {
	off := i * st.elemSize
	return st.data[off : off+st.elemSize : off+st.elemSize]
}

// Add inserts e with a zeroed payload and returns the payload slice. If e
// is already present the existing payload is returned untouched.
func (st *Store) Add(e int32) []byte {
	if st.set.Has(e) {
		return st.At(st.set.IndexOf(e))
	}
	idx := st.set.Len()
	st.set.Insert(e)
	st.data = append(st.data, make([]byte, st.elemSize)...)
	return st.At(idx)
}

// Get returns the payload slice for e, or nil if absent.
func (st *Store) Get(e int32) []byte {
	if !st.set.Has(e) {
		return nil
	}
	return st.At(st.set.IndexOf(e))
}

// Remove deletes e, moving the last payload into the hole. Returns false
// if e was absent.
func (st *Store) Remove(e int32) bool {
	if !st.set.Has(e) {
		return false
	}
	idx := st.set.IndexOf(e)
	last := st.set.Len() - 1
	if idx != last && st.elemSize > 0 {
		copy(st.At(idx), st.At(last))
	}
	st.data = st.data[:last*st.elemSize]
	return st.set.Remove(e)
}
