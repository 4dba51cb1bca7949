package cpu

// Heap is a process's private linear memory, addressed by word index.
// Its length is fixed when the process is created.
type Heap []uint32

// NewHeap allocates a zeroed heap of size words.
func NewHeap(size int) Heap {
	return make(Heap, size)
}

// Load returns the word at addr.
func (h Heap) Load(addr uint32) (value uint32, err error) {
	if uint64(addr) >= uint64(len(h)) {
		err = ErrHeapBounds
		return
	}

	value = h[addr]
	return
}

// Store writes value to the word at addr.
func (h Heap) Store(addr uint32, value uint32) (err error) {
	if uint64(addr) >= uint64(len(h)) {
		err = ErrHeapBounds
		return
	}

	h[addr] = value
	return
}

// Slice returns the words in the half-open range [lo, hi), clamped to the
// heap. An empty or inverted range yields no words.
func (h Heap) Slice(lo, hi uint32) []uint32 {
	size := uint32(len(h))
	hi = min(hi, size)
	if lo >= hi {
		return nil
	}

	return h[lo:hi:hi]
}
