package graph

import "sync"

// Bitset is a growable bit-vector used as SEARCH-LAYER's visited set.
// Spec.md §4.2 calls for a bit-vector specifically (the teacher instead
// used a map[int]struct{}, which this module replaces).
type Bitset struct {
	words []uint64
}

// NewBitset allocates a Bitset sized for at least n ids.
func NewBitset(n int) *Bitset {
	b := &Bitset{}
	b.Grow(n)
	return b
}

// Grow ensures the bitset can address ids up to n-1, zero-filling any new
// words. It never shrinks.
func (b *Bitset) Grow(n int) {
	need := (n + 63) / 64
	if need <= len(b.words) {
		return
	}
	grown := make([]uint64, need)
	copy(grown, b.words)
	b.words = grown
}

// Contains reports whether id has been marked.
func (b *Bitset) Contains(id uint32) bool {
	w := id / 64
	if int(w) >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<(id%64)) != 0
}

// Set marks id as visited, growing the bitset if necessary.
func (b *Bitset) Set(id uint32) {
	b.Grow(int(id) + 1)
	b.words[id/64] |= 1 << (id % 64)
}

// Reset clears every bit while retaining the underlying capacity.
func (b *Bitset) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// BitsetPool recycles Bitset scratch buffers across SEARCH-LAYER calls.
type BitsetPool struct {
	pool sync.Pool
}

// NewBitsetPool builds a pool whose bitsets start sized for n ids.
func NewBitsetPool(n int) *BitsetPool {
	return &BitsetPool{pool: sync.Pool{New: func() any { return NewBitset(n) }}}
}

// Get returns a cleared Bitset grown to at least n ids.
func (p *BitsetPool) Get(n int) *Bitset {
	b := p.pool.Get().(*Bitset)
	b.Reset()
	b.Grow(n)
	return b
}

func (p *BitsetPool) Put(b *Bitset) { p.pool.Put(b) }
