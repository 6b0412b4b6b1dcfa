package graph

import (
	"cmp"
	"sync"
)

// HeapPool recycles MinHeap/MaxHeap scratch buffers so SEARCH-LAYER's hot
// loop never allocates a fresh heap per call. One HeapPool instance is
// owned per (T, D) Index instantiation.
type HeapPool[D cmp.Ordered] struct {
	minPool sync.Pool
	maxPool sync.Pool
}

// NewHeapPool builds a pool whose New functions pre-size heaps to
// capacity, matching Design Notes §9's guidance to pre-size to
// efConstruction+1 / M+1 so the hot loop never reallocates.
func NewHeapPool[D cmp.Ordered](capacity int) *HeapPool[D] {
	return &HeapPool[D]{
		minPool: sync.Pool{New: func() any { return NewMinHeap[D](capacity) }},
		maxPool: sync.Pool{New: func() any { return NewMaxHeap[D](capacity) }},
	}
}

func (p *HeapPool[D]) GetMin() *MinHeap[D] {
	h := p.minPool.Get().(*MinHeap[D])
	h.Reset()
	return h
}

func (p *HeapPool[D]) PutMin(h *MinHeap[D]) { p.minPool.Put(h) }

func (p *HeapPool[D]) GetMax() *MaxHeap[D] {
	h := p.maxPool.Get().(*MaxHeap[D])
	h.Reset()
	return h
}

func (p *HeapPool[D]) PutMax(h *MaxHeap[D]) { p.maxPool.Put(h) }
