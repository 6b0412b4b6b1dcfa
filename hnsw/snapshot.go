package hnsw

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// snapshotMagic marks the start of every snapshot stream (spec.md §4.10).
var snapshotMagic = [4]byte{'H', 'N', 'S', 'W'}

const snapshotVersion uint32 = 1

// SnapshotOptions configures Snapshot's output encoding.
type SnapshotOptions struct {
	// Compress wraps the payload (everything after the 4-byte magic and
	// the 1-byte compression flag, starting with the format version) in
	// snappy block compression.
	Compress bool
}

// Snapshot serializes the graph's topology — parameters, node adjacency,
// and entry point — to w. Items themselves are never written: Restore
// takes them back from the caller, since T may not be serializable and
// spec.md §4.10 treats the snapshot as a topology-only archive.
//
// Grounded on the wire-format shape of other_examples'
// patrikhermansson-hann hnsw-index.go Save/Load, reimplemented over
// encoding/binary instead of gob so the byte layout is an explicit
// contract rather than gob's self-describing stream (see DESIGN.md).
func (idx *Index[T, D]) Snapshot(w io.Writer, opts SnapshotOptions) error {
	idx.lockReader()
	defer idx.unlockReader()

	if idx.store.Len() == 0 {
		return fmt.Errorf("%w: cannot snapshot an empty graph", ErrInvalidOperation)
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, snapshotVersion); err != nil {
		return err
	}

	if err := writeParameters(&buf, idx.params); err != nil {
		return err
	}

	n := idx.store.Len()
	if err := binary.Write(&buf, binary.LittleEndian, uint32(n)); err != nil {
		return err
	}
	for id := uint32(0); id < uint32(n); id++ {
		node := idx.store.Node(id)
		if err := binary.Write(&buf, binary.LittleEndian, uint32(node.MaxLayer)); err != nil {
			return err
		}
		for l := 0; l <= node.MaxLayer; l++ {
			neighbors := node.Neighbors(l)
			if err := binary.Write(&buf, binary.LittleEndian, uint32(len(neighbors))); err != nil {
				return err
			}
			if err := binary.Write(&buf, binary.LittleEndian, neighbors); err != nil {
				return err
			}
		}
	}

	hasEntry := uint8(0)
	if idx.entrySet {
		hasEntry = 1
	}
	if err := binary.Write(&buf, binary.LittleEndian, hasEntry); err != nil {
		return err
	}
	if idx.entrySet {
		if err := binary.Write(&buf, binary.LittleEndian, idx.entryPoint); err != nil {
			return err
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint32(idx.entryMaxLayer)); err != nil {
			return err
		}
	}

	if _, err := w.Write(snapshotMagic[:]); err != nil {
		return err
	}

	payload := buf.Bytes()
	if opts.Compress {
		payload = snappy.Encode(nil, payload)
		if _, err := w.Write([]byte{1}); err != nil {
			return err
		}
	} else {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}
	_, err := w.Write(payload)
	return err
}

// Restore rebuilds an Index from a snapshot written by Snapshot, pairing
// its node adjacency with items (in original insertion order). Restore
// returns any items left over past what the snapshot's node count
// consumed, so a caller can detect a mismatched items slice.
func Restore[T any, D cmp.Ordered](r io.Reader, params Parameters[T, D], items []T) (*Index[T, D], []T, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if !bytes.Equal(header[:4], snapshotMagic[:]) {
		return nil, nil, ErrInvalidHeader
	}
	compressed := header[4] == 1

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if compressed {
		rest, err = snappy.Decode(nil, rest)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
	}

	buf := bytes.NewReader(rest)

	var version uint32
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if version != snapshotVersion {
		return nil, nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidHeader, version)
	}

	storedParams, err := readParameters[T, D](buf, params)
	if err != nil {
		return nil, nil, err
	}
	// The caller's Distance/Rand/Metrics always win: these fields cannot
	// round-trip through the wire format.
	storedParams.Distance = params.Distance
	storedParams.Rand = params.Rand
	storedParams.Metrics = params.Metrics

	// spec.md §4.10: a restored graph gets no construction distance cache
	// by default, regardless of what the snapshot's source index had
	// configured — a loaded graph of any size would otherwise allocate a
	// cache sized for n(n+1)/2 pairs before a single Add is ever called.
	// A caller that wants the cache back can still opt in afterward via
	// ResizeDistanceCache.
	storedParams.EnableConstructionCache = false
	storedParams.InitialDistanceCacheSize = 0

	var n uint32
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if int(n) > len(items) {
		return nil, nil, fmt.Errorf("%w: snapshot needs %d items, got %d", ErrInvalidOperation, n, len(items))
	}

	idx, err := NewIndex[T, D](storedParams)
	if err != nil {
		return nil, nil, err
	}

	for id := uint32(0); id < n; id++ {
		var maxLayer uint32
		if err := binary.Read(buf, binary.LittleEndian, &maxLayer); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		assigned := idx.store.Append(items[id], int(maxLayer), idx.params.mmaxAt)
		if assigned != id {
			return nil, nil, fmt.Errorf("%w: node id mismatch on restore", ErrInvalidOperation)
		}
		for l := 0; l <= int(maxLayer); l++ {
			var count uint32
			if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
			}
			neighbors := make([]uint32, count)
			if count > 0 {
				if err := binary.Read(buf, binary.LittleEndian, neighbors); err != nil {
					return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
				}
			}
			idx.store.SetNeighborsAt(id, l, neighbors)
		}
	}
	// No growTo call here: the construction cache is disabled on restore
	// (see above), so there is nothing to size.

	var hasEntry uint8
	if err := binary.Read(buf, binary.LittleEndian, &hasEntry); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if hasEntry == 1 {
		var entryPoint, entryMaxLayer uint32
		if err := binary.Read(buf, binary.LittleEndian, &entryPoint); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		if err := binary.Read(buf, binary.LittleEndian, &entryMaxLayer); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		idx.setEntryPoint(entryPoint, int(entryMaxLayer))
	}

	return idx, items[n:], nil
}

// writeParameters encodes the wire-safe subset of Parameters (everything
// but the Distance/Rand/Metrics func and pointer fields, which the caller
// must re-supply to Restore).
func writeParameters[T any, D cmp.Ordered](w io.Writer, p Parameters[T, D]) error {
	fields := []any{
		uint32(p.M),
		p.LevelLambda,
		uint32(p.NeighbourHeuristic),
		uint32(p.EfConstruction),
		uint32(p.EfSearch),
		boolToByte(p.ExpandBestSelection),
		boolToByte(p.KeepPrunedConnections),
		boolToByte(p.EnableConstructionCache),
		uint32(p.InitialDistanceCacheSize),
		uint32(p.MaxCacheEntries),
		uint32(p.InitialItemsSize),
		boolToByte(p.ThreadSafe),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func readParameters[T any, D cmp.Ordered](r io.Reader, fallback Parameters[T, D]) (Parameters[T, D], error) {
	var (
		m, efc, efs, initCache, maxCache, initItems uint32
		heuristic                                   uint32
		lambda                                      float64
		expand, keepPruned, enableCache, threadSafe uint8
	)
	readers := []any{
		&m, &lambda, &heuristic, &efc, &efs,
		&expand, &keepPruned, &enableCache,
		&initCache, &maxCache, &initItems, &threadSafe,
	}
	for _, f := range readers {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return fallback, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
	}

	p := Parameters[T, D]{
		M:                        int(m),
		LevelLambda:              lambda,
		NeighbourHeuristic:       SelectorStrategy(heuristic),
		EfConstruction:           int(efc),
		EfSearch:                 int(efs),
		ExpandBestSelection:      expand == 1,
		KeepPrunedConnections:    keepPruned == 1,
		EnableConstructionCache:  enableCache == 1,
		InitialDistanceCacheSize: int(initCache),
		MaxCacheEntries:          int(maxCache),
		InitialItemsSize:         int(initItems),
		ThreadSafe:               threadSafe == 1,
	}
	return p, nil
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
