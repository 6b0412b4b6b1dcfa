package hnsw

import (
	"bytes"
	"testing"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	idx, items := buildTestIndex(t, 120, 21)

	var buf bytes.Buffer
	if err := idx.Snapshot(&buf, SnapshotOptions{}); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	p := testParameters()
	restored, leftover, err := Restore[[]float32, float32](&buf, p, items)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(leftover) != 0 {
		t.Errorf("leftover = %d items, want 0", len(leftover))
	}
	if restored.Len() != idx.Len() {
		t.Errorf("restored.Len() = %d, want %d", restored.Len(), idx.Len())
	}

	for id := uint32(0); id < uint32(idx.Len()); id++ {
		orig := idx.store.Node(id)
		got := restored.store.Node(id)
		if orig.MaxLayer != got.MaxLayer {
			t.Fatalf("node %d MaxLayer = %d, want %d", id, got.MaxLayer, orig.MaxLayer)
		}
		for l := 0; l <= orig.MaxLayer; l++ {
			a, b := orig.Neighbors(l), got.Neighbors(l)
			if len(a) != len(b) {
				t.Fatalf("node %d layer %d neighbor count = %d, want %d", id, l, len(b), len(a))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Errorf("node %d layer %d neighbor[%d] = %d, want %d", id, l, i, b[i], a[i])
				}
			}
		}
	}

	if restored.entryPoint != idx.entryPoint || restored.entryMaxLayer != idx.entryMaxLayer {
		t.Errorf("entry point = (%d, %d), want (%d, %d)", restored.entryPoint, restored.entryMaxLayer, idx.entryPoint, idx.entryMaxLayer)
	}

	results, err := restored.Search(items[0], 1, SearchOptions{})
	if err != nil {
		t.Fatalf("Search on restored index: %v", err)
	}
	if len(results) != 1 || results[0].ID != 0 {
		t.Errorf("restored index search for items[0] returned %v", results)
	}
}

func TestSnapshotRestoreRoundTripCompressed(t *testing.T) {
	idx, items := buildTestIndex(t, 80, 22)

	var buf bytes.Buffer
	if err := idx.Snapshot(&buf, SnapshotOptions{Compress: true}); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	p := testParameters()
	restored, _, err := Restore[[]float32, float32](&buf, p, items)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Len() != idx.Len() {
		t.Errorf("restored.Len() = %d, want %d", restored.Len(), idx.Len())
	}
}

func TestSnapshotRejectsEmptyGraph(t *testing.T) {
	p := testParameters()
	idx, err := NewIndex[[]float32, float32](p)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	var buf bytes.Buffer
	if err := idx.Snapshot(&buf, SnapshotOptions{}); err == nil {
		t.Fatal("expected an error snapshotting an empty graph")
	}
}

func TestRestoreRejectsBadHeader(t *testing.T) {
	p := testParameters()
	_, _, err := Restore[[]float32, float32](bytes.NewReader([]byte("not a snapshot")), p, nil)
	if err == nil {
		t.Fatal("expected an error for a bad header")
	}
}

func TestRestoreRejectsTooFewItems(t *testing.T) {
	idx, items := buildTestIndex(t, 30, 23)
	var buf bytes.Buffer
	if err := idx.Snapshot(&buf, SnapshotOptions{}); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	p := testParameters()
	_, _, err := Restore[[]float32, float32](&buf, p, items[:5])
	if err == nil {
		t.Fatal("expected an error when too few items are supplied")
	}
}
