package hnsw

import "errors"

// Sentinel errors. ErrGraphChanged is retried internally up to
// maxSearchRetries times and should never escape a successful Search
// call; Search returns it only once that retry bound is exhausted.
var (
	// ErrInvalidHeader is returned by Restore when the stream does not
	// start with the "HNSW" magic, or is too short to contain one.
	ErrInvalidHeader = errors.New("hnsw: invalid snapshot header")

	// ErrInvalidOperation is returned by Snapshot on an empty graph, and
	// by Restore when fewer items are supplied than the snapshot's node
	// count requires.
	ErrInvalidOperation = errors.New("hnsw: invalid operation")

	// ErrInvalidParameters is returned by NewIndex when Parameters fail
	// validation (non-positive M, nil Distance func, and so on).
	ErrInvalidParameters = errors.New("hnsw: invalid parameters")

	// ErrGraphChanged signals that the graph's version counter advanced
	// mid-traversal; the query layer retries from scratch on this error.
	ErrGraphChanged = errors.New("hnsw: graph changed during search")
)

// maxSearchRetries bounds the GraphChanged retry loop in Search. Spec.md
// §4.8 calls this "bounded (e.g., 1024)"; it should never be approached
// under correct writer-gate usage — hitting it is a programmer error in
// how the caller configured thread-safety, not a normal outcome.
const maxSearchRetries = 1024
