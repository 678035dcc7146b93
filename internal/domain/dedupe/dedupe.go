// Package dedupe tracks exams that were already counted in a run.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/sentinela/internal/domain/model"
)

// DefaultMaxSize bounds the deduper when no size is given.
const DefaultMaxSize = 100000

// Deduper records exam keys so repeated exams are counted once.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded, recording it
	// if not. Safe for concurrent use.
	SeenAndRecord(ctx context.Context, key string) bool
	Size() int64
}

// ExamKey builds the dedupe key for an exam. ok is false when either part is
// unknown, in which case the exam must not be deduplicated.
func ExamKey(patientID, collectionDate string) (key string, ok bool) {
	if patientID == "" || collectionDate == "" || patientID == model.Unknown || collectionDate == model.Unknown {
		return "", false
	}
	return patientID + "|" + collectionDate, true
}

// inMemoryDeduper keeps keys in a map plus a FIFO ring used for eviction.
// With maxSize <= 0 the ring is unused and nothing is evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// New creates an in-memory deduper.
func New(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, 0, min(d.maxSize, 1024))
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.ring) < d.maxSize {
			d.ring = append(d.ring, key)
		} else {
			// Oldest key sits at next; overwrite it.
			delete(d.seen, d.ring[d.next])
			d.ring[d.next] = key
			d.next = (d.next + 1) % d.maxSize
			d.size.Add(-1)
		}
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the number of keys currently held.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
