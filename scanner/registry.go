package scanner

import "sync"

// Retention selects which record a Registry keeps for a fingerprint once a
// duplicate has been seen.
type Retention int

const (
	// RetainNewest keeps the newer record of every emitted pair, so later
	// collisions pair against the newest file seen so far and only the
	// newest file of a set is never the older member of a pair.
	RetainNewest Retention = iota
	// RetainFirst keeps whichever record registered first. With three or
	// more copies the survivor depends on worker scheduling.
	RetainFirst
)

func (r Retention) String() string {
	switch r {
	case RetainNewest:
		return "newest"
	case RetainFirst:
		return "first"
	default:
		return "unknown"
	}
}

// Registry maps fingerprints to the retained record. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.Mutex
	seen      map[Fingerprint]FileRecord
	retention Retention
}

func NewRegistry(retention Retention) *Registry {
	return &Registry{
		seen:      make(map[Fingerprint]FileRecord),
		retention: retention,
	}
}

// Register records rec. If a record with the same fingerprint is already
// held, it returns the pair of the two ordered by modification time and true.
// Check, insert and pair construction happen under one lock.
func (r *Registry) Register(rec FileRecord) (DuplicatePair, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.seen[rec.Fingerprint]
	if !ok {
		r.seen[rec.Fingerprint] = rec
		return DuplicatePair{}, false
	}
	if existing.Path == rec.Path {
		return DuplicatePair{}, false
	}

	pair := orderPair(existing, rec)
	if r.retention == RetainNewest {
		r.seen[rec.Fingerprint] = pair.Newer
	}
	return pair, true
}

// Lookup returns the record currently retained for fp.
func (r *Registry) Lookup(fp Fingerprint) (FileRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.seen[fp]
	return rec, ok
}

// Len is the number of distinct fingerprints registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// orderPair treats existing as older only when it is strictly older; on equal
// timestamps the incoming record is the older one.
func orderPair(existing, incoming FileRecord) DuplicatePair {
	if existing.ModifiedAt.Before(incoming.ModifiedAt) {
		return DuplicatePair{Older: existing, Newer: incoming}
	}
	return DuplicatePair{Older: incoming, Newer: existing}
}
