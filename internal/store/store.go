// Package store implements the in-memory indexed record store: an
// insertion-ordered sequence and a hash index over student IDs, both
// addressing the same arena of records.
package store

import (
	"github.com/kaiwen/cms/internal/model"
)

// numBuckets is the fixed hash table size. Prime, so sequential student IDs
// spread evenly across buckets.
const numBuckets = 2003

// none marks an empty bucket or the end of a chain.
const none int32 = -1

// slot is one arena cell. next chains slots that share a bucket.
type slot struct {
	rec  model.Record
	next int32
}

// Store owns all live records. Records are addressed by arena handles; the
// insertion sequence and the hash index are independent views over the same
// slots, so unlinking never leaves a dangling reference.
//
// Store is not safe for concurrent use. Callers that need concurrency must
// guard the store, the action log, and the session flags as one unit.
type Store struct {
	arena   []slot
	free    []int32
	seq     []int32
	buckets [numBuckets]int32
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	for i := range s.buckets {
		s.buckets[i] = none
	}
	return s
}

// bucketOf maps a student ID onto a bucket index.
func bucketOf(id int) int {
	b := id % numBuckets
	if b < 0 {
		b += numBuckets
	}
	return b
}

// lookup walks the bucket chain for id and returns its handle.
func (s *Store) lookup(id int) (int32, bool) {
	for h := s.buckets[bucketOf(id)]; h != none; h = s.arena[h].next {
		if s.arena[h].rec.ID == id {
			return h, true
		}
	}
	return none, false
}

// alloc places rec into a free arena slot, reusing freed cells first.
func (s *Store) alloc(rec model.Record) int32 {
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.arena[h] = slot{rec: rec, next: none}
		return h
	}
	s.arena = append(s.arena, slot{rec: rec, next: none})
	return int32(len(s.arena) - 1)
}

// Insert adds rec to the store. It appends to the insertion sequence and
// chains the record at the head of its hash bucket. Returns
// *DuplicateIDError if a record with the same ID is already live.
func (s *Store) Insert(rec model.Record) error {
	if _, ok := s.lookup(rec.ID); ok {
		return &DuplicateIDError{ID: rec.ID}
	}

	h := s.alloc(rec)
	s.seq = append(s.seq, h)

	b := bucketOf(rec.ID)
	s.arena[h].next = s.buckets[b]
	s.buckets[b] = h

	return nil
}

// Find returns the record with the given ID, if present.
func (s *Store) Find(id int) (model.Record, bool) {
	h, ok := s.lookup(id)
	if !ok {
		return model.Record{}, false
	}
	return s.arena[h].rec, true
}

// Update applies the provided fields of patch to the record with the given
// ID and returns the pre-update snapshot, so the caller can build a
// reversible action from it. Returns *NotFoundError if the ID is absent.
func (s *Store) Update(id int, patch model.Patch) (model.Record, error) {
	h, ok := s.lookup(id)
	if !ok {
		return model.Record{}, &NotFoundError{ID: id}
	}
	prev := s.arena[h].rec
	s.arena[h].rec = patch.Apply(prev)
	return prev, nil
}

// Remove deletes the record with the given ID from both the sequence and the
// hash index and returns the removed value. Returns *NotFoundError if the ID
// is absent.
func (s *Store) Remove(id int) (model.Record, error) {
	b := bucketOf(id)

	// Unlink from the bucket chain.
	h := none
	prev := none
	for cur := s.buckets[b]; cur != none; cur = s.arena[cur].next {
		if s.arena[cur].rec.ID == id {
			h = cur
			break
		}
		prev = cur
	}
	if h == none {
		return model.Record{}, &NotFoundError{ID: id}
	}
	if prev == none {
		s.buckets[b] = s.arena[h].next
	} else {
		s.arena[prev].next = s.arena[h].next
	}

	// Unlink from the insertion sequence.
	for i, sh := range s.seq {
		if sh == h {
			s.seq = append(s.seq[:i], s.seq[i+1:]...)
			break
		}
	}

	rec := s.arena[h].rec
	s.arena[h] = slot{next: none}
	s.free = append(s.free, h)
	return rec, nil
}

// Each calls fn for every live record in insertion order until fn returns
// false. Every call starts a fresh traversal; fn must not mutate the store.
func (s *Store) Each(fn func(model.Record) bool) {
	for _, h := range s.seq {
		if !fn(s.arena[h].rec) {
			return
		}
	}
}

// Records returns a snapshot of all live records in insertion order.
func (s *Store) Records() []model.Record {
	out := make([]model.Record, 0, len(s.seq))
	for _, h := range s.seq {
		out = append(out, s.arena[h].rec)
	}
	return out
}

// Len returns the number of live records.
func (s *Store) Len() int {
	return len(s.seq)
}

// Clear drops all records and resets the hash index. Used before a fresh
// load.
func (s *Store) Clear() {
	s.arena = s.arena[:0]
	s.free = s.free[:0]
	s.seq = s.seq[:0]
	for i := range s.buckets {
		s.buckets[i] = none
	}
}
