package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Update when no receipt with the given id
// exists. It is an expected outcome, not a fault; callers must branch on it.
var ErrNotFound = errors.New("receipt not found")

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Store is the single source of truth for the receipt collection. It
// mediates all mutation, persists the full snapshot to a Slot after every
// successful mutation, and wholesale-replaces its snapshot when another
// instance writes the slot (last-write-wins).
type Store struct {
	mu          sync.Mutex
	slot        Slot
	receipts    []Receipt
	idGenerator IDGenerator
	timeSource  TimeSource
	lastCreated time.Time
	subscribers map[int]func()
	nextSubID   int
}

// NewStore creates a Store with default ID generator and time source,
// hydrating the collection from the slot. Missing or corrupt slot data is
// treated as an empty collection, never a startup failure.
func NewStore(slot Slot) *Store {
	return NewStoreWithDeps(slot, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewStoreWithDeps creates a Store with custom dependencies for testing
func NewStoreWithDeps(slot Slot, idGen IDGenerator, timeSrc TimeSource) *Store {
	s := &Store{
		slot:        slot,
		idGenerator: idGen,
		timeSource:  timeSrc,
		subscribers: make(map[int]func()),
	}
	s.hydrate()
	return s
}

// hydrate reads the slot exactly once at construction.
func (s *Store) hydrate() {
	data, err := s.slot.Load()
	if err != nil {
		slog.Warn("Failed to load persisted receipts, starting empty", "error", err)
		return
	}
	if data == nil {
		return
	}
	receipts, ok := decodeSnapshot(data)
	if !ok {
		slog.Warn("Persisted receipts are malformed, starting empty")
		return
	}
	s.receipts = receipts
}

// decodeSnapshot parses a serialized collection. A non-array top-level
// value fails the whole decode; individual malformed entries are dropped.
func decodeSnapshot(data []byte) ([]Receipt, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	receipts := make([]Receipt, 0, len(raw))
	for _, entry := range raw {
		var r Receipt
		if err := json.Unmarshal(entry, &r); err != nil || r.ID == "" {
			continue
		}
		receipts = append(receipts, r)
	}
	return receipts, true
}

// Create validates the input, assigns a fresh id and CreatedAt, inserts the
// receipt at the front of the collection, and persists.
func (s *Store) Create(fields NewReceiptFields) (Receipt, error) {
	if err := fields.Validate(); err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	now := s.timeSource.Now()
	// CreatedAt is monotonically non-decreasing with insertion order even
	// if the wall clock steps backwards.
	if now.Before(s.lastCreated) {
		now = s.lastCreated
	}
	s.lastCreated = now

	r := Receipt{
		ID:         s.idGenerator.Generate(),
		Date:       fields.Date,
		Merchant:   fields.Merchant,
		TotalCents: fields.TotalCents,
		Category:   fields.Category,
		Notes:      fields.Notes,
		CreatedAt:  now,
	}
	s.receipts = append([]Receipt{r}, s.receipts...)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return r, nil
}

// Update replaces the patched fields of the receipt with the given id. ID
// and CreatedAt are immutable. Returns ErrNotFound when no such receipt
// exists.
func (s *Store) Update(id string, patch Patch) (Receipt, error) {
	if err := patch.validate(); err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	idx := -1
	for i := range s.receipts {
		if s.receipts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Receipt{}, ErrNotFound
	}
	updated := patch.apply(s.receipts[idx])
	s.receipts[idx] = updated
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return updated, nil
}

// Delete removes the receipt with the given id. Deleting an unknown id is
// a no-op, not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	kept := s.receipts[:0:0]
	removed := false
	for _, r := range s.receipts {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}
	s.receipts = kept
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// List returns a copy of the full current collection. Order is stable but
// unspecified; recency ranking is computed by the analytics package.
func (s *Store) List() []Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Receipt, len(s.receipts))
	copy(snapshot, s.receipts)
	return snapshot
}

// HandleExternalChange replaces the in-memory snapshot with a collection
// written by another instance. Malformed payloads are ignored; the most
// recent valid write to reach the slot wins, with no per-field merge.
func (s *Store) HandleExternalChange(data []byte) {
	receipts, ok := decodeSnapshot(data)
	if !ok {
		slog.Warn("Ignoring malformed external change notification")
		return
	}
	s.mu.Lock()
	s.receipts = receipts
	s.mu.Unlock()

	s.notify()
}

// Subscribe registers fn to run after any mutation or external replace.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// persistLocked serializes the collection and writes it to the slot. A
// write failure keeps the in-memory mutation; durability is best-effort.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.receipts)
	if err != nil {
		slog.Warn("Failed to serialize receipts", "error", err)
		return
	}
	if err := s.slot.Store(data); err != nil {
		slog.Warn("Failed to persist receipts, in-memory state retained",
			"count", len(s.receipts),
			"error", err)
	}
}

// notify runs subscriber callbacks outside the store lock.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
