// Package feed ingests the exchange-wide ticker stream and keeps the latest
// price per symbol in a Slot shared with the refresh loop.
package feed

import (
	"sync"
	"time"

	"cryptotracker/internal/model"
)

// Slot is a latest-wins price store. Writers overwrite, readers always see the
// most recent value, and intermediate ticks for a symbol are never queued.
// Every Set bumps a per-symbol sequence so readers can tell whether anything
// new arrived since they last looked.
type Slot struct {
	mu      sync.Mutex
	entries map[string]slotEntry
	seq     uint64
	last    time.Time
}

type slotEntry struct {
	tick model.Tick
	seq  uint64
}

// NewSlot creates an empty Slot.
func NewSlot() *Slot {
	return &Slot{entries: make(map[string]slotEntry, 512)}
}

// Set records tick as the latest for its symbol.
func (s *Slot) Set(t model.Tick) {
	s.mu.Lock()
	s.seq++
	s.entries[t.Symbol] = slotEntry{tick: t, seq: s.seq}
	s.last = t.TS
	s.mu.Unlock()
}

// SetBatch records many ticks under one lock acquisition.
func (s *Slot) SetBatch(ticks []model.Tick) {
	if len(ticks) == 0 {
		return
	}
	s.mu.Lock()
	for _, t := range ticks {
		s.seq++
		s.entries[t.Symbol] = slotEntry{tick: t, seq: s.seq}
		s.last = t.TS
	}
	s.mu.Unlock()
}

// Latest returns the most recent tick for symbol and its sequence number.
// A larger sequence than one seen before means a newer tick.
func (s *Slot) Latest(symbol string) (model.Tick, uint64, bool) {
	s.mu.Lock()
	e, ok := s.entries[symbol]
	s.mu.Unlock()
	return e.tick, e.seq, ok
}

// LastUpdate is the receive time of the newest tick across all symbols.
func (s *Slot) LastUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Len returns the number of symbols seen.
func (s *Slot) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
