package store

import (
	"context"

	"nostrmart/internal/domain"
	"nostrmart/internal/totals"

	"github.com/google/uuid"
)

// Snapshot is what subscribers receive after each recomputation: a plain-data
// copy of the cart and the totals derived from it.
type Snapshot struct {
	Cart    domain.NormalizedCart
	Summary totals.Summary
}

// Subscribe registers a callback invoked after every completed
// recomputation. It returns a token for Unsubscribe.
func (s *Store) Subscribe(fn func(Snapshot)) string {
	token := uuid.NewString()
	s.subsMu.Lock()
	s.subs[token] = fn
	s.subsMu.Unlock()
	return token
}

// Unsubscribe removes a previously registered callback.
func (s *Store) Unsubscribe(token string) {
	s.subsMu.Lock()
	delete(s.subs, token)
	s.subsMu.Unlock()
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// scheduleRecompute marks the derived totals dirty and ensures exactly one
// recompute task is in flight. A mutation arriving mid-recompute re-marks
// dirty; the running task then makes one more pass over the live store, so
// the recomputation that settles always reflects the latest mutation.
func (s *Store) scheduleRecompute() {
	s.schedMu.Lock()
	s.dirty = true
	if s.recomputing {
		s.schedMu.Unlock()
		return
	}
	s.recomputing = true
	s.schedMu.Unlock()
	go s.recomputeLoop()
}

func (s *Store) recomputeLoop() {
	for {
		s.schedMu.Lock()
		if !s.dirty {
			s.recomputing = false
			s.idle.Broadcast()
			s.schedMu.Unlock()
			return
		}
		s.dirty = false
		s.schedMu.Unlock()

		// Read the live store now, not a snapshot captured at trigger time.
		cart := s.Cart()
		sum := s.calc.Summarize(context.Background(), cart)
		s.notify(Snapshot{Cart: cart, Summary: sum})
	}
}

// WaitIdle blocks until no recomputation is pending or in flight.
func (s *Store) WaitIdle() {
	s.schedMu.Lock()
	for s.dirty || s.recomputing {
		s.idle.Wait()
	}
	s.schedMu.Unlock()
}
