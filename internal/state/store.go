package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
)

// Topic names a group of display regions that depend on a part of the state.
type Topic string

const (
	TopicMarket       Topic = "market"
	TopicWallet       Topic = "wallet"
	TopicPortfolio    Topic = "portfolio"
	TopicStaking      Topic = "staking"
	TopicTransactions Topic = "transactions"
	TopicCatalog      Topic = "catalog"
)

// Listener is notified after every committed update with the topics the
// update touched and a copy of the new state.
type Listener func(topics []Topic, st State)

// Store serialises all reads and writes of the application state.
type Store struct {
	mu        sync.Mutex
	st        State
	sessCtx   context.Context
	sessStop  context.CancelFunc
	listeners []Listener
}

// NewStore returns an empty, disconnected store.
func NewStore() *Store {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{sessCtx: ctx, sessStop: cancel}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

// Subscribe registers a listener. Listeners run on the updating goroutine,
// outside the store lock.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Update applies fn to a copy of the state and commits it when fn succeeds
// and the result satisfies the state invariants. A failed update leaves the
// state untouched. Changing SessionID cancels every operation still waiting
// on the previous session.
func (s *Store) Update(fn func(*State) error, topics ...Topic) error {
	s.mu.Lock()
	next := s.st.clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("state: rejected update: %w", err)
	}
	if next.SessionID != s.st.SessionID {
		s.sessStop()
		s.sessCtx, s.sessStop = context.WithCancel(context.Background())
	}
	s.st = next
	snap := s.st.clone()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if len(topics) > 0 {
		for _, l := range listeners {
			l(topics, snap)
		}
	}
	return nil
}

// Notify re-publishes the current state for the given topics without
// changing it. Used by periodic refreshes.
func (s *Store) Notify(topics ...Topic) {
	s.mu.Lock()
	snap := s.st.clone()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(topics, snap)
	}
}

// session returns the current session id and a context cancelled when that
// session ends.
func (s *Store) session() (string, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SessionID, s.sessCtx
}

// Settle waits out delay, then applies fn against the wallet session that
// was current when Settle was called. The wait is abandoned when ctx is done
// or the session ends; a completion whose session has been replaced fails
// with SESSION_CHANGED and does not mutate anything.
func (s *Store) Settle(ctx context.Context, delay time.Duration, fn func(*State) error, topics ...Topic) error {
	id, sessCtx := s.session()
	if id == "" {
		return apperr.NotConnected()
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sessCtx.Done():
			slog.Info("pending operation cancelled by session change", "session_id", id)
			return apperr.SessionChanged()
		case <-timer.C:
		}
	}

	return s.Update(func(st *State) error {
		if st.SessionID != id {
			return apperr.SessionChanged()
		}
		return fn(st)
	}, topics...)
}
