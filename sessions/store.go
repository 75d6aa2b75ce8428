package sessions

import (
	"errors"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoAccessToken is returned by Token when the session holds no access
// token.
var ErrNoAccessToken = errors.New("session has no access token")

var _ oauth2.TokenSource = (*Store)(nil)

// Store is the read side of the session. It is safe to hand to any number of
// readers; writes go through the Writer returned alongside it by New.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[uint64]chan State
	nextID uint64
}

// Writer is the single write path into a Store.
type Writer struct {
	store *Store
}

// New returns an empty session (StatusUnknown) and its writer.
func New() (*Store, *Writer) {
	s := &Store{subs: make(map[uint64]chan State)}
	return s, &Writer{store: s}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel that receives the current state immediately and
// then every later state. Delivery is latest-wins: a slow reader skips
// intermediate states but always ends up with the newest one. The returned
// func unsubscribes and closes the channel; it is safe to call more than once.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// Token implements oauth2.TokenSource over the current access token.
func (s *Store) Token() (*oauth2.Token, error) {
	state := s.Snapshot()
	if state.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken:  state.AccessToken,
		RefreshToken: state.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// Set replaces the whole state in one step and notifies subscribers.
func (w *Writer) Set(state State) error {
	if err := state.validate(); err != nil {
		return err
	}

	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	for _, ch := range s.subs {
		publish(ch, state)
	}
	return nil
}

// Update applies fn to the current state under the write lock.
func (w *Writer) Update(fn func(State) State) error {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state)
	if err := next.validate(); err != nil {
		return err
	}
	s.state = next
	for _, ch := range s.subs {
		publish(ch, next)
	}
	return nil
}

// publish never blocks: ch has capacity one and only this function and the
// reader touch it, and it is only called with the store lock held.
func publish(ch chan State, state State) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- state
}
