package credentialrepofake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-journal-client/credentials"
)

var _ credentials.Store = (*FakeCredentialStore)(nil)

// ErrInjected is returned by operations switched to fail.
var ErrInjected = errors.New("injected store failure")

type FakeCredentialStore struct {
	values map[credentials.Key]string
	lock   sync.RWMutex

	failGet    map[credentials.Key]bool
	failSet    map[credentials.Key]bool
	failDelete map[credentials.Key]bool

	gets, sets, deletes int
}

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{
		values:     make(map[credentials.Key]string),
		failGet:    make(map[credentials.Key]bool),
		failSet:    make(map[credentials.Key]bool),
		failDelete: make(map[credentials.Key]bool),
	}
}

func (s *FakeCredentialStore) Get(_ context.Context, key credentials.Key) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.gets++

	if s.failGet[key] {
		return "", ErrInjected
	}
	v, ok := s.values[key]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return v, nil
}

func (s *FakeCredentialStore) Set(_ context.Context, key credentials.Key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sets++

	if s.failSet[key] {
		return ErrInjected
	}
	s.values[key] = value
	return nil
}

func (s *FakeCredentialStore) Delete(_ context.Context, key credentials.Key) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.deletes++

	if s.failDelete[key] {
		return ErrInjected
	}
	delete(s.values, key)
	return nil
}

// Value returns the raw stored value, bypassing failure injection.
func (s *FakeCredentialStore) Value(key credentials.Key) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Seed stores values directly, bypassing failure injection.
func (s *FakeCredentialStore) Seed(access, refresh string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if access != "" {
		s.values[credentials.AccessTokenKey] = access
	}
	if refresh != "" {
		s.values[credentials.RefreshTokenKey] = refresh
	}
}

func (s *FakeCredentialStore) FailGet(key credentials.Key, fail bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failGet[key] = fail
}

func (s *FakeCredentialStore) FailSet(key credentials.Key, fail bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failSet[key] = fail
}

func (s *FakeCredentialStore) FailDelete(key credentials.Key, fail bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failDelete[key] = fail
}

// Calls returns how many Get, Set and Delete calls the store has served.
func (s *FakeCredentialStore) Calls() (gets, sets, deletes int) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.gets, s.sets, s.deletes
}
