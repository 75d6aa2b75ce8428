// Package filestore keeps credentials in a single encrypted JSON file.
//
// Values are sealed with XChaCha20-Poly1305 under a key derived from a
// passphrase with Argon2id. The salt lives in the file, so the same passphrase
// opens the file on any machine. The file is rewritten atomically on every
// change and is only ever readable by its owner.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-journal-client/credentials"
)

const fileVersion = 1

var _ credentials.Store = (*Store)(nil)

// ErrNoPassphrase is returned by New when the passphrase is empty.
var ErrNoPassphrase = errors.New("credential file: passphrase is required")

type fileContents struct {
	Version int               `json:"version"`
	Salt    []byte            `json:"salt"`
	Entries map[string][]byte `json:"entries"`
}

// Store is a credentials.Store backed by an encrypted file.
type Store struct {
	path       string
	passphrase []byte

	mu      sync.Mutex
	keySalt string
	key     []byte
}

// New returns a store for path. The file is created on the first write.
func New(path, passphrase string) (*Store, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	if path == "" {
		return nil, errors.New("credential file: path is required")
	}
	return &Store{path: path, passphrase: []byte(passphrase)}, nil
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key credentials.Key) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return "", err
	}
	sealed, ok := contents.Entries[string(key)]
	if !ok {
		return "", credentials.ErrNotFound
	}
	plaintext, err := open(s.keyFor(contents.Salt), string(key), sealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *Store) Set(ctx context.Context, key credentials.Key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return err
	}
	sealed, err := seal(s.keyFor(contents.Salt), string(key), []byte(value))
	if err != nil {
		return err
	}
	contents.Entries[string(key)] = sealed
	return s.write(contents)
}

func (s *Store) Delete(ctx context.Context, key credentials.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := contents.Entries[string(key)]; !ok {
		return nil
	}
	delete(contents.Entries, string(key))
	return s.write(contents)
}

// read loads the file, or returns fresh contents with a new salt when the
// file does not exist yet.
func (s *Store) read() (*fileContents, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		return &fileContents{Version: fileVersion, Salt: salt, Entries: map[string][]byte{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	if contents.Version != fileVersion {
		return nil, fmt.Errorf("unsupported credential file version %d", contents.Version)
	}
	if len(contents.Salt) != saltLength {
		return nil, errors.New("credential file: invalid salt")
	}
	if contents.Entries == nil {
		contents.Entries = map[string][]byte{}
	}
	return &contents, nil
}

func (s *Store) write(contents *fileContents) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("failed to encode credential file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

// keyFor caches the derived key per salt; Argon2id is deliberately slow.
func (s *Store) keyFor(salt []byte) []byte {
	if s.key != nil && s.keySalt == string(salt) {
		return s.key
	}
	s.key = deriveKey(s.passphrase, salt)
	s.keySalt = string(salt)
	return s.key
}
