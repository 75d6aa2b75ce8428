package config

import (
	"os"
	"path/filepath"
)

// Credential store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type StoreConfig interface {
	GetCredentialBackend() string
	GetCredentialFile() string
	GetCredentialPassphrase() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetCredentialBackend() string {
	return GetEnv("CREDENTIAL_BACKEND", BackendFile)
}

func (Store) GetCredentialFile() string {
	if path := os.Getenv("CREDENTIAL_FILE"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "journal", "credentials.json")
}

// GetCredentialPassphrase returns the key protecting the credential file.
// Security: Never log this value
func (Store) GetCredentialPassphrase() string {
	return GetEnv("JOURNAL_CREDENTIALS_KEY", "")
}

func (Store) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "journal:credentials:")
}
