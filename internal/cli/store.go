package cli

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/credentials/filestore"
	"github.com/jrsteele09/go-journal-client/credentials/redisstore"
	credentialrepofake "github.com/jrsteele09/go-journal-client/credentials/repofake"
	"github.com/jrsteele09/go-journal-client/internal/config"
)

// OpenStore opens the credential backend selected by cfg.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (credentials.Store, error) {
	switch backend := cfg.GetCredentialBackend(); backend {
	case config.BackendFile:
		store, err := filestore.New(cfg.GetCredentialFile(), cfg.GetCredentialPassphrase())
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		store, err := redisstore.NewFromURL(ctx, cfg.GetRedisURL(), redisstore.WithPrefix(cfg.GetRedisPrefix()))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMemory:
		return credentialrepofake.NewFakeCredentialStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", backend)
	}
}
