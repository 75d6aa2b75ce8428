package refreshrepo_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-journal-client/internal/devserver/refreshrepo"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	repo := refreshrepo.NewInMemoryRepo()
	now := time.Now()

	require.NoError(t, repo.Upsert(&refreshrepo.StoredRefreshToken{Token: "a", UserID: 1, Iat: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Upsert(&refreshrepo.StoredRefreshToken{Token: "b", UserID: 1, Iat: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Upsert(&refreshrepo.StoredRefreshToken{Token: "c", UserID: 2, Iat: now, ExpiresAt: now.Add(time.Hour)}))

	stored, err := repo.Get("a")
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.UserID)
	require.False(t, stored.Expired(now))
	require.True(t, stored.Expired(now.Add(time.Hour)))

	require.NoError(t, repo.Delete("a"))
	require.ErrorIs(t, repo.Delete("a"), refreshrepo.ErrNotFound)

	require.NoError(t, repo.DeleteByUserID(1))
	_, err = repo.Get("b")
	require.ErrorIs(t, err, refreshrepo.ErrNotFound)
	_, err = repo.Get("c")
	require.NoError(t, err)
}
