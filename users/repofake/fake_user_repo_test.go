package fakeuserrepo_test

import (
	"testing"

	"github.com/jrsteele09/go-journal-client/users"
	fakeuserrepo "github.com/jrsteele09/go-journal-client/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	first := &users.Account{User: users.User{Email: "A@example.com"}, PasswordHash: "h1"}
	require.NoError(t, repo.Create(first))
	require.Equal(t, int64(1), first.ID)
	require.ErrorIs(t, repo.Create(&users.Account{User: users.User{Email: "a@example.com"}}), users.ErrUserExists)
	require.NoError(t, repo.Create(&users.Account{User: users.User{Email: "b@example.com"}}))

	got, err := repo.GetByEmail(" a@EXAMPLE.com")
	require.NoError(t, err)
	require.Equal(t, "h1", got.PasswordHash)

	require.NoError(t, repo.SetPasswordHash("a@example.com", "h2"))
	got, err = repo.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, "h2", got.PasswordHash)

	_, err = repo.GetByID(99)
	require.ErrorIs(t, err, users.ErrNotFound)

	page, err := repo.List(1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "b@example.com", page[0].Email)

	page, err = repo.List(5, 10)
	require.NoError(t, err)
	require.Empty(t, page)
}
