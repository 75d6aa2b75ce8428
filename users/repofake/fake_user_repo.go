package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/go-journal-client/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[int64]*users.Account
	emailIds map[string]int64 // email to user id
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[int64]*users.Account),
		emailIds: make(map[string]int64),
		nextID:   1,
	}
}

// Create assigns the next id to account and stores a copy of it.
func (ur *FakeUserRepo) Create(account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email := normaliseEmail(account.Email)
	if _, ok := ur.emailIds[email]; ok {
		return users.ErrUserExists
	}

	account.ID = ur.nextID
	ur.nextID++
	stored := *account
	ur.users[stored.ID] = &stored
	ur.emailIds[email] = stored.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[normaliseEmail(email)]
	if !ok {
		return nil, users.ErrNotFound
	}
	account := *ur.users[id]
	return &account, nil
}

func (ur *FakeUserRepo) GetByID(id int64) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	stored, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	account := *stored
	return &account, nil
}

func (ur *FakeUserRepo) SetPasswordHash(email, passwordHash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIds[normaliseEmail(email)]
	if !ok {
		return users.ErrNotFound
	}
	ur.users[id].PasswordHash = passwordHash
	return nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	accounts := make([]*users.Account, 0, len(ur.users))
	for _, v := range ur.users {
		account := *v
		accounts = append(accounts, &account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})

	if offset >= len(accounts) {
		return []*users.Account{}, nil
	}
	end := len(accounts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return accounts[offset:end], nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
