package refreshrepo

import "sync"

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	tokens map[string]StoredRefreshToken
	lock   sync.RWMutex
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens: make(map[string]StoredRefreshToken),
	}
}

func (r *InMemoryRepo) Upsert(refreshToken *StoredRefreshToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.tokens[refreshToken.Token] = *refreshToken
	return nil
}

func (r *InMemoryRepo) Get(token string) (*StoredRefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stored, ok := r.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &stored, nil
}

func (r *InMemoryRepo) Delete(token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

// DeleteByUserID drops every refresh token issued to userID.
func (r *InMemoryRepo) DeleteByUserID(userID int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for token, stored := range r.tokens {
		if stored.UserID == userID {
			delete(r.tokens, token)
		}
	}
	return nil
}
