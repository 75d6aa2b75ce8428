package users

import "errors"

var (
	ErrNotFound   = errors.New("user not found")
	ErrUserExists = errors.New("user already exists")
)

// Account is a stored user with its password hash.
type Account struct {
	User
	PasswordHash string
}

// Repo stores accounts for the development backend.
type Repo interface {
	Create(account *Account) error
	GetByEmail(email string) (*Account, error)
	GetByID(id int64) (*Account, error)
	SetPasswordHash(email, passwordHash string) error
	List(offset, limit int) ([]*Account, error)
}
