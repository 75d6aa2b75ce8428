package devserver

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-journal-client/users"
)

var defaultCategories = []string{"Personal", "Work", "Ideas"}

// InitialiseSystem creates the demo account and the default categories.
// Existing records are left alone.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	for _, name := range defaultCategories {
		if _, err := s.journal.AddCategory(name); err != nil {
			return fmt.Errorf("failed to bootstrap category %q: %w", name, err)
		}
	}

	email := s.config.GetSeedUserEmail()
	if email == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil
	}

	hash, err := users.HashPassword(s.config.GetSeedUserPassword())
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	account := &users.Account{
		User:         users.User{Email: email, FirstName: "Demo", LastName: "User"},
		PasswordHash: hash,
	}
	if err := s.users.Create(account); err != nil {
		return fmt.Errorf("failed to bootstrap seed user: %w", err)
	}
	s.logger.Info().Ctx(ctx).Str("email", email).Int64("user_id", account.ID).Msg("seeded demo account")
	return nil
}
