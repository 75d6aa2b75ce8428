package journal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-journal-client/gateway"
	"github.com/jrsteele09/go-journal-client/users"
	pkgerrors "github.com/pkg/errors"
)

const (
	entriesPath         = "/journal/entries/"
	entriesCategoryPath = "/journal/entries/category/%d/"
	entryPath           = "/journal/entries/%d/"
	categoriesPath      = "/journal/categories/"
	defaultProfilePath  = "/users/profile/me"
)

// ErrInvalidEntry is returned before any request when an entry has no title.
var ErrInvalidEntry = errors.New("journal entry requires a title")

// Requester sends authenticated requests. *gateway.Gateway implements it.
type Requester interface {
	Do(ctx context.Context, method, path string, body any) (*gateway.Response, error)
}

var _ Requester = (*gateway.Gateway)(nil)

// Service exposes the journal endpoints.
type Service struct {
	requester   Requester
	profilePath string
}

// Option modifies a Service at construction time.
type Option func(*Service)

// WithProfilePath overrides the profile route.
func WithProfilePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.profilePath = path
		}
	}
}

// NewService creates a journal Service sending through requester.
func NewService(requester Requester, options ...Option) *Service {
	s := &Service{requester: requester, profilePath: defaultProfilePath}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Profile returns the logged in user.
func (s *Service) Profile(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := s.call(ctx, http.MethodGet, s.profilePath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListEntries returns all entries, or only those of categoryID when it is
// non-zero.
func (s *Service) ListEntries(ctx context.Context, categoryID int64) ([]Entry, error) {
	path := entriesPath
	if categoryID != 0 {
		path = fmt.Sprintf(entriesCategoryPath, categoryID)
	}

	var entries []Entry
	if err := s.call(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) CreateEntry(ctx context.Context, input EntryInput) (*Entry, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidEntry
	}
	var entry Entry
	if err := s.call(ctx, http.MethodPost, entriesPath, input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry replaces the entry with the given id.
func (s *Service) UpdateEntry(ctx context.Context, id int64, input EntryInput) (*Entry, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidEntry
	}
	var entry Entry
	if err := s.call(ctx, http.MethodPut, fmt.Sprintf(entryPath, id), input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	return s.call(ctx, http.MethodDelete, fmt.Sprintf(entryPath, id), nil, nil)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.call(ctx, http.MethodGet, categoriesPath, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// call sends the request and decodes the body into out when out is non-nil
// and the response has a body.
func (s *Service) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := s.requester.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return pkgerrors.Wrapf(err, "[journal] decode %s %s", method, path)
	}
	return nil
}
