package journalrepo

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/go-journal-client/journal"
)

var _ Repo = (*InMemoryRepo)(nil)

type storedEntry struct {
	userID int64
	entry  journal.Entry
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu             sync.RWMutex
	categories     map[int64]journal.Category
	entries        map[int64]storedEntry
	nextCategoryID int64
	nextEntryID    int64
}

// NewInMemoryRepo creates a new in-memory journal repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		categories:     make(map[int64]journal.Category),
		entries:        make(map[int64]storedEntry),
		nextCategoryID: 1,
		nextEntryID:    1,
	}
}

func (r *InMemoryRepo) AddCategory(name string) (journal.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return journal.Category{}, errors.New("category name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	c := journal.Category{ID: r.nextCategoryID, Name: name}
	r.nextCategoryID++
	r.categories[c.ID] = c
	return c, nil
}

func (r *InMemoryRepo) GetCategory(id int64) (journal.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return journal.Category{}, ErrNotFound
	}
	return c, nil
}

func (r *InMemoryRepo) ListCategories() ([]journal.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]journal.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// CreateEntry assigns an id to entry and stores a copy.
func (r *InMemoryRepo) CreateEntry(userID int64, entry journal.Entry) (journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = r.nextEntryID
	r.nextEntryID++
	r.entries[entry.ID] = storedEntry{userID: userID, entry: copyEntry(entry)}
	return copyEntry(entry), nil
}

// ListEntries returns the user's entries, newest first. A zero categoryID
// matches every category.
func (r *InMemoryRepo) ListEntries(userID, categoryID int64) ([]journal.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]journal.Entry, 0)
	for _, stored := range r.entries {
		if stored.userID != userID {
			continue
		}
		if categoryID != 0 && (stored.entry.Category == nil || stored.entry.Category.ID != categoryID) {
			continue
		}
		entries = append(entries, copyEntry(stored.entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// UpdateEntry replaces title, content and category. The creation time is kept.
func (r *InMemoryRepo) UpdateEntry(userID int64, entry journal.Entry) (journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.entries[entry.ID]
	if !ok || stored.userID != userID {
		return journal.Entry{}, ErrNotFound
	}
	entry.CreatedAt = stored.entry.CreatedAt
	stored.entry = copyEntry(entry)
	r.entries[entry.ID] = stored
	return copyEntry(entry), nil
}

func (r *InMemoryRepo) DeleteEntry(userID, entryID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.entries[entryID]
	if !ok || stored.userID != userID {
		return ErrNotFound
	}
	delete(r.entries, entryID)
	return nil
}

// copyEntry prevents callers from mutating the stored category
func copyEntry(e journal.Entry) journal.Entry {
	if e.Category != nil {
		c := *e.Category
		e.Category = &c
	}
	return e
}
