package journalrepo

import (
	"errors"

	"github.com/jrsteele09/go-journal-client/journal"
)

var ErrNotFound = errors.New("not found")

// Repo stores journal entries per user and the shared category list.
type Repo interface {
	AddCategory(name string) (journal.Category, error)
	GetCategory(id int64) (journal.Category, error)
	ListCategories() ([]journal.Category, error)

	CreateEntry(userID int64, entry journal.Entry) (journal.Entry, error)
	ListEntries(userID, categoryID int64) ([]journal.Entry, error)
	UpdateEntry(userID int64, entry journal.Entry) (journal.Entry, error)
	DeleteEntry(userID, entryID int64) error
}
