// Package journal wraps the journal backend endpoints on top of the request
// gateway.
package journal

import "time"

// Category groups journal entries.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Entry is a journal entry as returned by the backend.
type Entry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  *Category `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryInput is the body for creating or replacing an entry.
type EntryInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID int64  `json:"category_id,omitempty"`
}
