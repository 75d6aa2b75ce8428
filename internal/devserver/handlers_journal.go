package devserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-journal-client/internal/devserver/journalrepo"
	apperrors "github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/journal"
)

const detailNotFound = "Not found."

// ListEntriesHandler serves every entry of the user, or those of one
// category when the route carries an id.
func (s *Server) ListEntriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var categoryID int64
		if raw := r.PathValue("id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeDetail(w, http.StatusNotFound, detailNotFound, "")
				return
			}
			categoryID = id
		}

		entries, err := s.journal.ListEntries(userIDFromContext(r.Context()), categoryID)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to list entries")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) CreateEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, ok := s.entryFromRequest(w, r)
		if !ok {
			return
		}
		entry.CreatedAt = s.now().UTC()

		created, err := s.journal.CreateEntry(userIDFromContext(r.Context()), entry)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create entry")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeDetail(w, http.StatusNotFound, detailNotFound, "")
			return
		}
		entry, ok := s.entryFromRequest(w, r)
		if !ok {
			return
		}
		entry.ID = id

		updated, err := s.journal.UpdateEntry(userIDFromContext(r.Context()), entry)
		if err != nil {
			if apperrors.Is(err, journalrepo.ErrNotFound) {
				writeDetail(w, http.StatusNotFound, detailNotFound, "")
				return
			}
			s.logger.Error().Err(err).Msg("failed to update entry")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeDetail(w, http.StatusNotFound, detailNotFound, "")
			return
		}
		if err := s.journal.DeleteEntry(userIDFromContext(r.Context()), id); err != nil {
			writeDetail(w, http.StatusNotFound, detailNotFound, "")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.journal.ListCategories()
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to list categories")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

// entryFromRequest decodes and validates an entry body. It writes the error
// response itself and reports false when the request is invalid.
func (s *Server) entryFromRequest(w http.ResponseWriter, r *http.Request) (journal.Entry, bool) {
	var input journal.EntryInput
	if err := decodeJSON(r, &input); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error(), "parse_error")
		return journal.Entry{}, false
	}
	if strings.TrimSpace(input.Title) == "" {
		writeFieldError(w, "title", msgFieldRequired)
		return journal.Entry{}, false
	}

	entry := journal.Entry{Title: input.Title, Content: input.Content}
	if input.CategoryID != 0 {
		category, err := s.journal.GetCategory(input.CategoryID)
		if err != nil {
			writeFieldError(w, "category_id", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", input.CategoryID))
			return journal.Entry{}, false
		}
		entry.Category = &category
	}
	return entry, true
}
