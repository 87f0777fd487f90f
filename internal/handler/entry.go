// Package handler contains the HTTP handlers: thin glue that parses
// requests, calls a service, and writes the JSON envelope. No business
// rules live here — a handler that starts checking ownership or trimming
// content is a layering bug.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
	"github.com/ayakodama/wishboard/internal/service"
)

// EntryHandler serves the /api/entries routes.
type EntryHandler struct {
	entries *service.EntryService
	logger  *slog.Logger
}

func NewEntryHandler(entries *service.EntryService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, logger: logger}
}

// HandleList returns all entries, newest first.
//
// HTTP: GET /api/entries?user=&type=
// Both query params are optional filters; combining them intersects.
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.List(r.Context(), r.URL.Query().Get("user"), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

type createEntryRequest struct {
	UserName    string  `json:"userName"`
	Type        string  `json:"type"`
	Content     string  `json:"content"`
	Year        int     `json:"year"`
	ImageURL    *string `json:"imageUrl"`
	LockedUntil *string `json:"lockedUntil"`
}

// HandleCreate creates an entry, lazily creating its owner.
//
// HTTP: POST /api/entries
// BODY: {"userName":"Alex","type":"WISH","content":"Learn Rust","year":2026}
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.CreateEntryInput{
		UserName: req.UserName,
		Type:     model.EntryType(req.Type),
		Content:  req.Content,
		Year:     req.Year,
		ImageURL: req.ImageURL,
	}
	if req.LockedUntil != nil && *req.LockedUntil != "" {
		t, err := time.Parse(time.RFC3339, *req.LockedUntil)
		if err != nil {
			writeError(w, apperror.ValidationFailed("lockedUntil",
				"timestamps must be RFC 3339, e.g. 2026-01-01T00:00:00Z"))
			return
		}
		in.LockedUntil = &t
	}

	entry, err := h.entries.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, entry)
}

// HandleGetByID returns a single entry with its reactions and comments.
//
// HTTP: GET /api/entries/{id}
func (h *EntryHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entry)
}

type updateEntryRequest struct {
	UserName    string         `json:"userName"`
	Content     optionalString `json:"content"`
	ImageURL    optionalString `json:"imageUrl"`
	LockedUntil optionalTime   `json:"lockedUntil"`
}

// HandleUpdate partially updates an entry. Absent fields keep their prior
// values; a null imageUrl or lockedUntil clears that field. Owner only.
//
// HTTP: PUT /api/entries/{id}
// BODY: {"userName":"Alex","content":"new text","lockedUntil":null}
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var patch repository.EntryPatch
	if req.Content.Set && req.Content.Valid {
		patch.Content = &req.Content.Value
	}
	if req.ImageURL.Set {
		if req.ImageURL.Valid {
			patch.ImageURL = &req.ImageURL.Value
		} else {
			patch.ClearImage = true
		}
	}
	if req.LockedUntil.Set {
		if req.LockedUntil.Valid {
			patch.LockedUntil = &req.LockedUntil.Value
		} else {
			patch.ClearLock = true
		}
	}

	entry, err := h.entries.Update(r.Context(), r.PathValue("id"), req.UserName, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entry)
}

// HandleDelete removes an entry and, by cascade, its reactions and
// comments. Owner only.
//
// HTTP: DELETE /api/entries/{id}?userName=
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.Delete(r.Context(), r.PathValue("id"), r.URL.Query().Get("userName")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
