// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the store
//
// Services accept primitives and return domain errors (apperror values),
// never HTTP status codes. The handler translates. Services also program
// against the repository interfaces, so the same logic runs unchanged over
// the sqlite store and the flat-file store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
)

// Validation constants.
const (
	MaxContentLength     = 10000
	MaxUserNameLength    = 50
	MaxCommentLength     = 2000
	MaxEmojiLength       = 16 // emoji plus variation selectors; a short string, not a paragraph
	MinYear              = 1970
	MaxYear              = 2100
)

// EntryService handles memory/wish cards: CRUD, user resolution, ownership
// checks, and time-lock redaction.
type EntryService struct {
	users   repository.UserRepository
	entries repository.EntryRepository
	logger  *slog.Logger

	// now is swappable in tests so lock expiry can be pinned.
	now func() time.Time
}

func NewEntryService(users repository.UserRepository, entries repository.EntryRepository, logger *slog.Logger) *EntryService {
	return &EntryService{
		users:   users,
		entries: entries,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateEntryInput carries the fields of a new card. ImageURL and
// LockedUntil are optional; nil means absent.
type CreateEntryInput struct {
	UserName    string
	Type        model.EntryType
	Content     string
	Year        int
	ImageURL    *string
	LockedUntil *time.Time
}

// Create validates the input, resolves (or lazily creates) the owning
// user, and inserts the entry.
func (s *EntryService) Create(ctx context.Context, in CreateEntryInput) (*model.Entry, error) {
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, apperror.ValidationFailed("userName", "userName is required")
	}
	if len(userName) > MaxUserNameLength {
		return nil, apperror.ValidationFailed("userName",
			fmt.Sprintf("userName must be %d characters or less", MaxUserNameLength))
	}
	if !in.Type.Valid() {
		return nil, apperror.ValidationFailed("type", "type must be MEMORY or WISH")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	if in.Year < MinYear || in.Year > MaxYear {
		return nil, apperror.ValidationFailed("year",
			fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear))
	}

	user, err := s.users.FindOrCreateUser(ctx, userName)
	if err != nil {
		s.logger.Error("failed to resolve user",
			slog.String("userName", userName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	entry := &model.Entry{
		UserID:      user.ID,
		Type:        in.Type,
		Content:     content,
		Year:        in.Year,
		ImageURL:    in.ImageURL,
		LockedUntil: in.LockedUntil,
	}
	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		s.logger.Error("failed to create entry",
			slog.String("userName", userName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating entry: %w", err)
	}
	entry.User = user
	entry.Reactions = []model.Reaction{}
	entry.Comments = []model.Comment{}
	s.redact(entry)

	s.logger.Info("entry created",
		slog.String("id", entry.ID),
		slog.String("user", user.Name),
		slog.String("type", string(entry.Type)),
	)
	return entry, nil
}

// List returns entries newest-first, optionally filtered by owner name
// and/or type. Locked entries come back redacted.
func (s *EntryService) List(ctx context.Context, userName, entryType string) ([]model.Entry, error) {
	filter := repository.EntryFilter{UserName: strings.TrimSpace(userName)}
	if entryType != "" {
		typ := model.EntryType(entryType)
		if !typ.Valid() {
			return nil, apperror.ValidationFailed("type", "type must be MEMORY or WISH")
		}
		filter.Type = typ
	}

	entries, err := s.entries.ListEntries(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	for i := range entries {
		s.redact(&entries[i])
	}
	return entries, nil
}

// Get returns a single entry with the nested expansion, redacted while
// locked.
func (s *EntryService) Get(ctx context.Context, id string) (*model.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "entry ID is required")
	}
	entry, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	s.redact(entry)
	return entry, nil
}

// Update applies a partial update. Only the owner may edit: the supplied
// userName must match the owner's display name.
func (s *EntryService) Update(ctx context.Context, id, userName string, patch repository.EntryPatch) (*model.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "entry ID is required")
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, apperror.ValidationFailed("content", "content cannot be empty")
		}
		if len(content) > MaxContentLength {
			return nil, apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or less", MaxContentLength))
		}
		patch.Content = &content
	}

	if err := s.authorizeOwner(ctx, id, userName, "edit"); err != nil {
		return nil, err
	}

	entry, err := s.entries.UpdateEntry(ctx, id, patch)
	if err != nil {
		s.logger.Error("failed to update entry",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating entry: %w", err)
	}
	s.redact(entry)

	s.logger.Info("entry updated", slog.String("id", id))
	return entry, nil
}

// Delete removes the entry and everything hanging off it. Owner only.
func (s *EntryService) Delete(ctx context.Context, id, userName string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "entry ID is required")
	}
	if err := s.authorizeOwner(ctx, id, userName, "delete"); err != nil {
		return err
	}
	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.logger.Info("entry deleted", slog.String("id", id))
	return nil
}

// authorizeOwner fetches the entry and verifies the caller is its owner.
// The fetch doubles as the existence check, so an unknown id is NotFound
// before it can be Forbidden.
func (s *EntryService) authorizeOwner(ctx context.Context, id, userName, action string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return apperror.ValidationFailed("userName", "userName is required")
	}
	entry, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if entry.User == nil || entry.User.Name != userName {
		return apperror.Forbidden(fmt.Sprintf("only the owner can %s an entry", action))
	}
	return nil
}

// redact hides the content of a still-locked entry. Computed against the
// clock on every read; once LockedUntil passes the same entry serializes
// in full with no state change anywhere.
func (s *EntryService) redact(entry *model.Entry) {
	if entry.LockedAt(s.now()) {
		entry.Locked = true
		entry.Content = ""
		entry.ImageURL = nil
	}
}
