// Package repository declares the storage interfaces the service layer
// programs against. Two implementations exist: sqlite (the document-store
// variant) and jsonfile (a single flat JSON array of entry documents).
// Services never import either — the backend is chosen at wiring time.
package repository

import (
	"context"
	"time"

	"github.com/ayakodama/wishboard/internal/model"
)

// EntryFilter narrows a ListEntries call. Zero values mean "no filter";
// combining both intersects.
type EntryFilter struct {
	UserName string          // only entries owned by this display name
	Type     model.EntryType // only MEMORY or only WISH
}

// EntryPatch is a partial update for an entry. It enumerates exactly the
// mutable fields and distinguishes three effects per field:
//
//	leave unchanged — the pointer is nil and the Clear flag is false
//	set             — the pointer is non-nil
//	clear           — the Clear flag is true (nullable fields only)
//
// The HTTP layer builds this from body-field presence (absent vs null vs
// value), so the repository never sees raw JSON.
type EntryPatch struct {
	Content *string

	ImageURL   *string
	ClearImage bool

	LockedUntil *time.Time
	ClearLock   bool
}

type UserRepository interface {
	// FindOrCreateUser returns the user with the given name, creating it
	// if absent. Two racing calls for the same name must converge on one
	// row (the storage layer's unique constraint breaks the tie).
	FindOrCreateUser(ctx context.Context, name string) (*model.User, error)

	// GetUserByName returns apperror.ErrNotFound for unknown names.
	GetUserByName(ctx context.Context, name string) (*model.User, error)
}

type EntryRepository interface {
	CreateEntry(ctx context.Context, entry *model.Entry) error

	// GetEntry returns the entry with owner, reactions (each with reactor)
	// and comments (each with author, oldest first) expanded.
	GetEntry(ctx context.Context, id string) (*model.Entry, error)

	// ListEntries returns entries newest-first with the same nested
	// expansion as GetEntry.
	ListEntries(ctx context.Context, filter EntryFilter) ([]model.Entry, error)

	// UpdateEntry applies the patch and returns the updated entry,
	// re-expanded.
	UpdateEntry(ctx context.Context, id string, patch EntryPatch) (*model.Entry, error)

	// DeleteEntry removes the entry and cascades to its reactions and
	// comments.
	DeleteEntry(ctx context.Context, id string) error
}

type ReactionRepository interface {
	// CreateReaction inserts the reaction. A duplicate
	// (entry, user, emoji) tuple is apperror.ErrConflict; an unknown
	// entry is apperror.ErrNotFound.
	CreateReaction(ctx context.Context, reaction *model.Reaction) error

	// DeleteReaction removes the exact tuple, apperror.ErrNotFound if it
	// does not exist.
	DeleteReaction(ctx context.Context, entryID, userID, emoji string) error
}

type CommentRepository interface {
	// ListComments returns the entry's comments oldest-first, each with
	// its author expanded.
	ListComments(ctx context.Context, entryID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// Store is the full storage surface a backend must provide.
type Store interface {
	UserRepository
	EntryRepository
	ReactionRepository
	CommentRepository
	Close() error
}
