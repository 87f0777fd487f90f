// Package jsonfile implements the repository interfaces on a single flat
// JSON file: one array of entry documents, nothing else.
//
// This is the lightweight deployment — no database process, no driver.
// Each entry document embeds its reactions and comments, so the file stays
// a plain entries array while every endpoint remains serviceable, and
// "cascade delete" is simply dropping the document. Users are implicit:
// the display name IS the identity, so user ids in this backend are the
// names themselves and no user records are persisted.
//
// Every operation takes the store lock, reads the file, mutates, and
// writes it back through a temp-file rename, so a crash mid-write never
// leaves a half-written board behind. That is obviously not a
// high-throughput design; it does not need to be for two users.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store persists the board as a JSON array at path.
type Store struct {
	mu   sync.Mutex
	path string
}

// entryDoc is the on-disk shape. The "_id" key and the inline user name
// match the original flat-file layout of the board.
type entryDoc struct {
	ID          string          `json:"_id"`
	User        string          `json:"user"`
	Type        model.EntryType `json:"type"`
	Content     string          `json:"content"`
	Year        int             `json:"year"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	LockedUntil *time.Time      `json:"lockedUntil,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Reactions   []reactionDoc   `json:"reactions,omitempty"`
	Comments    []commentDoc    `json:"comments,omitempty"`
}

type reactionDoc struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentDoc struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// New creates a store backed by the file at path. The file is created
// (with an empty array) if it does not exist.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data directory: %w", err)
	}
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save([]entryDoc{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("jsonfile: checking %s: %w", path, err)
	}
	// Fail fast on an unreadable or corrupt file.
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close is a no-op; the file is closed after every write.
func (s *Store) Close() error {
	return nil
}

func (s *Store) load() ([]entryDoc, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: reading %s: %w", s.path, err)
	}
	var docs []entryDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("jsonfile: parsing %s: %w", s.path, err)
	}
	return docs, nil
}

func (s *Store) save(docs []entryDoc) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding entries: %w", err)
	}
	// Write-then-rename so readers never observe a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonfile: replacing %s: %w", s.path, err)
	}
	return nil
}

// userFor synthesizes the user record for a display name. The name is the
// identity key, so it doubles as the id.
func userFor(name string) *model.User {
	return &model.User{ID: name, Name: name}
}

// FindOrCreateUser is trivially satisfied here: users are not persisted,
// so resolving a name just mints its record.
func (s *Store) FindOrCreateUser(_ context.Context, name string) (*model.User, error) {
	u := userFor(name)
	u.CreatedAt = time.Now().UTC()
	return u, nil
}

// GetUserByName reports a user as existing only if the name has appeared
// somewhere on the board — as an owner, reactor, or commenter.
func (s *Store) GetUserByName(_ context.Context, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.User == name {
			return userFor(name), nil
		}
		for _, r := range d.Reactions {
			if r.User == name {
				return userFor(name), nil
			}
		}
		for _, c := range d.Comments {
			if c.User == name {
				return userFor(name), nil
			}
		}
	}
	return nil, apperror.NotFound("user", name)
}

func (s *Store) CreateEntry(_ context.Context, entry *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}

	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now().UTC()
	docs = append(docs, entryDoc{
		ID:          entry.ID,
		User:        entry.UserID,
		Type:        entry.Type,
		Content:     entry.Content,
		Year:        entry.Year,
		ImageURL:    entry.ImageURL,
		LockedUntil: entry.LockedUntil,
		CreatedAt:   entry.CreatedAt,
	})
	return s.save(docs)
}

func (s *Store) GetEntry(_ context.Context, id string) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return docs[i].toModel(), nil
		}
	}
	return nil, apperror.NotFound("entry", id)
}

func (s *Store) ListEntries(_ context.Context, filter repository.EntryFilter) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}

	entries := []model.Entry{}
	for i := range docs {
		if filter.UserName != "" && docs[i].User != filter.UserName {
			continue
		}
		if filter.Type != "" && docs[i].Type != filter.Type {
			continue
		}
		entries = append(entries, *docs[i].toModel())
	}
	// Newest first, ties broken by id so the order is stable.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, patch repository.EntryPatch) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID != id {
			continue
		}
		if patch.Content != nil {
			docs[i].Content = *patch.Content
		}
		switch {
		case patch.ClearImage:
			docs[i].ImageURL = nil
		case patch.ImageURL != nil:
			docs[i].ImageURL = patch.ImageURL
		}
		switch {
		case patch.ClearLock:
			docs[i].LockedUntil = nil
		case patch.LockedUntil != nil:
			docs[i].LockedUntil = patch.LockedUntil
		}
		if err := s.save(docs); err != nil {
			return nil, err
		}
		return docs[i].toModel(), nil
	}
	return nil, apperror.NotFound("entry", id)
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	for i := range docs {
		if docs[i].ID == id {
			// Reactions and comments live inside the document, so the
			// cascade is structural.
			docs = append(docs[:i], docs[i+1:]...)
			return s.save(docs)
		}
	}
	return apperror.NotFound("entry", id)
}

func (s *Store) CreateReaction(_ context.Context, reaction *model.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	for i := range docs {
		if docs[i].ID != reaction.EntryID {
			continue
		}
		for _, r := range docs[i].Reactions {
			if r.User == reaction.UserID && r.Emoji == reaction.Emoji {
				return apperror.Conflict("already reacted with this emoji")
			}
		}
		reaction.ID = xid.New().String()
		reaction.CreatedAt = time.Now().UTC()
		docs[i].Reactions = append(docs[i].Reactions, reactionDoc{
			ID:        reaction.ID,
			User:      reaction.UserID,
			Emoji:     reaction.Emoji,
			CreatedAt: reaction.CreatedAt,
		})
		reaction.User = userFor(reaction.UserID)
		return s.save(docs)
	}
	return apperror.NotFound("entry", reaction.EntryID)
}

func (s *Store) DeleteReaction(_ context.Context, entryID, userID, emoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	for i := range docs {
		if docs[i].ID != entryID {
			continue
		}
		for j, r := range docs[i].Reactions {
			if r.User == userID && r.Emoji == emoji {
				docs[i].Reactions = append(docs[i].Reactions[:j], docs[i].Reactions[j+1:]...)
				return s.save(docs)
			}
		}
		break
	}
	return apperror.NotFound("reaction", entryID)
}

func (s *Store) ListComments(_ context.Context, entryID string) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	comments := []model.Comment{}
	for i := range docs {
		if docs[i].ID != entryID {
			continue
		}
		for _, c := range docs[i].Comments {
			comments = append(comments, c.toModel(entryID))
		}
		break
	}
	// Already stored in insertion order, which is creation order.
	return comments, nil
}

func (s *Store) CreateComment(_ context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	for i := range docs {
		if docs[i].ID != comment.EntryID {
			continue
		}
		comment.ID = xid.New().String()
		comment.CreatedAt = time.Now().UTC()
		docs[i].Comments = append(docs[i].Comments, commentDoc{
			ID:        comment.ID,
			User:      comment.UserID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		})
		comment.User = userFor(comment.UserID)
		return s.save(docs)
	}
	return apperror.NotFound("entry", comment.EntryID)
}

func (s *Store) GetComment(_ context.Context, id string) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		for _, c := range docs[i].Comments {
			if c.ID == id {
				m := c.toModel(docs[i].ID)
				return &m, nil
			}
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	for i := range docs {
		for j, c := range docs[i].Comments {
			if c.ID == id {
				docs[i].Comments = append(docs[i].Comments[:j], docs[i].Comments[j+1:]...)
				return s.save(docs)
			}
		}
	}
	return apperror.NotFound("comment", id)
}

func (d *entryDoc) toModel() *model.Entry {
	entry := &model.Entry{
		ID:          d.ID,
		UserID:      d.User,
		Type:        d.Type,
		Content:     d.Content,
		Year:        d.Year,
		ImageURL:    d.ImageURL,
		LockedUntil: d.LockedUntil,
		CreatedAt:   d.CreatedAt,
		User:        userFor(d.User),
		Reactions:   []model.Reaction{},
		Comments:    []model.Comment{},
	}
	for _, r := range d.Reactions {
		entry.Reactions = append(entry.Reactions, model.Reaction{
			ID:        r.ID,
			EntryID:   d.ID,
			UserID:    r.User,
			Emoji:     r.Emoji,
			CreatedAt: r.CreatedAt,
			User:      userFor(r.User),
		})
	}
	for _, c := range d.Comments {
		entry.Comments = append(entry.Comments, c.toModel(d.ID))
	}
	return entry
}

func (c commentDoc) toModel(entryID string) model.Comment {
	return model.Comment{
		ID:        c.ID,
		EntryID:   entryID,
		UserID:    c.User,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		User:      userFor(c.User),
	}
}
