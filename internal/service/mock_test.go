package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
)

// mockStore is a hand-written in-memory implementation of the repository
// interfaces. Services are tested against it with plain function calls —
// no database, no HTTP. It mirrors the storage-layer invariants the
// services rely on: unique user names, the unique reaction tuple, and the
// entry → reactions/comments cascade.
type mockStore struct {
	users     map[string]*model.User // keyed by name
	entries   map[string]*model.Entry
	reactions []model.Reaction
	comments  map[string]*model.Comment
	nextID    int

	failNext error // when set, the next call returns this and clears it
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*model.User),
		entries:  make(map[string]*model.Entry),
		comments: make(map[string]*model.Comment),
	}
}

func (m *mockStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockStore) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockStore) FindOrCreateUser(_ context.Context, name string) (*model.User, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	if u, ok := m.users[name]; ok {
		copied := *u
		return &copied, nil
	}
	u := &model.User{ID: m.id("user"), Name: name, CreatedAt: time.Now()}
	m.users[name] = u
	copied := *u
	return &copied, nil
}

func (m *mockStore) GetUserByName(_ context.Context, name string) (*model.User, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	u, ok := m.users[name]
	if !ok {
		return nil, apperror.NotFound("user", name)
	}
	copied := *u
	return &copied, nil
}

func (m *mockStore) CreateEntry(_ context.Context, entry *model.Entry) error {
	if err := m.fail(); err != nil {
		return err
	}
	entry.ID = m.id("entry")
	entry.CreatedAt = time.Now()
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

// expand returns a deep-enough copy of the entry with its owner, reactions
// and comments attached, the way the real stores do on read.
func (m *mockStore) expand(e *model.Entry) *model.Entry {
	out := *e
	for _, u := range m.users {
		if u.ID == e.UserID {
			owner := *u
			out.User = &owner
		}
	}
	out.Reactions = []model.Reaction{}
	for _, r := range m.reactions {
		if r.EntryID == e.ID {
			out.Reactions = append(out.Reactions, r)
		}
	}
	out.Comments = []model.Comment{}
	for _, c := range m.comments {
		if c.EntryID == e.ID {
			out.Comments = append(out.Comments, *c)
		}
	}
	sort.Slice(out.Comments, func(i, j int) bool {
		return out.Comments[i].CreatedAt.Before(out.Comments[j].CreatedAt)
	})
	return &out
}

func (m *mockStore) GetEntry(_ context.Context, id string) (*model.Entry, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	e, ok := m.entries[id]
	if !ok {
		return nil, apperror.NotFound("entry", id)
	}
	return m.expand(e), nil
}

func (m *mockStore) ListEntries(_ context.Context, filter repository.EntryFilter) ([]model.Entry, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	result := []model.Entry{}
	for _, e := range m.entries {
		expanded := m.expand(e)
		if filter.UserName != "" && (expanded.User == nil || expanded.User.Name != filter.UserName) {
			continue
		}
		if filter.Type != "" && expanded.Type != filter.Type {
			continue
		}
		result = append(result, *expanded)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockStore) UpdateEntry(_ context.Context, id string, patch repository.EntryPatch) (*model.Entry, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	e, ok := m.entries[id]
	if !ok {
		return nil, apperror.NotFound("entry", id)
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	switch {
	case patch.ClearImage:
		e.ImageURL = nil
	case patch.ImageURL != nil:
		e.ImageURL = patch.ImageURL
	}
	switch {
	case patch.ClearLock:
		e.LockedUntil = nil
	case patch.LockedUntil != nil:
		e.LockedUntil = patch.LockedUntil
	}
	return m.expand(e), nil
}

func (m *mockStore) DeleteEntry(_ context.Context, id string) error {
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.entries[id]; !ok {
		return apperror.NotFound("entry", id)
	}
	delete(m.entries, id)
	kept := m.reactions[:0]
	for _, r := range m.reactions {
		if r.EntryID != id {
			kept = append(kept, r)
		}
	}
	m.reactions = kept
	for cid, c := range m.comments {
		if c.EntryID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *mockStore) CreateReaction(_ context.Context, reaction *model.Reaction) error {
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.entries[reaction.EntryID]; !ok {
		return apperror.NotFound("entry", reaction.EntryID)
	}
	for _, r := range m.reactions {
		if r.EntryID == reaction.EntryID && r.UserID == reaction.UserID && r.Emoji == reaction.Emoji {
			return apperror.Conflict("already reacted with this emoji")
		}
	}
	reaction.ID = m.id("reaction")
	reaction.CreatedAt = time.Now()
	m.reactions = append(m.reactions, *reaction)
	return nil
}

func (m *mockStore) DeleteReaction(_ context.Context, entryID, userID, emoji string) error {
	if err := m.fail(); err != nil {
		return err
	}
	for i, r := range m.reactions {
		if r.EntryID == entryID && r.UserID == userID && r.Emoji == emoji {
			m.reactions = append(m.reactions[:i], m.reactions[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("reaction", entryID)
}

func (m *mockStore) ListComments(_ context.Context, entryID string) ([]model.Comment, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.EntryID == entryID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockStore) CreateComment(_ context.Context, comment *model.Comment) error {
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.entries[comment.EntryID]; !ok {
		return apperror.NotFound("entry", comment.EntryID)
	}
	comment.ID = m.id("comment")
	comment.CreatedAt = time.Now()
	for _, u := range m.users {
		if u.ID == comment.UserID {
			author := *u
			comment.User = &author
		}
	}
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockStore) GetComment(_ context.Context, id string) (*model.Comment, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	c, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	copied := *c
	return &copied, nil
}

func (m *mockStore) DeleteComment(_ context.Context, id string) error {
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEntryService(t *testing.T) (*EntryService, *mockStore) {
	t.Helper()
	store := newMockStore()
	return NewEntryService(store, store, testLogger()), store
}

func newTestReactionService(t *testing.T) (*ReactionService, *mockStore) {
	t.Helper()
	store := newMockStore()
	return NewReactionService(store, store, testLogger()), store
}

func newTestCommentService(t *testing.T) (*CommentService, *mockStore) {
	t.Helper()
	store := newMockStore()
	return NewCommentService(store, store, testLogger()), store
}
