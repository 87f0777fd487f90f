package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
)

// CreateEntry inserts a new entry. The caller must have resolved UserID
// already (see FindOrCreateUser); ID and CreatedAt are filled in here.
func (db *DB) CreateEntry(ctx context.Context, entry *model.Entry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, type, content, year, image_url, locked_until, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		string(entry.Type),
		entry.Content,
		entry.Year,
		entry.ImageURL,
		entry.LockedUntil,
		entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", entry.UserID)
		}
		return fmt.Errorf("sqlite: creating entry: %w", err)
	}
	return nil
}

// GetEntry returns one entry with owner, reactions and comments expanded.
func (db *DB) GetEntry(ctx context.Context, id string) (*model.Entry, error) {
	var (
		entry model.Entry
		owner model.User
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT e.id, e.user_id, e.type, e.content, e.year, e.image_url, e.locked_until, e.created_at,
		        u.id, u.name, u.created_at
		 FROM entries e
		 JOIN users u ON u.id = e.user_id
		 WHERE e.id = ?`,
		id,
	).Scan(
		&entry.ID, &entry.UserID, &entry.Type, &entry.Content, &entry.Year,
		&entry.ImageURL, &entry.LockedUntil, &entry.CreatedAt,
		&owner.ID, &owner.Name, &owner.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("entry", id)
		}
		return nil, fmt.Errorf("sqlite: getting entry %s: %w", id, err)
	}
	entry.User = &owner

	if err := db.expandEntries(ctx, []*model.Entry{&entry}); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns entries newest-first, optionally filtered by owner
// name and/or type, each with the full nested expansion.
func (db *DB) ListEntries(ctx context.Context, filter repository.EntryFilter) ([]model.Entry, error) {
	query := `SELECT e.id, e.user_id, e.type, e.content, e.year, e.image_url, e.locked_until, e.created_at,
	                 u.id, u.name, u.created_at
	          FROM entries e
	          JOIN users u ON u.id = e.user_id`
	var (
		conds []string
		args  []any
	)
	if filter.UserName != "" {
		conds = append(conds, "u.name = ?")
		args = append(args, filter.UserName)
	}
	if filter.Type != "" {
		conds = append(conds, "e.type = ?")
		args = append(args, string(filter.Type))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.created_at DESC, e.id DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var (
			entry model.Entry
			owner model.User
		)
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Type, &entry.Content, &entry.Year,
			&entry.ImageURL, &entry.LockedUntil, &entry.CreatedAt,
			&owner.ID, &owner.Name, &owner.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning entry row: %w", err)
		}
		entry.User = &owner
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entries: %w", err)
	}

	ptrs := make([]*model.Entry, len(entries))
	for i := range entries {
		ptrs[i] = &entries[i]
	}
	if err := db.expandEntries(ctx, ptrs); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

// UpdateEntry applies a partial update and returns the re-expanded entry.
// Fields not present in the patch keep their prior values; ClearImage and
// ClearLock null out the nullable fields.
func (db *DB) UpdateEntry(ctx context.Context, id string, patch repository.EntryPatch) (*model.Entry, error) {
	var (
		sets []string
		args []any
	)
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	switch {
	case patch.ClearImage:
		sets = append(sets, "image_url = NULL")
	case patch.ImageURL != nil:
		sets = append(sets, "image_url = ?")
		args = append(args, *patch.ImageURL)
	}
	switch {
	case patch.ClearLock:
		sets = append(sets, "locked_until = NULL")
	case patch.LockedUntil != nil:
		sets = append(sets, "locked_until = ?")
		args = append(args, *patch.LockedUntil)
	}

	if len(sets) > 0 {
		args = append(args, id)
		result, err := db.conn.ExecContext(ctx,
			"UPDATE entries SET "+strings.Join(sets, ", ")+" WHERE id = ?",
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating entry %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("entry", id)
		}
	}

	// An empty patch is a no-op, but the caller still gets the current
	// state back (and NotFound if the id never existed).
	return db.GetEntry(ctx, id)
}

// DeleteEntry removes the entry. Reactions and comments go with it via
// ON DELETE CASCADE.
func (db *DB) DeleteEntry(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting entry %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("entry", id)
	}
	return nil
}

// expandEntries loads reactions and comments for a batch of entries with
// two queries instead of two per entry.
func (db *DB) expandEntries(ctx context.Context, entries []*model.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]any, len(entries))
	byID := make(map[string]*model.Entry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
		e.Reactions = []model.Reaction{}
		e.Comments = []model.Comment{}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := db.conn.QueryContext(ctx,
		`SELECT r.id, r.entry_id, r.user_id, r.emoji, r.created_at,
		        u.id, u.name, u.created_at
		 FROM reactions r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.entry_id IN (`+placeholders+`)
		 ORDER BY r.created_at ASC, r.id ASC`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading reactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			reaction model.Reaction
			reactor  model.User
		)
		if err := rows.Scan(
			&reaction.ID, &reaction.EntryID, &reaction.UserID, &reaction.Emoji, &reaction.CreatedAt,
			&reactor.ID, &reactor.Name, &reactor.CreatedAt,
		); err != nil {
			return fmt.Errorf("sqlite: scanning reaction row: %w", err)
		}
		reaction.User = &reactor
		if entry, ok := byID[reaction.EntryID]; ok {
			entry.Reactions = append(entry.Reactions, reaction)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating reactions: %w", err)
	}

	crows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.entry_id, c.user_id, c.content, c.created_at,
		        u.id, u.name, u.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.entry_id IN (`+placeholders+`)
		 ORDER BY c.created_at ASC, c.id ASC`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading comments: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var (
			comment model.Comment
			author  model.User
		)
		if err := crows.Scan(
			&comment.ID, &comment.EntryID, &comment.UserID, &comment.Content, &comment.CreatedAt,
			&author.ID, &author.Name, &author.CreatedAt,
		); err != nil {
			return fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comment.User = &author
		if entry, ok := byID[comment.EntryID]; ok {
			entry.Comments = append(entry.Comments, comment)
		}
	}
	if err := crows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return nil
}
