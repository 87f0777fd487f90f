package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
)

// CreateReaction inserts a reaction. The UNIQUE(entry_id, user_id, emoji)
// index is the whole de-duplication story: concurrent duplicates race at
// the storage layer and the loser gets the conflict, no app-level locking.
func (db *DB) CreateReaction(ctx context.Context, reaction *model.Reaction) error {
	reaction.ID = xid.New().String()
	reaction.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reactions (id, entry_id, user_id, emoji, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		reaction.ID,
		reaction.EntryID,
		reaction.UserID,
		reaction.Emoji,
		reaction.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("already reacted with this emoji")
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("entry", reaction.EntryID)
		}
		return fmt.Errorf("sqlite: creating reaction: %w", err)
	}
	return nil
}

// DeleteReaction removes the exact (entry, user, emoji) tuple.
func (db *DB) DeleteReaction(ctx context.Context, entryID, userID, emoji string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM reactions WHERE entry_id = ? AND user_id = ? AND emoji = ?`,
		entryID, userID, emoji,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting reaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("reaction", entryID)
	}
	return nil
}
