package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
)

// ListComments returns the entry's comments oldest-first, each with its
// author. An entry with no comments (or a deleted entry) yields an empty
// slice, not an error — the cascade must look like "nothing here".
func (db *DB) ListComments(ctx context.Context, entryID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.entry_id, c.user_id, c.content, c.created_at,
		        u.id, u.name, u.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.entry_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			comment model.Comment
			author  model.User
		)
		if err := rows.Scan(
			&comment.ID, &comment.EntryID, &comment.UserID, &comment.Content, &comment.CreatedAt,
			&author.ID, &author.Name, &author.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comment.User = &author
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// CreateComment inserts a comment; ID and CreatedAt are filled in here.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, entry_id, user_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.EntryID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("entry", comment.EntryID)
		}
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

// GetComment returns one comment with its author expanded.
func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var (
		comment model.Comment
		author  model.User
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT c.id, c.entry_id, c.user_id, c.content, c.created_at,
		        u.id, u.name, u.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.id = ?`,
		id,
	).Scan(
		&comment.ID, &comment.EntryID, &comment.UserID, &comment.Content, &comment.CreatedAt,
		&author.ID, &author.Name, &author.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	comment.User = &author
	return &comment, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
