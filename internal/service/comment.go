package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/model"
	"github.com/ayakodama/wishboard/internal/repository"
)

// CommentService handles comments on entries. Creation lazily resolves the
// author's user record; deletion is author-only.
type CommentService struct {
	users    repository.UserRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewCommentService(users repository.UserRepository, comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		users:    users,
		comments: comments,
		logger:   logger,
	}
}

// ListForEntry returns an entry's comments oldest-first.
func (s *CommentService) ListForEntry(ctx context.Context, entryID string) ([]model.Comment, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return nil, apperror.ValidationFailed("entryId", "entryId is required")
	}
	comments, err := s.comments.ListComments(ctx, entryID)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("entryId", entryID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Add creates a comment, creating the author's user record if absent.
func (s *CommentService) Add(ctx context.Context, entryID, userName, content string) (*model.Comment, error) {
	entryID = strings.TrimSpace(entryID)
	userName = strings.TrimSpace(userName)
	content = strings.TrimSpace(content)
	if entryID == "" {
		return nil, apperror.ValidationFailed("entryId", "entryId is required")
	}
	if userName == "" {
		return nil, apperror.ValidationFailed("userName", "userName is required")
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxCommentLength))
	}

	user, err := s.users.FindOrCreateUser(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	comment := &model.Comment{
		EntryID: entryID,
		UserID:  user.ID,
		Content: content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("entryId", entryID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	comment.User = user

	s.logger.Info("comment added",
		slog.String("id", comment.ID),
		slog.String("entryId", entryID),
		slog.String("user", user.Name),
	)
	return comment, nil
}

// Delete removes a comment. The supplied userName must match the author's
// display name; anyone else gets Forbidden, an unknown id gets NotFound.
func (s *CommentService) Delete(ctx context.Context, id, userName string) error {
	id = strings.TrimSpace(id)
	userName = strings.TrimSpace(userName)
	if id == "" {
		return apperror.ValidationFailed("id", "comment ID is required")
	}
	if userName == "" {
		return apperror.ValidationFailed("userName", "userName is required")
	}

	comment, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.User == nil || comment.User.Name != userName {
		return apperror.Forbidden("only the author can delete a comment")
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return err
	}

	s.logger.Info("comment deleted", slog.String("id", id))
	return nil
}
