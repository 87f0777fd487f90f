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

// ReactionService handles emoji reactions. The de-duplication invariant —
// one (entry, user, emoji) tuple, ever — lives in the storage layer; this
// layer only validates and resolves the user.
type ReactionService struct {
	users     repository.UserRepository
	reactions repository.ReactionRepository
	logger    *slog.Logger
}

func NewReactionService(users repository.UserRepository, reactions repository.ReactionRepository, logger *slog.Logger) *ReactionService {
	return &ReactionService{
		users:     users,
		reactions: reactions,
		logger:    logger,
	}
}

// React adds an emoji reaction, creating the user on first reference.
// A duplicate tuple comes back as apperror.ErrConflict.
func (s *ReactionService) React(ctx context.Context, entryID, userName, emoji string) (*model.Reaction, error) {
	entryID = strings.TrimSpace(entryID)
	userName = strings.TrimSpace(userName)
	emoji = strings.TrimSpace(emoji)
	if entryID == "" {
		return nil, apperror.ValidationFailed("entryId", "entryId is required")
	}
	if userName == "" {
		return nil, apperror.ValidationFailed("userName", "userName is required")
	}
	if emoji == "" {
		return nil, apperror.ValidationFailed("emoji", "emoji is required")
	}
	if len(emoji) > MaxEmojiLength {
		return nil, apperror.ValidationFailed("emoji", "emoji is too long")
	}

	user, err := s.users.FindOrCreateUser(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	reaction := &model.Reaction{
		EntryID: entryID,
		UserID:  user.ID,
		Emoji:   emoji,
	}
	if err := s.reactions.CreateReaction(ctx, reaction); err != nil {
		// Conflict and not-found are expected outcomes, not failures
		// worth an error log.
		return nil, err
	}
	reaction.User = user

	s.logger.Info("reaction added",
		slog.String("entryId", entryID),
		slog.String("user", user.Name),
		slog.String("emoji", emoji),
	)
	return reaction, nil
}

// Unreact removes the exact (entry, user, emoji) tuple. Unknown user and
// unknown tuple are both not-found — there is nothing to remove either way.
func (s *ReactionService) Unreact(ctx context.Context, entryID, userName, emoji string) error {
	entryID = strings.TrimSpace(entryID)
	userName = strings.TrimSpace(userName)
	emoji = strings.TrimSpace(emoji)
	if entryID == "" || userName == "" || emoji == "" {
		return apperror.ValidationFailed("", "entryId, userName and emoji are required")
	}

	user, err := s.users.GetUserByName(ctx, userName)
	if err != nil {
		return err
	}
	if err := s.reactions.DeleteReaction(ctx, entryID, user.ID, emoji); err != nil {
		return err
	}

	s.logger.Info("reaction removed",
		slog.String("entryId", entryID),
		slog.String("user", user.Name),
		slog.String("emoji", emoji),
	)
	return nil
}
