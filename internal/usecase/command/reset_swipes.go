package command

import (
	"context"
	"fmt"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/pkg/logger"
)

// ResetSwipesCommand represents the command to reset swipes
type ResetSwipesCommand struct {
	UserFolder string
}

// ResetSwipesResult is returned by ResetSwipesHandler
type ResetSwipesResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetSwipesHandler handles reset swipes command
type ResetSwipesHandler struct {
	users  domain.UserRepository
	swipes domain.SwipeRepository
	layout *storage.Layout
}

// NewResetSwipesHandler creates a new reset swipes handler
func NewResetSwipesHandler(users domain.UserRepository, swipes domain.SwipeRepository, layout *storage.Layout) *ResetSwipesHandler {
	return &ResetSwipesHandler{users: users, swipes: swipes, layout: layout}
}

// Handle deletes every swipe and like of the user and empties liked_photos
func (h *ResetSwipesHandler) Handle(ctx context.Context, cmd ResetSwipesCommand) (*ResetSwipesResult, error) {
	folder, err := storage.CleanFolder(cmd.UserFolder)
	if err != nil {
		return nil, err
	}
	user, err := h.users.EnsureByFolder(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if err := h.swipes.ResetUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to reset swipes: %w", err)
	}
	if err := h.layout.ResetLiked(folder); err != nil {
		return nil, err
	}

	logger.Info(ctx).Str("user_folder", folder).Msg("Swipes reset")
	return &ResetSwipesResult{Success: true, Message: "Swipe data reset"}, nil
}
