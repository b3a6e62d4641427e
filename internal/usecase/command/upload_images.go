package command

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/pkg/imageutil"
	"github.com/tair/styleswipe/pkg/logger"
)

const (
	uploadMaxSize = 1024
	uploadQuality = 90
)

// UploadImagesCommand carries the three angle photos of a user
type UploadImagesCommand struct {
	UserFolder string
	Images     map[domain.Angle][]byte
}

// CompressionInfo summarizes the recompression of one photo
type CompressionInfo struct {
	OriginalKB   float64 `json:"original_kb"`
	CompressedKB float64 `json:"compressed_kb"`
	Reduction    string  `json:"reduction"`
	Dimensions   string  `json:"dimensions"`
}

// UploadImagesResult is returned by UploadImagesHandler
type UploadImagesResult struct {
	UserFolder  string                     `json:"user_folder"`
	UserID      uint                       `json:"user_id"`
	SavedFiles  map[string]string          `json:"saved_files"`
	Compression map[string]CompressionInfo `json:"compression"`
}

// UploadImagesHandler handles upload images command
type UploadImagesHandler struct {
	users  domain.UserRepository
	layout *storage.Layout
	now    func() time.Time
}

// NewUploadImagesHandler creates a new upload images handler
func NewUploadImagesHandler(users domain.UserRepository, layout *storage.Layout) *UploadImagesHandler {
	return &UploadImagesHandler{users: users, layout: layout, now: time.Now}
}

// Handle executes the upload images command
func (h *UploadImagesHandler) Handle(ctx context.Context, cmd UploadImagesCommand) (*UploadImagesResult, error) {
	for _, angle := range domain.Angles {
		if len(cmd.Images[angle]) == 0 {
			return nil, domain.NewValidation("%s image is required", angle)
		}
	}

	folder := fmt.Sprintf("user_%d", h.now().Unix())
	if cmd.UserFolder != "" {
		var err error
		if folder, err = storage.CleanFolder(cmd.UserFolder); err != nil {
			return nil, err
		}
	}

	if err := h.layout.EnsureUserDirs(folder); err != nil {
		return nil, fmt.Errorf("failed to create user folder: %w", err)
	}
	user, err := h.users.EnsureByFolder(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	result := &UploadImagesResult{
		UserFolder:  folder,
		UserID:      user.ID,
		SavedFiles:  make(map[string]string, len(domain.Angles)),
		Compression: make(map[string]CompressionInfo, len(domain.Angles)),
	}

	for _, angle := range domain.Angles {
		out, stats, err := imageutil.Compress(cmd.Images[angle], uploadMaxSize, uploadQuality)
		if err != nil {
			return nil, domain.NewValidation("%s image could not be decoded", angle)
		}
		path := h.layout.PhotoPath(folder, angle)
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return nil, fmt.Errorf("failed to save %s image: %w", angle, err)
		}
		rel := h.layout.Rel(path)

		if err := h.users.UpsertImage(ctx, &domain.UserImage{UserID: user.ID, Angle: angle, ImagePath: rel}); err != nil {
			return nil, fmt.Errorf("failed to record %s image: %w", angle, err)
		}

		result.SavedFiles[string(angle)] = rel
		result.Compression[string(angle)] = CompressionInfo{
			OriginalKB:   kilobytes(stats.OriginalBytes),
			CompressedKB: kilobytes(stats.CompressedBytes),
			Reduction:    fmt.Sprintf("%.0f%%", stats.ReductionPercent()),
			Dimensions:   stats.Dimensions(),
		}
		logger.Info(ctx).
			Str("user_folder", folder).
			Str("angle", string(angle)).
			Int("original_bytes", stats.OriginalBytes).
			Int("compressed_bytes", stats.CompressedBytes).
			Msg("Photo saved")
	}

	return result, nil
}

func kilobytes(n int) float64 {
	return math.Round(float64(n)/1024*10) / 10
}
