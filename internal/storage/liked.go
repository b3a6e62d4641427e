package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/logger"
)

// CopyLiked copies the generated angle images of a product into
// liked_photos/product_<id>/. Missing or unreadable images are logged and
// skipped. It returns the angles that were copied.
func (l *Layout) CopyLiked(ctx context.Context, folder string, id uint) []domain.Angle {
	dest := l.LikedProductDir(folder, id)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		logger.Error(ctx).Err(err).Str("user_folder", folder).Uint("product_id", id).Msg("Failed to create liked photos dir")
		return nil
	}

	var copied []domain.Angle
	for _, angle := range domain.Angles {
		src, ok := l.FindCombined(folder, id, angle)
		if !ok {
			logger.Warn(ctx).Str("user_folder", folder).Uint("product_id", id).Str("angle", string(angle)).Msg("No generated image to copy")
			continue
		}
		target := filepath.Join(dest, string(angle)+filepath.Ext(src))
		if err := copyFile(src, target); err != nil {
			logger.Error(ctx).Err(err).Str("user_folder", folder).Uint("product_id", id).Str("angle", string(angle)).Msg("Failed to copy liked image")
			continue
		}
		copied = append(copied, angle)
	}
	return copied
}

// ResetLiked empties the liked photos directory of folder
func (l *Layout) ResetLiked(folder string) error {
	dir := l.LikedDir(folder)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove liked photos: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("recreate liked photos: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
