// Package storage owns the on-disk layout of user folders under the images root.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tair/styleswipe/internal/domain"
)

const (
	productsDir      = "products"
	productImagesDir = "product_images"
	productLinksDir  = "product_links"
	manifestFile     = "products.json"
	combinedDir      = "combined_images"
	likedDir         = "liked_photos"
)

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// photoExtensions are tried in order when looking up an uploaded angle photo
var photoExtensions = []string{".jpg", ".jpeg", ".png", ".JPG", ".JPEG", ".PNG"}

// CleanFolder reduces a request value such as "data/user_images/user_1"
// to its last segment and validates it.
func CleanFolder(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `\`, "/")
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if !folderPattern.MatchString(s) {
		return "", domain.NewValidation("invalid user folder %q", raw)
	}
	return s, nil
}

// Layout maps user folders and product ids to paths
type Layout struct {
	root string
}

func NewLayout(root string) *Layout {
	return &Layout{root: filepath.Clean(root)}
}

func (l *Layout) Root() string { return l.root }

func (l *Layout) UserDir(folder string) string {
	return filepath.Join(l.root, folder)
}

// EnsureUserDirs creates the user folder and its products tree
func (l *Layout) EnsureUserDirs(folder string) error {
	for _, dir := range []string{
		l.UserDir(folder),
		filepath.Join(l.productsRoot(folder), productImagesDir),
		filepath.Join(l.productsRoot(folder), productLinksDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// PhotoPath is where the upload for angle is written
func (l *Layout) PhotoPath(folder string, angle domain.Angle) string {
	return filepath.Join(l.UserDir(folder), string(angle)+".jpg")
}

// FindPhoto returns the uploaded photo for angle, trying the known extensions
func (l *Layout) FindPhoto(folder string, angle domain.Angle) (string, bool) {
	for _, ext := range photoExtensions {
		p := filepath.Join(l.UserDir(folder), string(angle)+ext)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func (l *Layout) productsRoot(folder string) string {
	return filepath.Join(l.UserDir(folder), productsDir)
}

func (l *Layout) ManifestPath(folder string) string {
	return filepath.Join(l.productsRoot(folder), manifestFile)
}

func (l *Layout) ProductImagePath(folder string, id uint) string {
	return filepath.Join(l.productsRoot(folder), productImagesDir, fmt.Sprintf("product_%d.jpg", id))
}

func (l *Layout) ProductLinkPath(folder string, id uint) string {
	return filepath.Join(l.productsRoot(folder), productLinksDir, fmt.Sprintf("product_%d_link.txt", id))
}

func (l *Layout) CombinedDir(folder string) string {
	return filepath.Join(l.UserDir(folder), combinedDir)
}

// CombinedPath names a generated image. n > 0 marks extra outputs of one call.
func (l *Layout) CombinedPath(folder string, id uint, angle domain.Angle, n int) string {
	name := fmt.Sprintf("product_%d_%s.jpg", id, angle)
	if n > 0 {
		name = fmt.Sprintf("product_%d_%s_%d.jpg", id, angle, n)
	}
	return filepath.Join(l.CombinedDir(folder), name)
}

// FindCombined returns the primary generated image for (id, angle) if present
func (l *Layout) FindCombined(folder string, id uint, angle domain.Angle) (string, bool) {
	p := l.CombinedPath(folder, id, angle, 0)
	return p, fileExists(p)
}

func (l *Layout) LikedDir(folder string) string {
	return filepath.Join(l.UserDir(folder), likedDir)
}

func (l *Layout) LikedProductDir(folder string, id uint) string {
	return filepath.Join(l.LikedDir(folder), fmt.Sprintf("product_%d", id))
}

// FindLiked returns the copied image for (id, angle), whatever its extension
func (l *Layout) FindLiked(folder string, id uint, angle domain.Angle) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(l.LikedProductDir(folder, id), string(angle)+".*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// Rel turns an absolute path under the root into the slash-separated form
// served by /api/image/.
func (l *Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Resolve maps a request path back to a regular file under the root.
// Paths escaping the root or naming a directory are not found.
func (l *Layout) Resolve(requested string) (string, error) {
	rel := strings.TrimPrefix(filepath.ToSlash(requested), "/")
	rel = strings.TrimPrefix(rel, filepath.ToSlash(l.root)+"/")
	rel = strings.TrimPrefix(rel, "data/user_images/")

	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", domain.NewNotFound("image")
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", domain.NewNotFound("image")
	}
	return full, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
