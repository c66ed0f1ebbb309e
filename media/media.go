// Package media stores uploaded images under the media root.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Upload folders relative to the media root.
const (
	FolderRecipes = "recipes/images"
	FolderAvatars = "users"
)

var (
	ErrEmpty       = errors.New("empty image")
	ErrInvalidData = errors.New("invalid base64 image")
	ErrUnsupported = errors.New("unsupported image format")
)

var allowedExtensions = map[string]string{
	"jpeg": ".jpg",
	"jpg":  ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

type Store struct {
	Root     string
	BaseURL  string
	MaxWidth int
}

func NewStore(root, baseURL string, maxWidth int) *Store {
	return &Store{Root: root, BaseURL: strings.TrimRight(baseURL, "/"), MaxWidth: maxWidth}
}

// DecodeDataURI parses "data:image/<ext>;base64,<payload>" and returns the
// decoded bytes with the file extension to store them under.
func DecodeDataURI(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", ErrEmpty
	}
	header, payload, ok := strings.Cut(s, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, "", ErrInvalidData
	}
	ext, ok := allowedExtensions[strings.ToLower(strings.TrimPrefix(header, "data:image/"))]
	if !ok {
		return nil, "", ErrUnsupported
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmpty
	}
	return data, ext, nil
}

// SaveDataURI decodes, downsizes and writes the image. It returns the path
// relative to the media root, using forward slashes.
func (s *Store) SaveDataURI(folder, dataURI string) (string, error) {
	data, ext, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if s.MaxWidth > 0 && img.Bounds().Dx() > s.MaxWidth {
		img = imaging.Resize(img, s.MaxWidth, 0, imaging.Lanczos)
	}

	dir := filepath.Join(s.Root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	name := uuid.New().String() + ext
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path.Join(folder, name), nil
}

// Delete removes a stored file; missing files are ignored.
func (s *Store) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	full := filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+rel)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL returns the public address of a stored file, or "" for none.
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.BaseURL + "/" + strings.TrimLeft(rel, "/")
}
