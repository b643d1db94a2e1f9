package media

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
)

const AvatarSize = 256

var kinds = map[string]string{
	".jpeg": models.MediaImage,
	".jpg":  models.MediaImage,
	".png":  models.MediaImage,
	".gif":  models.MediaImage,
	".mp4":  models.MediaVideo,
	".mov":  models.MediaVideo,
	".avi":  models.MediaVideo,
	".mkv":  models.MediaVideo,
}

var contentTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
}

// Store persists uploaded bytes and hands back the URL clients use.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes the object behind a URL returned by Put. Unknown URLs
	// are ignored.
	Delete(ctx context.Context, url string) error
}

// Kind classifies a file name as image or video by extension.
func Kind(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := kinds[ext]
	if !ok {
		return "", fmt.Errorf("%w: Only images and videos allowed", apperr.ErrValidation)
	}
	return kind, nil
}

// Service validates uploads and writes them to a Store.
type Service struct {
	store    Store
	maxBytes int64
}

func NewService(store Store, maxBytes int64) *Service {
	return &Service{store: store, maxBytes: maxBytes}
}

// Validate checks the extension allow-list and size limit and returns the
// media kind.
func (s *Service) Validate(filename string, size int64) (string, error) {
	kind, err := Kind(filename)
	if err != nil {
		return "", err
	}
	if size > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d MB", apperr.ErrValidation, filename, s.maxBytes>>20)
	}
	return kind, nil
}

// Save stores a post attachment under folder.
func (s *Service) Save(ctx context.Context, folder, filename string, data []byte) (models.Media, error) {
	kind, err := s.Validate(filename, int64(len(data)))
	if err != nil {
		return models.Media{}, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	url, err := s.store.Put(ctx, objectKey(folder, ext), contentTypes[ext], data)
	if err != nil {
		return models.Media{}, fmt.Errorf("store %s: %w", filename, err)
	}
	return models.Media{Type: kind, URL: url}, nil
}

// SaveAvatar crops the image to a square AvatarSize JPEG before storing it.
func (s *Service) SaveAvatar(ctx context.Context, filename string, data []byte) (string, error) {
	kind, err := s.Validate(filename, int64(len(data)))
	if err != nil {
		return "", err
	}
	if kind != models.MediaImage {
		return "", fmt.Errorf("%w: avatar must be an image", apperr.ErrValidation)
	}
	jpeg, err := NormalizeAvatar(data)
	if err != nil {
		return "", err
	}
	url, err := s.store.Put(ctx, objectKey("avatars", ".jpg"), "image/jpeg", jpeg)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return url, nil
}

// Remove deletes each URL, returning the first error after trying all.
func (s *Service) Remove(ctx context.Context, urls ...string) error {
	var first error
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.store.Delete(ctx, u); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NormalizeAvatar decodes an image, center-crops it to AvatarSize square
// and re-encodes it as JPEG.
func NormalizeAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image", apperr.ErrValidation)
	}
	square := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func objectKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}
