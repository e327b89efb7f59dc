// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"image"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Upload limits
const (
	MaxUploadSize    = 10 * 1024 * 1024 // 10MB
	DefaultUploadDir = "./uploads"
	thumbWidth       = 480
)

// allowedImageExtensions maps accepted upload extensions to the format
// they are re-encoded as.
var allowedImageExtensions = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
	".gif":  imaging.GIF,
}

// UploadService stores event images on disk under uuid-based names and
// hands back stable relative references.
type UploadService struct {
	dir string
}

// NewUploadService creates an upload service rooted at dir, creating the
// directory if needed.
func NewUploadService(dir string) (*UploadService, error) {
	if dir == "" {
		dir = DefaultUploadDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &UploadService{dir: dir}, nil
}

// SaveImage validates and stores an uploaded image, returning a relative
// reference ("events/<uuid>.<ext>"). The file is decoded and re-encoded,
// which both normalizes it and rejects payloads that merely carry an
// image extension. A thumbnail variant is written next to the original.
func (s *UploadService) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxUploadSize {
		return "", fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	format, ok := allowedImageExtensions[ext]
	if !ok {
		return "", fmt.Errorf("file type %q is not allowed, use jpg, png or gif", ext)
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	name := uuid.New().String() + ext
	ref := filepath.Join("events", name)

	if err := os.MkdirAll(filepath.Join(s.dir, "events"), 0o755); err != nil {
		return "", fmt.Errorf("creating events dir: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(s.dir, ref), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}

	if err := s.saveThumbnail(img, name, format); err != nil {
		// The original is in place; a missing thumbnail is not fatal.
		_ = err
	}

	return ref, nil
}

func (s *UploadService) saveThumbnail(img image.Image, name string, format imaging.Format) error {
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	return imaging.Save(thumb, filepath.Join(s.dir, "events", "thumb_"+name), imaging.JPEGQuality(80))
}

// Remove deletes a stored image and its thumbnail by reference. Removal
// is best-effort; a missing file is not an error.
func (s *UploadService) Remove(ref string) error {
	clean := filepath.Clean(ref)
	if clean == "" || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid upload reference %q", ref)
	}

	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", clean, err)
	}

	thumb := filepath.Join(filepath.Dir(clean), "thumb_"+filepath.Base(clean))
	if err := os.Remove(filepath.Join(s.dir, thumb)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", thumb, err)
	}
	return nil
}

// Dir returns the root directory of the upload store, for static serving.
func (s *UploadService) Dir() string {
	return s.dir
}
