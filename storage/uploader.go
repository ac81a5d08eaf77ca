package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUploadsDisabled        = errors.New("file uploads are not configured")
	ErrUnsupportedContentType = errors.New("unsupported image content type")
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ExtensionForContentType maps the accepted image types to a file extension.
func ExtensionForContentType(contentType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
}

// LogoKey builds the object key for an entity logo, e.g. teams/<id>/logo-<uuid>.png.
// A fresh suffix per upload keeps CDN caches from serving the old image.
func LogoKey(prefix string, ownerID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s/logo-%s%s", prefix, ownerID, uuid.NewString(), ext)
}

type disabledUploader struct{}

// NewDisabledUploader is used when R2 is not configured: uploads fail with
// ErrUploadsDisabled and no public URLs are produced.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrUploadsDisabled
}

func (disabledUploader) Delete(context.Context, string) error {
	return ErrUploadsDisabled
}

func (disabledUploader) GetPublicURL(string) string {
	return ""
}
