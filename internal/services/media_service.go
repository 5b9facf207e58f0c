package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitecms/internal/common"
	"sitecms/internal/logging"
	"sitecms/internal/models"
)

var allowedMediaTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type MediaService interface {
	Upload(ctx context.Context, tenantID, filename, contentType string, size int64, reader io.Reader) (*models.MediaObject, error)
	URL(ctx context.Context, tenantID, key string) (string, error)
	Delete(ctx context.Context, tenantID, key string) error
}

type MediaOptions struct {
	Bucket         string
	URLExpiry      time.Duration
	MaxUploadBytes int64
}

type mediaService struct {
	store ObjectStore
	opts  MediaOptions
}

func NewMediaService(store ObjectStore, opts MediaOptions) MediaService {
	return &mediaService{store: store, opts: opts}
}

// Upload stores an image under the tenant's prefix and returns a presigned URL for it.
func (s *mediaService) Upload(ctx context.Context, tenantID, filename, contentType string, size int64, reader io.Reader) (*models.MediaObject, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	defaultExt, ok := allowedMediaTypes[contentType]
	if !ok {
		return nil, common.NewValidationError("file", "Only image uploads are allowed")
	}
	if size <= 0 {
		return nil, common.NewValidationError("file", "File is empty")
	}
	if s.opts.MaxUploadBytes > 0 && size > s.opts.MaxUploadBytes {
		return nil, common.NewValidationError("file", fmt.Sprintf("File exceeds %d bytes", s.opts.MaxUploadBytes))
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = defaultExt
	}
	key := fmt.Sprintf("%s/%s%s", tenantID, uuid.NewString(), ext)

	if err := s.store.PutObject(ctx, s.opts.Bucket, key, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	u, err := s.store.PresignedURL(ctx, s.opts.Bucket, key, s.opts.URLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign media url: %w", err)
	}

	logging.Ctx(ctx).Info().Str("key", key).Int64("size", size).Msg("media uploaded")
	return &models.MediaObject{Key: key, URL: u, ContentType: contentType, Size: size}, nil
}

func (s *mediaService) URL(ctx context.Context, tenantID, key string) (string, error) {
	if err := checkMediaKey(tenantID, key); err != nil {
		return "", err
	}
	return s.store.PresignedURL(ctx, s.opts.Bucket, key, s.opts.URLExpiry)
}

func (s *mediaService) Delete(ctx context.Context, tenantID, key string) error {
	if err := checkMediaKey(tenantID, key); err != nil {
		return err
	}
	if err := s.store.RemoveObject(ctx, s.opts.Bucket, key); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}

// checkMediaKey keeps a site inside its own prefix.
func checkMediaKey(tenantID, key string) error {
	if key == "" {
		return common.NewValidationError("key", "key is required")
	}
	if !strings.HasPrefix(key, tenantID+"/") || strings.Contains(key, "..") {
		return common.ErrNotFound
	}
	return nil
}
