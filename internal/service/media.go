package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
)

// MaxImageBytes caps contest image uploads.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectUploader stores a blob and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// MediaService uploads contest images to object storage.
type MediaService struct {
	store    ObjectUploader
	contests *ContestService
	logger   *slog.Logger
}

// NewMediaService creates a MediaService. A nil store disables uploads.
func NewMediaService(store ObjectUploader, contests *ContestService, logger *slog.Logger) *MediaService {
	return &MediaService{store: store, contests: contests, logger: logger}
}

// Enabled reports whether object storage is configured.
func (s *MediaService) Enabled() bool {
	return s.store != nil
}

// ImageKey returns the object key for a contest image.
func ImageKey(contestID uuid.UUID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", domain.ErrValidation(fmt.Sprintf("unsupported image type %q", contentType))
	}
	return path.Join("contests", contestID.String(), uuid.New().String()+ext), nil
}

// UploadContestImage stores the image and points the contest at it.
func (s *MediaService) UploadContestImage(ctx context.Context, contestID uuid.UUID, body io.Reader, contentType string) (*domain.Contest, error) {
	if s.store == nil {
		return nil, domain.ErrUnavailable("object storage is not configured")
	}
	if _, err := s.contests.Get(ctx, contestID); err != nil {
		return nil, err
	}

	key, err := ImageKey(contestID, contentType)
	if err != nil {
		return nil, err
	}
	url, err := s.store.Upload(ctx, key, body, contentType)
	if err != nil {
		return nil, domain.ErrInternal("upload image", err)
	}

	s.logger.Info("contest image uploaded", "contest_id", contestID, "key", key)
	return s.contests.SetImage(ctx, contestID, url)
}
