package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/metrics"
	"github.com/yourusername/video-sharing-platform/internal/validation"
)

// ErrMediaDisabled is returned by the no-op media store
var ErrMediaDisabled = errors.New("media storage is not configured")

// MediaKind names the folder an uploaded object is stored under
type MediaKind string

const (
	MediaAvatar     MediaKind = "avatars"
	MediaCoverImage MediaKind = "cover-images"
	MediaVideo      MediaKind = "videos"
	MediaThumbnail  MediaKind = "thumbnails"
)

func (k MediaKind) allowedTypes() map[string]bool {
	if k == MediaVideo {
		return validation.VideoMimeTypes
	}
	return validation.ImageMimeTypes
}

// ObjectStore is the external media collaborator
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	ObjectName(url string) (string, bool)
}

// DisabledObjectStore rejects uploads when no media backend is configured
type DisabledObjectStore struct{}

func (DisabledObjectStore) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrMediaDisabled
}

func (DisabledObjectStore) Delete(context.Context, string) error { return nil }

func (DisabledObjectStore) ObjectName(string) (string, bool) { return "", false }

// MediaService validates uploaded files and stores them behind a circuit breaker
type MediaService struct {
	store          ObjectStore
	breaker        *gobreaker.CircuitBreaker
	maxUploadBytes int64
	logger         *logrus.Logger
}

func NewMediaService(store ObjectStore, breaker *gobreaker.CircuitBreaker, maxUploadBytes int64, logger *logrus.Logger) *MediaService {
	return &MediaService{
		store:          store,
		breaker:        breaker,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload validates the file against the kind and stores it under the owner's prefix
func (s *MediaService) Upload(ctx context.Context, ownerID string, kind MediaKind, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperror.Validation(fmt.Sprintf("%s file is required", kind))
	}

	contentType := file.Header.Get("Content-Type")
	if err := validation.ValidateMimeType(contentType, kind.allowedTypes()); err != nil {
		return "", apperror.Validation(err.Error(), fmt.Sprintf("unsupported content type %q", contentType))
	}
	if err := validation.ValidateFileSize(file.Size, 1, s.maxUploadBytes); err != nil {
		return "", apperror.Validation(err.Error())
	}

	objectName, err := validation.GenerateMediaObjectName(ownerID, string(kind), uuid.NewString(), file.Filename)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return "", apperror.Unknown(err)
	}
	defer src.Close()

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.Upload(ctx, objectName, src, file.Size, contentType)
	})
	metrics.RecordMediaOperation("upload", string(kind), err)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"object": objectName,
			"kind":   kind,
		}).Error("Failed to upload media")
		return "", apperror.Persistence("failed to upload "+string(kind), err)
	}

	return result.(string), nil
}

// UploadOptional uploads file when present and returns "" otherwise
func (s *MediaService) UploadOptional(ctx context.Context, ownerID string, kind MediaKind, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", nil
	}
	return s.Upload(ctx, ownerID, kind, file)
}

// DeleteByURL removes an object this service stored. Failures are logged and swallowed.
func (s *MediaService) DeleteByURL(ctx context.Context, url string) {
	if url == "" {
		return
	}
	objectName, ok := s.store.ObjectName(url)
	if !ok {
		return
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.Delete(ctx, objectName)
	})
	metrics.RecordMediaOperation("delete", "", err)
	if err != nil {
		s.logger.WithError(err).WithField("object", objectName).Warn("Failed to delete media")
	}
}
