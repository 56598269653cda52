// Package storage provides object storage backends for defect photo and
// attachment handling.
package storage

import (
	"context"
	"errors"
	"time"

	mediaapp "github.com/loomline/backend/internal/application/media"
)

var errMissingStorageKey = errors.New("storage key is required")

// StubObjectStorage satisfies ObjectStorageService without any backing
// store. Local development runs on it when no S3 credentials are
// configured; every presigned URL it hands out is fake but well formed.
type StubObjectStorage struct {
	BaseURL string
}

func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: "https://storage.example.com"}
}

var _ mediaapp.ObjectStorageService = (*StubObjectStorage)(nil)

func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errMissingStorageKey
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

func (s *StubObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errMissingStorageKey
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errMissingStorageKey
	}
	return nil
}

// ObjectExists reports true for any key so the upload confirmation flow
// keeps working without a real backend.
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errMissingStorageKey
	}
	return true, nil
}
