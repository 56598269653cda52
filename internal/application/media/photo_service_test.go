package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loomline/backend/internal/domain/shared"
)

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

func TestPhotoService_InitiateUpload(t *testing.T) {
	storage := new(MockObjectStorage)
	service := NewPhotoService(storage)
	orderID := uuid.New()
	expiresAt := time.Now().Add(15 * time.Minute)

	storage.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "orders/"+orderID.String()+"/photos/") && strings.HasSuffix(key, ".jpg")
	}), "image/jpeg", 15*time.Minute).Return("https://storage/upload", expiresAt, nil)

	resp, err := service.InitiateUpload(context.Background(), InitiateUploadRequest{
		OrderID:     orderID,
		FileName:    "knitting-progress.JPG",
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://storage/upload", resp.UploadURL)
	assert.Equal(t, expiresAt, resp.ExpiresAt)
	assert.Contains(t, resp.StorageKey, orderID.String())
	storage.AssertExpectations(t)
}

func TestPhotoService_InitiateUpload_DisallowedContentType(t *testing.T) {
	storage := new(MockObjectStorage)
	service := NewPhotoService(storage)

	_, err := service.InitiateUpload(context.Background(), InitiateUploadRequest{
		OrderID:     uuid.New(),
		FileName:    "diagram.svg",
		ContentType: "image/svg+xml",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DISALLOWED_CONTENT_TYPE", domainErr.Code)
	storage.AssertNotCalled(t, "GenerateUploadURL")
}

func TestPhotoService_InitiateUpload_StorageFailure(t *testing.T) {
	storage := new(MockObjectStorage)
	service := NewPhotoService(storage)

	storage.On("GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", time.Time{}, errors.New("connection refused"))

	_, err := service.InitiateUpload(context.Background(), InitiateUploadRequest{
		OrderID:     uuid.New(),
		FileName:    "photo.png",
		ContentType: "image/png",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPLOAD_URL_FAILED", domainErr.Code)
}

func TestPhotoService_ResolveDownloadURLs(t *testing.T) {
	storage := new(MockObjectStorage)
	service := NewPhotoService(storage)
	expiresAt := time.Now().Add(time.Hour)

	storage.On("GenerateDownloadURL", mock.Anything, "orders/a/photos/1.jpg", time.Hour).
		Return("https://storage/download/1", expiresAt, nil)
	storage.On("GenerateDownloadURL", mock.Anything, "orders/a/photos/2.jpg", time.Hour).
		Return("", time.Time{}, errors.New("gone"))

	urls, err := service.ResolveDownloadURLs(context.Background(), []string{
		"orders/a/photos/1.jpg",
		"orders/a/photos/2.jpg",
	})

	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, "https://storage/download/1", urls[0].DownloadURL)
	// The missing object degrades to an empty URL instead of failing the batch
	assert.Empty(t, urls[1].DownloadURL)
	assert.Equal(t, "orders/a/photos/2.jpg", urls[1].StorageKey)
}
