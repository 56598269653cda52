package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// AllowedPhotoContentTypes whitelists what a production photo upload may be.
// SVG is excluded: it can carry scripts and inline event handlers.
var AllowedPhotoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3 or any S3-compatible backend).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// PhotoServiceConfig holds configuration for the photo service
type PhotoServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultPhotoServiceConfig returns the default configuration
func DefaultPhotoServiceConfig() PhotoServiceConfig {
	return PhotoServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// PhotoService hands out presigned URLs for production-update and defect
// photos. Photos are opaque to the core: updates and QC checks store only the
// storage key this service assigned.
type PhotoService struct {
	storage ObjectStorageService
	config  PhotoServiceConfig
}

// NewPhotoService creates a new PhotoService
func NewPhotoService(storage ObjectStorageService) *PhotoService {
	return &PhotoService{
		storage: storage,
		config:  DefaultPhotoServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *PhotoService) SetConfig(config PhotoServiceConfig) {
	s.config = config
}

// InitiateUploadRequest is the payload for requesting a photo upload slot
type InitiateUploadRequest struct {
	// OrderID comes from the route path, not the request body
	OrderID     uuid.UUID `json:"-"`
	FileName    string    `json:"fileName" binding:"required,max=255"`
	ContentType string    `json:"contentType" binding:"required,max=100"`
}

// InitiateUploadResponse carries the presigned upload URL and the storage key
// the client should attach to its production update or defect
type InitiateUploadResponse struct {
	StorageKey string    `json:"storageKey"`
	UploadURL  string    `json:"uploadUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// InitiateUpload validates the content type and returns a presigned PUT URL
func (s *PhotoService) InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	if !AllowedPhotoContentTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for photos", req.ContentType))
	}

	storageKey := s.generateStorageKey(req.OrderID, req.FileName)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// PhotoURL is one resolved download link
type PhotoURL struct {
	StorageKey  string    `json:"storageKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ResolveDownloadURLs turns stored photo keys into presigned GET URLs.
// Keys whose objects are gone resolve to an empty URL rather than failing the
// whole batch.
func (s *PhotoService) ResolveDownloadURLs(ctx context.Context, storageKeys []string) ([]PhotoURL, error) {
	urls := make([]PhotoURL, 0, len(storageKeys))
	for _, key := range storageKeys {
		downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.config.DownloadURLExpiry)
		if err != nil {
			urls = append(urls, PhotoURL{StorageKey: key})
			continue
		}
		urls = append(urls, PhotoURL{
			StorageKey:  key,
			DownloadURL: downloadURL,
			ExpiresAt:   expiresAt,
		})
	}
	return urls, nil
}

func (s *PhotoService) generateStorageKey(orderID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("orders/%s/photos/%s%s", orderID, uuid.New(), ext)
}
