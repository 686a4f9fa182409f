// Package storage provides S3-compatible object storage for case and lead
// documents. Files never pass through the API: clients upload and download
// with presigned URLs.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by Stat when no object exists at the key.
var ErrObjectNotFound = errors.New("object not found")

// PresignedURL contains the URL and metadata for a presigned upload/download operation.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectInfo is what the store reports about an uploaded object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore is the storage surface the documents module uses.
type ObjectStore interface {
	// PresignUpload returns a PUT URL for a new object under folder.
	PresignUpload(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)
	// PresignDownload returns a GET URL that makes the browser download
	// the object as fileName.
	PresignDownload(ctx context.Context, bucket, fileKey, fileName string) (*PresignedURL, error)
	// Stat reports an uploaded object, or ErrObjectNotFound.
	Stat(ctx context.Context, bucket, fileKey string) (ObjectInfo, error)
	// Remove deletes an object. Removing a missing object is not an error.
	Remove(ctx context.Context, bucket, fileKey string) error
	// EnsureBucket creates the bucket if it doesn't exist.
	EnsureBucket(ctx context.Context, bucket string) error
	// MaxFileSize is the configured upload limit in bytes.
	MaxFileSize() int64
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
