package transport

import (
	"time"

	"github.com/google/uuid"
)

type UploadURLRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=255"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type UploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterDocumentRequest struct {
	FileKey  string `json:"fileKey" validate:"required,max=512"`
	FileName string `json:"fileName" validate:"required,max=255"`
}

type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	OwnerType   string     `json:"ownerType"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	FileName    string     `json:"fileName"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	UploadedBy  *uuid.UUID `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
}

type DownloadURLResponse struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
