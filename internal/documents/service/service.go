// Package service implements document attachments for leads and cases.
// Clients upload straight to object storage with a presigned URL and then
// register the object; only metadata lives in the database.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legal_intake_backend/internal/adapters/storage"
	"legal_intake_backend/internal/documents/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgOwnerNotFound  = "owner not found"
	msgDocNotFound    = "document not found"
	msgStorageFailed  = "document storage unavailable"
	msgNotUploaded    = "file has not been uploaded"
	msgForeignFileKey = "file key does not belong to this owner"
	msgAlreadyExists  = "document already registered"
	msgInvalidOwner   = "invalid owner type"
	msgEmptyFileName  = "fileName is required"
	opRequestUpload   = "documents.RequestUpload"
	opRegister        = "documents.Register"
	opDownload        = "documents.Download"
	opDelete          = "documents.Delete"
)

// Store is the metadata persistence the service needs.
type Store interface {
	Insert(ctx context.Context, params repository.InsertParams) (repository.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Document, error)
	ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]repository.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OwnerChecker reports whether the lead or case a document hangs off exists.
type OwnerChecker interface {
	OwnerExists(ctx context.Context, ownerType string, ownerID uuid.UUID) (bool, error)
}

// Owner identifies the lead or case a document belongs to.
type Owner struct {
	Type string
	ID   uuid.UUID
}

// folder is the object key prefix for the owner's files.
func (o Owner) folder() string {
	return fmt.Sprintf("%ss/%s", o.Type, o.ID)
}

type UploadInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
}

type RegisterInput struct {
	FileKey  string
	FileName string
}

type Service struct {
	store   Store
	objects storage.ObjectStore
	owners  OwnerChecker
	bucket  string
	log     *logger.Logger
}

func New(store Store, objects storage.ObjectStore, owners OwnerChecker, bucket string, log *logger.Logger) *Service {
	return &Service{store: store, objects: objects, owners: owners, bucket: bucket, log: log}
}

// RequestUpload validates the file and returns a presigned PUT URL.
func (s *Service) RequestUpload(ctx context.Context, owner Owner, in UploadInput) (*storage.PresignedURL, error) {
	if err := s.checkOwner(ctx, owner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, apperr.Validation(msgEmptyFileName).WithOp(opRequestUpload)
	}
	if err := storage.ValidateContentType(in.ContentType); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err).WithOp(opRequestUpload)
	}
	if err := storage.ValidateFileSize(in.SizeBytes, s.objects.MaxFileSize()); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err).
			WithOp(opRequestUpload).
			WithDetails(map[string]int64{"maxBytes": s.objects.MaxFileSize()})
	}

	presigned, err := s.objects.PresignUpload(ctx, s.bucket, owner.folder(), in.FileName, storage.NormalizeContentType(in.ContentType), in.SizeBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, msgStorageFailed, err).WithOp(opRequestUpload)
	}
	return presigned, nil
}

// Register records an uploaded object. Size and content type come from
// the object store, not the client.
func (s *Service) Register(ctx context.Context, owner Owner, in RegisterInput, uploadedBy *uuid.UUID) (repository.Document, error) {
	if err := s.checkOwner(ctx, owner); err != nil {
		return repository.Document{}, err
	}
	if !strings.HasPrefix(in.FileKey, owner.folder()+"/") {
		return repository.Document{}, apperr.Validation(msgForeignFileKey).WithOp(opRegister)
	}

	info, err := s.objects.Stat(ctx, s.bucket, in.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return repository.Document{}, apperr.Validation(msgNotUploaded).WithOp(opRegister)
		}
		return repository.Document{}, apperr.Wrap(apperr.KindUnavailable, msgStorageFailed, err).WithOp(opRegister)
	}

	doc, err := s.store.Insert(ctx, repository.InsertParams{
		OwnerType:   owner.Type,
		OwnerID:     owner.ID,
		FileKey:     in.FileKey,
		FileName:    storage.SafeFileName(in.FileName),
		ContentType: storage.NormalizeContentType(info.ContentType),
		SizeBytes:   info.Size,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return repository.Document{}, apperr.Conflict(msgAlreadyExists).WithOp(opRegister)
		}
		return repository.Document{}, apperr.Wrap(apperr.KindInternal, "failed to register document", err).WithOp(opRegister)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, owner Owner) ([]repository.Document, error) {
	if err := s.checkOwner(ctx, owner); err != nil {
		return nil, err
	}
	docs, err := s.store.ListByOwner(ctx, owner.Type, owner.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list documents", err)
	}
	return docs, nil
}

// Download returns a presigned GET URL for one of the owner's documents.
func (s *Service) Download(ctx context.Context, owner Owner, docID uuid.UUID) (*storage.PresignedURL, error) {
	doc, err := s.ownedDocument(ctx, owner, docID)
	if err != nil {
		return nil, err
	}
	presigned, err := s.objects.PresignDownload(ctx, s.bucket, doc.FileKey, doc.FileName)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, msgStorageFailed, err).WithOp(opDownload)
	}
	return presigned, nil
}

// Delete removes the object and then the row. If the object cannot be
// removed the row is kept so the file stays reachable.
func (s *Service) Delete(ctx context.Context, owner Owner, docID uuid.UUID) error {
	doc, err := s.ownedDocument(ctx, owner, docID)
	if err != nil {
		return err
	}
	if err := s.objects.Remove(ctx, s.bucket, doc.FileKey); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, msgStorageFailed, err).WithOp(opDelete)
	}
	if err := s.store.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperr.Wrap(apperr.KindInternal, "failed to delete document", err).WithOp(opDelete)
	}
	s.log.Info("document deleted", "document_id", doc.ID.String(), "owner_type", owner.Type, "owner_id", owner.ID.String())
	return nil
}

func (s *Service) ownedDocument(ctx context.Context, owner Owner, docID uuid.UUID) (repository.Document, error) {
	doc, err := s.store.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Document{}, apperr.NotFound(msgDocNotFound)
		}
		return repository.Document{}, apperr.Wrap(apperr.KindInternal, "failed to load document", err)
	}
	if doc.OwnerType != owner.Type || doc.OwnerID != owner.ID {
		return repository.Document{}, apperr.NotFound(msgDocNotFound)
	}
	return doc, nil
}

func (s *Service) checkOwner(ctx context.Context, owner Owner) error {
	if owner.Type != repository.OwnerLead && owner.Type != repository.OwnerCase {
		return apperr.BadRequest(msgInvalidOwner)
	}
	exists, err := s.owners.OwnerExists(ctx, owner.Type, owner.ID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to check document owner", err)
	}
	if !exists {
		return apperr.NotFound(msgOwnerNotFound)
	}
	return nil
}
