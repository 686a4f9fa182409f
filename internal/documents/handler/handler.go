package handler

import (
	"net/http"

	"legal_intake_backend/internal/documents/repository"
	"legal_intake_backend/internal/documents/service"
	"legal_intake_backend/internal/documents/transport"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the document routes for one owner type under rg,
// which must carry an :id parameter for the owner.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, ownerType string) {
	rg.GET("", h.List(ownerType))
	rg.POST("", h.Register(ownerType))
	rg.POST("/upload-url", h.UploadURL(ownerType))
	rg.GET("/:docId/download", h.Download(ownerType))
	rg.DELETE("/:docId", httpkit.RequireRole(httpkit.RoleAdmin), h.Delete(ownerType))
}

func (h *Handler) UploadURL(ownerType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := parseOwner(c, ownerType)
		if !ok {
			return
		}

		var req transport.UploadURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
			return
		}

		presigned, err := h.svc.RequestUpload(c.Request.Context(), owner, service.UploadInput{
			FileName:    req.FileName,
			ContentType: req.ContentType,
			SizeBytes:   req.SizeBytes,
		})
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, transport.UploadURLResponse{
			UploadURL: presigned.URL,
			FileKey:   presigned.FileKey,
			ExpiresAt: presigned.ExpiresAt,
		})
	}
}

func (h *Handler) Register(ownerType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := parseOwner(c, ownerType)
		if !ok {
			return
		}

		var req transport.RegisterDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
			return
		}

		doc, err := h.svc.Register(c.Request.Context(), owner, service.RegisterInput{
			FileKey:  req.FileKey,
			FileName: req.FileName,
		}, httpkit.ActorID(c))
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Created(c, toDocumentResponse(doc))
	}
}

func (h *Handler) List(ownerType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := parseOwner(c, ownerType)
		if !ok {
			return
		}

		docs, err := h.svc.List(c.Request.Context(), owner)
		if httpkit.HandleError(c, err) {
			return
		}
		resp := transport.DocumentListResponse{Items: make([]transport.DocumentResponse, 0, len(docs))}
		for _, doc := range docs {
			resp.Items = append(resp.Items, toDocumentResponse(doc))
		}
		httpkit.OK(c, resp)
	}
}

func (h *Handler) Download(ownerType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := parseOwner(c, ownerType)
		if !ok {
			return
		}
		docID, err := uuid.Parse(c.Param("docId"))
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}

		presigned, err := h.svc.Download(c.Request.Context(), owner, docID)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, transport.DownloadURLResponse{DownloadURL: presigned.URL, ExpiresAt: presigned.ExpiresAt})
	}
}

func (h *Handler) Delete(ownerType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := parseOwner(c, ownerType)
		if !ok {
			return
		}
		docID, err := uuid.Parse(c.Param("docId"))
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}

		if err := h.svc.Delete(c.Request.Context(), owner, docID); httpkit.HandleError(c, err) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func parseOwner(c *gin.Context, ownerType string) (service.Owner, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return service.Owner{}, false
	}
	return service.Owner{Type: ownerType, ID: id}, true
}

func toDocumentResponse(doc repository.Document) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:          doc.ID,
		OwnerType:   doc.OwnerType,
		OwnerID:     doc.OwnerID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   doc.CreatedAt,
	}
}
