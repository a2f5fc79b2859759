package uploads

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/uploads/drivers"
)

// HTTPHandler serves attachment upload and download.
type HTTPHandler struct {
	Service *UploadService
	Marker  DocumentMarker
}

func NewHTTPHandler(service *UploadService, marker DocumentMarker) *HTTPHandler {
	return &HTTPHandler{Service: service, Marker: marker}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

// UploadDocument handles POST /api/shipments/:id/documents/:docId/upload with a
// multipart "file" field.
func (h *HTTPHandler) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAttachmentSize+(1<<20))

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "too_large", ErrTooLarge.Error())
			return
		}
		writeError(c, http.StatusBadRequest, "invalid_request", "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "failed to read file")
		return
	}
	defer file.Close()

	attachment, err := h.Service.AttachToDocument(c.Request.Context(), h.Marker,
		c.Param("id"), c.Param("docId"),
		header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, attachment)
	case errors.Is(err, model.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", "document not found")
	case errors.Is(err, ErrTooLarge):
		writeError(c, http.StatusRequestEntityTooLarge, "too_large", err.Error())
	case errors.Is(err, ErrUnsupportedType):
		writeError(c, http.StatusUnsupportedMediaType, "unsupported_type", err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "upload failed", "error", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "upload failed")
	}
}

// Download handles GET /api/uploads/:key.
func (h *HTTPHandler) Download(c *gin.Context) {
	key := c.Param("key")
	if err := drivers.ValidateKey(key); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid key")
		return
	}

	reader, contentType, err := h.Service.Download(c.Request.Context(), key)
	if errors.Is(err, drivers.ErrNotFound) {
		writeError(c, http.StatusNotFound, "not_found", "file not found")
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "download failed", "key", key, "error", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "download failed")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		slog.WarnContext(c.Request.Context(), "download interrupted", "key", key, "error", err)
	}
}
