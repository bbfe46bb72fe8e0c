package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
	"github.com/noah-isme/fyp-manager-api/pkg/storage"
)

type objectOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, storage.Object, error)
}

// UploadHandler streams stored submissions back to clients.
type UploadHandler struct {
	store objectOpener
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(store objectOpener) *UploadHandler {
	return &UploadHandler{store: store}
}

// Download godoc
// @Summary Download a stored submission
// @Tags Uploads
// @Produce octet-stream
// @Param filepath path string true "Stored file name"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /uploads/{filepath} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	key, err := storage.CleanKey(c.Param("filepath"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "File not found"))
		return
	}
	body, obj, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "File not found"))
			return
		}
		response.Error(c, err)
		return
	}
	defer body.Close()

	length := obj.Size
	if length <= 0 {
		length = -1
	}
	c.DataFromReader(http.StatusOK, length, obj.ContentType, body, nil)
}
