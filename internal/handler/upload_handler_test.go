package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/pkg/storage"
)

type mapOpener map[string]string

func (m mapOpener) Open(_ context.Context, key string) (io.ReadCloser, storage.Object, error) {
	content, ok := m[key]
	if !ok {
		return nil, storage.Object{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(content)), storage.Object{Key: key, Size: int64(len(content)), ContentType: "application/pdf"}, nil
}

type brokenOpener struct{}

func (brokenOpener) Open(context.Context, string) (io.ReadCloser, storage.Object, error) {
	return nil, storage.Object{}, errors.New("bucket offline")
}

func download(h *UploadHandler, path string) (int, string, http.Header) {
	c, rec := newTestContext(http.MethodGet, "/uploads"+path, nil)
	c.Params = gin.Params{{Key: "filepath", Value: path}}
	h.Download(c)
	return rec.Code, rec.Body.String(), rec.Header()
}

func TestDownloadServesStoredObject(t *testing.T) {
	h := NewUploadHandler(mapOpener{"report-1-ab.pdf": "%PDF"})

	code, body, header := download(h, "/report-1-ab.pdf")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "%PDF", body)
	assert.Equal(t, "application/pdf", header.Get("Content-Type"))
	assert.Equal(t, "4", header.Get("Content-Length"))
}

func TestDownloadMissingObject(t *testing.T) {
	h := NewUploadHandler(mapOpener{})

	code, _, _ := download(h, "/nothing.pdf")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = download(h, "/../etc/passwd")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDownloadHidesBackendFailure(t *testing.T) {
	h := NewUploadHandler(brokenOpener{})

	code, body, _ := download(h, "/report.pdf")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body, "bucket offline")
}
