package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/pkg/config"
)

func TestNewDefaultsToLocalDisk(t *testing.T) {
	dir := t.TempDir()

	backend, err := New(context.Background(), config.UploadsConfig{Dir: dir})
	require.NoError(t, err)

	_, ok := backend.(*LocalStorage)
	require.True(t, ok)

	_, err = backend.Save(context.Background(), "report.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "report.pdf"))
	assert.NoError(t, err)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.UploadsConfig{Driver: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestNewMinioNeedsBucket(t *testing.T) {
	_, err := New(context.Background(), config.UploadsConfig{Driver: config.StorageDriverMinio})
	require.Error(t, err)
}
