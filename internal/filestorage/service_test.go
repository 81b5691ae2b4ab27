// File: internal/filestorage/service_test.go
package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUploadRequest(t *testing.T, fieldName, fileName, content string) *multipart.FileHeader {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	files := req.MultipartForm.File[fieldName]
	require.Len(t, files, 1)
	return files[0]
}

func TestNewService_RequiresPath(t *testing.T) {
	_, err := NewService("", zap.NewNop())
	assert.Error(t, err)
}

func TestSaveAndDelete(t *testing.T) {
	svc, err := NewService(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	fileHeader := newUploadRequest(t, "images", "golf.jpg", "fake image bytes")

	relativePath, err := svc.Save(fileHeader, "listings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relativePath, "listings/"))
	assert.Equal(t, ".jpg", filepath.Ext(relativePath))

	require.NoError(t, svc.Delete(relativePath))
	// Deleting again is a no-op.
	require.NoError(t, svc.Delete(relativePath))
}

func TestSave_RejectsUnknownTypeWithoutExtension(t *testing.T) {
	svc, err := NewService(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	fileHeader := newUploadRequest(t, "images", "noextension", "bytes")

	_, err = svc.Save(fileHeader, "listings")
	assert.Error(t, err)
}

func TestDelete_RejectsTraversal(t *testing.T) {
	base := t.TempDir()
	svc, err := NewService(base, zap.NewNop())
	require.NoError(t, err)

	outside := filepath.Join(base, "..", "escape.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	defer os.Remove(outside)

	err = svc.Delete("../escape.txt")
	require.Error(t, err)
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}
