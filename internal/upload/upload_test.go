package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartFile(t *testing.T, field, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	f, h, err := req.FormFile(field)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, h
}

func newUploader(t *testing.T, max int64) (*Uploader, *LocalStorage) {
	t.Helper()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewUploader(store, max, zaptest.NewLogger(t)), store
}

func TestSaveImageAcceptsPNG(t *testing.T) {
	u, store := newUploader(t, 5<<20)
	f, h := multipartFile(t, "image", "shot.PNG", pngHeader)

	res, err := u.SaveImage(context.Background(), FolderBlog, f, h)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "/uploads/blog/"))
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))

	key, ok := KeyFromURL(res.URL)
	require.True(t, ok)
	obj, info, err := store.Open(context.Background(), key)
	require.NoError(t, err)
	defer obj.Close()
	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", info.ContentType)
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	u, _ := newUploader(t, 5<<20)
	f, h := multipartFile(t, "image", "evil.png", []byte("<html><script>alert(1)</script></html>"))

	_, err := u.SaveImage(context.Background(), FolderProjects, f, h)
	require.Error(t, err)
	apiErr, ok := err.(*types.APIError)
	require.True(t, ok)
	assert.Equal(t, types.CodeBadRequest, apiErr.Code)
	assert.Contains(t, apiErr.Message, "Invalid file type: text/html")
}

func TestSaveImageRejectsOversize(t *testing.T) {
	u, _ := newUploader(t, 10)
	f, h := multipartFile(t, "image", "big.png", pngHeader)

	_, err := u.SaveImage(context.Background(), FolderProjects, f, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")
}

func TestDeleteIgnoresForeignURLs(t *testing.T) {
	u, store := newUploader(t, 5<<20)
	f, h := multipartFile(t, "image", "a.png", pngHeader)
	res, err := u.SaveImage(context.Background(), FolderProjects, f, h)
	require.NoError(t, err)

	external := "https://cdn.example.com/a.png"
	u.Delete(context.Background(), &external)
	u.Delete(context.Background(), nil)
	u.Delete(context.Background(), &res.URL)

	key, _ := KeyFromURL(res.URL)
	_, _, err = store.Open(context.Background(), key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	_, store := newUploader(t, 5<<20)
	_, _, err := store.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = store.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadMarkdown(t *testing.T) {
	u, _ := newUploader(t, 5<<20)
	f, h := multipartFile(t, "markdown", "post.md", []byte("# Title"))
	src, err := u.ReadMarkdown(f, h)
	require.NoError(t, err)
	assert.Equal(t, "# Title", src)

	f, h = multipartFile(t, "markdown", "post.txt", []byte("# Title"))
	_, err = u.ReadMarkdown(f, h)
	assert.Error(t, err)
}
