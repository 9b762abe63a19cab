package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/types"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	URLPrefix = "/uploads/"

	FolderProjects = "projects"
	FolderBlog     = "blog"
)

var ErrNotFound = errors.New("upload not found")

// allowed maps every accepted image type to the extension used on disk.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var allowedOrder = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var extAliases = map[string]string{".jpeg": ".jpg"}

type Object interface {
	io.ReadSeekCloser
}

type ObjectInfo struct {
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Storage persists uploaded files under slash separated keys such as
// "blog/<uuid>.png".
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (Object, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Result describes a stored image.
type Result struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type Uploader struct {
	store    Storage
	maxBytes int64
	log      *zap.Logger
}

func NewUploader(store Storage, maxBytes int64, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{store: store, maxBytes: maxBytes, log: log}
}

// NewStorage builds the backend selected by UPLOAD_BACKEND.
func NewStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (Storage, error) {
	switch cfg.UploadBackend {
	case "minio":
		return NewMinio(ctx, cfg, log)
	case "local", "":
		return NewLocal(cfg.UploadDir)
	}
	return nil, errors.Errorf("unsupported upload backend %q", cfg.UploadBackend)
}

func (u *Uploader) Storage() Storage {
	return u.store
}

func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// TooLarge is the error for any upload over the size limit.
func (u *Uploader) TooLarge() *types.APIError {
	return types.BadRequest(fmt.Sprintf("File too large. Maximum size is %dMB", u.maxBytes>>20))
}

// SaveImage checks size and sniffed content type, then stores the file under
// a fresh UUID name inside folder.
func (u *Uploader) SaveImage(ctx context.Context, folder string, file multipart.File, header *multipart.FileHeader) (*Result, error) {
	if header.Size > u.maxBytes {
		return nil, u.TooLarge()
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "read upload")
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := allowed[contentType]
	if !ok {
		return nil, types.BadRequest(fmt.Sprintf("Invalid file type: %s. Allowed types: %s",
			contentType, strings.Join(allowedOrder, ", ")))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind upload")
	}

	// keep the client's extension when it agrees with the sniffed type
	if orig := strings.ToLower(filepath.Ext(header.Filename)); orig != "" {
		if alias, ok := extAliases[orig]; ok {
			orig = alias
		}
		if orig == ext {
			ext = strings.ToLower(filepath.Ext(header.Filename))
		}
	}

	name := uuid.NewString() + ext
	key := path.Join(folder, name)
	if err := u.store.Save(ctx, key, file, header.Size, contentType); err != nil {
		return nil, errors.Wrap(err, "store upload")
	}
	u.log.Info("stored upload", zap.String("key", key), zap.String("contentType", contentType), zap.Int64("size", header.Size))
	return &Result{URL: URLPrefix + key, Filename: name}, nil
}

// Delete removes a file previously returned by SaveImage. URLs that do not
// point into the upload area are ignored.
func (u *Uploader) Delete(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	key, ok := KeyFromURL(*url)
	if !ok {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		u.log.Warn("failed to delete upload", zap.String("key", key), zap.Error(err))
	}
}

func KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, URLPrefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// ReadMarkdown reads an uploaded markdown file, bounded by the upload limit.
func (u *Uploader) ReadMarkdown(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".md" && ext != ".markdown" {
		return "", types.BadRequest("Invalid file type: only .md and .markdown files are accepted")
	}
	if header.Size > u.maxBytes {
		return "", u.TooLarge()
	}
	data, err := io.ReadAll(io.LimitReader(file, u.maxBytes))
	if err != nil {
		return "", errors.Wrap(err, "read markdown")
	}
	return string(data), nil
}
