package blob

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/NitishSati26/travel-story/internal/serr"
)

// DiskStore persists uploaded images on the local filesystem and addresses
// them by URL under a serve root.
type DiskStore struct {
	serveRoot   *url.URL
	placeholder *url.URL
	root        string
	maxWidth    int
	maxHeight   int
}

type DiskStoreConfig struct {
	ServeRoot   *url.URL
	Placeholder *url.URL
	Root        string
	MaxWidth    int
	MaxHeight   int
}

func NewDiskStore(cfg DiskStoreConfig) (*DiskStore, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}

	return &DiskStore{
		serveRoot:   cfg.ServeRoot,
		placeholder: cfg.Placeholder,
		root:        cfg.Root,
		maxWidth:    cfg.MaxWidth,
		maxHeight:   cfg.MaxHeight,
	}, nil
}

// Save validates and stores an uploaded image, returning its accessible URL.
// Files are named by upload time so concurrent uploads cannot collide.
func (s *DiskStore) Save(img io.Reader, originalName string) (*url.URL, error) {
	var buff bytes.Buffer
	tee := io.TeeReader(img, &buff)

	cfg, _, err := image.DecodeConfig(tee)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "image size exceeded")
		}
		return nil, serr.NewServiceError(err, http.StatusBadRequest, "only images are allowed")
	}
	if cfg.Width > s.maxWidth || cfg.Height > s.maxHeight {
		return nil, serr.NewServiceError(nil, http.StatusRequestEntityTooLarge, "image dimensions exceeded")
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(originalName))
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return nil, fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(f, io.MultiReader(&buff, img))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "image size exceeded")
		}
		return nil, fmt.Errorf("save image file: %w", err)
	}

	return s.serveRoot.JoinPath(name), nil
}

// Delete removes the blob addressed by imageURL. Deleting an absent blob is
// a no-op; only an underlying storage failure is an error.
func (s *DiskStore) Delete(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return fmt.Errorf("parse image url: %w", err)
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return nil
	}

	err = os.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}

	return nil
}

// Placeholder returns the default image URL substituted when a story's
// image is omitted.
func (s *DiskStore) Placeholder() *url.URL {
	return s.placeholder
}

// Root returns the directory blobs are stored in, for static serving.
func (s *DiskStore) Root() string {
	return s.root
}
