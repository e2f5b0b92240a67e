// Package storage keeps photo blobs outside the database. Only the key
// returned by Save is persisted on the Photo row.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// PhotoPrefix is the key prefix under which photos are stored.
const PhotoPrefix = "photos"

var ErrInvalidKey = errors.New("invalid storage key")

// BlobStore is the persistence surface the services need.
type BlobStore interface {
	Save(r io.Reader, filename string, at time.Time) (string, error)
	Exists(key string) (bool, error)
	Delete(key string) error
	URL(key string) string
	Handler() http.Handler
}

// FSStore stores blobs on an afero filesystem rooted at a directory.
type FSStore struct {
	fs        afero.Fs
	urlPrefix string
}

// NewFSStore returns a store writing under root on the OS filesystem.
func NewFSStore(root, urlPrefix string) *FSStore {
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), root), urlPrefix)
}

// NewStore wraps an existing afero filesystem; tests use afero.NewMemMapFs.
func NewStore(fs afero.Fs, urlPrefix string) *FSStore {
	return &FSStore{fs: fs, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Key builds photos/YYYY/MM/DD/<uuid><ext> for a file uploaded at the given time.
func Key(filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(PhotoPrefix, at.Format("2006/01/02"), uuid.NewString()+ext)
}

func (s *FSStore) Save(r io.Reader, filename string, at time.Time) (string, error) {
	key := Key(filename, at)
	name := "/" + key
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("failed to create photo directory: %w", err)
	}

	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(name)
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close photo: %w", err)
	}
	return key, nil
}

func (s *FSStore) Exists(key string) (bool, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, "/"+clean)
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *FSStore) Delete(key string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove("/" + clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", clean, err)
	}
	return nil
}

// URL is the public path a stored key is served under.
func (s *FSStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.urlPrefix + "/" + key
}

// Handler serves stored blobs read-only. Directories are reported as missing
// so the handler never lists uploaded files.
func (s *FSStore) Handler() http.Handler {
	return http.FileServer(filesOnly{afero.NewHttpFs(afero.NewReadOnlyFs(s.fs)).Dir("/")})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}
