// Package storage implements the media store. The filesystem is the
// only persisted state: every listing is a fresh scan of the storage
// directory, so what's on disk and what the gallery shows never drift apart
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"bitwise74/media-gallery/config"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrDirMissing is returned by List when the storage directory doesn't
// exist. Callers decide how loud to be about it: the gallery page turns
// it into a 500, the listing API degrades to an empty result
var ErrDirMissing = errors.New("storage directory does not exist")

// Kind of a media entry, derived from the file extension only
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Entry is a single gallery item
type Entry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
}

type MediaStore struct {
	fs   afero.Fs
	cfg  *config.Config
	http http.FileSystem
}

func NewMediaStore(cfg *config.Config) *MediaStore {
	return NewMediaStoreWithFs(afero.NewOsFs(), cfg)
}

// NewMediaStoreWithFs exists so tests can run the store against an
// in-memory filesystem
func NewMediaStoreWithFs(fs afero.Fs, cfg *config.Config) *MediaStore {
	return &MediaStore{
		fs:  fs,
		cfg: cfg,
		// BasePathFs keeps the exposed tree pinned to the storage dir
		http: afero.NewHttpFs(afero.NewBasePathFs(fs, cfg.StorageDir)),
	}
}

// HTTPFileSystem serves the storage directory as static files
func (s *MediaStore) HTTPFileSystem() http.FileSystem {
	return s.http
}

// AllowedFile reports whether a filename carries a whitelisted
// extension. Files without any extension are never allowed
func (s *MediaStore) AllowedFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return false
	}

	_, ok := s.cfg.AllowedExts[ext]
	return ok
}

// List scans the storage directory and returns every whitelisted file
// sorted ascending by name, each mapped to its public URL. A missing
// directory comes back as ErrDirMissing
func (s *MediaStore) List() ([]Entry, error) {
	infos, err := afero.ReadDir(s.fs, s.cfg.StorageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDirMissing
		}

		return nil, fmt.Errorf("failed to read storage directory, %w", err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || !s.AllowedFile(fi.Name()) {
			continue
		}

		entries = append(entries, Entry{
			Name: fi.Name(),
			URL:  s.cfg.PublicPath + "/" + fi.Name(),
			Kind: kindOf(fi.Name()),
		})
	}

	// ReadDir already sorts, but that's an implementation detail of the
	// fs backend and the gallery order is part of the contract
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Save sanitizes the client-supplied filename, prefixes it with a fresh
// uuid and writes the contents into the storage directory, creating it
// first if needed. Returns the name the file was stored under
func (s *MediaStore) Save(name string, r io.Reader) (string, error) {
	stored := uuid.NewString() + "_" + SanitizeFilename(name)

	if err := s.fs.MkdirAll(s.cfg.StorageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory, %w", err)
	}

	dst := filepath.Join(s.cfg.StorageDir, stored)

	f, err := s.fs.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		// Don't leave a truncated file behind as it would show up in
		// the gallery like any other
		s.fs.Remove(dst)

		return "", fmt.Errorf("failed to write file, %w", err)
	}

	if err := f.Close(); err != nil {
		s.fs.Remove(dst)

		return "", fmt.Errorf("failed to write file, %w", err)
	}

	return stored, nil
}

func kindOf(name string) Kind {
	if strings.HasPrefix(mime.TypeByExtension(path.Ext(name)), "image/") {
		return KindImage
	}

	return KindVideo
}

// SanitizeFilename strips any path components from a client-supplied
// name and collapses everything outside [a-zA-Z0-9._-] to underscores,
// so the stored name can never escape the storage directory
func SanitizeFilename(name string) string {
	// Normalize both separators first so windows-style traversal
	// doesn't survive filepath.Base on linux
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	if name == "." || name == "/" || name == ".." {
		return "_"
	}

	b := []byte(name)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
		default:
			b[i] = '_'
		}
	}

	out := strings.Trim(string(b), ".")
	if out == "" {
		return "_"
	}

	return out
}
