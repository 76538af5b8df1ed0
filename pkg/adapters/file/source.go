package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/autoparse/pkg/domain"
)

// Source implements ports.SchemaStore over a directory of schema documents.
//
// A document at BasePath/geo.json is addressed as BaseURI + "geo.json" when
// a base URI is configured, and always as its file:// URI. Relative
// references ("geo.json") resolve against BasePath.
type Source struct {
	BasePath string
	BaseURI  string
}

// Option configures a Source.
type Option func(*Source)

// WithBaseURI maps URIs under base onto BasePath.
func WithBaseURI(base string) Option {
	return func(s *Source) {
		if base != "" && !strings.HasSuffix(base, "/") {
			base += "/"
		}
		s.BaseURI = base
	}
}

// New creates a new Source rooted at basePath.
// If basePath is empty, it defaults to "schemas".
func New(basePath string, opts ...Option) *Source {
	if basePath == "" {
		basePath = "schemas"
	}
	if abs, err := filepath.Abs(basePath); err == nil {
		basePath = abs
	}
	s := &Source{BasePath: basePath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rel maps a URI to a slash-separated path below BasePath.
func (s *Source) rel(uri string) (string, bool) {
	var p string
	switch {
	case s.BaseURI != "" && strings.HasPrefix(uri, s.BaseURI):
		p = strings.TrimPrefix(uri, s.BaseURI)
	default:
		u, err := url.Parse(uri)
		if err != nil {
			return "", false
		}
		switch {
		case u.Scheme == "file":
			r, err := filepath.Rel(s.BasePath, filepath.FromSlash(u.Path))
			if err != nil {
				return "", false
			}
			p = filepath.ToSlash(r)
		case u.Scheme == "" && u.Host == "":
			p = u.Path
		default:
			return "", false
		}
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || strings.HasPrefix(p, "../") || p == ".." {
		return "", false
	}
	// Rooting before Clean keeps ".." from escaping BasePath.
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p, p != ""
}

func (s *Source) uri(rel string) string {
	if s.BaseURI != "" {
		return s.BaseURI + rel
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.BasePath, filepath.FromSlash(rel)))}).String()
}

// Fetch reads the document addressed by uri.
func (s *Source) Fetch(ctx context.Context, uri string) ([]byte, error) {
	rel, ok := s.rel(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s is outside %s", domain.ErrSchemaNotFound, uri, s.BasePath)
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, uri)
		}
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return data, nil
}

// List returns the URI of every document below BasePath. Hidden files are skipped.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var uris []string
	err := filepath.WalkDir(s.BasePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == s.BasePath {
				return fs.SkipDir
			}
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != s.BasePath {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.BasePath, p)
		if err != nil {
			return err
		}
		uris = append(uris, s.uri(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list schema directory: %w", err)
	}
	sort.Strings(uris)
	return uris, nil
}

// Put writes the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Source) Put(ctx context.Context, uri string, doc []byte) error {
	rel, ok := s.rel(uri)
	if !ok {
		return fmt.Errorf("schema uri %q does not map into %s", uri, s.BasePath)
	}
	destPath := filepath.Join(s.BasePath, filepath.FromSlash(rel))
	dir := filepath.Dir(destPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure schema directory: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(doc); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing schema file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to schema file: %w", err)
	}
	return nil
}

// Delete removes the document. Missing files are ignored.
func (s *Source) Delete(ctx context.Context, uri string) error {
	rel, ok := s.rel(uri)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.BasePath, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete schema file: %w", err)
	}
	return nil
}
