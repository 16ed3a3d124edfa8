package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSDocumentStore writes rendered documents under a base directory. The
// returned location is the absolute file path.
type FSDocumentStore struct {
	baseDir string
}

func NewFSDocumentStore(baseDir string) (*FSDocumentStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FSDocumentStore{baseDir: baseDir}, nil
}

func (s *FSDocumentStore) Put(_ context.Context, name string, content []byte) (string, error) {
	path := filepath.Join(s.baseDir, sanitizeName(name)+".txt")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

func (s *FSDocumentStore) Get(_ context.Context, location string) ([]byte, error) {
	content, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return content, nil
}

// sanitizeName keeps the filename to a safe character set.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
