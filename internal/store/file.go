package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"northstar/api/internal/okr"
)

// FileStore keeps the document in a single JSON file. The default backend
// when no database is configured.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (*okr.Document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DecodeDocument(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document file: %w", err)
	}
	return DecodeDocument(raw), nil
}

// Save writes to a sibling temp file and renames it into place, so a crash
// mid-write never corrupts the previous document.
func (s *FileStore) Save(_ context.Context, doc *okr.Document) error {
	raw, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace document file: %w", err)
	}
	return nil
}
