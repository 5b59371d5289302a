package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

// FileStore keeps the index as one JSON file and each article as its own
// JSON file under a date-partitioned directory.
type FileStore struct {
	indexPath  string
	articleDir string
}

var (
	_ ports.ArticleStore  = (*FileStore)(nil)
	_ ports.ArticleReader = (*FileStore)(nil)
)

func NewFileStore(indexPath, articleDir string) *FileStore {
	return &FileStore{indexPath: indexPath, articleDir: articleDir}
}

// LoadIndex reads the index. A missing file is an empty index, a corrupt one is an error.
func (s *FileStore) LoadIndex() (domain.Index, error) {
	raw, err := os.ReadFile(s.indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Index{Entries: []domain.IndexEntry{}}, nil
	}
	if err != nil {
		return domain.Index{}, fmt.Errorf("read index %s: %w", s.indexPath, err)
	}

	var index domain.Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return domain.Index{}, fmt.Errorf("decode index %s: %w", s.indexPath, err)
	}
	if index.Entries == nil {
		index.Entries = []domain.IndexEntry{}
	}
	return index, nil
}

// WriteIndex replaces the whole index file.
func (s *FileStore) WriteIndex(index domain.Index) error {
	if index.Entries == nil {
		index.Entries = []domain.IndexEntry{}
	}
	return writeJSON(s.indexPath, index)
}

// WriteArticle stores the record at <articleDir>/YYYY/MM/DD/<id>.json and returns that path.
// A record whose governing instant moved lands on a new path; the old file is left behind.
func (s *FileStore) WriteArticle(record domain.ArticleRecord) (string, error) {
	path := filepath.Join(s.articleDir, filepath.FromSlash(record.PartitionPath()))
	if err := writeJSON(path, record); err != nil {
		return "", err
	}
	return path, nil
}

// ReadArticle loads a record. A missing file yields nil without error.
func (s *FileStore) ReadArticle(path string) (*domain.ArticleRecord, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read article %s: %w", path, err)
	}

	var record domain.ArticleRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", path, err)
	}
	return &record, nil
}

// writeJSON writes to a temp file in the target directory and renames it into place.
func writeJSON(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
