package repository

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

// NewsRepository is the read API over the local mirror.
// Not-found conditions return nil without error.
type NewsRepository struct {
	reader ports.ArticleReader
	root   string
}

// New resolves relative article paths against root (the working directory when empty).
func New(reader ports.ArticleReader, root string) *NewsRepository {
	return &NewsRepository{reader: reader, root: root}
}

// LatestEntry returns the newest index entry.
func (r *NewsRepository) LatestEntry() (*domain.IndexEntry, error) {
	entries, err := r.sorted()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// GetLatest returns the full record of the newest entry.
func (r *NewsRepository) GetLatest() (*domain.ArticleRecord, error) {
	entry, err := r.LatestEntry()
	if err != nil || entry == nil {
		return nil, err
	}
	return r.load(*entry)
}

// Filter returns the sorted entries, restricted to the UTC year of the
// timestamp when year is set.
func (r *NewsRepository) Filter(year *int) ([]domain.IndexEntry, error) {
	entries, err := r.sorted()
	if err != nil {
		return nil, err
	}
	if year == nil {
		return entries, nil
	}

	filtered := entries[:0]
	for _, entry := range entries {
		if entry.Timestamp != nil && entry.Timestamp.UTC().Year() == *year {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// List returns one window of Filter(year) together with the filtered total.
func (r *NewsRepository) List(year *int, offset, limit int) ([]domain.IndexEntry, int, error) {
	entries, err := r.Filter(year)
	if err != nil {
		return nil, 0, err
	}

	total := len(entries)
	offset = max(offset, 0)
	limit = max(limit, 0)
	if offset >= total {
		return []domain.IndexEntry{}, total, nil
	}
	end := offset + min(limit, total-offset)
	return entries[offset:end], total, nil
}

// GetByID loads the record for id. A missing entry or backing file yields nil.
func (r *NewsRepository) GetByID(id string) (*domain.ArticleRecord, error) {
	entries, err := r.sorted()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.ID == id {
			return r.load(entry)
		}
	}
	return nil, nil
}

func (r *NewsRepository) load(entry domain.IndexEntry) (*domain.ArticleRecord, error) {
	path := strings.TrimSpace(entry.ArticlePath)
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) && r.root != "" {
		path = filepath.Join(r.root, path)
	}

	record, err := r.reader.ReadArticle(path)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", entry.ID, err)
	}
	return record, nil
}

// sorted orders by timestamp descending; entries without one come last.
func (r *NewsRepository) sorted() ([]domain.IndexEntry, error) {
	index, err := r.reader.LoadIndex()
	if err != nil {
		return nil, err
	}

	entries := append([]domain.IndexEntry(nil), index.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Timestamp, entries[j].Timestamp
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return entries, nil
}
