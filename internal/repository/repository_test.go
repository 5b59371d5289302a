package repository

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/infrastructure/storage"
)

func seedStore(t *testing.T) (*storage.FileStore, string) {
	t.Helper()

	root := t.TempDir()
	store := storage.NewFileStore(filepath.Join(root, "index.json"), "articles")

	var entries []domain.IndexEntry
	for _, item := range []struct{ id, ts string }{
		{"1", "2024-12-31T23:00:00Z"},
		{"2", "2025-09-30T17:11:00Z"},
		{"3", "2025-01-15T00:00:00Z"},
	} {
		record, err := domain.NewRecord(
			domain.ArticleReference{ID: item.id, Title: "Article " + item.id, Timestamp: domain.ParseInstant(item.ts)},
			domain.ArticleDetail{Body: "<p>" + item.id + "</p>"},
			time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		rel := filepath.Join("articles", filepath.FromSlash(record.PartitionPath()))
		absStore := storage.NewFileStore(filepath.Join(root, "index.json"), filepath.Join(root, "articles"))
		_, err = absStore.WriteArticle(record)
		require.NoError(t, err)

		entries = append(entries, record.Entry(rel))
	}
	entries = append(entries, domain.IndexEntry{ID: "4", Title: "no timestamp", ArticlePath: "articles/missing.json"})

	require.NoError(t, store.WriteIndex(domain.Index{Count: len(entries), Entries: entries}))
	return store, root
}

func ids(entries []domain.IndexEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestGetLatest(t *testing.T) {
	t.Parallel()

	store, root := seedStore(t)
	repo := New(store, root)

	record, err := repo.GetLatest()
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "2", record.ID)
	assert.Equal(t, "<p>2</p>", record.Body)
}

func TestGetLatestOnEmptyMirror(t *testing.T) {
	t.Parallel()

	store := storage.NewFileStore(filepath.Join(t.TempDir(), "index.json"), t.TempDir())

	record, err := New(store, "").GetLatest()
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestList(t *testing.T) {
	t.Parallel()

	store, root := seedStore(t)
	repo := New(store, root)

	all, total, err := repo.List(nil, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(all))

	year := 2025
	filtered, total, err := repo.List(&year, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"2", "3"}, ids(filtered))

	window, total, err := repo.List(nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"3", "1"}, ids(window))

	clamped, _, err := repo.List(nil, -5, -1)
	require.NoError(t, err)
	assert.Empty(t, clamped)

	past, _, err := repo.List(nil, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, past)

	unbounded, total, err := repo.List(nil, 2, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"1", "4"}, ids(unbounded))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	store, root := seedStore(t)
	repo := New(store, root)

	all, err := repo.Filter(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(all))

	year := 2024
	filtered, err := repo.Filter(&year)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(filtered))
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	store, root := seedStore(t)
	repo := New(store, root)

	record, err := repo.GetByID("3")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Article 3", record.Title)

	missing, err := repo.GetByID("999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	broken, err := repo.GetByID("4")
	require.NoError(t, err, "a dangling article path is not an error")
	assert.Nil(t, broken)
}

type failingReader struct{}

func (failingReader) LoadIndex() (domain.Index, error) {
	return domain.Index{}, errors.New("decode index: unexpected EOF")
}

func (failingReader) ReadArticle(string) (*domain.ArticleRecord, error) {
	return nil, nil
}

func TestCorruptIndexPropagates(t *testing.T) {
	t.Parallel()

	_, err := New(failingReader{}, "").GetByID("1")
	assert.Error(t, err)
}
