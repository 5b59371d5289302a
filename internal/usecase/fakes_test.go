package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"NewsMirror/internal/domain"
)

type fakeDiscoverer struct {
	refs  []domain.ArticleReference
	err   error
	start *time.Time
}

func (f *fakeDiscoverer) Discover(_ context.Context, start *time.Time) ([]domain.ArticleReference, error) {
	f.start = start
	return f.refs, f.err
}

type fakeFetcher struct {
	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{fail: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeFetcher) FetchArticle(_ context.Context, url string) (domain.ArticleDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.fail[url]; ok {
		return domain.ArticleDetail{}, err
	}
	return domain.ArticleDetail{Body: "<p>" + url + "</p>"}, nil
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type memStore struct {
	index       domain.Index
	loadErr     error
	articles    map[string]domain.ArticleRecord
	indexWrites int
}

func newMemStore(entries ...domain.IndexEntry) *memStore {
	return &memStore{
		index:    domain.Index{Count: len(entries), Entries: entries},
		articles: map[string]domain.ArticleRecord{},
	}
}

func (m *memStore) LoadIndex() (domain.Index, error) {
	return m.index, m.loadErr
}

func (m *memStore) WriteIndex(index domain.Index) error {
	m.indexWrites++
	m.index = index
	return nil
}

func (m *memStore) WriteArticle(record domain.ArticleRecord) (string, error) {
	path := "articles/" + record.PartitionPath()
	m.articles[path] = record
	return path, nil
}

type recordedRun struct {
	stats     domain.SyncStats
	indexSize int
	err       error
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) ObserveRun(stats domain.SyncStats, indexSize int, _ time.Duration, err error) {
	f.runs = append(f.runs, recordedRun{stats: stats, indexSize: indexSize, err: err})
}

func ref(id, timestamp string) domain.ArticleReference {
	return domain.ArticleReference{
		ID:        id,
		URL:       "https://news.example.com/en-us/article/" + id + "/slug",
		Title:     "Article " + id,
		Section:   domain.SectionLatest,
		Timestamp: domain.ParseInstant(timestamp),
	}
}

func entry(id, timestamp string) domain.IndexEntry {
	r := ref(id, timestamp)
	return domain.IndexEntry{ID: id, URL: r.URL, Title: r.Title, Timestamp: r.Timestamp, Section: r.Section, ArticlePath: "articles/" + id + ".json"}
}

var errBoom = errors.New("boom")

func fixedNow() time.Time {
	return time.Date(2025, 10, 18, 12, 0, 0, 0, time.UTC)
}
