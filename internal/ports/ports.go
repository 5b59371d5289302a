package ports

import (
	"context"
	"time"

	"NewsMirror/internal/domain"
)

// TextFetcher retrieves the body of a URL as text.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ListingSource pulls raw listing pages from the publisher.
type ListingSource interface {
	FirstPage(ctx context.Context) (domain.ListingPage, error)
	PageAt(ctx context.Context, offset int) (domain.ListingPage, error)
}

// ArticleFetcher downloads and parses a single article page.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string) (domain.ArticleDetail, error)
}

// Discoverer produces the ordered, deduplicated candidate set.
type Discoverer interface {
	Discover(ctx context.Context, start *time.Time) ([]domain.ArticleReference, error)
}

// ArticleStore persists the index and article records.
type ArticleStore interface {
	LoadIndex() (domain.Index, error)
	WriteIndex(index domain.Index) error
	WriteArticle(record domain.ArticleRecord) (string, error)
}

// ArticleReader is the read side used by the presentation layer.
type ArticleReader interface {
	LoadIndex() (domain.Index, error)
	ReadArticle(path string) (*domain.ArticleRecord, error)
}

// SyncRecorder observes pipeline runs for metrics.
type SyncRecorder interface {
	ObserveRun(stats domain.SyncStats, indexSize int, elapsed time.Duration, err error)
}

// AnnouncementLedger remembers which article revisions were already announced.
type AnnouncementLedger interface {
	AlreadyAnnounced(ctx context.Context, articleID, contentHash string) (bool, error)
	MarkAnnounced(ctx context.Context, announcement domain.Announcement) error
}

// Notifier streams messages to the chat channel.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
