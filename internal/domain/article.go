package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Section labels where a reference was first seen in the listing.
type Section string

const (
	SectionFeatured Section = "featured"
	SectionLatest   Section = "latest"
)

// ArticleReference is the lightweight listing-derived pointer to an article.
type ArticleReference struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Section   Section    `json:"section"`
	Timestamp *time.Time `json:"timestamp"`
	ImageURL  *string    `json:"image_url"`
}

// ArticleDetail is the structured content extracted from the article page.
type ArticleDetail struct {
	Author         *string    `json:"author"`
	PublishedAt    *time.Time `json:"published_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	HeaderImageURL *string    `json:"header_image_url"`
	Body           string     `json:"body"`
}

// ArticleRecord is the durable unit persisted as one JSON file per article.
type ArticleRecord struct {
	ArticleReference
	ArticleDetail
	FetchedAt   time.Time `json:"fetched_at"`
	ContentHash string    `json:"content_hash"`
}

// IndexEntry is the listing projection of a record.
type IndexEntry struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Timestamp   *time.Time `json:"timestamp"`
	UpdatedAt   *time.Time `json:"updated_at"`
	Section     Section    `json:"section"`
	ArticlePath string     `json:"article_path"`
}

// Index is the summary catalog, entries sorted newest first.
type Index struct {
	GeneratedAt *time.Time   `json:"generated_at"`
	Count       int          `json:"count"`
	Entries     []IndexEntry `json:"articles"`
}

// SyncStats aggregates per-run outcome counters.
type SyncStats struct {
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Changed reports whether the run produced any new or updated record.
func (s SyncStats) Changed() bool {
	return s.New > 0 || s.Updated > 0
}

// NewRecord combines reference and detail, stamping fetch time and content hash.
func NewRecord(ref ArticleReference, detail ArticleDetail, fetchedAt time.Time) (ArticleRecord, error) {
	hash, err := ContentHash(ref, detail)
	if err != nil {
		return ArticleRecord{}, err
	}

	return ArticleRecord{
		ArticleReference: ref,
		ArticleDetail:    detail,
		FetchedAt:        fetchedAt.UTC(),
		ContentHash:      hash,
	}, nil
}

// ContentHash digests the key-sorted JSON form of reference and detail fields.
// fetched_at is not part of the digest.
func ContentHash(ref ArticleReference, detail ArticleDetail) (string, error) {
	raw, err := json.Marshal(struct {
		ArticleReference
		ArticleDetail
	}{ref, detail})
	if err != nil {
		return "", fmt.Errorf("marshal content: %w", err)
	}

	// round-trip through a map so keys come out sorted
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("canonicalize content: %w", err)
	}
	canonical, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal canonical content: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Entry projects the record into an index entry pointing at path.
func (r ArticleRecord) Entry(path string) IndexEntry {
	return IndexEntry{
		ID:          r.ID,
		URL:         r.URL,
		Title:       r.Title,
		Timestamp:   r.Timestamp,
		UpdatedAt:   r.UpdatedAt,
		Section:     r.Section,
		ArticlePath: path,
	}
}

// PartitionInstant picks the instant that governs the on-disk location:
// timestamp, then updated_at, then published_at, then fetched_at.
func (r ArticleRecord) PartitionInstant() time.Time {
	for _, candidate := range []*time.Time{r.Timestamp, r.UpdatedAt, r.PublishedAt} {
		if candidate != nil && !candidate.IsZero() {
			return candidate.UTC()
		}
	}
	if !r.FetchedAt.IsZero() {
		return r.FetchedAt.UTC()
	}
	return time.Now().UTC()
}

// PartitionPath returns the relative path YYYY/MM/DD/<id>.json.
func (r ArticleRecord) PartitionPath() string {
	t := r.PartitionInstant()
	return fmt.Sprintf("%04d/%02d/%02d/%s.json", t.Year(), int(t.Month()), t.Day(), r.ID)
}
