package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

// DefaultMaxPages bounds a single walk when the caller sets no cap.
const DefaultMaxPages = 200

var articleIDPattern = regexp.MustCompile(`/article/(\d+)`)

// Engine walks listing pages and produces deduplicated references.
type Engine struct {
	source   ports.ListingSource
	baseURL  *url.URL
	maxPages int
	logger   *slog.Logger
}

var _ ports.Discoverer = (*Engine)(nil)

func NewEngine(source ports.ListingSource, baseURL string, maxPages int, logger *slog.Logger) (*Engine, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{source: source, baseURL: base, maxPages: maxPages, logger: logger}, nil
}

// Discover returns references in first-seen order, featured before latest.
// When start is set, paging stops at the first page with no item at or after start.
// Listing pages are assumed to be reverse-chronological.
func (e *Engine) Discover(ctx context.Context, start *time.Time) ([]domain.ArticleReference, error) {
	root, err := e.source.FirstPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch first listing page: %w", err)
	}

	seen := make(map[string]struct{})
	var refs []domain.ArticleReference
	add := func(ref domain.ArticleReference) {
		if _, ok := seen[ref.ID]; ok {
			return
		}
		seen[ref.ID] = struct{}{}
		refs = append(refs, ref)
	}

	for _, item := range root.Featured {
		if ref, ok := e.toReference(item, domain.SectionFeatured); ok {
			add(ref)
		}
	}
	for _, item := range root.Items {
		if ref, ok := e.toReference(item, domain.SectionLatest); ok {
			add(ref)
		}
	}

	offset, limit := root.Pagination.Offset, root.Pagination.Limit
	hasNext := root.Pagination.HasNextPage
	pages := 1

	for hasNext {
		if pages >= e.maxPages {
			e.logger.Warn("pagination capped", "pages", pages, "max_pages", e.maxPages)
			break
		}
		// a zero limit would refetch the same offset forever
		if limit <= 0 {
			e.logger.Warn("pagination made no progress", "page", pages, "offset", offset)
			break
		}

		offset += limit
		page, err := e.source.PageAt(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch listing page at offset %d: %w", offset, err)
		}
		pages++

		inRange := false
		for _, item := range page.Items {
			ref, ok := e.toReference(item, domain.SectionLatest)
			if !ok {
				continue
			}
			add(ref)
			if start != nil && ref.Timestamp != nil && !ref.Timestamp.Before(*start) {
				inRange = true
			}
		}

		offset, limit = page.Pagination.Offset, page.Pagination.Limit
		hasNext = page.Pagination.HasNextPage

		if start != nil && !inRange {
			e.logger.Info("pagination stopped early", "page", pages, "start", start.Format(time.RFC3339))
			break
		}
	}

	e.logger.Info("discovery finished", "pages", pages, "candidates", len(refs))
	return refs, nil
}

func (e *Engine) toReference(item domain.ListingItem, section domain.Section) (domain.ArticleReference, bool) {
	if item.NewsPath == "" {
		return domain.ArticleReference{}, false
	}

	path, err := url.Parse(item.NewsPath)
	if err != nil {
		return domain.ArticleReference{}, false
	}
	resolved := e.baseURL.ResolveReference(path).String()

	match := articleIDPattern.FindStringSubmatch(resolved)
	if match == nil {
		return domain.ArticleReference{}, false
	}

	ref := domain.ArticleReference{
		ID:        match[1],
		URL:       resolved,
		Title:     strings.TrimSpace(item.Title),
		Summary:   strings.TrimSpace(item.Summary),
		Section:   section,
		Timestamp: domain.ParseInstant(item.LastUpdated),
	}
	if item.ImageURL != "" {
		image := item.ImageURL
		ref.ImageURL = &image
	}
	return ref, true
}
