package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

const (
	rootSelector        = "article.Content"
	bodySelector        = "section.blog"
	authorSelector      = ".details .author"
	timestampSelector   = "blz-timestamp[timestamp]"
	headerImageSelector = "header.ContentHeader > blz-image[src]"
)

// ArticleFetcher downloads an article page and extracts its detail.
type ArticleFetcher struct {
	fetcher ports.TextFetcher
}

var _ ports.ArticleFetcher = (*ArticleFetcher)(nil)

func NewArticleFetcher(fetcher ports.TextFetcher) *ArticleFetcher {
	return &ArticleFetcher{fetcher: fetcher}
}

// FetchArticle retrieves the page at pageURL and parses it. Parse failures are not retried.
func (a *ArticleFetcher) FetchArticle(ctx context.Context, pageURL string) (domain.ArticleDetail, error) {
	html, err := a.fetcher.FetchText(ctx, pageURL)
	if err != nil {
		return domain.ArticleDetail{}, err
	}
	return ParseArticle(html, pageURL)
}

// ParseArticle extracts the article detail from raw markup.
// Links and images inside the body are rewritten to absolute URLs against pageURL.
// The page exposes a single timestamp, so it fills both published_at and updated_at.
func ParseArticle(html, pageURL string) (domain.ArticleDetail, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return domain.ArticleDetail{}, &domain.ParseError{URL: pageURL, Reason: "invalid article url"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.ArticleDetail{}, fmt.Errorf("parse document: %w", err)
	}

	root := doc.Find(rootSelector).First()
	if root.Length() == 0 {
		return domain.ArticleDetail{}, &domain.ParseError{URL: pageURL, Reason: "article root not found"}
	}

	body := root.Find(bodySelector).First()
	if body.Length() == 0 {
		return domain.ArticleDetail{}, &domain.ParseError{URL: pageURL, Reason: "article body not found"}
	}

	rewriteAttr(body.Find("a[href]"), "href", base)
	rewriteAttr(body.Find("img[src]"), "src", base)

	bodyHTML, err := body.Html()
	if err != nil {
		return domain.ArticleDetail{}, fmt.Errorf("render article body: %w", err)
	}

	detail := domain.ArticleDetail{Body: bodyHTML}

	if author := root.Find(authorSelector).First(); author.Length() > 0 {
		name := strings.TrimSpace(author.Text())
		detail.Author = &name
	}

	if stamp, ok := root.Find(timestampSelector).First().Attr("timestamp"); ok {
		instant := domain.ParseInstant(stamp)
		detail.PublishedAt = instant
		detail.UpdatedAt = instant
	}

	if src, ok := root.Find(headerImageSelector).First().Attr("src"); ok {
		resolved := resolve(base, src)
		detail.HeaderImageURL = &resolved
	}

	return detail, nil
}

func rewriteAttr(sel *goquery.Selection, attr string, base *url.URL) {
	sel.Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr(attr)
		s.SetAttr(attr, resolve(base, value))
	})
}

func resolve(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
