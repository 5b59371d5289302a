package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

const featuredSectionName = "Featured"

// Client reads the publisher's news (root) and feed (paged) endpoints.
type Client struct {
	fetcher ports.TextFetcher
	newsURL string
	feedURL string
}

var _ ports.ListingSource = (*Client)(nil)

// NewClient builds endpoints like <base>/<locale>/api/news/<product>.
func NewClient(fetcher ports.TextFetcher, baseURL, locale, product string) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	return &Client{
		fetcher: fetcher,
		newsURL: fmt.Sprintf("%s/%s/api/news/%s", base, locale, product),
		feedURL: fmt.Sprintf("%s/%s/api/feed/%s", base, locale, product),
	}
}

// FirstPage fetches the root payload carrying featured items and the first feed page.
func (c *Client) FirstPage(ctx context.Context) (domain.ListingPage, error) {
	raw, err := c.fetcher.FetchText(ctx, c.newsURL)
	if err != nil {
		return domain.ListingPage{}, err
	}

	var payload rootPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.ListingPage{}, fmt.Errorf("decode news payload: %w", err)
	}

	page := domain.ListingPage{
		Items:      toItems(payload.Feed.ContentItems),
		Pagination: payload.Feed.Pagination.toDomain(),
	}
	for _, section := range payload.Sections {
		if section.Name == featuredSectionName {
			page.Featured = toItems(section.ContentGroups)
			break
		}
	}

	return page, nil
}

// PageAt fetches the feed page starting at offset.
func (c *Client) PageAt(ctx context.Context, offset int) (domain.ListingPage, error) {
	pageURL, err := buildPageURL(c.feedURL, offset)
	if err != nil {
		return domain.ListingPage{}, err
	}

	raw, err := c.fetcher.FetchText(ctx, pageURL)
	if err != nil {
		return domain.ListingPage{}, err
	}

	var payload feedPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.ListingPage{}, fmt.Errorf("decode feed payload: %w", err)
	}

	// pages sometimes nest their items under "feed" like the root payload
	items, pagination := payload.ContentItems, payload.Pagination
	if payload.Feed != nil {
		items, pagination = payload.Feed.ContentItems, payload.Feed.Pagination
	}

	return domain.ListingPage{
		Items:      toItems(items),
		Pagination: pagination.toDomain(),
	}, nil
}

func buildPageURL(base string, offset int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("offset", strconv.Itoa(offset))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func toItems(groups []contentGroup) []domain.ListingItem {
	items := make([]domain.ListingItem, 0, len(groups))
	for _, group := range groups {
		props := group.itemProperties()
		items = append(items, domain.ListingItem{
			NewsPath:    props.NewsPath,
			Title:       strings.TrimSpace(props.Title),
			Summary:     strings.TrimSpace(props.Summary),
			LastUpdated: string(props.LastUpdated),
			ImageURL:    props.StaticAsset.ImageURL,
		})
	}
	return items
}
