package domain

// ListingItem is one article entry as exposed by a listing payload.
type ListingItem struct {
	NewsPath    string
	Title       string
	Summary     string
	LastUpdated string
	ImageURL    string
}

// Pagination carries the cursor state reported by a listing page.
type Pagination struct {
	Offset      int
	Limit       int
	HasNextPage bool
}

// ListingPage is a decoded listing payload. Featured is only set on the root page.
type ListingPage struct {
	Featured   []ListingItem
	Items      []ListingItem
	Pagination Pagination
}
