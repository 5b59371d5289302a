package repository

import "errors"

// ErrInvalidPageSize rejects a page size below one.
var ErrInvalidPageSize = errors.New("page size must be > 0")

// TotalPages is ceil(total/pageSize), never less than one.
func TotalPages(total, pageSize int) (int, error) {
	if pageSize <= 0 {
		return 0, ErrInvalidPageSize
	}
	total = max(total, 0)
	return max(1, (total+pageSize-1)/pageSize), nil
}

// PageSlice returns the 1-based page of items. Pages below one read as the first page.
func PageSlice[T any](items []T, page, pageSize int) ([]T, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	page = max(page, 1)

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}, nil
	}
	end := min(start+pageSize, len(items))
	return items[start:end], nil
}
