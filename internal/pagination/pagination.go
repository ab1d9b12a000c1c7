// Package pagination computes page metadata for offset-paginated listings.
package pagination

// Info describes where a page sits within a listing.
type Info struct {
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	Page            int  `json:"page"`
	PerPage         int  `json:"perPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Page is a slice of items together with its pagination metadata.
type Page[T any] struct {
	Items          []T  `json:"items"`
	PaginationInfo Info `json:"paginationInfo"`
}

// Calculate builds Info from the number of items returned by the query,
// the total number of matching rows, the page size and the zero-based
// page index. A limit of 0 means the listing is a single unbounded page.
//
// When there are no pages at all, Page is the raw skip value rather than
// skip+1; clients depend on that.
func Calculate(itemCount, count, limit, skip int) Info {
	totalPages := 1
	if limit > 0 {
		totalPages = ceilDiv(count, limit)
	}

	page := skip + 1
	if totalPages == 0 {
		page = skip
	}

	perPage := itemCount
	if limit > 0 && ceilDiv(itemCount, limit) < skip {
		perPage = 0
	}

	return Info{
		TotalItems:      count,
		TotalPages:      totalPages,
		Page:            page,
		PerPage:         perPage,
		HasNextPage:     limit > 0 && (skip+1)*limit < count,
		HasPreviousPage: skip > 0,
	}
}

// New wraps items into a Page.
func New[T any](items []T, count, limit, skip int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:          items,
		PaginationInfo: Calculate(len(items), count, limit, skip),
	}
}

// Empty returns a page with no items, used when a filter cannot match.
func Empty[T any](limit, skip int) Page[T] {
	return New[T](nil, 0, limit, skip)
}

// Offset converts a page index into a row offset.
func Offset(limit, skip int) int {
	return skip * limit
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
