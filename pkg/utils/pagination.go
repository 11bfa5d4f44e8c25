package utils

import "strconv"

// Pagination normalizes limit/offset query parameters.
// Listings default to 20 items and are capped at 100.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizePagination clamps raw limit/offset values into a usable range.
func NormalizePagination(limit, offset int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// PaginationFromQuery parses raw query string values; malformed numbers fall
// back to the defaults.
func PaginationFromQuery(limit, offset string) Pagination {
	l, _ := strconv.Atoi(limit)
	o, _ := strconv.Atoi(offset)
	return NormalizePagination(l, o)
}
