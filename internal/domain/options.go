package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SortField enumerates the columns a listing may be ordered by. Anything
// outside this set must be rejected before query construction.
type SortField string

const (
	SortByTitle SortField = "title"
	SortByYear  SortField = "yearofrelease"
)

// SortDirection controls the listing order. Ascending is the default.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// Pagination defaults applied by the catalog service when the caller
// leaves page/pageSize unset or out of range.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// GetAllOptions bundles the filters, sorting, pagination, and optional
// requesting user for a movie listing. Nil filters never narrow the
// result set.
type GetAllOptions struct {
	Title     *string
	Year      *int
	Sort      SortField
	Direction SortDirection
	UserID    *uuid.UUID
	Page      int
	PageSize  int
}

// Offset returns the row offset implied by Page and PageSize.
func (o GetAllOptions) Offset() int {
	if o.Page <= 1 {
		return 0
	}
	return (o.Page - 1) * o.PageSize
}

// ParseSort interprets a raw sortBy value such as "title" or "-yearofrelease".
// A leading '-' (or '+') selects the direction; the remaining field name must
// come from the SortField allow-list.
func ParseSort(raw string) (SortField, SortDirection, error) {
	direction := Ascending
	field := strings.TrimSpace(raw)
	if strings.HasPrefix(field, "-") {
		direction = Descending
	}
	field = strings.TrimLeft(field, "+-")

	switch SortField(strings.ToLower(field)) {
	case SortByTitle:
		return SortByTitle, direction, nil
	case SortByYear:
		return SortByYear, direction, nil
	default:
		return "", Ascending, fmt.Errorf("unsupported sort field %q", field)
	}
}
