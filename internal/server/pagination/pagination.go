// Package pagination validates raw page/sort parameters into the primitives
// the list queries consume.
package pagination

import (
	"fmt"
	"slices"

	"github.com/melly/timerocket/internal/common"
)

// Direction is a validated sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Pageable carries already-validated pagination primitives: a 1-based page
// number, a positive page size, a whitelisted sort field and a direction.
type Pageable struct {
	Page   int
	Size   int
	SortBy string
	Dir    Direction
}

// New validates raw parameters. sortBy must be one of allowedSortFields;
// an empty sortBy falls back to the first allowed field.
func New(page, size int, sortBy, dir string, allowedSortFields []string) (Pageable, error) {
	if page < 1 {
		return Pageable{}, fmt.Errorf("%w: page must be >= 1", common.ErrorValidation)
	}
	if size < 1 {
		return Pageable{}, fmt.Errorf("%w: size must be >= 1", common.ErrorValidation)
	}

	if sortBy == "" && len(allowedSortFields) > 0 {
		sortBy = allowedSortFields[0]
	}
	if !slices.Contains(allowedSortFields, sortBy) {
		return Pageable{}, fmt.Errorf("%w: unknown sort field %q", common.ErrorValidation, sortBy)
	}

	var direction Direction
	switch dir {
	case "", "asc", "ASC":
		direction = Asc
	case "desc", "DESC":
		direction = Desc
	default:
		return Pageable{}, fmt.Errorf("%w: sort direction must be asc or desc", common.ErrorValidation)
	}

	return Pageable{Page: page, Size: size, SortBy: sortBy, Dir: direction}, nil
}

// Offset returns the row offset of the page.
func (p Pageable) Offset() int {
	return (p.Page - 1) * p.Size
}

// TotalPages returns the page count for total rows.
func (p Pageable) TotalPages(total int64) int {
	if total == 0 {
		return 0
	}
	pages := int(total) / p.Size
	if int(total)%p.Size != 0 {
		pages++
	}
	return pages
}
