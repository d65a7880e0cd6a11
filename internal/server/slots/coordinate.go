package slots

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/melly/timerocket/internal/common"
)

const (
	// PageSize is the number of slots on a single chest page.
	PageSize = 10

	// MaxDisplaySlots caps the number of public rockets per user.
	MaxDisplaySlots = 10
)

// Coordinate addresses a slot in a user's chest grid, encoded on the wire
// and in the database as "{category}-{page}-{index}" (e.g. "self-1-3").
// Pages start at 1 and are unbounded; indexes run 1..PageSize.
type Coordinate struct {
	Category Category
	Page     int
	Index    int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%s-%d-%d", c.Category, c.Page, c.Index)
}

// PagePrefix returns the SQL LIKE prefix matching every coordinate on the
// given page of a category, e.g. "self-2-%".
func PagePrefix(category Category, page int) string {
	return fmt.Sprintf("%s-%d-%%", category, page)
}

// ParseCoordinate decodes a "{category}-{page}-{index}" string.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("%w: malformed coordinate %q", common.ErrorValidation, s)
	}

	category, err := ParseCategory(parts[0])
	if err != nil {
		return Coordinate{}, err
	}

	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return Coordinate{}, fmt.Errorf("%w: invalid page in coordinate %q", common.ErrorValidation, s)
	}

	index, err := strconv.Atoi(parts[2])
	if err != nil || index < 1 || index > PageSize {
		return Coordinate{}, fmt.Errorf("%w: invalid index in coordinate %q", common.ErrorValidation, s)
	}

	return Coordinate{Category: category, Page: page, Index: index}, nil
}

// FreeIndexes returns the indexes of a page not present in used, where used
// holds coordinate strings belonging to that page. Unparseable entries are
// ignored.
func FreeIndexes(used []string, category Category, page int) []int {
	taken := make(map[int]bool, len(used))
	for _, s := range used {
		c, err := ParseCoordinate(s)
		if err != nil || c.Category != category || c.Page != page {
			continue
		}
		taken[c.Index] = true
	}

	free := make([]int, 0, PageSize)
	for i := 1; i <= PageSize; i++ {
		if !taken[i] {
			free = append(free, i)
		}
	}
	return free
}
