// Package slots implements the slot-addressed grid of a user's chest:
// the receiver-type category namespace, the {category}-{page}-{index}
// coordinate encoding, and the allocators that hand out free storage
// coordinates and display locations.
package slots

import (
	"fmt"

	"github.com/melly/timerocket/internal/common"
)

// Category partitions a user's chest grid by who the rocket was sent to.
type Category string

const (
	CategorySelf  Category = "self"
	CategoryOther Category = "other"
	CategoryGroup Category = "group"
)

// ParseCategory validates a raw receiver-type string against the closed set
// of categories. Anything else is a validation error.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySelf, CategoryOther, CategoryGroup:
		return Category(s), nil
	default:
		return "", fmt.Errorf("%w: receiver type must be one of 'self', 'other', 'group', got %q", common.ErrorValidation, s)
	}
}

func (c Category) String() string {
	return string(c)
}
