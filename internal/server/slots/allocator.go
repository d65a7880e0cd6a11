package slots

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/melly/timerocket/internal/common"
)

// Rand is the randomness source used to pick among free slots. It is an
// interface so tests can inject a deterministic source.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a Rand seeded with the given value.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// Store is the subset of chest persistence the allocator reads.
type Store interface {
	// LocationsByPage returns the coordinate strings already used on one
	// page of a user's category grid (non-deleted records only).
	LocationsByPage(ctx context.Context, ownerUserID int64, category Category, page int) ([]string, error)

	// MaxDisplayLocation returns the highest display location among a
	// user's public, non-deleted records, or nil if there are none.
	MaxDisplayLocation(ctx context.Context, ownerUserID int64) (*int64, error)
}

// Allocator computes free positions in a user's chest grid and display.
type Allocator struct {
	store Store
	rnd   Rand
}

func NewAllocator(store Store, rnd Rand) *Allocator {
	return &Allocator{store: store, rnd: rnd}
}

// NextCoordinate scans pages starting at 1 and returns a uniformly random
// free slot on the first page that has one. Storage is unbounded, so the
// scan only stops when a free slot is found or the store fails.
func (a *Allocator) NextCoordinate(ctx context.Context, ownerUserID int64, category Category) (Coordinate, error) {
	for page := 1; ; page++ {
		used, err := a.store.LocationsByPage(ctx, ownerUserID, category, page)
		if err != nil {
			return Coordinate{}, fmt.Errorf("scanning page %d: %w", page, err)
		}

		free := FreeIndexes(used, category, page)
		if len(free) == 0 {
			continue
		}

		index := free[a.rnd.Intn(len(free))]
		return Coordinate{Category: category, Page: page, Index: index}, nil
	}
}

// NextDisplayLocation returns max(existing)+1, or 1 when the display is
// empty. The result never exceeds MaxDisplaySlots.
func (a *Allocator) NextDisplayLocation(ctx context.Context, ownerUserID int64) (int64, error) {
	max, err := a.store.MaxDisplayLocation(ctx, ownerUserID)
	if err != nil {
		return 0, err
	}

	next := int64(1)
	if max != nil {
		next = *max + 1
	}

	if next > MaxDisplaySlots {
		return 0, fmt.Errorf("%w: display holds at most %d rockets", common.ErrorCapacityExceeded, MaxDisplaySlots)
	}

	return next, nil
}
