package slots

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/melly/timerocket/internal/common"
)

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"self", "other", "group"} {
		c, err := ParseCategory(valid)
		if err != nil {
			t.Fatalf("ParseCategory(%q) error: %v", valid, err)
		}
		if c.String() != valid {
			t.Errorf("got %q, want %q", c, valid)
		}
	}

	for _, invalid := range []string{"", "SELF", "friend", "self "} {
		if _, err := ParseCategory(invalid); !errors.Is(err, common.ErrorValidation) {
			t.Errorf("ParseCategory(%q) = %v, want validation error", invalid, err)
		}
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	c := Coordinate{Category: CategorySelf, Page: 3, Index: 7}
	parsed, err := ParseCoordinate(c.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != c {
		t.Errorf("round trip: got %+v, want %+v", parsed, c)
	}
}

func TestParseCoordinate_Invalid(t *testing.T) {
	for _, s := range []string{"", "self-1", "self-1-11", "self-0-5", "self-x-1", "friend-1-1", "self-1-0"} {
		if _, err := ParseCoordinate(s); !errors.Is(err, common.ErrorValidation) {
			t.Errorf("ParseCoordinate(%q) = %v, want validation error", s, err)
		}
	}
}

func TestFreeIndexes(t *testing.T) {
	used := []string{"self-1-1", "self-1-4", "self-1-10", "self-2-2", "other-1-3", "garbage"}

	free := FreeIndexes(used, CategorySelf, 1)
	want := []int{2, 3, 5, 6, 7, 8, 9}
	if len(free) != len(want) {
		t.Fatalf("free = %v, want %v", free, want)
	}
	for i := range want {
		if free[i] != want[i] {
			t.Fatalf("free = %v, want %v", free, want)
		}
	}
}

type fakeStore struct {
	pages      map[int][]string
	maxDisplay *int64
	err        error
}

func (f *fakeStore) LocationsByPage(ctx context.Context, ownerUserID int64, category Category, page int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

func (f *fakeStore) MaxDisplayLocation(ctx context.Context, ownerUserID int64) (*int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.maxDisplay, nil
}

// fixedRand always picks the first free slot.
type fixedRand struct{}

func (fixedRand) Intn(n int) int { return 0 }

func fullPage(category Category, page int) []string {
	used := make([]string, 0, PageSize)
	for i := 1; i <= PageSize; i++ {
		used = append(used, Coordinate{Category: category, Page: page, Index: i}.String())
	}
	return used
}

func TestNextCoordinate_FirstPage(t *testing.T) {
	store := &fakeStore{pages: map[int][]string{1: {"self-1-1", "self-1-2"}}}
	a := NewAllocator(store, fixedRand{})

	got, err := a.NextCoordinate(context.Background(), 1, CategorySelf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Page != 1 || got.Index != 3 {
		t.Errorf("got %v, want self-1-3", got)
	}
}

func TestNextCoordinate_AdvancesPastFullPage(t *testing.T) {
	store := &fakeStore{pages: map[int][]string{
		1: fullPage(CategoryOther, 1),
		2: {"other-2-1"},
	}}
	a := NewAllocator(store, fixedRand{})

	got, err := a.NextCoordinate(context.Background(), 1, CategoryOther)
	if err != nil {
		t.Fatal(err)
	}
	if got.Page != 2 || got.Index != 2 {
		t.Errorf("got %v, want other-2-2", got)
	}
}

func TestNextCoordinate_DeterministicWithSeed(t *testing.T) {
	store := &fakeStore{pages: map[int][]string{}}

	first, err := NewAllocator(store, NewRand(42)).NextCoordinate(context.Background(), 1, CategorySelf)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewAllocator(store, NewRand(42)).NextCoordinate(context.Background(), 1, CategorySelf)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("same seed produced %v and %v", first, second)
	}
}

func TestNextCoordinate_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	a := NewAllocator(store, fixedRand{})

	if _, err := a.NextCoordinate(context.Background(), 1, CategorySelf); err == nil {
		t.Fatal("expected error")
	}
}

// memStore serves the allocator from a mutable set of occupied slots.
type memStore struct {
	locations func() []string
}

func (m *memStore) LocationsByPage(ctx context.Context, ownerUserID int64, category Category, page int) ([]string, error) {
	return m.locations(), nil
}

func (m *memStore) MaxDisplayLocation(ctx context.Context, ownerUserID int64) (*int64, error) {
	return nil, nil
}

func TestNextCoordinate_RandomOpsKeepCoordinatesUnique(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	live := map[int64]string{}
	var order []int64
	nextID := int64(1)

	store := &memStore{locations: func() []string {
		used := make([]string, 0, len(live))
		for _, loc := range live {
			used = append(used, loc)
		}
		return used
	}}
	alloc := NewAllocator(store, r)

	assertUnique := func(step int) {
		t.Helper()
		seen := map[string]int64{}
		for id, loc := range live {
			if other, ok := seen[loc]; ok {
				t.Fatalf("step %d: chests %d and %d share slot %q", step, other, id, loc)
			}
			seen[loc] = id
		}
	}

	for step := 0; step < 300; step++ {
		switch op := r.Intn(3); {
		case op == 0 || len(order) == 0:
			coord, err := alloc.NextCoordinate(context.Background(), 1, CategorySelf)
			if err != nil {
				t.Fatalf("step %d: allocate: %v", step, err)
			}
			live[nextID] = coord.String()
			order = append(order, nextID)
			nextID++
		case op == 1:
			// Move to a random slot, swapping with the occupant if any.
			id := order[r.Intn(len(order))]
			target := Coordinate{Category: CategorySelf, Page: r.Intn(3) + 1, Index: r.Intn(PageSize) + 1}.String()
			for other, loc := range live {
				if loc == target {
					live[other] = live[id]
					break
				}
			}
			live[id] = target
		default:
			i := r.Intn(len(order))
			delete(live, order[i])
			order = append(order[:i], order[i+1:]...)
		}
		assertUnique(step)
	}
}

func TestNextDisplayLocation(t *testing.T) {
	five := int64(5)
	ten := int64(10)

	tests := []struct {
		name    string
		max     *int64
		want    int64
		wantErr error
	}{
		{"empty display", nil, 1, nil},
		{"mid display", &five, 6, nil},
		{"full display", &ten, 0, common.ErrorCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(&fakeStore{maxDisplay: tt.max}, fixedRand{})
			got, err := a.NextDisplayLocation(context.Background(), 1)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
