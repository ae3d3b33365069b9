package slugger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketpulse/slugger"
)

func TestDeriveBaseSlug(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Banks Beat Estimates in Q3", "banks-beat-estimates-in-q3"},
		{"  Leading   and trailing   ", "leading-and-trailing"},
		{"Fed hikes rates -- again!", "fed-hikes-rates-again"},
		{"100% Stocks?!", "100-stocks"},
		{"snake_case_title", "snakecasetitle"},
		{"---", ""},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugger.DeriveBaseSlug(tc.title), "title=%q", tc.title)
	}
}

func TestDeriveBaseSlugIdempotent(t *testing.T) {
	titles := []string{"Banks Beat Estimates in Q3", "Fed hikes rates -- again!", "100% Stocks?!"}
	for _, title := range titles {
		once := slugger.DeriveBaseSlug(title)
		assert.Equal(t, once, slugger.DeriveBaseSlug(once))
	}
}

func neverExists(ctx context.Context, slug string) (bool, error) { return false, nil }

func TestAssignNoCollision(t *testing.T) {
	a := slugger.NewAssigner(slugger.StrategyCounter)
	got, err := a.Assign(context.Background(), "q3-earnings", neverExists)
	assert.NoError(t, err)
	assert.Equal(t, "q3-earnings", got)
}

func TestAssignCounterStrategy(t *testing.T) {
	taken := map[string]bool{"q3-earnings": true, "q3-earnings-1": true, "q3-earnings-2": true}
	exists := func(ctx context.Context, slug string) (bool, error) { return taken[slug], nil }

	a := slugger.NewAssigner(slugger.StrategyCounter)
	got, err := a.Assign(context.Background(), "q3-earnings", exists)
	assert.NoError(t, err)
	assert.Equal(t, "q3-earnings-3", got)
}

// Counter strategy never hands out the same slug twice when each assignment
// is recorded back into the store.
func TestAssignCounterUnique(t *testing.T) {
	taken := map[string]bool{}
	exists := func(ctx context.Context, slug string) (bool, error) { return taken[slug], nil }

	a := slugger.NewAssigner(slugger.StrategyCounter)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		got, err := a.Assign(context.Background(), "daily-brief", exists)
		assert.NoError(t, err)
		assert.False(t, seen[got], "slug %q assigned twice", got)
		seen[got] = true
		taken[got] = true
	}
}

func TestAssignTimestampStrategy(t *testing.T) {
	fixed := time.UnixMilli(1700000012345)
	a := slugger.NewAssignerWithClock(slugger.StrategyTimestamp, func() time.Time { return fixed })

	calls := 0
	exists := func(ctx context.Context, slug string) (bool, error) {
		calls++
		return slug == "q3-earnings", nil
	}

	got, err := a.Assign(context.Background(), "q3-earnings", exists)
	assert.NoError(t, err)
	assert.Equal(t, "q3-earnings-12345", got)
	// The one-shot suffix is not re-verified.
	assert.Equal(t, 1, calls)
}

func TestAssignFromTitleEmptyBase(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	a := slugger.NewAssignerWithClock(slugger.StrategyCounter, func() time.Time { return fixed })

	got, err := a.AssignFromTitle(context.Background(), "!!!", neverExists)
	assert.NoError(t, err)
	assert.Equal(t, "post-1700000000000", got)
}

func TestAssignPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	exists := func(ctx context.Context, slug string) (bool, error) { return false, storeErr }

	a := slugger.NewAssigner(slugger.StrategyCounter)
	_, err := a.Assign(context.Background(), "q3-earnings", exists)
	assert.ErrorIs(t, err, storeErr)
}
