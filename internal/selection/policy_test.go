package selection

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoframe/internal/library"
)

// fixedRand returns a constant draw and always the first index.
type fixedRand struct {
	f float64
}

func (r *fixedRand) Float64() float64 { return r.f }

func (r *fixedRand) IntN(int) int { return 0 }

var now = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func photo(path string, t time.Time) library.Photo {
	return library.Photo{Path: path, CreatedAt: t}
}

func TestSelectEmpty(t *testing.T) {
	p := New(DefaultConfig("/photos/Favorites"), nil)
	_, _, ok := p.Select(nil, now)
	assert.False(t, ok)
}

func TestSelectTodayOnlyIsSmart(t *testing.T) {
	photos := []library.Photo{
		photo("/photos/a.jpg", now),
		photo("/photos/b.jpg", now.Add(-time.Hour)),
	}
	p := New(DefaultConfig("/photos/Favorites"), &fixedRand{f: 0.1})

	got, tier, ok := p.Select(photos, now)
	require.True(t, ok)
	assert.Equal(t, TierSmart, tier)
	assert.Contains(t, photos, got)
}

func TestSelectTierBands(t *testing.T) {
	old := now.AddDate(-2, -3, 0)
	photos := []library.Photo{
		photo("/photos/old.jpg", old),
		photo("/photos/Favorites/fav.jpg", old),
		photo("/photos/new.jpg", now.AddDate(0, 0, -1)),
	}
	cfg := DefaultConfig("/photos/Favorites")

	tests := []struct {
		name string
		draw float64
		tier Tier
	}{
		{"smart band", 0.0, TierSmart},
		{"smart band upper edge", 0.49, TierSmart},
		{"favorite band", 0.5, TierFavorite},
		{"favorite band upper edge", 0.74, TierFavorite},
		{"whole library", 0.75, TierAll},
		{"whole library top", 0.999, TierAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(cfg, &fixedRand{f: tt.draw})
			_, tier, ok := p.Select(photos, now)
			require.True(t, ok)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestSelectFallsThroughEmptyTiers(t *testing.T) {
	old := now.AddDate(-2, -3, 0)
	cfg := DefaultConfig("/photos/Favorites")

	t.Run("smart empty falls to favorites", func(t *testing.T) {
		photos := []library.Photo{
			photo("/photos/old.jpg", old),
			photo("/photos/Favorites/fav.jpg", old),
		}
		got, tier, ok := New(cfg, &fixedRand{f: 0.1}).Select(photos, now)
		require.True(t, ok)
		assert.Equal(t, TierFavorite, tier)
		assert.Equal(t, "/photos/Favorites/fav.jpg", got.Path)
	})

	t.Run("smart and favorites empty falls to all", func(t *testing.T) {
		photos := []library.Photo{photo("/photos/old.jpg", old)}
		got, tier, ok := New(cfg, &fixedRand{f: 0.1}).Select(photos, now)
		require.True(t, ok)
		assert.Equal(t, TierAll, tier)
		assert.Equal(t, "/photos/old.jpg", got.Path)
	})

	t.Run("favorites empty falls to all", func(t *testing.T) {
		photos := []library.Photo{photo("/photos/old.jpg", old)}
		_, tier, ok := New(cfg, &fixedRand{f: 0.6}).Select(photos, now)
		require.True(t, ok)
		assert.Equal(t, TierAll, tier)
	})
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	photos := []library.Photo{
		photo("/photos/b.jpg", now),
		photo("/photos/a.jpg", now.AddDate(-3, 0, 0)),
	}
	before := append([]library.Photo(nil), photos...)

	p := New(DefaultConfig("/photos/Favorites"), rand.New(rand.NewPCG(1, 2)))
	for range 50 {
		p.Select(photos, now)
	}
	assert.Equal(t, before, photos)
}

func TestSelectSmartScenario(t *testing.T) {
	photoA := photo("/photos/photoA.jpg", now.AddDate(0, 0, -1))
	photoB := photo("/photos/photoB.jpg", now.AddDate(-1, 0, 0))
	photos := []library.Photo{photoA, photoB}

	cfg := DefaultConfig("/photos/Favorites")
	cfg.SmartWeight = 1
	p := New(cfg, rand.New(rand.NewPCG(7, 7)))
	seen := map[string]bool{}
	for range 200 {
		got, tier, ok := p.Select(photos, now)
		require.True(t, ok)
		require.Equal(t, TierSmart, tier)
		require.Contains(t, []string{photoA.Path, photoB.Path}, got.Path)
		seen[got.Path] = true
	}
	assert.True(t, seen[photoA.Path])
	assert.True(t, seen[photoB.Path])
}

func TestIsRecent(t *testing.T) {
	assert.True(t, IsRecent(now, now, 30))
	assert.True(t, IsRecent(now.AddDate(0, 0, -30), now, 30))
	assert.False(t, IsRecent(now.AddDate(0, 0, -31), now, 30))
	assert.True(t, IsRecent(now.Add(time.Hour), now, 30))
	assert.False(t, IsRecent(now, now, 0))
}

func TestIsAnniversary(t *testing.T) {
	tests := []struct {
		name  string
		taken time.Time
		now   time.Time
		want  bool
	}{
		{"same day last year", now.AddDate(-1, 0, 0), now, true},
		{"three days off five years ago", now.AddDate(-5, 0, 3), now, true},
		{"four days off", now.AddDate(-1, 0, -4), now, false},
		{"this year is not an anniversary", now.AddDate(0, 0, -1), now, false},
		{"different month", now.AddDate(-1, -2, 0), now, false},
		{
			"window wraps forward into january",
			time.Date(2020, time.January, 1, 9, 0, 0, 0, time.UTC),
			time.Date(2026, time.December, 30, 9, 0, 0, 0, time.UTC),
			true,
		},
		{
			"window wraps back into december",
			time.Date(2019, time.December, 30, 9, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC),
			true,
		},
		{
			"wrap into current year is not counted",
			time.Date(2025, time.December, 30, 9, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnniversary(tt.taken, tt.now, 3))
		})
	}
}
