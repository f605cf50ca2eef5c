// Package selection picks the next photo to show.
//
// Three tiers are drawn from on every request: "smart" candidates (recent
// photos and photos taken around today's date in earlier years), favorites,
// and the whole library. A single uniform draw decides the tier; an empty
// tier falls through to the next broader one so a non-empty library always
// yields a photo.
package selection

import (
	"math/rand/v2"
	"sync"
	"time"

	"photoframe/internal/library"
)

// Tier identifies which pool a pick came from.
type Tier string

const (
	TierSmart    Tier = "smart"
	TierFavorite Tier = "favorite"
	TierAll      Tier = "all"
)

// Rand is the randomness the policy consumes. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Config holds the policy weights and windows.
type Config struct {
	// FavoritesDir is the absolute path of the favorites bucket.
	FavoritesDir string
	// RecentDays is the trailing window, in days, that counts as recent.
	RecentDays int
	// AnniversaryDays is the half-width of the "on this day" window.
	AnniversaryDays int
	// SmartWeight is the probability of drawing from the smart tier.
	SmartWeight float64
	// FavoriteWeight is the probability of drawing from favorites.
	FavoriteWeight float64
}

// DefaultConfig returns the tuned weights.
func DefaultConfig(favoritesDir string) Config {
	return Config{
		FavoritesDir:    favoritesDir,
		RecentDays:      30,
		AnniversaryDays: 3,
		SmartWeight:     0.5,
		FavoriteWeight:  0.25,
	}
}

// Policy is stateless apart from its random source.
type Policy struct {
	cfg  Config
	mu   sync.Mutex
	rand Rand
}

// New returns a policy drawing from r. A nil r uses an unseeded PCG source.
func New(cfg Config, r Rand) *Policy {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Policy{cfg: cfg, rand: r}
}

// Config returns the policy settings.
func (p *Policy) Config() Config {
	return p.cfg
}

// Select picks one photo. ok is false only when photos is empty. The input
// slice is not modified.
func (p *Policy) Select(photos []library.Photo, now time.Time) (library.Photo, Tier, bool) {
	if len(photos) == 0 {
		return library.Photo{}, "", false
	}

	var favorites, smart []library.Photo
	for _, ph := range photos {
		if ph.IsUnder(p.cfg.FavoritesDir) {
			favorites = append(favorites, ph)
		}
		if p.IsSmart(ph, now) {
			smart = append(smart, ph)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.rand.Float64()
	switch {
	case r < p.cfg.SmartWeight:
		if len(smart) > 0 {
			return p.pick(smart), TierSmart, true
		}
		if len(favorites) > 0 {
			return p.pick(favorites), TierFavorite, true
		}
	case r < p.cfg.SmartWeight+p.cfg.FavoriteWeight:
		if len(favorites) > 0 {
			return p.pick(favorites), TierFavorite, true
		}
	}
	return p.pick(photos), TierAll, true
}

func (p *Policy) pick(pool []library.Photo) library.Photo {
	return pool[p.rand.IntN(len(pool))]
}

// IsSmart reports whether ph is recent or an "on this day" match.
func (p *Policy) IsSmart(ph library.Photo, now time.Time) bool {
	return IsRecent(ph.CreatedAt, now, p.cfg.RecentDays) ||
		IsAnniversary(ph.CreatedAt, now, p.cfg.AnniversaryDays)
}

// IsRecent reports whether t falls within the last days days before now.
// Timestamps slightly in the future (clock skew) count as recent.
func IsRecent(t, now time.Time, days int) bool {
	if days <= 0 {
		return false
	}
	return !t.Before(now.AddDate(0, 0, -days))
}

// IsAnniversary reports whether t lies within ±days calendar days of
// today's month and day in some year before now's year.
func IsAnniversary(t, now time.Time, days int) bool {
	if days < 0 {
		return false
	}
	loc := now.Location()
	taken := dateOf(t.In(loc))
	// Check the anchors around t's own year so windows that wrap across
	// New Year are matched too.
	for y := taken.Year() - 1; y <= taken.Year()+1; y++ {
		if y >= now.Year() {
			continue
		}
		anchor := time.Date(y, now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if absDays(taken, anchor) <= days {
			return true
		}
	}
	return false
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// absDays counts whole calendar days between two midnights. Rounding hides
// DST shifts.
func absDays(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int((d + 12*time.Hour) / (24 * time.Hour))
}
