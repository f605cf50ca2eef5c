package library

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersisterRoundTrip(t *testing.T) {
	p := NewPersister(t.TempDir())
	in := []Photo{
		{Path: "/photos/2024/a.jpg", CreatedAt: time.Date(2024, 3, 9, 8, 30, 15, 123000000, time.UTC)},
		{Path: "/photos/Favorites/b.jpg", CreatedAt: time.Date(2019, 12, 31, 23, 59, 59, 0, time.FixedZone("CET", 3600))},
	}

	require.NoError(t, p.SaveLibrary(in))
	out, err := p.LoadLibrary()
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Path, out[i].Path)
		assert.True(t, in[i].CreatedAt.Equal(out[i].CreatedAt))
	}

	first, err := os.ReadFile(p.Path())
	require.NoError(t, err)
	require.NoError(t, p.SaveLibrary(out))
	second, err := os.ReadFile(p.Path())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "decode/re-encode must be byte-identical")
}

func TestPersisterFileShape(t *testing.T) {
	p := NewPersister(t.TempDir())
	require.NoError(t, p.SaveLibrary([]Photo{{Path: "/x/a.jpg", CreatedAt: time.Unix(0, 0).UTC()}}))

	data, err := os.ReadFile(p.Path())
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "/x/a.jpg", raw[0]["path"])
	assert.Equal(t, "1970-01-01T00:00:00Z", raw[0]["created"])
}

func TestPersisterEmptyLibraryWritesArray(t *testing.T) {
	p := NewPersister(t.TempDir())
	require.NoError(t, p.SaveLibrary(nil))
	data, err := os.ReadFile(p.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestLoadLibraryMissing(t *testing.T) {
	p := NewPersister(t.TempDir())
	photos, err := p.LoadLibrary()
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestRunSnapshotsFlushesOnCancel(t *testing.T) {
	p := NewPersister(t.TempDir())
	s := NewStore(p)
	s.Merge([]Photo{photo("/p/a.jpg")})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSnapshots(ctx, s, time.Hour)
		close(done)
	}()
	cancel()
	<-done

	assert.False(t, s.Dirty())
	photos, err := p.LoadLibrary()
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestRunSnapshotsTicks(t *testing.T) {
	p := NewPersister(t.TempDir())
	s := NewStore(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunSnapshots(ctx, s, 5*time.Millisecond)

	s.Merge([]Photo{photo("/p/a.jpg")})
	assert.Eventually(t, func() bool { return !s.Dirty() }, time.Second, 5*time.Millisecond)
}

func TestPhotoIsUnder(t *testing.T) {
	p := Photo{Path: "/photos/Favorites/2024/a.jpg"}
	assert.True(t, p.IsUnder("/photos/Favorites"))
	assert.True(t, p.IsUnder("/photos/Favorites/"))
	assert.False(t, p.IsUnder("/photos/Fav"))
	assert.False(t, p.IsUnder(""))
	assert.Equal(t, "a.jpg", p.Name())
}
