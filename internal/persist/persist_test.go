package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.json")
	in := sample{Name: "a", Tags: []string{"x", "y"}, Count: 3}

	require.NoError(t, WriteJSON(path, in))

	var out sample
	found, err := ReadJSON(path, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestReadJSONMissingFile(t *testing.T) {
	out := sample{Name: "untouched"}
	found, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "untouched", out.Name)
}

func TestReadJSONCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var out sample
	found, err := ReadJSON(path, &out)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestWriteJSONLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")

	require.NoError(t, WriteJSON(path, sample{Name: "one"}))
	require.NoError(t, WriteJSON(path, sample{Name: "two"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s.json", entries[0].Name())

	var out sample
	_, err = ReadJSON(path, &out)
	require.NoError(t, err)
	assert.Equal(t, "two", out.Name)
}
