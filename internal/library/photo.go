package library

import (
	"path/filepath"
	"strings"
	"time"
)

// Photo is one indexed image. Path is the identity: two records with the
// same path are the same photo.
type Photo struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created"`
}

// Name returns the file name of the photo.
func (p Photo) Name() string {
	return filepath.Base(p.Path)
}

// IsUnder reports whether the photo lives somewhere below dir.
func (p Photo) IsUnder(dir string) bool {
	if dir == "" {
		return false
	}
	dir = filepath.Clean(dir) + string(filepath.Separator)
	return strings.HasPrefix(p.Path, dir)
}
