package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// UniqueDestination returns dir/base, or dir/<stem>_<unix-millis><ext> when
// that name is already taken.
func UniqueDestination(dir, base string, now time.Time) string {
	dst := filepath.Join(dir, base)
	if !taken(dst) {
		return dst
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := now.UnixMilli()
	for {
		dst = filepath.Join(dir, stem+"_"+strconv.FormatInt(stamp, 10)+ext)
		if !taken(dst) {
			return dst
		}
		stamp++
	}
}

// taken reports whether something already exists at path. Lookup errors
// other than "not found" are left for the move itself to report.
func taken(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Move renames src to dst, creating dst's parent directory. When the rename
// crosses devices it falls back to copy + remove. The modification time is
// preserved so the moved photo keeps its date.
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	if obs := observe(); obs != nil {
		obs.ObserveRetryAttempt("copy")
	}
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return errors.Is(err, syscall.EXDEV)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
