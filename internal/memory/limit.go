package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"

	"github.com/dustin/go-humanize"

	"photoframe/internal/logging"
)

// DefaultRatio is the share of the memory limit given to the Go heap.
const DefaultRatio = 0.85

// Source values reported in Result.
const (
	SourceEnv    = "GOMEMLIMIT"
	SourceConfig = "memory_limit"
	SourceNone   = "none"
)

// Result describes what Configure did.
type Result struct {
	Source     string
	Limit      uint64
	GoMemLimit int64
	Ratio      float64
}

// Configure applies GOMEMLIMIT from limit, a size such as "512MiB" or a
// plain byte count, scaled by ratio. An empty limit leaves the runtime
// untouched. Call it before the library snapshot is loaded.
func Configure(limit string, ratio float64) (Result, error) {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		current := debug.SetMemoryLimit(-1)
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return Result{Source: SourceEnv, GoMemLimit: current}, nil
	}

	if limit == "" {
		logging.Debug("No memory limit configured, GOMEMLIMIT left at default")
		return Result{Source: SourceNone}, nil
	}

	size, err := humanize.ParseBytes(limit)
	if err != nil {
		return Result{}, fmt.Errorf("invalid memory limit %q: %w", limit, err)
	}
	if !(ratio > 0 && ratio <= 1) {
		return Result{}, fmt.Errorf("memory ratio must be in (0, 1], got %v", ratio)
	}

	goLimit := float64(size) * ratio
	if goLimit > math.MaxInt64 {
		goLimit = math.MaxInt64
	}
	res := Result{
		Source:     SourceConfig,
		Limit:      size,
		GoMemLimit: int64(goLimit),
		Ratio:      ratio,
	}
	debug.SetMemoryLimit(res.GoMemLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s)",
		humanize.IBytes(uint64(res.GoMemLimit)), ratio*100, humanize.IBytes(size))
	return res, nil
}
