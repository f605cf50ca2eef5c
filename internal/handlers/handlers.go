package handlers

import (
	"context"
	"time"

	"photoframe/internal/frame"
	"photoframe/internal/indexer"
	"photoframe/internal/relocation"
)

// Frame is the subset of frame.Service the API calls.
type Frame interface {
	SelectNext(ctx context.Context) (frame.Result, error)
	Relocate(path string, target relocation.Bucket) (string, error)
	Omit(path string) error
	Delete(path string) error
	Reindex(full bool) error
	ExistenceCheck() bool
}

// Library answers whether a path is indexed.
type Library interface {
	Contains(path string) bool
	Len() int
}

// IndexStatus reports indexer state for health checks.
type IndexStatus interface {
	GetProgress() indexer.IndexProgress
	LastIndexTime() time.Time
	LastError() error
}

type Handlers struct {
	frame     Frame
	library   Library
	index     IndexStatus
	startTime time.Time
}

func New(f Frame, lib Library, idx IndexStatus) *Handlers {
	return &Handlers{
		frame:     f,
		library:   lib,
		index:     idx,
		startTime: time.Now(),
	}
}
