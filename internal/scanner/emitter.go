package scanner

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"

	"photoframe/internal/library"
	"photoframe/internal/logging"
)

// DefaultBatchSize bounds the number of photos per ingestion message.
const DefaultBatchSize = 50

// MessageType tags messages on the ingestion channel.
type MessageType string

const (
	// MessageBatch carries up to one batch of photos.
	MessageBatch MessageType = "batch"
	// MessageDone marks the end of a successful scan; every batch,
	// including the partial tail, has been sent before it.
	MessageDone MessageType = "done"
	// MessageError marks a failed scan. Batches sent before it stay valid.
	MessageError MessageType = "error"
)

// Message is one frame of the scan stream.
type Message struct {
	Type   MessageType     `json:"type"`
	Photos []library.Photo `json:"photos,omitempty"`
	Total  int             `json:"total,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Mode selects what a scan run covers.
type Mode string

const (
	// ModeDefaults scans only the favorites folder, used to get something on
	// screen quickly with an empty library.
	ModeDefaults Mode = "defaults"
	// ModeFull scans the whole photo root.
	ModeFull Mode = "full"
)

// ParseMode validates a mode argument.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDefaults, ModeFull:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown scan mode %q (want %q or %q)", s, ModeDefaults, ModeFull)
	}
}

// Emit drains seq into batches of size photos, sending each batch as soon
// as it fills and the remainder when seq ends, followed by a MessageDone.
// It returns the number of photos sent.
func Emit(ctx context.Context, seq iter.Seq[library.Photo], size int, out chan<- Message) (int, error) {
	if size <= 0 {
		size = DefaultBatchSize
	}

	send := func(m Message) error {
		select {
		case out <- m:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	total := 0
	batch := make([]library.Photo, 0, size)
	var sendErr error

	for p := range seq {
		batch = append(batch, p)
		if len(batch) < size {
			continue
		}
		if sendErr = send(Message{Type: MessageBatch, Photos: batch}); sendErr != nil {
			break
		}
		total += len(batch)
		batch = make([]library.Photo, 0, size)
	}
	if sendErr != nil {
		return total, sendErr
	}

	// The walk stops silently on cancellation, so check before claiming
	// the scan finished.
	if err := ctx.Err(); err != nil {
		return total, err
	}

	if len(batch) > 0 {
		if err := send(Message{Type: MessageBatch, Photos: batch}); err != nil {
			return total, err
		}
		total += len(batch)
	}

	if err := send(Message{Type: MessageDone, Total: total}); err != nil {
		return total, err
	}
	return total, nil
}

// WorkerConfig describes the tree a scan worker walks.
type WorkerConfig struct {
	Root         string
	FavoritesDir string
	Excluded     []string
	BatchSize    int
}

// RunWorker is one scan run: it walks the tree selected by mode and streams
// batches to out, then closes out. The last message is MessageDone on
// success or MessageError on failure.
func RunWorker(ctx context.Context, cfg WorkerConfig, mode Mode, out chan<- Message) (err error) {
	defer close(out)

	defer func() {
		if err == nil {
			return
		}
		logging.Error("Scan worker (%s) failed: %v", mode, err)
		msg := Message{Type: MessageError, Error: err.Error()}
		// The consumer treats a close without MessageDone as a failure, so
		// dropping this frame on cancellation is harmless.
		select {
		case out <- msg:
		default:
			select {
			case out <- msg:
			case <-ctx.Done():
			}
		}
	}()

	root := cfg.Root
	switch mode {
	case ModeFull:
	case ModeDefaults:
		root = filepath.Join(cfg.Root, cfg.FavoritesDir)
	default:
		return fmt.Errorf("unknown scan mode %q", mode)
	}

	s := New(root, cfg.Excluded)
	n, err := Emit(ctx, s.Photos(ctx), cfg.BatchSize, out)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	logging.Debug("Scan worker (%s) emitted %d photos from %s", mode, n, root)
	return nil
}
