package scanner

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoframe/internal/library"
)

func seqOf(n int) iter.Seq[library.Photo] {
	return func(yield func(library.Photo) bool) {
		for i := 0; i < n; i++ {
			if !yield(library.Photo{Path: fmt.Sprintf("/p/%04d.jpg", i)}) {
				return
			}
		}
	}
}

func drain(out <-chan Message) []Message {
	var msgs []Message
	for m := range out {
		msgs = append(msgs, m)
	}
	return msgs
}

func TestEmitBatchesAndFinalFlush(t *testing.T) {
	out := make(chan Message, 16)
	n, err := Emit(context.Background(), seqOf(123), 50, out)
	require.NoError(t, err)
	close(out)
	assert.Equal(t, 123, n)

	msgs := drain(out)
	require.Len(t, msgs, 4)
	assert.Len(t, msgs[0].Photos, 50)
	assert.Len(t, msgs[1].Photos, 50)
	assert.Len(t, msgs[2].Photos, 23, "partial tail must be flushed")
	for _, m := range msgs[:3] {
		assert.Equal(t, MessageBatch, m.Type)
	}
	assert.Equal(t, MessageDone, msgs[3].Type)
	assert.Equal(t, 123, msgs[3].Total)
}

func TestEmitExactMultipleHasNoEmptyBatch(t *testing.T) {
	out := make(chan Message, 16)
	_, err := Emit(context.Background(), seqOf(100), 50, out)
	require.NoError(t, err)
	close(out)

	msgs := drain(out)
	require.Len(t, msgs, 3)
	assert.Equal(t, MessageDone, msgs[2].Type)
}

func TestEmitEmptySequence(t *testing.T) {
	out := make(chan Message, 1)
	n, err := Emit(context.Background(), seqOf(0), 50, out)
	require.NoError(t, err)
	close(out)
	assert.Equal(t, 0, n)
	assert.Equal(t, []Message{{Type: MessageDone}}, drain(out))
}

func TestEmitStreamsBeforeScanEnds(t *testing.T) {
	out := make(chan Message)
	release := make(chan struct{})
	seq := func(yield func(library.Photo) bool) {
		for i := 0; i < 2; i++ {
			if !yield(library.Photo{Path: fmt.Sprintf("/p/%d.jpg", i)}) {
				return
			}
		}
		<-release
	}

	errc := make(chan error, 1)
	go func() {
		_, err := Emit(context.Background(), seq, 2, out)
		errc <- err
	}()

	select {
	case m := <-out:
		assert.Equal(t, MessageBatch, m.Type)
		assert.Len(t, m.Photos, 2)
	case <-time.After(time.Second):
		t.Fatal("full batch was not sent before the walk finished")
	}

	close(release)
	m := <-out
	assert.Equal(t, MessageDone, m.Type)
	require.NoError(t, <-errc)
}

func TestEmitCancelledNeverSendsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Message, 16)
	_, err := Emit(ctx, seqOf(10), 50, out)
	close(out)
	assert.ErrorIs(t, err, context.Canceled)
	for _, m := range drain(out) {
		assert.NotEqual(t, MessageDone, m.Type)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseMode("defaults")
	require.NoError(t, err)
	assert.Equal(t, ModeDefaults, m)

	_, err = ParseMode("partial")
	assert.Error(t, err)
}

func TestRunWorkerModes(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writePhoto(t, root, "Favorites/fav.jpg", now)
	writePhoto(t, root, "2024/a.jpg", now)
	writePhoto(t, root, "Omitted/no.jpg", now)

	cfg := WorkerConfig{Root: root, FavoritesDir: "Favorites", Excluded: []string{"Omitted"}, BatchSize: 1}

	run := func(mode Mode) []string {
		out := make(chan Message, 8)
		require.NoError(t, RunWorker(context.Background(), cfg, mode, out))
		msgs := drain(out)
		require.NotEmpty(t, msgs)
		assert.Equal(t, MessageDone, msgs[len(msgs)-1].Type)
		var got []string
		for _, m := range msgs {
			for _, p := range m.Photos {
				got = append(got, p.Path)
			}
		}
		return got
	}

	assert.Equal(t, []string{filepath.Join(root, "Favorites/fav.jpg")}, run(ModeDefaults))
	assert.ElementsMatch(t,
		[]string{filepath.Join(root, "Favorites/fav.jpg"), filepath.Join(root, "2024/a.jpg")},
		run(ModeFull))
}

func TestRunWorkerFailureReportsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := t.TempDir()
	writePhoto(t, root, "a.jpg", time.Now())

	out := make(chan Message, 8)
	err := RunWorker(ctx, WorkerConfig{Root: root}, ModeFull, out)
	require.Error(t, err)

	msgs := drain(out)
	require.NotEmpty(t, msgs)
	assert.Equal(t, MessageError, msgs[len(msgs)-1].Type)
}

func TestRunWorkerUnknownMode(t *testing.T) {
	out := make(chan Message, 2)
	err := RunWorker(context.Background(), WorkerConfig{Root: t.TempDir()}, Mode("bogus"), out)
	assert.Error(t, err)
	msgs := drain(out)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageError, msgs[0].Type)
}
