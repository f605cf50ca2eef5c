package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"photoframe/internal/logging"
	"photoframe/internal/metrics"
	"photoframe/internal/textcache"
)

// Request is one multimodal model call.
type Request struct {
	Image    []byte
	MIMEType string
	Prompt   string
}

// Model is the external text generator.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// RetryConfig bounds the retry loop for overload-class failures.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryConfig returns three attempts starting at a two second delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
	}
}

var fallbackAuthor = "Dr. Seuss"

// Fallback returns the evergreen entry shown when generation fails.
func Fallback() textcache.Entry {
	author := fallbackAuthor
	return textcache.Entry{
		Content: "Don't cry because it's over, smile because it happened.",
		Kind:    textcache.KindQuote,
		Author:  &author,
	}
}

// Generator turns images into text entries.
type Generator struct {
	model Model
	retry RetryConfig

	// draw returns the uniform value used for the poem/quote preference.
	draw func() float64
	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Generator over model.
func New(model Model, retry RetryConfig) *Generator {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Generator{
		model: model,
		retry: retry,
		draw:  rand.Float64,
		sleep: sleepContext,
	}
}

// Generate asks the model for text for image. exclude, when non-empty, is
// content the reply must not repeat. Overload failures are retried up to
// MaxAttempts with a doubling delay; every other failure returns at once.
func (g *Generator) Generate(ctx context.Context, image []byte, mimeType, exclude string) (textcache.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.GeneratorDuration.Observe(time.Since(start).Seconds())
	}()

	req := Request{
		Image:    image,
		MIMEType: mimeType,
		Prompt:   BuildPrompt(ChooseKind(g.draw()), exclude),
	}

	delay := g.retry.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= g.retry.MaxAttempts; attempt++ {
		raw, err := g.model.Generate(ctx, req)
		if err == nil {
			entry, perr := Parse(raw)
			if perr != nil {
				metrics.GeneratorCallsTotal.WithLabelValues("malformed").Inc()
				return textcache.Entry{}, perr
			}
			metrics.GeneratorCallsTotal.WithLabelValues("success").Inc()
			if attempt > 1 {
				logging.Info("Generator succeeded on attempt %d/%d", attempt, g.retry.MaxAttempts)
			}
			return entry, nil
		}

		lastErr = err
		if !errors.Is(err, ErrOverloaded) {
			if errors.Is(err, ErrPermanent) {
				metrics.GeneratorCallsTotal.WithLabelValues("permanent").Inc()
			} else {
				metrics.GeneratorCallsTotal.WithLabelValues("error").Inc()
			}
			return textcache.Entry{}, err
		}

		metrics.GeneratorCallsTotal.WithLabelValues("overloaded").Inc()
		if attempt == g.retry.MaxAttempts {
			break
		}

		logging.Warn("Generator overloaded (attempt %d/%d), retrying in %v", attempt, g.retry.MaxAttempts, delay)
		metrics.GeneratorRetriesTotal.Inc()

		if err := g.sleep(ctx, delay); err != nil {
			return textcache.Entry{}, err
		}
		delay *= 2
	}

	return textcache.Entry{}, fmt.Errorf("generator gave up after %d attempts: %w", g.retry.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
