package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"photoframe/internal/scanner"
	"photoframe/internal/startup"
)

const channelBuffer = 4

func scanCmd(cfgFile *string) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the photo root and print batches as NDJSON",
		Long: `Run one scan and write every message of the scan stream to stdout as
one JSON object per line. The last line is {"type":"done"} on success or
{"type":"error"} on failure, in which case the exit status is non-zero.

Examples:
  photoframe scan
  photoframe scan --mode defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := scanner.ParseMode(mode)
			if err != nil {
				return err
			}
			cfg, err := startup.LoadConfig(*cfgFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			wc := scanner.WorkerConfig{
				Root:         cfg.PhotoRoot,
				FavoritesDir: cfg.FavoritesDir,
				Excluded:     cfg.ScanExcluded(),
				BatchSize:    scanner.DefaultBatchSize,
			}

			msgs := make(chan scanner.Message, channelBuffer)
			workerErr := make(chan error, 1)
			go func() {
				workerErr <- scanner.RunWorker(ctx, wc, parsed, msgs)
			}()

			writeErr := writeMessages(cmd.OutOrStdout(), msgs)
			if err := <-workerErr; err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			return writeErr
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(scanner.ModeFull), "scan mode: defaults (favorites only) or full")

	return cmd
}

// writeMessages drains msgs into w as NDJSON. It keeps draining after a
// write error so the worker is never blocked.
func writeMessages(w io.Writer, msgs <-chan scanner.Message) error {
	enc := json.NewEncoder(w)
	var firstErr error
	for msg := range msgs {
		if firstErr != nil {
			continue
		}
		if err := enc.Encode(msg); err != nil {
			firstErr = fmt.Errorf("failed to write scan output: %w", err)
		}
	}
	return firstErr
}
