package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, mode := range []string{"defaults", "full", "rebuild"} {
		for _, status := range []string{"success", "error"} {
			IndexerRunsTotal.WithLabelValues(mode, status)
		}
	}

	for _, file := range []string{"library", "text_cache"} {
		SnapshotWritesTotal.WithLabelValues(file, "success")
		SnapshotWritesTotal.WithLabelValues(file, "error")
		SnapshotWriteDuration.WithLabelValues(file)
	}

	for _, tier := range []string{"smart", "favorite", "all"} {
		SelectionsTotal.WithLabelValues(tier)
	}

	for _, result := range []string{"hit", "miss", "duplicate"} {
		TextCacheLookups.WithLabelValues(result)
	}

	for _, status := range []string{"success", "overloaded", "permanent", "malformed", "error"} {
		GeneratorCallsTotal.WithLabelValues(status)
	}

	for _, reason := range []string{"generator_error", "generator_disabled", "image_unreadable", "repeated_exclusion"} {
		GeneratorFallbacksTotal.WithLabelValues(reason)
	}

	for _, bucket := range []string{"favorite", "unfavorited", "omitted", "deleted"} {
		RelocationsTotal.WithLabelValues(bucket, "success")
		RelocationsTotal.WithLabelValues(bucket, "error")
	}

	for _, op := range []string{"stat", "read", "readdir", "copy"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}
}
