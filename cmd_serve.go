package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"photoframe/internal/filesystem"
	"photoframe/internal/frame"
	"photoframe/internal/generator"
	"photoframe/internal/handlers"
	"photoframe/internal/indexer"
	"photoframe/internal/library"
	"photoframe/internal/logging"
	"photoframe/internal/media"
	"photoframe/internal/memory"
	"photoframe/internal/metrics"
	"photoframe/internal/middleware"
	"photoframe/internal/relocation"
	"photoframe/internal/selection"
	"photoframe/internal/startup"
	"photoframe/internal/textcache"
)

const (
	collectorInterval = time.Minute
	shutdownTimeout   = 30 * time.Second
)

func serveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the frame API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := startup.LoadConfig(*cfgFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *startup.Config) error {
	startTime := time.Now()

	startup.LogBanner()
	startup.LogConfig(cfg)

	if err := startup.PrepareDirectories(cfg); err != nil {
		return err
	}

	if _, err := memory.Configure(cfg.MemoryLimit, cfg.MemoryRatio); err != nil {
		return err
	}

	media.InitVips()
	defer media.ShutdownVips()

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	metrics.InitializeMetrics()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Restore snapshots
	loadStart := time.Now()
	persister := library.NewPersister(cfg.DataDir)
	photos, err := persister.LoadLibrary()
	if err != nil {
		return err
	}
	store := library.NewStore(persister)
	store.Load(photos)

	cache := textcache.New(cfg.DataDir)
	if err := cache.Load(); err != nil {
		return err
	}
	startup.LogLibraryLoaded(store.Len(), cache.Len(), time.Since(loadStart))
	// Relocations save the cache at once but the library only on the next
	// snapshot, so after a crash some texts point at moved paths. The next
	// full scan indexes those paths again; a rebuild prunes what stays.
	if orphans := cache.CountUnless(store.Contains); orphans > 0 {
		logging.Info("%d cached texts have no library entry yet, keeping them for the next scan", orphans)
	}

	gen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	policyCfg := selection.DefaultConfig(filepath.Join(cfg.PhotoRoot, cfg.FavoritesDir))
	policyCfg.RecentDays = cfg.RecentDays
	policyCfg.AnniversaryDays = cfg.AnniversaryDays
	policyCfg.SmartWeight = cfg.SmartWeight
	policyCfg.FavoriteWeight = cfg.FavoriteWeight

	relocator := relocation.New(cfg.PhotoRoot, relocation.Dirs{
		Favorites:   cfg.FavoritesDir,
		Unfavorited: cfg.UnfavoritedDir,
		Omitted:     cfg.OmittedDir,
	}, store, cache)

	startup.LogIndexerInit(cfg.NightlyHour)
	idx := indexer.New(indexer.Config{
		Root:         cfg.PhotoRoot,
		FavoritesDir: cfg.FavoritesDir,
		Excluded:     cfg.ScanExcluded(),
		NightlyHour:  cfg.NightlyHour,
	}, store, cache)

	svc := frame.New(frame.Options{
		Context:   ctx,
		Root:      cfg.PhotoRoot,
		Store:     store,
		Cache:     cache,
		Policy:    selection.New(policyCfg, nil),
		Generator: gen,
		Relocator: relocator,
		Indexer:   idx,
	})

	// Background services
	var wg sync.WaitGroup
	wg.Go(func() { library.RunSnapshots(ctx, store, cfg.SnapshotInterval) })
	wg.Go(func() { idx.RunNightly(ctx) })
	wg.Go(func() { metrics.NewCollector(svc, collectorInterval).Run(ctx) })
	go func() {
		if err := svc.Warm(ctx); err != nil {
			logging.Warn("Initial index not started: %v", err)
		}
	}()
	startup.LogIndexerStarted()

	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	handlers.New(svc, store, idx).Register(router)
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation with retries can take well over a minute.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Port,
		MetricsPort:     cfg.MetricsPort,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case err := <-serverErr:
		runErr = err
		startup.LogShutdownInitiated("server error")
	case <-parent.Done():
		startup.LogShutdownInitiated("context cancelled")
	}

	shutdown(srv, metricsSrv, cancel, &wg, cache)
	return runErr
}

// newTextGenerator returns nil when no API key is configured.
func newTextGenerator(ctx context.Context, cfg *startup.Config) (frame.TextGenerator, error) {
	model := cfg.GeminiModel
	if model == "" {
		model = generator.DefaultGeminiModel
	}
	startup.LogGeneratorInit(cfg.GeneratorEnabled(), model)
	if !cfg.GeneratorEnabled() {
		return nil, nil
	}

	gemini, err := generator.NewGeminiModel(ctx, cfg.GeminiAPIKey, model)
	if err != nil {
		return nil, err
	}
	return generator.New(gemini, generator.RetryConfig{
		MaxAttempts:  cfg.GeneratorAttempts,
		InitialDelay: cfg.GeneratorInitialDelay,
	}), nil
}

func shutdown(srv, metricsSrv *http.Server, cancel context.CancelFunc, wg *sync.WaitGroup, cache *textcache.Cache) {
	ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownStep("Stopping background services")
	cancel()
	wg.Wait()
	startup.LogShutdownStepComplete("Library snapshot flushed")

	if err := cache.Save(); err != nil {
		logging.Error("Failed to save text cache: %v", err)
	} else {
		startup.LogShutdownStepComplete("Text cache saved")
	}

	startup.LogShutdownComplete()
}
