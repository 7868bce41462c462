package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playlist-player/internal/catalog"
	"playlist-player/internal/handlers"
	"playlist-player/internal/logging"
	"playlist-player/internal/memory"
	"playlist-player/internal/metrics"
	"playlist-player/internal/middleware"
	"playlist-player/internal/player"
	"playlist-player/internal/startup"
	"playlist-player/internal/storage"
	"playlist-player/internal/surface"
	"playlist-player/internal/thumbnail"
	"playlist-player/internal/upload"
	"playlist-player/internal/workers"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectorInterval = time.Minute
	staticDir         = "./static"
)

// statsAdapter adds the surface client count to the player statistics.
type statsAdapter struct {
	player *player.Player
	hub    *surface.Hub
}

// GetStats implements metrics.StatsProvider
func (a statsAdapter) GetStats() metrics.Stats {
	stats := a.player.GetStats()
	stats.SurfaceClients = a.hub.Clients()
	return stats
}

// components holds everything that must be stopped on shutdown.
type components struct {
	srv        *http.Server
	metricsSrv *http.Server
	cancel     context.CancelFunc
	collector  *metrics.Collector
	monitor    *memory.Monitor
	pool       *workers.Pool
	hub        *surface.Hub
	store      storage.Store
}

func runServe(ctx context.Context) error {
	startTime := time.Now()

	if _, err := startup.LoadDotEnv(); err != nil {
		return err
	}
	if err := logging.Configure(logging.Options{File: os.Getenv("LOG_FILE")}); err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	defer func() {
		_ = logging.Close()
	}()

	memResult := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Playlist store and core
	storeStart := time.Now()
	backend := storage.Name(config.StoreBackend)
	store, err := storage.Open(ctx, storage.Config{
		Backend:   config.StoreBackend,
		DataDir:   config.DataDir,
		RedisAddr: config.RedisAddr,
	})
	if err != nil {
		startup.LogFatal("Failed to open %s store: %v", backend, err)
	}

	metrics.InitializeMetrics(backend)
	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)

	hub := surface.NewHub(surface.NewTransport())
	p := player.New(catalog.New(store), player.Options{Surface: hub})
	hub.Bind(p)
	if err := p.Start(ctx); err != nil {
		logging.Error("Failed to restore playlist, starting empty: %v", err)
	}
	startup.LogStoreInit(backend, len(p.Entries()), time.Since(storeStart))

	// Background work
	monitorConfig := memory.DefaultConfig()
	monitorConfig.MemoryLimitBytes = memResult.GoMemLimit
	monitor := memory.NewMonitor(monitorConfig)
	monitor.Start()

	poolSize := workers.ForMixed(0)
	pool := workers.NewPool(poolSize)
	pool.SetGate(monitor)
	startup.LogWorkersInit(poolSize)

	var extractor thumbnail.Extractor
	if config.ThumbnailsEnabled {
		if ff, err := thumbnail.LookupFFmpeg(); err != nil {
			logging.Warn("Thumbnail: %v", err)
		} else {
			extractor = ff
		}
	}
	thumbs := thumbnail.NewGenerator(config.ThumbnailDir, extractor, config.ThumbnailTimeout)
	startup.LogThumbnailInit(thumbs.Enabled())

	uploads, err := upload.NewService(upload.Config{
		Dir:     config.UploadDir,
		MaxSize: config.MaxUploadSize,
	}, p, pool, thumbs)
	if err != nil {
		startup.LogFatal("Failed to initialize uploads: %v", err)
	}
	uploads.Backfill(p.Entries())

	if config.IngestEnabled {
		startup.LogIngestInit(config.IngestDir)
		watcher := upload.NewWatcher(config.IngestDir, uploads, upload.DefaultSettle)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logging.Error("Ingest watcher stopped: %v", err)
			}
		}()
	}

	collector := metrics.NewCollector(statsAdapter{player: p, hub: hub}, collectorInterval)
	collector.Start()

	// HTTP
	healthChecker, _ := store.(handlers.HealthChecker)
	h := handlers.New(p, uploads, thumbs, hub, healthChecker)

	static := ""
	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		static = staticDir
	}
	router := h.Router(static)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // streams and the websocket are long lived
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsMux.HandleFunc("/health", h.LivenessCheck)
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(components{
		srv:        srv,
		metricsSrv: metricsSrv,
		cancel:     cancel,
		collector:  collector,
		monitor:    monitor,
		pool:       pool,
		hub:        hub,
		store:      store,
	}, done)

	h.SetReady(true)
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
	return nil
}

func handleShutdown(c components, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Disconnecting playback surfaces")
	if err := c.hub.Close(); err != nil {
		logging.Warn("Surface close error: %v", err)
	}
	startup.LogShutdownStepComplete("Surfaces disconnected")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := c.srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping background work")
	c.cancel()
	c.pool.Close()
	c.monitor.Stop()
	c.collector.Stop()
	startup.LogShutdownStepComplete("Background work stopped")

	if c.metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := c.metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Closing playlist store")
	if err := c.store.Close(); err != nil {
		logging.Warn("Store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Store closed")
	}

	startup.LogShutdownComplete()
}
