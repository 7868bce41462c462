package startup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"playlist-player/internal/logging"
	"playlist-player/internal/memory"
	"playlist-player/internal/upload"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	DataDir          string
	Port             string
	MetricsPort      string
	MetricsEnabled   bool
	StoreBackend     string
	RedisAddr        string
	IngestDir        string
	MaxUploadSize    int64
	ThumbnailTimeout time.Duration
	LogFile          string
	LogStaticFiles   bool
	LogHealthChecks  bool

	// Derived paths
	UploadDir    string
	ThumbnailDir string

	// Feature flags based on directory availability
	ThumbnailsEnabled bool
	IngestEnabled     bool
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are skipped and variables already set in the environment
// win over file values.
func LoadDotEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		DataDir:          getEnv("DATA_DIR", "/data"),
		Port:             getEnv("PORT", "8080"),
		MetricsPort:      getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", "sqlite")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		IngestDir:        getEnv("INGEST_DIR", ""),
		MaxUploadSize:    getEnvBytes("MAX_UPLOAD_SIZE", upload.DefaultMaxSize),
		ThumbnailTimeout: getEnvDuration("THUMBNAIL_TIMEOUT", 10*time.Second),
		LogFile:          getEnv("LOG_FILE", ""),
		LogStaticFiles:   getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks:  getEnvBool("LOG_HEALTH_CHECKS", true),
	}

	logging.Info("  DATA_DIR:            %s", config.DataDir)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  STORE_BACKEND:       %s", config.StoreBackend)
	if config.StoreBackend == "redis" {
		logging.Info("  REDIS_ADDR:          %s", config.RedisAddr)
	}
	logging.Info("  INGEST_DIR:          %s", valueOrNone(config.IngestDir))
	logging.Info("  MAX_UPLOAD_SIZE:     %s", humanize.IBytes(uint64(config.MaxUploadSize)))
	logging.Info("  THUMBNAIL_TIMEOUT:   %s", config.ThumbnailTimeout)
	logging.Info("  LOG_FILE:            %s", valueOrNone(config.LogFile))
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	dataDir, err := filepath.Abs(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	config.DataDir = dataDir
	logging.Info("  Data directory (absolute): %s", dataDir)

	if err := ensureDirectory(dataDir, "data"); err != nil {
		return nil, fmt.Errorf("data directory error: %w", err)
	}

	logging.Debug("  Testing data directory write access...")
	if err := testWriteAccess(dataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable (required for playlist and uploads): %w", err)
	}
	logging.Info("  [OK] Data directory is writable")

	config.UploadDir = filepath.Join(dataDir, "uploads")
	config.ThumbnailDir = filepath.Join(dataDir, "thumbnails")

	if err := ensureDirectory(config.UploadDir, "uploads"); err != nil {
		return nil, fmt.Errorf("upload directory error: %w", err)
	}

	config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")

	if config.IngestDir != "" {
		ingestDir, err := filepath.Abs(config.IngestDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve ingest directory path: %w", err)
		}
		config.IngestDir = ingestDir
		config.IngestEnabled = setupOptionalDir(ingestDir, "ingest")
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Playlist store: %s (required)", strings.ToUpper(config.StoreBackend))
	logging.Info("    Thumbnails:     %s", enabledString(config.ThumbnailsEnabled))
	logging.Info("    Drop folder:    %s", enabledString(config.IngestEnabled))
	logging.Info("    Metrics:        %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// LogStoreInit logs playlist store initialization
func LogStoreInit(backend string, entries int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PLAYLIST STORE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Backend:  %s", backend)
	logging.Info("  Restored: %d entries", entries)
	logging.Info("  [OK] Store initialized in %v", duration)
}

// LogThumbnailInit logs thumbnail generator initialization and checks FFmpeg
func LogThumbnailInit(enabled bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("THUMBNAIL INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if !enabled {
		logging.Warn("  Thumbnails disabled (ffmpeg missing or cache directory not writable)")
		logging.Warn("  Playlist items will show a placeholder")
		return
	}

	if err := checkFFmpeg(); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Thumbnails and duration probing may not work")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// LogWorkersInit logs background task pool sizing
func LogWorkersInit(size int) {
	logging.Info("  Background workers: %d", size)
}

// LogIngestInit logs drop folder watcher start
func LogIngestInit(dir string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DROP FOLDER")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Watching: %s", dir)
}

// LogMemoryConfig logs the result of GOMEMLIMIT configuration
func LogMemoryConfig(result memory.ConfigResult) {
	if !result.Configured {
		logging.Debug("  Memory limit: not configured")
		return
	}
	logging.Info("  Memory limit: %s (source: %s)", humanize.IBytes(uint64(result.GoMemLimit)), result.Source)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("  Failed to enumerate routes: %v", err)
		}

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	logging.Info("    Surface:       ws://0.0.0.0:%s/ws", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __            ___      __     ____  __
   / __ \/ /___ ___  __/ (_)____/ /_   / __ \/ /___ ___  _____  _____
  / /_/ / / __ '/ / / / / / ___/ __/  / /_/ / / __ '/ / / / _ \/ ___/
 / ____/ / /_/ / /_/ / / (__  ) /_   / ____/ / /_/ / /_/ /  __/ /
/_/   /_/\__,_/\__, /_/_/____/\__/  /_/   /_/\__,_/\__, /\___/_/
              /____/                              /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvBytes accepts raw bytes or sizes such as "500MiB".
func getEnvBytes(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := memory.ParseLimit(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid size for %s: %q, using default: %s", key, value, humanize.IBytes(uint64(defaultValue)))
		return defaultValue
	}
	return parsed
}
