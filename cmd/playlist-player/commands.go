package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"playlist-player/internal/catalog"
	"playlist-player/internal/export"
	"playlist-player/internal/logging"
	"playlist-player/internal/storage"
)

// storeFlags selects the store the offline commands read from. Defaults
// come from the same environment variables the server uses.
type storeFlags struct {
	dataDir   string
	backend   string
	redisAddr string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataDir, "data-dir", envOr("DATA_DIR", "/data"), "directory holding the playlist store")
	cmd.Flags().StringVar(&f.backend, "backend", envOr("STORE_BACKEND", storage.BackendSQLite), "store backend (sqlite, bolt, file, redis)")
	cmd.Flags().StringVar(&f.redisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "redis address for the redis backend")
}

// restore opens the store and reads the persisted playlist.
func (f *storeFlags) restore(ctx context.Context) (*catalog.Catalog, error) {
	store, err := storage.Open(ctx, storage.Config{
		Backend:   f.backend,
		DataDir:   f.dataDir,
		RedisAddr: f.redisAddr,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", storage.Name(f.backend), err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Store close error: %v", err)
		}
	}()

	cat := catalog.New(store)
	if err := cat.Restore(ctx); err != nil {
		return nil, err
	}
	return cat, nil
}

func newExportCmd() *cobra.Command {
	var (
		store  storeFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored playlist as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			cat, err := store.restore(cmd.Context())
			if err != nil {
				return err
			}
			entries := cat.Entries()
			data, name, err := export.Render(entries, f, time.Now())
			if err != nil {
				return err
			}

			switch output {
			case "-":
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case "":
				output = name
			}
			if err := renameio.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d videos to %s\n", len(entries), output)
			return nil
		},
	}

	store.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "export format (json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default video-playlist-DATE.FORMAT)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var store storeFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print statistics for the stored playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := store.restore(cmd.Context())
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), cat.AggregateStats())
		},
	}

	store.register(cmd)
	return cmd
}

func printStats(w io.Writer, stats catalog.Stats) error {
	_, err := fmt.Fprintf(w, "Videos:         %d\nTotal size:     %s\nTotal duration: %s\nAverage size:   %s\n",
		stats.Count,
		export.FormatSize(stats.TotalSizeBytes),
		export.FormatTotalDuration(stats.TotalDurationSeconds),
		export.FormatSize(int64(stats.AverageSizeBytes)),
	)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
