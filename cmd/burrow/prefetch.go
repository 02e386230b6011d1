package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/burrowtv/burrow/internal/database"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/prefetch"
)

func newPrefetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Download local fallback copies of every library video",
		Long: `Prefetch walks the library and downloads a local copy of each video
into the media directory via yt-dlp, skipping files already present. Run it
after adding videos so the player has something to fall back to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags()
			return runPrefetch()
		},
	}
}

func runPrefetch() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries := store.List()
	log.Printf("prefetching %d videos", len(entries))

	fetcher := prefetch.New(getEnv("MEDIA_DIR", "./media"), os.Getenv("YTDLP_PATH"))
	return fetcher.Run(ctx, entries)
}

func openStore(ctx context.Context) (library.Store, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := database.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		store, err := library.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("load library: %w", err)
		}
		return store, db.Close, nil
	}

	path := os.Getenv("LIBRARY_FILE")
	if path == "" {
		path = filepath.Join(getEnv("DATA_DIR", "./data"), "library.json")
	}
	store, err := library.NewFileStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load library: %w", err)
	}
	return store, func() {}, nil
}
