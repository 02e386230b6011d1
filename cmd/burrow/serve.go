package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/database"
	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/media"
	"github.com/burrowtv/burrow/internal/server"
	"github.com/burrowtv/burrow/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the player server",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags()
			return runServe()
		},
	}
}

func runServe() error {
	port := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, pinger, cleanup, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	mediaStore, err := buildMediaStore(ctx)
	if err != nil {
		return err
	}

	var webFS fs.FS
	if sub, err := fs.Sub(web.DistFS, "dist"); err == nil {
		webFS = sub
		log.Println("embedded frontend loaded")
	} else {
		log.Println("no embedded frontend found, SPA serving disabled")
	}

	var origins []string
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	srv := server.New(server.Config{
		Store:             store,
		Media:             mediaStore,
		Pinger:            pinger,
		WebFS:             webFS,
		JWTSecret:         jwtSecret,
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		AllowedOrigins:    origins,
		GateConfig:        gate.Config{},
		SessionTTL:        time.Duration(getEnvInt64("SESSION_TTL_MINUTES", 120)) * time.Minute,
		Activity:          activity.NewLog(int(getEnvInt64("ACTIVITY_LOG_SIZE", 256))),
	})
	srv.StartBackground(ctx)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("burrow listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Println("shutdown complete")
	return nil
}

// buildStore picks the persistence backend: Postgres when DATABASE_URL is
// set, otherwise a watched JSON file in the data directory.
func buildStore(ctx context.Context) (library.Store, server.Pinger, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := database.Connect(connectCtx, databaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.Migrate(databaseURL); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		log.Println("database migrations applied")

		store, err := library.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("load library: %w", err)
		}
		return store, db, db.Close, nil
	}

	path := os.Getenv("LIBRARY_FILE")
	if path == "" {
		path = filepath.Join(getEnv("DATA_DIR", "./data"), "library.json")
	}
	store, err := library.NewFileStore(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load library: %w", err)
	}
	if err := store.Watch(ctx); err != nil {
		log.Printf("library file watching disabled: %v", err)
	}
	return store, nil, func() {}, nil
}

// buildMediaStore picks where fallback media is served from: an S3 bucket
// when configured, otherwise the local media directory.
func buildMediaStore(ctx context.Context) (media.Store, error) {
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store, err := media.NewS3Store(ctx, media.S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Bucket:    bucket,
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Region:    os.Getenv("S3_REGION"),
		})
		if err != nil {
			return nil, fmt.Errorf("storage initialization failed: %w", err)
		}
		log.Println("serving fallback media from S3")
		return store, nil
	}
	return media.NewDiskStore(getEnv("MEDIA_DIR", "./media")), nil
}
