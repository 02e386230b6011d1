package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/media"
)

// Fetcher downloads local fallback copies of library videos into the media
// directory, named exactly the way the player resolves them. Downloads go
// through an external yt-dlp binary; the fetcher only orchestrates.
type Fetcher struct {
	dir    string
	binary string
}

func New(dir, binary string) *Fetcher {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Fetcher{dir: dir, binary: binary}
}

// Run fetches every entry that does not already have a local copy. Failures
// are logged per entry and do not stop the run; the player degrades to the
// remote source for anything missing.
func (f *Fetcher) Run(ctx context.Context, entries []library.VideoEntry) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	var failed int
	for _, entry := range entries {
		target := filepath.Join(f.dir, media.Filename(entry.Title))
		if _, err := os.Stat(target); err == nil {
			slog.Info("prefetch: already present", "id", entry.ID, "file", target)
			continue
		}

		slog.Info("prefetch: downloading", "id", entry.ID, "title", entry.Title)
		cmd := exec.CommandContext(ctx, f.binary, buildArgs(entry.ID, target)...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("prefetch: download failed", "id", entry.ID, "error", err)
			failed++
			continue
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(entries))
	}
	return nil
}

// buildArgs assembles the yt-dlp invocation for one video.
func buildArgs(id, target string) []string {
	return []string{
		"--no-playlist",
		"-f", "best[ext=mp4]/mp4",
		"-o", target,
		"https://www.youtube.com/watch?v=" + id,
	}
}
