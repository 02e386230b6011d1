package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	flagPort      string
	flagDataDir   string
	flagMediaDir  string
	flagYtdlpPath string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "burrow",
		Short: "Burrow is a walled-garden video player for small children",
		Long: `Burrow serves a locked-down video grid for a child's tablet: a fixed
library of parent-approved videos, a parental gate in front of the settings,
and local fallback copies for when the embedded player misbehaves.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flagPort, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "data directory (overrides DATA_DIR)")
	rootCmd.PersistentFlags().StringVarP(&flagMediaDir, "media-dir", "m", "", "fallback media directory (overrides MEDIA_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagYtdlpPath, "ytdlp", "", "path to the yt-dlp binary (overrides YTDLP_PATH)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPrefetchCmd())

	return rootCmd
}

// applyFlags copies set flags into the environment so both commands read one
// configuration surface.
func applyFlags() {
	if flagPort != "" {
		os.Setenv("PORT", flagPort)
	}
	if flagDataDir != "" {
		os.Setenv("DATA_DIR", flagDataDir)
	}
	if flagMediaDir != "" {
		os.Setenv("MEDIA_DIR", flagMediaDir)
	}
	if flagYtdlpPath != "" {
		os.Setenv("YTDLP_PATH", flagYtdlpPath)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
