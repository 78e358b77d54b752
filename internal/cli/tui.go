package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaehyo/sodam/internal/db"
	"github.com/jaehyo/sodam/internal/feed"
	"github.com/jaehyo/sodam/internal/logging"
	"github.com/jaehyo/sodam/internal/timefmt"
	"github.com/jaehyo/sodam/internal/tui"
	"github.com/jaehyo/sodam/internal/tui/prefs"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file instead of stderr.
	// Initialized before anything grabs a component logger.
	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if err := logging.InitFile(logCfg, cfg.LogFilePath()); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	database, err := db.Open(cfg.DatabasePath(), db.Options{
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	store := prefs.New(cfg.PrefsPath())
	if err := store.Load(); err != nil {
		logging.Warn().Err(err).Msg("failed to load preferences, starting fresh")
	}

	codec := timefmt.New()
	repo := db.NewMessageRepository(database, codec)
	cache := feed.NewCache()
	fetcher := feed.NewFetcher(repo, cfg.Chat.PageSize)
	ctrl := feed.NewController(cache, fetcher, repo, codec)

	return tui.Run(tui.Config{
		Cache:      cache,
		Controller: ctrl,
		Codec:      codec,
		Prefs:      store,
		Theme:      cfg.TUI.Theme,
	})
}
