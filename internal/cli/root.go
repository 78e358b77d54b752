// Package cli wires the sodam commands: the default TUI entrypoint plus
// scriptable send/history subcommands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaehyo/sodam/internal/config"
	"github.com/jaehyo/sodam/internal/db"
	"github.com/jaehyo/sodam/internal/logging"
	"github.com/jaehyo/sodam/internal/timefmt"
)

func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sodam",
		Short:         "Single-room chat in the terminal",
		Long:          "sodam is a single-room chat client. Run without arguments to open the chat view.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE:          runTUI,
	}
	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("db", "", "Path to the message database (overrides config)")
	cmd.PersistentFlags().String("theme", "", "Color theme: light or dark (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newSendCmd(),
		newHistoryCmd(),
	)

	return cmd
}

// appEnv is everything a command needs after config resolution.
type appEnv struct {
	cfg   *config.Config
	db    *db.DB
	repo  *db.MessageRepository
	codec timefmt.Codec
}

func (e *appEnv) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close database")
		}
	}
}

// loadConfig resolves the effective config from file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.Database.Path = path
	}
	if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
		cfg.TUI.Theme = theme
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	database, err := db.Open(cfg.DatabasePath(), db.Options{
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	codec := timefmt.New()
	return &appEnv{
		cfg:   cfg,
		db:    database,
		repo:  db.NewMessageRepository(database, codec),
		codec: codec,
	}, nil
}
