package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dukerupert/clubsite/internal/app"
	"github.com/dukerupert/clubsite/internal/config"
	"github.com/dukerupert/clubsite/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "clubctl",
		Short:         "Manage the club site catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML config file (default $CLUB_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSyncCommand(opts),
		newRunsCommand(opts),
		newSnapshotCommand(opts),
		newConfigCommand(opts),
		newStatusCommand(opts),
	)
	return cmd
}

// loadConfig reads CLUB_CONFIG only now, after .env has been loaded.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("CLUB_CONFIG")
	}
	return config.Load(path)
}

func (o *rootOptions) logger() *slog.Logger {
	return logging.New(os.Stderr, o.logLevel, "text")
}

// openApp builds the services without a websocket hub; CLI syncs are not
// broadcast.
func (o *rootOptions) openApp() (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, nil, o.logger())
}
