package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dukerupert/clubsite/internal/config"
)

const redacted = "********"

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(redact(*cfg))
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func redact(c config.Config) config.Config {
	for _, s := range []*string{
		&c.Calendar.APIKey,
		&c.Drive.ServiceAccountKey,
		&c.Sync.CronSecret,
		&c.Snapshot.AccessKey,
		&c.Snapshot.SecretKey,
		&c.Snapshot.Passphrase,
		&c.GitHubToken,
	} {
		if *s != "" {
			*s = redacted
		}
	}
	return c
}
