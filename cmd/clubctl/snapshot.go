package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/clubsite/internal/snapshot"
)

func newSnapshotCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Work with encrypted catalog snapshots",
	}

	var output string
	decrypt := &cobra.Command{
		Use:   "decrypt <file>",
		Short: "Decrypt a downloaded snapshot with the configured passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Snapshot.Passphrase == "" {
				return errors.New("no snapshot passphrase configured (set CLUB_SNAPSHOT_PASSPHRASE)")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			plain, err := snapshot.Decrypt(data, cfg.Snapshot.Passphrase)
			if err != nil {
				return fmt.Errorf("decrypt %s: %w", args[0], err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(plain)
				return err
			}
			return os.WriteFile(output, plain, 0o644)
		},
	}
	decrypt.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	cmd.AddCommand(decrypt)
	return cmd
}
