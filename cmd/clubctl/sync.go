package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/clubsite/internal/syncer"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a catalog sync now, bypassing the cooldown",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "events",
			Short: "Sync the events catalog from Google Calendar",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := opts.openApp()
				if err != nil {
					return err
				}
				defer a.Close()

				res, err := a.Events.Sync(cmd.Context(), syncer.Trigger{Source: syncer.SourceCLI})
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), res.Message, res.Stats)
			},
		},
		&cobra.Command{
			Use:   "resources",
			Short: "Sync the resources catalog from Google Drive",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := opts.openApp()
				if err != nil {
					return err
				}
				defer a.Close()

				res, err := a.Resources.Sync(cmd.Context(), syncer.Trigger{Source: syncer.SourceCLI})
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), res.Message, res.Stats)
			},
		},
	)
	return cmd
}

func printResult(w io.Writer, message string, stats any) error {
	fmt.Fprintln(w, message)
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
