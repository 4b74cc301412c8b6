package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/clubsite/internal/app"
	"github.com/dukerupert/clubsite/internal/database"
	"github.com/dukerupert/clubsite/internal/model"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog sizes, last successful syncs and configured services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return printStatus(cmd.OutOrStdout(), a)
		},
	}
}

func printStatus(w io.Writer, a *app.App) error {
	version, err := database.SchemaVersion(a.DB)
	if err != nil {
		return err
	}
	events, err := a.EventsFile.Load()
	if err != nil {
		return err
	}
	resources, err := a.ResourcesFile.Load()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "database\t%s (schema %d)\n", a.Config.DBPath, version)
	fmt.Fprintf(tw, "events\t%d in %s\n", len(events.Events), a.EventsFile.Path())
	fmt.Fprintf(tw, "resources\t%d in %s\n", len(resources.Resources), a.ResourcesFile.Path())
	fmt.Fprintf(tw, "calendar\t%s\n", configured(a.Calendar.Configured()))
	fmt.Fprintf(tw, "drive\t%s\n", configured(a.Drive.Configured()))
	fmt.Fprintf(tw, "snapshots\t%s\n", configured(a.Snapshots.Enabled()))

	for _, kind := range []model.SyncKind{model.SyncKindEvents, model.SyncKindResources} {
		run, err := a.Runs.LastSuccess(kind)
		if err != nil {
			return err
		}
		last := "never"
		if run != nil {
			last = run.FinishedAt.Local().Format(time.DateTime) + " via " + run.Trigger
		}
		fmt.Fprintf(tw, "last %s sync\t%s\n", kind, last)
	}
	return tw.Flush()
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
