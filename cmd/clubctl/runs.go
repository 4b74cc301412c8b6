package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/clubsite/internal/model"
)

func newRunsCommand(opts *rootOptions) *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent sync runs",
		Example: `  clubctl runs
  clubctl runs --kind events --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch model.SyncKind(kind) {
			case "", model.SyncKindEvents, model.SyncKindResources:
			default:
				return fmt.Errorf("unknown kind %q (want events or resources)", kind)
			}

			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.Runs.ListRecent(model.SyncKind(kind), limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by catalog (events or resources)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show")
	return cmd
}

func printRuns(w io.Writer, runs []model.SyncRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no sync runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTRIGGER\tSTATUS\tSTARTED\tDURATION\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.Trigger, r.Status,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.ErrorMessage,
		)
	}
	return tw.Flush()
}
