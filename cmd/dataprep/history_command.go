package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dataprep/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history <local|colab>",
		Short: "List runs recorded for the dataset root",
		Args:  environmentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, layout, err := ctx.layout(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(layout.LedgerPath()); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No runs recorded under %s\n", layout.Root)
				return nil
			}

			store, err := ledger.Open(cmd.Context(), layout.LedgerPath())
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			if runID != "" {
				return printRunDetail(cmd, store, runID)
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded under %s\n", layout.Root)
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Environment,
					string(run.Status),
					humanize.Time(run.StartedAt),
					runDuration(run),
					run.ErrorMessage,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Env", "Status", "Started", "Duration", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show stage events of one run")
	return cmd
}

func printRunDetail(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	events, err := store.StageEvents(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s) %s\n", run.ID, run.Environment, run.Status)
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		elapsed := ""
		if ev.FinishedAt != nil {
			elapsed = ev.FinishedAt.Sub(ev.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{displayLabel(ev.Stage), string(ev.Status), elapsed, ev.Detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Status", "Duration", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func runDuration(run *ledger.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
