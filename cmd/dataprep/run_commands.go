package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dataprep/internal/dataset"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <local|colab>",
		Short: "Run the whole preparation pipeline",
		Long: strings.TrimSpace(`
Extracts data.zip, splits the images into train/val/test, flattens and
cleans the split tree, sorts images into class directories, replaces the data
directory with the result and preprocesses every image in place.

The run is not reversible. A failed stage leaves the root as the earlier
stages left it; the ledger records where it stopped.`),
		Args: environmentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer sess.Close()

			run, err := sess.manager.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printRunResult(cmd, run)
		},
	}
}

func newStageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <name> <local|colab>",
		Short: "Run a single pipeline stage",
		Long: strings.TrimSpace(`
Runs one stage as its own ledger entry. Stages, in pipeline order:
extract, split, flatten, clean, partition, promote, preprocess.`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			defer sess.Close()

			run, err := sess.manager.RunStage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRunResult(cmd, run)
		},
	}
}

func printRunResult(cmd *cobra.Command, run *dataset.Run) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s completed (%d files placed)\n", run.ID, len(run.Placements))

	tally, err := dataset.Count(run.Layout.DataDir)
	if err != nil {
		return fmt.Errorf("count images: %w", err)
	}
	if tally.Total() > 0 {
		fmt.Fprintln(out, renderTally(tally))
	}
	return nil
}
