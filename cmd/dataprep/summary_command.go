package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dataprep/internal/dataset"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var output bool

	cmd := &cobra.Command{
		Use:   "summary <local|colab>",
		Short: "Show image counts per split and class",
		Args:  environmentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, layout, err := ctx.layout(args[0])
			if err != nil {
				return err
			}
			dir := layout.DataDir
			if output {
				dir = layout.OutputDir
			}
			tally, err := dataset.Count(dir)
			if err != nil {
				return fmt.Errorf("count images: %w", err)
			}
			out := cmd.OutOrStdout()
			if tally.Total() == 0 {
				fmt.Fprintf(out, "No images under %s\n", dir)
				return nil
			}
			fmt.Fprintf(out, "Images under %s\n", dir)
			fmt.Fprintln(out, renderTally(tally))
			return nil
		},
	}
	cmd.Flags().BoolVar(&output, "output", false, "Count the intermediate output directory instead of the data directory")
	return cmd
}

// renderTally draws one row per split and one column per label.
func renderTally(tally dataset.Tally) string {
	labels := tally.LabelNames()
	headers := []string{"Split"}
	aligns := []columnAlignment{alignLeft}
	for _, label := range labels {
		headers = append(headers, displayLabel(label))
		aligns = append(aligns, alignRight)
	}
	headers = append(headers, "Total")
	aligns = append(aligns, alignRight)

	var rows [][]string
	for _, split := range tally.SplitNames() {
		row := []string{displayLabel(split)}
		for _, label := range labels {
			row = append(row, strconv.Itoa(tally[split][label]))
		}
		row = append(row, strconv.Itoa(tally.SplitTotal(split)))
		rows = append(rows, row)
	}
	footer := []string{"All"}
	for _, label := range labels {
		n := 0
		for _, split := range tally.SplitNames() {
			n += tally[split][label]
		}
		footer = append(footer, strconv.Itoa(n))
	}
	footer = append(footer, strconv.Itoa(tally.Total()))

	return renderTable(headers, rows, aligns, footer...)
}

// displayLabel turns "class_a" into "Class A".
func displayLabel(name string) string {
	if name == "" {
		return "(unsorted)"
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}
