package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dataprep/internal/workflow"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <local|colab>",
		Short: "Verify the dataset root is ready for a run",
		Args:  environmentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, layout, err := ctx.layout(args[0])
			if err != nil {
				return err
			}
			// The check never writes, so it gets a manager without a ledger.
			mgr := workflow.NewManager(cfg, nil, layout, nil)
			summary := mgr.Status(cmd.Context())

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines, renderStatusLine("Config", statusInfo, configSource(ctx), colorize))
			lines = append(lines, renderStatusLine("Environment", statusInfo, layout.Environment, colorize))
			lines = append(lines, renderStatusLine("Root", statusInfo, layout.Root, colorize))
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Preflight", colorize)...)
			for _, r := range summary.Preflight {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Stages", colorize)...)
			for _, h := range summary.StageHealth {
				kind := statusOK
				detail := "ready"
				if !h.Ready {
					kind = statusError
					detail = h.Detail
				}
				lines = append(lines, renderStatusLine(displayLabel(h.Name), kind, detail, colorize))
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if !summary.Ready() {
				return fmt.Errorf("dataset root %s is not ready", layout.Root)
			}
			return nil
		},
	}
}

func configSource(ctx *commandContext) string {
	if ctx.configSeen {
		return ctx.configPath
	}
	return "defaults (no config file found)"
}
