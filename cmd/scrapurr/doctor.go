package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scrapurr/internal/deps"
	"scrapurr/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check folders, notifications, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			checks := preflight.RunAll(cmd.Context(), cfg)
			checkRows := make([][]string, 0, len(checks))
			for _, result := range checks {
				checkRows = append(checkRows, []string{result.Name, passFail(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, checkRows, nil))

			statuses := preflight.CheckDependencies(cfg)
			toolRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := passFail(status.Available)
				if !status.Available && status.Optional {
					state = "skip"
				}
				detail := status.Resolved
				if detail == "" {
					detail = status.Detail
				}
				toolRows = append(toolRows, []string{status.Name, requiredLabel(status.Optional), state, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Need", "Status", "Detail"}, toolRows, nil))

			var problems []string
			for _, result := range preflight.Failed(checks) {
				problems = append(problems, strings.ToLower(result.Name))
			}
			problems = append(problems, deps.MissingRequired(statuses)...)
			if len(problems) > 0 {
				return errors.New("doctor found problems: " + strings.Join(problems, ", "))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

func requiredLabel(optional bool) string {
	if optional {
		return "optional"
	}
	return "required"
}
