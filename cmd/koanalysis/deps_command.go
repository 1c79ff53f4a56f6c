package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Leewodls/ko-analysis/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{status.Name, status.Command, yesNo(status.Available), detail})
				if !status.Available && !status.Optional {
					missing++
				}
			}
			printRows(cmd.OutOrStdout(), []string{"Tool", "Command", "Available", "Detail"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft})

			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}
