package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report the external tools aaxconv uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, statuses, resolveErr := ctx.resolveTools(cfg.Tools)

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				location := status.Path
				if !status.Available {
					state = "missing"
					location = status.Detail
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(!status.Optional),
					state,
					location,
					status.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Command", "Required", "Status", "Path", "Purpose"}, rows, nil))
			return resolveErr
		},
	}
}
