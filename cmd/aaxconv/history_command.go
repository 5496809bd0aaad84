package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"aaxconv/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var details int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled in the configuration")
				return nil
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if details > 0 {
				results, err := store.Chapters(cmd.Context(), details)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{strconv.Itoa(r.ChapterNum), string(r.Status), r.Path, r.Error})
				}
				fmt.Fprintln(out, renderTable([]string{"Chapter", "Status", "Path", "Error"}, rows,
					[]columnAlignment{alignRight}))
				return nil
			}

			conversions, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(conversions) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}
			rows := make([][]string, 0, len(conversions))
			for _, c := range conversions {
				rows = append(rows, []string{
					strconv.FormatInt(c.ID, 10),
					c.StartedAt.Local().Format("2006-01-02 15:04"),
					filepath.Base(c.SourcePath),
					c.Title,
					c.Codec + "/" + c.Mode,
					string(c.Status),
					formatElapsed(c.DurationSeconds),
					c.Error,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Source", "Title", "Format", "Status", "Took", "Error"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of conversions to list")
	cmd.Flags().Int64Var(&details, "chapters", 0, "Show per-chapter results for a conversion ID")
	return cmd
}

func formatElapsed(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
