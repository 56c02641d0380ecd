package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"casper/internal/history"
	"casper/internal/transcribe"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past transcription runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(cfg.Paths.HistoryDB)
			if path == "" {
				return fmt.Errorf("run history is disabled (paths.history_db is empty)")
			}

			store, err := history.Open(path)
			if err != nil {
				return fmt.Errorf("open history database: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format(transcribe.TimestampFormat),
					run.Model,
					run.Device,
					strconv.Itoa(run.Folders),
					strconv.Itoa(run.Files),
					strconv.Itoa(run.Successful),
					strconv.Itoa(run.Errors),
					fmt.Sprintf("%.1fs", run.ProcessingTimeSec),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Model", "Device", "Folders", "Files", "OK", "Errors", "Time"},
				rows,
				[]columnAlignment{
					alignLeft, alignLeft, alignLeft,
					alignRight, alignRight, alignRight, alignRight, alignRight,
				},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
