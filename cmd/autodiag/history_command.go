package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"autodiag/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent diagnoses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("history is disabled in configuration")
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if limit < 1 {
				limit = cfg.History.Keep
			}
			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No diagnoses recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the records as JSON")

	return cmd
}
