package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/storage"
)

func historyCmd(opts *globalOptions) *cobra.Command {
	var (
		strategyID  string
		schematicID string
		limit       int
		showID      string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.setup()
			if err != nil {
				return err
			}

			store, err := storage.NewHistoryStore(cfg.Storage.HistoryPath)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			if showID != "" {
				res, err := store.GetValidation(ctx, showID)
				if err != nil {
					return err
				}
				return printJSON(res)
			}

			summaries, err := store.ListValidations(ctx, storage.ValidationFilter{
				SchematicID: schematicID,
				StrategyID:  strategyID,
				Limit:       limit,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(summaries)
			}
			if len(summaries) == 0 {
				fmt.Println("No validations recorded.")
				return nil
			}

			fmt.Printf("%-36s  %-19s  %-7s  %6s  %8s  %6s\n",
				"VALIDATION", "DATE", "STATUS", "SCORE", "COVERAGE", "ERRORS")
			for _, s := range summaries {
				fmt.Printf("%-36s  %-19s  %-7s  %6.3f  %7.1f%%  %6d\n",
					s.ValidationID,
					s.ValidatedAt.Format("2006-01-02 15:04:05"),
					s.Status,
					s.AlignmentScore,
					s.CoveragePercentage,
					s.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyID, "strategy", "", "Filter by strategy ID")
	cmd.Flags().StringVar(&schematicID, "schematic", "", "Filter by schematic ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results (0 = no limit)")
	cmd.Flags().StringVar(&showID, "id", "", "Print one validation in full (JSON)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")
	return cmd
}
