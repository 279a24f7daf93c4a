package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/config"
	"github.com/c360studio/semwafer/library"
	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/schematic"
	"github.com/c360studio/semwafer/storage"
	"github.com/c360studio/semwafer/strategy"
)

func validateCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON bool
		record bool
		by     string
	)

	cmd := &cobra.Command{
		Use:   "validate <definition-file> <schematic-file>",
		Short: "Validate a strategy against a schematic die layout",
		Long: `Validate compiles the definition, executes it against the schematic's
die layout, and reports conflicts, warnings, and the alignment score.
The command exits non-zero when the validation status is fail.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}

			def, err := library.LoadDefinition(args[0])
			if err != nil {
				return err
			}
			sch, err := schematic.LoadFile(args[1])
			if err != nil {
				return err
			}

			compiler := strategy.NewCompiler(rule.NewRegistry(), logger)
			res := schematic.NewValidator(logger).ValidateDefinition(compiler, def, sch)

			if record {
				if err := recordValidation(cmd.Context(), cfg, sch, res, by); err != nil {
					return err
				}
				logger.Info("validation recorded",
					"validation_id", res.ValidationID,
					"path", cfg.Storage.HistoryPath)
			}

			if asJSON {
				if err := printJSON(res); err != nil {
					return err
				}
			} else {
				printValidation(res, sch)
			}

			if res.Status == schematic.StatusFail {
				return fmt.Errorf("validation failed with %d errors", res.ErrorCount())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "Record the result in the validation history store")
	cmd.Flags().StringVar(&by, "by", "", "Operator recorded with the result")
	return cmd
}

func recordValidation(ctx context.Context, cfg *config.Config, sch *schematic.Schematic, res *schematic.Result, by string) error {
	store, err := storage.NewHistoryStore(cfg.Storage.HistoryPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	if err := store.RecordSchematic(ctx, sch); err != nil {
		return fmt.Errorf("record schematic: %w", err)
	}
	if err := store.RecordValidation(ctx, res, by); err != nil {
		return fmt.Errorf("record validation: %w", err)
	}
	return nil
}

func printValidation(res *schematic.Result, sch *schematic.Schematic) {
	fmt.Printf("Validation: %s\n", res.ValidationID)
	fmt.Printf("Strategy:   %s\n", res.StrategyID)
	fmt.Printf("Schematic:  %s (%s, %d dies)\n", res.SchematicID, sch.Filename, sch.DieCount())
	fmt.Printf("Status:     %s\n", res.Status)
	fmt.Printf("Alignment:  %.3f\n", res.AlignmentScore)
	fmt.Printf("Coverage:   %.1f%% (%d/%d points valid)\n",
		res.CoveragePercentage, res.ValidStrategyPoints, res.TotalStrategyPoints)

	if len(res.Conflicts) > 0 {
		fmt.Printf("\nConflicts (%d):\n", len(res.Conflicts))
		for _, c := range res.Conflicts {
			fmt.Printf("  [%s] %s at %s: %s\n", c.Severity, c.Type, c.StrategyPoint, c.Description)
			if c.Recommendation != "" {
				fmt.Printf("        fix: %s\n", c.Recommendation)
			}
		}
	}

	if len(res.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Printf("  [%s] %s\n", w.Type, w.Description)
			if w.Recommendation != "" {
				fmt.Printf("        fix: %s\n", w.Recommendation)
			}
		}
	}

	if len(res.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range res.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
}
