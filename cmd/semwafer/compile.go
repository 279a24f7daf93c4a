package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/library"
	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/strategy"
)

func compileCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compile <definition-file>",
		Short: "Compile a strategy definition and print the artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := opts.setup()
			if err != nil {
				return err
			}

			def, err := library.LoadDefinition(args[0])
			if err != nil {
				return err
			}

			compiled, err := strategy.NewCompiler(rule.NewRegistry(), logger).Compile(def)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(compiled)
			}

			fmt.Printf("Strategy:  %s (%s)\n", compiled.Name, compiled.StrategyID)
			fmt.Printf("Version:   %s\n", compiled.Version)
			fmt.Printf("Compiled:  %s\n", compiled.CompiledAt.Format(time.RFC3339))
			fmt.Printf("Rules:     %d (%s)\n", compiled.RuleCount(), strings.Join(compiled.RuleTypes(), ", "))
			fmt.Printf("Estimate:  %.1f ms, %s memory, complexity %d\n",
				compiled.Estimate.EstimatedExecutionTimeMS,
				compiled.Estimate.MemoryUsage,
				compiled.Estimate.ComplexityScore)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the artifact as JSON")
	return cmd
}
