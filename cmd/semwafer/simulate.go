package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/library"
	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/strategy"
	"github.com/c360studio/semwafer/wafer"
)

func simulateCmd(opts *globalOptions) *cobra.Command {
	var (
		grid       string
		mapPath    string
		asJSON     bool
		showPoints bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <definition-file>",
		Short: "Execute a strategy against a wafer map and report coverage",
		Long: `Simulate compiles the definition, executes it against a wafer map, and
reports the selected points with coverage and spread statistics. The map
comes from --map (a JSON die list) or --grid (a WxH fully-available
grid); with neither, the default grid is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := opts.setup()
			if err != nil {
				return err
			}

			def, err := library.LoadDefinition(args[0])
			if err != nil {
				return err
			}

			m, err := loadWaferMap(grid, mapPath)
			if err != nil {
				return err
			}

			res := strategy.NewCompiler(rule.NewRegistry(), logger).Simulate(def, m)
			if asJSON {
				return printJSON(res)
			}
			printSimulation(res, showPoints)
			return nil
		},
	}

	cmd.Flags().StringVar(&grid, "grid", "", "Simulate on a WxH grid map (e.g. 12x12)")
	cmd.Flags().StringVar(&mapPath, "map", "", "Simulate on a wafer map loaded from a JSON file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&showPoints, "points", false, "List every selected point")
	return cmd
}

// loadWaferMap resolves the simulation target: an explicit map file, a
// grid size, or nil for the default grid.
func loadWaferMap(grid, mapPath string) (*wafer.Map, error) {
	if mapPath != "" && grid != "" {
		return nil, fmt.Errorf("--grid and --map are mutually exclusive")
	}
	if mapPath != "" {
		data, err := os.ReadFile(mapPath)
		if err != nil {
			return nil, err
		}
		return wafer.ParseMap(data)
	}
	if grid != "" {
		w, h, err := parseGridSize(grid)
		if err != nil {
			return nil, err
		}
		return wafer.NewGrid(w, h), nil
	}
	return nil, nil
}

// parseGridSize parses a "WxH" grid spec into positive dimensions.
func parseGridSize(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid grid size %q (expected WxH, e.g. 12x12)", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid size %q (expected WxH, e.g. 12x12)", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid size %q (expected WxH, e.g. 12x12)", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("grid size %q must be positive", s)
	}
	return w, h, nil
}

func printSimulation(res *strategy.SimulationResult, showPoints bool) {
	cov := res.Coverage
	fmt.Printf("Map:       %d dies, %d available\n", cov.TotalDies, cov.AvailableDies)
	fmt.Printf("Selected:  %d points (%.2f%% coverage)\n", cov.SelectedCount, cov.CoveragePercent)
	if d := cov.Distribution; d != nil {
		fmt.Printf("Spread:    x [%d, %d], y [%d, %d]\n", d.XMin, d.XMax, d.YMin, d.YMax)
		fmt.Printf("Center:    (%.2f, %.2f), stddev (%.2f, %.2f)\n", d.CenterX, d.CenterY, d.StdDevX, d.StdDevY)
	}
	// Executions that never compiled carry no estimate.
	if res.ExecutionID != "" {
		fmt.Printf("Estimate:  %.1f ms, %s memory, complexity %d\n",
			res.Estimate.EstimatedExecutionTimeMS,
			res.Estimate.MemoryUsage,
			res.Estimate.ComplexityScore)
	}
	for _, warn := range res.Warnings {
		fmt.Printf("Warning:   %s\n", warn)
	}
	if showPoints && len(res.SelectedPoints) > 0 {
		fmt.Println("Points:")
		for _, die := range res.SelectedPoints {
			note := ""
			if !die.Available {
				note = " (unavailable)"
			}
			fmt.Printf("  (%d, %d)%s\n", die.X, die.Y, note)
		}
	}
}
