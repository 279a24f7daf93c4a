// Package main provides the semwafer binary entry point.
// Semwafer compiles die-sampling strategy definitions into executable
// artifacts and validates them against wafer schematic layouts.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semwafer"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions carries the root persistent flags into subcommands.
type globalOptions struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "semwafer",
		Short: "Wafer sampling strategy engine",
		Long: `Semwafer compiles die-sampling strategy definitions into executable
artifacts and validates them against wafer schematic layouts.

It provides:
- Rule-based sampling strategies (fixed points, center/edge, grid, random)
- Compilation with per-version artifact caching and cost estimates
- Simulation against wafer maps with coverage statistics
- Schematic validation with conflict reports and alignment scoring

Strategy definitions are YAML or JSON files kept in a library directory
(configurable via semwafer.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	cmd.AddCommand(rulesCmd())
	cmd.AddCommand(lintCmd(opts))
	cmd.AddCommand(compileCmd(opts))
	cmd.AddCommand(simulateCmd(opts))
	cmd.AddCommand(validateCmd(opts))
	cmd.AddCommand(historyCmd(opts))
	cmd.AddCommand(storeCmd(opts))

	return cmd
}

// setup loads configuration and installs the default logger. Subcommands
// call it first in RunE, after flag parsing.
func (g *globalOptions) setup() (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)

	if g.configPath != "" {
		cfg, err = config.LoadFromFile(g.configPath)
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	} else {
		cfg, err = config.NewLoader(nil).Load()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
	}

	logger := newLogger(resolveLogLevel(cfg, g.logLevel))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// resolveLogLevel applies the flag override on top of the configured level.
func resolveLogLevel(cfg *config.Config, flagLevel string) string {
	if flagLevel != "" {
		return flagLevel
	}
	return cfg.Log.Level
}

func newLogger(levelName string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
