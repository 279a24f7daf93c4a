package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/config"
	"github.com/c360studio/semwafer/library"
	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/strategy"
)

func lintCmd(opts *globalOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "lint [file ...]",
		Short: "Check strategy definitions for problems",
		Long: `Lint loads strategy definitions, validates them, and resolves their
rules against the registry. With file arguments it checks just those
files; without arguments it checks every definition in the library
directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			registry := rule.NewRegistry()

			if len(args) > 0 {
				if watch {
					return fmt.Errorf("--watch lints the library directory and takes no file arguments")
				}
				return lintFiles(args, registry, logger)
			}

			lib := library.New(cfg.Library.Path, logger)
			if watch || cfg.Library.Watch.Enabled {
				return lintWatch(cmd.Context(), cfg, lib, registry, logger)
			}

			total, bad := runLibraryLint(lib, registry, logger)
			if bad > 0 {
				return fmt.Errorf("%d of %d definitions have issues", bad, total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-lint the library whenever definition files change (implied by library.watch.enabled)")
	return cmd
}

// checkDefinition compiles the definition against the registry and turns
// the failure, if any, into lint issues. Each definition gets a fresh
// compiler: library files routinely share a blank id, which would collide
// in the artifact cache.
func checkDefinition(registry *rule.Registry, logger *slog.Logger, def *strategy.Definition) []string {
	_, err := strategy.NewCompiler(registry, logger).Compile(def)
	if err == nil {
		return nil
	}
	var cerr *strategy.CompileError
	if errors.As(err, &cerr) && len(cerr.Issues) > 0 {
		return cerr.Issues
	}
	return []string{err.Error()}
}

func lintFiles(paths []string, registry *rule.Registry, logger *slog.Logger) error {
	bad := 0
	for _, path := range paths {
		def, err := library.LoadDefinition(path)
		if err != nil {
			bad++
			fmt.Printf("✗ %s\n    - %v\n", path, err)
			continue
		}
		issues := checkDefinition(registry, logger, def)
		if len(issues) == 0 {
			fmt.Printf("✓ %s (%s, %d rules)\n", path, displayName(def), len(def.Rules))
			continue
		}
		bad++
		fmt.Printf("✗ %s\n", path)
		for _, issue := range issues {
			fmt.Printf("    - %s\n", issue)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d definitions have issues", bad, len(paths))
	}
	return nil
}

// runLibraryLint checks every definition in the library and prints the
// report. It returns counts instead of an error so watch mode can keep
// running across bad states.
func runLibraryLint(lib *library.Library, registry *rule.Registry, logger *slog.Logger) (total, bad int) {
	defs, loadErrs, err := lib.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "library scan failed: %v\n", err)
		return 0, 0
	}

	for _, le := range loadErrs {
		total++
		bad++
		fmt.Printf("✗ %s\n    - %v\n", le.Path, le.Err)
	}
	for _, def := range defs {
		total++
		issues := checkDefinition(registry, logger, def)
		if len(issues) == 0 {
			fmt.Printf("✓ %s (%d rules)\n", displayName(def), len(def.Rules))
			continue
		}
		bad++
		fmt.Printf("✗ %s\n", displayName(def))
		for _, issue := range issues {
			fmt.Printf("    - %s\n", issue)
		}
	}

	fmt.Printf("%d definitions checked, %d with issues\n", total, bad)
	return total, bad
}

func lintWatch(ctx context.Context, cfg *config.Config, lib *library.Library, registry *rule.Registry, logger *slog.Logger) error {
	w, err := library.NewWatcher(cfg.Library.Watch, lib.Dir(), logger)
	if err != nil {
		return err
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(sigCtx); err != nil {
		return err
	}
	defer w.Stop()

	runLibraryLint(lib, registry, logger)
	fmt.Println("\nWatching for changes (Ctrl+C to stop)...")

	for {
		select {
		case <-sigCtx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			fmt.Printf("\n%s %s\n", ev.Operation, ev.Path)
			runLibraryLint(lib, registry, logger)
		}
	}
}

// displayName picks the most useful label for a definition in reports.
func displayName(def *strategy.Definition) string {
	if def.Name != "" {
		return def.Name
	}
	if def.ID != "" {
		return def.ID
	}
	return "(unnamed)"
}
