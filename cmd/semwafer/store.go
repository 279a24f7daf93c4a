package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/config"
	"github.com/c360studio/semwafer/library"
	"github.com/c360studio/semwafer/storage"
	"github.com/c360studio/semwafer/strategy"
)

func storeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage strategies in the shared repository",
		Long: `Store subcommands talk to the NATS-backed strategy repository
configured via storage.nats_url (or the SEMWAFER_NATS_URL / NATS_URL
environment variables).`,
	}

	cmd.AddCommand(storePushCmd(opts))
	cmd.AddCommand(storeListCmd(opts))
	cmd.AddCommand(storeShowCmd(opts))
	cmd.AddCommand(storeVersionsCmd(opts))
	cmd.AddCommand(storePromoteCmd(opts))
	cmd.AddCommand(storeCloneCmd(opts))
	cmd.AddCommand(storeDeleteCmd(opts))
	return cmd
}

// openRepository connects to the configured NATS server and opens the
// strategy bucket. The returned cleanup drains the connection.
func openRepository(ctx context.Context, cfg *config.Config) (*storage.KVRepository, func(), error) {
	url := cfg.Storage.NATSURL
	if url == "" {
		return nil, nil, fmt.Errorf("storage.nats_url is not configured (set it in %s or via %s)", config.ProjectConfigFile, config.EnvNATSURL)
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	repo, err := storage.NewKVRepository(ctx, js)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open strategy bucket: %w", err)
	}

	cleanup := func() {
		conn.Drain()
		conn.Close()
	}
	return repo, cleanup, nil
}

// withRepository loads config, opens the repository, runs fn, and tears
// the connection down again.
func withRepository(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, repo *storage.KVRepository) error) error {
	cfg, _, err := opts.setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	repo, cleanup, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, repo)
}

func storePushCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push <definition-file>",
		Short: "Save a definition to the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := library.LoadDefinition(args[0])
			if err != nil {
				return err
			}
			if issues := def.Validate(false); len(issues) > 0 {
				return fmt.Errorf("definition is invalid: %s", strings.Join(issues, "; "))
			}
			if def.ID == "" {
				return fmt.Errorf("definition has no id; assign one before pushing")
			}

			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				if err := repo.Save(ctx, def); err != nil {
					return err
				}
				fmt.Printf("Pushed %s version %s (%s)\n", def.ID, def.Version, def.Name)
				return nil
			})
		},
	}
}

func storeListCmd(opts *globalOptions) *cobra.Command {
	var (
		processStep  string
		toolType     string
		strategyType string
		lifecycle    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List strategies in the repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				defs, err := repo.List(ctx, storage.ListFilter{
					ProcessStep: processStep,
					ToolType:    toolType,
					Type:        strategy.Type(strategyType),
					Lifecycle:   strategy.Lifecycle(lifecycle),
				})
				if err != nil {
					return err
				}
				if len(defs) == 0 {
					fmt.Println("No strategies stored.")
					return nil
				}

				fmt.Printf("%-36s  %-24s  %-8s  %-10s  %s\n", "ID", "NAME", "VERSION", "LIFECYCLE", "TYPE")
				for _, def := range defs {
					fmt.Printf("%-36s  %-24s  %-8s  %-10s  %s\n",
						def.ID, def.Name, def.Version, def.Lifecycle, def.Type)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&processStep, "process-step", "", "Filter by process step")
	cmd.Flags().StringVar(&toolType, "tool-type", "", "Filter by tool type")
	cmd.Flags().StringVar(&strategyType, "type", "", "Filter by strategy type")
	cmd.Flags().StringVar(&lifecycle, "lifecycle", "", "Filter by lifecycle state")
	return cmd
}

func storeShowCmd(opts *globalOptions) *cobra.Command {
	var (
		version string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				def, err := repo.Get(ctx, args[0], version)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(def)
				}
				out, err := strategy.EncodeYAML(def)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Definition version (default: latest)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON instead of YAML")
	return cmd
}

func storeVersionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <id>",
		Short: "List a strategy's stored versions, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				versions, err := repo.Versions(ctx, args[0])
				if err != nil {
					return err
				}
				for _, v := range versions {
					fmt.Println(v)
				}
				return nil
			})
		},
	}
}

func storePromoteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <id> [state]",
		Short: "Advance a strategy's lifecycle state",
		Long: `Promote moves the strategy to the named lifecycle state, or to the next
state along draft, review, approved, active when no state is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				def, err := repo.Get(ctx, args[0], "")
				if err != nil {
					return err
				}

				var target strategy.Lifecycle
				if len(args) == 2 {
					target = strategy.Lifecycle(args[1])
					if !target.IsValid() {
						return fmt.Errorf("unknown lifecycle state: %s", args[1])
					}
				} else {
					next, ok := def.Lifecycle.Next()
					if !ok {
						return fmt.Errorf("cannot promote from %s", def.Lifecycle)
					}
					target = next
				}

				if err := repo.SetLifecycle(ctx, def.ID, target); err != nil {
					return err
				}
				fmt.Printf("Promoted %s: %s to %s\n", def.ID, def.Lifecycle, target)
				return nil
			})
		},
	}
}

func storeCloneCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <id> <new-name>",
		Short: "Clone a strategy into a fresh draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				def, err := repo.Get(ctx, args[0], "")
				if err != nil {
					return err
				}

				clone := def.Clone(args[1])
				if err := repo.Save(ctx, clone); err != nil {
					return err
				}
				fmt.Printf("Cloned %s into %s (%s)\n", def.ID, clone.ID, clone.Name)
				return nil
			})
		},
	}
}

func storeDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a strategy (marks it deprecated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, opts, func(ctx context.Context, repo *storage.KVRepository) error {
				if err := repo.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deprecated %s\n", args[0])
				return nil
			})
		},
	}
}
