package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nathantilsley/helmstack/internal/platform/config"
	"github.com/nathantilsley/helmstack/internal/stack/domain"
	"github.com/nathantilsley/helmstack/internal/stack/ports"
)

// useCaseFactory builds the release use case for one invocation and a
// shutdown func that flushes telemetry.
type useCaseFactory func(ctx context.Context, cfg config.Config) (ports.ReleaseUseCase, func(context.Context) error, error)

const shutdownTimeout = 5 * time.Second

func newRootCommand(cfg config.Config, factory useCaseFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "helmstack",
		Short:         "Declaratively sync a stack of helm releases",
		Long:          "helmstack resolves helmstack.yaml for an environment, applies its overlays and runs helm once per release, in document order.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindGlobalFlags(cmd.PersistentFlags(), &cfg)

	// withUseCase builds dependencies after flag parsing so cfg reflects
	// the final flag values.
	withUseCase := func(c *cobra.Command, fn func(ports.ReleaseUseCase) error) error {
		uc, shutdown, err := factory(c.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Context()), shutdownTimeout)
			defer cancel()
			_ = shutdown(ctx)
		}()
		return fn(uc)
	}

	cmd.AddCommand(newSyncCommand(withUseCase))
	cmd.AddCommand(newDeleteCommand(withUseCase))
	cmd.AddCommand(newGetCommand(withUseCase))
	cmd.AddCommand(newShowCommand(withUseCase))
	return cmd
}

// bindGlobalFlags registers the flags shared by every command. Defaults come
// from the env-derived config so flags override the environment.
func bindGlobalFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVarP(&cfg.Environment, "environment", "e", cfg.Environment, "Environment whose overlays are applied")
	fs.StringVarP(&cfg.StackFile, "file", "f", cfg.StackFile, "Stack file to load")
	fs.StringVar(&cfg.KubeContext, "kube-context", cfg.KubeContext, "Cluster context passed to helm (default: kubectl's current context)")
	fs.StringVar(&cfg.HelmBinary, "helm-binary", cfg.HelmBinary, "Path to the helm binary")
	fs.StringVar(&cfg.KubectlBin, "kubectl-binary", cfg.KubectlBin, "Path to the kubectl binary used for context discovery")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print commands instead of running them")
}

type runner func(c *cobra.Command, fn func(ports.ReleaseUseCase) error) error

func newSyncCommand(run runner) *cobra.Command {
	var opts domain.SyncOptions
	var recreatePods, force bool

	cmd := &cobra.Command{
		Use:   "sync [release...]",
		Short: "Install or upgrade releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Targets = splitCSV(args)
			if cmd.Flags().Changed("recreate-pods") {
				opts.RecreatePods = &recreatePods
			}
			if cmd.Flags().Changed("force") {
				opts.Force = &force
			}
			return run(cmd, func(uc ports.ReleaseUseCase) error {
				return uc.Sync(cmd.Context(), opts)
			})
		},
	}
	cmd.Flags().BoolVar(&recreatePods, "recreate-pods", false, "Override helmDefaults.recreatePods for this run")
	cmd.Flags().BoolVar(&force, "force", false, "Override helmDefaults.force for this run")
	cmd.Flags().BoolVar(&opts.KeepTempFiles, "keep-temp-files", false, "Leave generated value files on disk")
	cmd.Flags().BoolVar(&opts.SkipRepos, "skip-repos", false, "Do not add or update chart repositories")
	return cmd
}

func newDeleteCommand(run runner) *cobra.Command {
	var opts domain.DeleteOptions

	cmd := &cobra.Command{
		Use:   "delete [release...]",
		Short: "Delete releases",
		Long:  "Delete the named releases. Deleting every release in the stack requires --all.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Targets = splitCSV(args)
			return run(cmd, func(uc ports.ReleaseUseCase) error {
				return uc.Delete(cmd.Context(), opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "Remove the release from the store so its name can be reused")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Confirm deleting every release when none are named")
	return cmd
}

func newGetCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "get [release...]",
		Short: "Show deployed release information",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := domain.GetOptions{Targets: splitCSV(args)}
			return run(cmd, func(uc ports.ReleaseUseCase) error {
				return uc.Get(cmd.Context(), opts)
			})
		},
	}
}

func newShowCommand(run runner) *cobra.Command {
	var diff bool

	cmd := &cobra.Command{
		Use:   "show [release...]",
		Short: "Print releases as resolved for the environment",
		Long:  "Print the releases after interpolation and overlays without calling helm. With --diff, print what the environment's overlays change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := domain.ShowOptions{Targets: splitCSV(args), Diff: diff}
			return run(cmd, func(uc ports.ReleaseUseCase) error {
				return uc.Show(cmd.Context(), cmd.OutOrStdout(), opts)
			})
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "Print a unified diff of base against resolved releases")
	return cmd
}

// splitCSV accepts release names as separate arguments or comma-separated.
func splitCSV(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
