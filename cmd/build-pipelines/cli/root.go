package cli

import (
	"context"
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/container"
	"github.com/bleep-bloop-bloob/openupm/common/bootstrap"
	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/db"
	"github.com/spf13/cobra"
)

const serviceName = "build-pipelines"

// app carries configuration from the root command to subcommands
type app struct {
	cfg         *config.Config
	logLevel    string
	manifestDir string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Discover package releases from git tags and dispatch build jobs",
		Long: `build-pipelines lists the git tags of each package repository, turns
the tags that follow the package's policy into release records and
queues a build job for every release that still needs one.

Configuration is read from the environment. Flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(serviceName)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.applyOverrides(cfg)
			a.cfg = cfg
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&a.manifestDir, "manifest-dir", "", "Directory of package manifests; overrides PACKAGES_DIR")

	// Add subcommands
	rootCmd.AddCommand(
		newBuildReleasesCmd(a),
		newBuildAllCmd(a),
		newServeCmd(a),
		newReleasesCmd(a),
	)

	return rootCmd
}

func (a *app) applyOverrides(cfg *config.Config) {
	if a.logLevel != "" {
		cfg.Service.LogLevel = a.logLevel
	}
	if a.manifestDir != "" {
		cfg.Packages.ManifestDir = a.manifestDir
	}
}

// setup bootstraps components and the service container. Callers must call
// Shutdown on the returned components.
func (a *app) setup(ctx context.Context) (*bootstrap.Components, *container.Container, error) {
	components, err := a.bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}

	c, err := container.NewContainer(components)
	if err != nil {
		components.Shutdown(ctx)
		return nil, nil, fmt.Errorf("failed to initialize service container: %w", err)
	}

	return components, c, nil
}

// bootstrap connects the components every command needs, migrating the
// database on the way
func (a *app) bootstrap(ctx context.Context, opts ...bootstrap.Option) (*bootstrap.Components, error) {
	opts = append([]bootstrap.Option{
		bootstrap.WithCustomConfig(a.cfg),
		bootstrap.WithDBInitHook(func(ctx context.Context, d *db.DB) error {
			return d.Migrate(ctx)
		}),
	}, opts...)
	return bootstrap.Setup(ctx, serviceName, opts...)
}
