package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBuildAllCmd(a *app) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "build-all",
		Short: "Run build-releases for every package manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if concurrency > 0 {
				a.cfg.Packages.Concurrency = concurrency
			}

			components, c, err := a.setup(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown(ctx)

			names, err := c.Manifests.List()
			if err != nil {
				return err
			}

			components.Logger.Info("building releases for all packages",
				"packages", len(names),
				"concurrency", a.cfg.Packages.Concurrency,
			)

			return forEachPackage(ctx, names, a.cfg.Packages.Concurrency, components.Logger,
				func(ctx context.Context, name string) error {
					_, err := c.Pipeline.BuildReleases(ctx, name)
					return err
				})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Packages processed in parallel; overrides PACKAGES_CONCURRENCY")

	return cmd
}

// forEachPackage runs fn for every package with at most limit in flight. A
// failing package does not stop the others; all failures are joined.
func forEachPackage(ctx context.Context, names []string, limit int, log *logger.Logger, fn func(context.Context, string) error) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				return nil
			}

			if err := fn(ctx, name); err != nil {
				log.WithPackage(name).Error("build releases failed", "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	if len(errs) > 0 {
		log.Warn("some packages failed", "failed", len(errs), "total", len(names))
	}
	return errors.Join(errs...)
}
