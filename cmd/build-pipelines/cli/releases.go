package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bleep-bloop-bloob/openupm/common/bootstrap"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/bleep-bloop-bloob/openupm/common/repository"
	"github.com/spf13/cobra"
)

func newReleasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "releases <package>",
		Short: "Print the stored releases of a package as JSON",
		Long: `releases reads the release records of one package from the database.
It does not contact the remote repository or the job queue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := a.bootstrap(ctx, bootstrap.WithoutQueue())
			if err != nil {
				return err
			}
			defer components.Shutdown(ctx)

			releases, err := repository.NewReleaseRepository(components.DB).ListByPackage(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list releases of %s: %w", args[0], err)
			}
			return writeReleases(cmd.OutOrStdout(), releases)
		},
	}
}

func writeReleases(w io.Writer, releases []*models.Release) error {
	if releases == nil {
		releases = []*models.Release{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(releases)
}
