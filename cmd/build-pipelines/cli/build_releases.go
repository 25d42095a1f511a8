package cli

import (
	"github.com/spf13/cobra"
)

func newBuildReleasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build-releases <package>",
		Short: "Sync one package's releases with its remote tags and queue builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, c, err := a.setup(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown(ctx)

			result, err := c.Pipeline.BuildReleases(ctx, args[0])
			if err != nil {
				return err
			}

			components.Logger.Info("build-releases finished",
				"package", result.PackageName,
				"repo_unavailable", result.RepoUnavailable,
				"valid_tags", result.ValidTags,
				"invalid_tags", result.InvalidTags,
				"releases", result.Releases,
				"enqueued", result.Enqueued,
			)
			return nil
		},
	}
}
