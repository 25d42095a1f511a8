package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/middleware"
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/routes"
	"github.com/bleep-bloop-bloob/openupm/common/server"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the package release HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			components, c, err := a.setup(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown(cmd.Context())

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true

			e.Use(echomw.Recover())
			e.Use(echomw.RequestID())
			e.Use(middleware.TraceID())

			routes.RegisterHealthRoutes(e, c)
			routes.RegisterPackageRoutes(e, c)

			return server.New(serviceName, a.cfg.Service.Port, e, components.Logger).Start(ctx)
		},
	}
}
