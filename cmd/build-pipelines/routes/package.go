package routes

import (
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/container"
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/handlers"
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterPackageRoutes registers all package-related routes
func RegisterPackageRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewPackageHandler(c.Pipeline, c.ReleaseRepo, c.PackageExtraRepo, c.Components.Logger)

	packages := e.Group("/packages")
	{
		packages.POST("/:name/build-releases", h.BuildReleases, // POST /packages/{name}/build-releases
			middleware.PackageRateLimit(c.TriggerLimiter, "name", c.Components.Logger))
		packages.GET("/:name/releases", h.ListReleases) // GET /packages/{name}/releases
		packages.GET("/:name/extra", h.GetExtra)        // GET /packages/{name}/extra
	}
}

// RegisterHealthRoutes registers the health check endpoint
func RegisterHealthRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewHealthHandler(c.Components, c.Components.Config.Service.Name)
	e.GET("/health", h.Health)
}
