package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/manifest"
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/service"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/bleep-bloop-bloob/openupm/common/repository"
	"github.com/labstack/echo/v4"
)

// ReleaseBuilder runs release discovery for one package
type ReleaseBuilder interface {
	BuildReleases(ctx context.Context, packageName string) (*service.Result, error)
}

// ReleaseLister lists persisted releases of a package
type ReleaseLister interface {
	ListByPackage(ctx context.Context, packageName string) ([]*models.Release, error)
}

// PackageExtraGetter reads the package side record
type PackageExtraGetter interface {
	Get(ctx context.Context, packageName string) (*models.PackageExtra, error)
}

// PackageHandler handles package release endpoints
type PackageHandler struct {
	builder  ReleaseBuilder
	releases ReleaseLister
	extras   PackageExtraGetter
	log      *logger.Logger
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(builder ReleaseBuilder, releases ReleaseLister, extras PackageExtraGetter, log *logger.Logger) *PackageHandler {
	return &PackageHandler{
		builder:  builder,
		releases: releases,
		extras:   extras,
		log:      log,
	}
}

// BuildReleases syncs a package's releases with its remote tags
// POST /packages/:name/build-releases
func (h *PackageHandler) BuildReleases(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	result, err := h.builder.BuildReleases(ctx, name)
	switch {
	case errors.Is(err, manifest.ErrPackageNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "package not found")
	case errors.Is(err, manifest.ErrInvalidPackageName):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid package name")
	case err != nil:
		h.log.ErrorContext(ctx, "build releases failed", "package", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build releases")
	}

	return c.JSON(http.StatusOK, result)
}

// ListReleases returns the persisted releases of a package
// GET /packages/:name/releases
func (h *PackageHandler) ListReleases(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	releases, err := h.releases.ListByPackage(ctx, name)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to list releases", "package", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list releases")
	}
	if releases == nil {
		releases = []*models.Release{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"package_name": name,
		"releases":     releases,
	})
}

// GetExtra returns the package side record
// GET /packages/:name/extra
func (h *PackageHandler) GetExtra(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	extra, err := h.extras.Get(ctx, name)
	if errors.Is(err, repository.ErrPackageExtraNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "package extra not found")
	}
	if err != nil {
		h.log.ErrorContext(ctx, "failed to get package extra", "package", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get package extra")
	}

	return c.JSON(http.StatusOK, extra)
}
