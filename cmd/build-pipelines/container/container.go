package container

import (
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/gitremote"
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/manifest"
	"github.com/bleep-bloop-bloob/openupm/cmd/build-pipelines/service"
	"github.com/bleep-bloop-bloob/openupm/common/bootstrap"
	"github.com/bleep-bloop-bloob/openupm/common/ratelimit"
	"github.com/bleep-bloop-bloob/openupm/common/repository"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	Components *bootstrap.Components

	// Sources
	Manifests *manifest.Loader
	Tags      *gitremote.Fetcher

	// Repositories
	ReleaseRepo      *repository.ReleaseRepository
	PackageExtraRepo *repository.PackageExtraRepository

	// Services
	Reconciler *service.ReleaseReconciler
	Dispatcher *service.JobDispatcher
	Pipeline   *service.Pipeline

	// Nil unless Redis is connected and a trigger limit is configured
	TriggerLimiter *ratelimit.Limiter
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	if components.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if components.Queue == nil {
		return nil, fmt.Errorf("job queue is required")
	}

	cfg := components.Config
	log := components.Logger

	manifests := manifest.NewLoader(cfg.Packages.ManifestDir)
	tags := gitremote.NewFetcher(cfg.Git, log)

	// Initialize repositories
	releaseRepo := repository.NewReleaseRepository(components.DB)
	extraRepo := repository.NewPackageExtraRepository(components.DB)

	// Initialize services (bottom-up: dependencies first)
	reconciler := service.NewReleaseReconciler(releaseRepo, log)
	dispatcher := service.NewJobDispatcher(components.Queue, cfg.Jobs.BuildRelease, log)
	pipeline := service.NewPipeline(manifests, tags, extraRepo, reconciler, dispatcher, log)

	var limiter *ratelimit.Limiter
	if components.Redis != nil && cfg.Trigger.RateLimit > 0 {
		limiter = ratelimit.NewLimiter(
			components.Redis.Raw(),
			components.Redis.Prefix(),
			cfg.Trigger.RateLimit,
			cfg.Trigger.RateWindow,
			log,
		)
	}

	return &Container{
		Components:       components,
		Manifests:        manifests,
		Tags:             tags,
		ReleaseRepo:      releaseRepo,
		PackageExtraRepo: extraRepo,
		Reconciler:       reconciler,
		Dispatcher:       dispatcher,
		Pipeline:         pipeline,
		TriggerLimiter:   limiter,
	}, nil
}
