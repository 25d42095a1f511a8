package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/google/uuid"
)

// PolicyLoader loads the tag policy of a package
type PolicyLoader interface {
	Load(packageName string) (*models.Policy, error)
}

// TagFetcher lists the tags of a remote repository, newest first. It returns an
// error wrapping models.ErrRepositoryUnavailable when the repository is gone.
type TagFetcher interface {
	ListTags(ctx context.Context, repoURL string) ([]models.RemoteTag, error)
}

// PackageExtraStore persists the per-package side record
type PackageExtraStore interface {
	SetRepoUnavailable(ctx context.Context, packageName string, unavailable bool) error
	SetInvalidTags(ctx context.Context, packageName string, tags []models.RemoteTag) error
}

// Result summarizes one pipeline pass over a package
type Result struct {
	PackageName     string        `json:"package_name"`
	RepoUnavailable bool          `json:"repo_unavailable"`
	ValidTags       int           `json:"valid_tags"`
	InvalidTags     int           `json:"invalid_tags"`
	Releases        int           `json:"releases"`
	Enqueued        int           `json:"enqueued"`
	Duration        time.Duration `json:"-"`
	DurationMs      int64         `json:"duration_ms"`
}

func (r *Result) finish(start time.Time) *Result {
	r.Duration = time.Since(start)
	r.DurationMs = r.Duration.Milliseconds()
	return r
}

// Pipeline runs release discovery and build dispatch for a package
type Pipeline struct {
	policies   PolicyLoader
	tags       TagFetcher
	extras     PackageExtraStore
	reconciler *ReleaseReconciler
	dispatcher *JobDispatcher
	log        *logger.Logger
}

// NewPipeline creates a new pipeline
func NewPipeline(
	policies PolicyLoader,
	tags TagFetcher,
	extras PackageExtraStore,
	reconciler *ReleaseReconciler,
	dispatcher *JobDispatcher,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		policies:   policies,
		tags:       tags,
		extras:     extras,
		reconciler: reconciler,
		dispatcher: dispatcher,
		log:        log,
	}
}

// BuildReleases loads the package policy, fetches remote tags, classifies
// them, reconciles releases and dispatches build jobs. An unavailable
// repository is recorded on the package and is not an error.
func (p *Pipeline) BuildReleases(ctx context.Context, packageName string) (*Result, error) {
	start := time.Now()
	if _, ok := logger.TraceIDFromContext(ctx); !ok {
		ctx = logger.ContextWithTraceID(ctx, uuid.New().String())
	}
	log := p.log.WithContext(ctx).WithPackage(packageName)
	result := &Result{PackageName: packageName}

	policy, err := p.policies.Load(packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to load package %s: %w", packageName, err)
	}

	classifier, err := NewTagClassifier(policy)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", packageName, err)
	}

	remoteTags, err := p.tags.ListTags(ctx, policy.RepoURL)
	if errors.Is(err, models.ErrRepositoryUnavailable) {
		log.Warn("repository unavailable", "repo_url", policy.RepoURL, "error", err)
		if err := p.extras.SetRepoUnavailable(ctx, packageName, true); err != nil {
			return nil, fmt.Errorf("failed to mark %s unavailable: %w", packageName, err)
		}
		result.RepoUnavailable = true
		return result.finish(start), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s: %w", policy.RepoURL, err)
	}

	if err := p.extras.SetRepoUnavailable(ctx, packageName, false); err != nil {
		return nil, fmt.Errorf("failed to mark %s available: %w", packageName, err)
	}

	classification := classifier.Classify(remoteTags)
	result.ValidTags = len(classification.Valid)
	result.InvalidTags = len(classification.Invalid)

	if err := p.extras.SetInvalidTags(ctx, packageName, classification.Invalid); err != nil {
		return nil, fmt.Errorf("failed to record invalid tags of %s: %w", packageName, err)
	}

	log.Info("classified remote tags",
		"remote", len(remoteTags),
		"valid", result.ValidTags,
		"invalid", result.InvalidTags,
	)

	if len(classification.Valid) == 0 {
		return result.finish(start), nil
	}

	releases, err := p.reconciler.Reconcile(ctx, packageName, classification.Valid)
	if err != nil {
		return nil, err
	}
	result.Releases = len(releases)

	result.Enqueued, err = p.dispatcher.Dispatch(ctx, releases)
	if err != nil {
		return nil, err
	}

	result.finish(start)
	log.Info("build releases complete",
		"releases", result.Releases,
		"enqueued", result.Enqueued,
		"duration_ms", result.DurationMs,
	)

	return result, nil
}
