package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/bleep-bloop-bloob/openupm/common/repository"
)

// ReleaseStore is the persistence the reconciler needs
type ReleaseStore interface {
	ListByPackage(ctx context.Context, packageName string) ([]*models.Release, error)
	Get(ctx context.Context, packageName, version string) (*models.Release, error)
	Create(ctx context.Context, release *models.Release) (bool, error)
	Delete(ctx context.Context, packageName, version string) error
}

// ReleaseReconciler merges valid tags into persisted releases
type ReleaseReconciler struct {
	store ReleaseStore
	log   *logger.Logger
}

// NewReleaseReconciler creates a new release reconciler
func NewReleaseReconciler(store ReleaseStore, log *logger.Logger) *ReleaseReconciler {
	return &ReleaseReconciler{
		store: store,
		log:   log,
	}
}

// Reconcile prunes stale failed releases and creates a release for every valid
// tag that has none. It returns one release per valid tag, in tag order.
// Existing releases are never modified.
func (r *ReleaseReconciler) Reconcile(ctx context.Context, packageName string, valid []models.RemoteTag) ([]*models.Release, error) {
	log := r.log.WithContext(ctx).WithPackage(packageName)

	if err := r.pruneFailed(ctx, log, packageName, valid); err != nil {
		return nil, err
	}

	releases := make([]*models.Release, 0, len(valid))
	for _, tag := range valid {
		release, err := r.materialize(ctx, log, packageName, tag)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
	}

	return releases, nil
}

// pruneFailed deletes failed releases whose tag/commit pair is gone from the
// remote, so the version can be attempted again
func (r *ReleaseReconciler) pruneFailed(ctx context.Context, log *logger.Logger, packageName string, valid []models.RemoteTag) error {
	existing, err := r.store.ListByPackage(ctx, packageName)
	if err != nil {
		return fmt.Errorf("failed to load releases: %w", err)
	}

	for _, release := range existing {
		if release.State != models.ReleaseStateFailed || hasTag(release, valid) {
			continue
		}

		err := r.store.Delete(ctx, packageName, release.Version)
		if err != nil && !errors.Is(err, repository.ErrReleaseNotFound) {
			return fmt.Errorf("failed to delete stale release %s: %w", release.Version, err)
		}

		log.Info("removed stale failed release",
			"version", release.Version,
			"tag", release.Tag,
			"commit", release.Commit,
			"reason", release.Reason,
		)
	}

	return nil
}

func (r *ReleaseReconciler) materialize(ctx context.Context, log *logger.Logger, packageName string, tag models.RemoteTag) (*models.Release, error) {
	version := TagVersion(tag.Tag)
	if version == "" {
		return nil, fmt.Errorf("tag %q has no version", tag.Tag)
	}

	release, err := r.store.Get(ctx, packageName, version)
	if err == nil {
		return release, nil
	}
	if !errors.Is(err, repository.ErrReleaseNotFound) {
		return nil, fmt.Errorf("failed to get release %s: %w", version, err)
	}

	release = models.NewRelease(packageName, version, tag)
	created, err := r.store.Create(ctx, release)
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s: %w", version, err)
	}

	if !created {
		// lost a race with a concurrent run; use the stored row
		stored, err := r.store.Get(ctx, packageName, version)
		if err != nil {
			return nil, fmt.Errorf("failed to reload release %s: %w", version, err)
		}
		return stored, nil
	}

	log.Info("created release", "version", version, "tag", tag.Tag, "commit", tag.Commit)
	return release, nil
}

func hasTag(release *models.Release, tags []models.RemoteTag) bool {
	for _, tag := range tags {
		if release.MatchesTag(tag) {
			return true
		}
	}
	return false
}
