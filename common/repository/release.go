package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/common/db"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/jackc/pgx/v5"
)

// ErrReleaseNotFound is returned when no release exists for a package/version
var ErrReleaseNotFound = errors.New("release not found")

// ReleaseRepository handles database operations for releases
type ReleaseRepository struct {
	db db.Querier
}

// NewReleaseRepository creates a new release repository
func NewReleaseRepository(database db.Querier) *ReleaseRepository {
	return &ReleaseRepository{db: database}
}

const releaseColumns = `package_name, version, commit, tag, state, reason, created_at, updated_at`

// ListByPackage retrieves all releases of a package
func (r *ReleaseRepository) ListByPackage(ctx context.Context, packageName string) ([]*models.Release, error) {
	query := `
		SELECT ` + releaseColumns + `
		FROM release
		WHERE package_name = $1
		ORDER BY created_at ASC, version ASC
	`

	rows, err := r.db.Query(ctx, query, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	defer rows.Close()

	var releases []*models.Release
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, release)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating releases: %w", err)
	}

	return releases, nil
}

// Get retrieves a release by package name and version
func (r *ReleaseRepository) Get(ctx context.Context, packageName, version string) (*models.Release, error) {
	query := `
		SELECT ` + releaseColumns + `
		FROM release
		WHERE package_name = $1 AND version = $2
	`

	release, err := scanRelease(r.db.QueryRow(ctx, query, packageName, version))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%s", ErrReleaseNotFound, packageName, version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}

	return release, nil
}

// Create inserts a new release. It reports false when a release with the same
// package name and version already exists, leaving that row untouched.
func (r *ReleaseRepository) Create(ctx context.Context, release *models.Release) (bool, error) {
	query := `
		INSERT INTO release (` + releaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (package_name, version) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		release.PackageName,
		release.Version,
		release.Commit,
		release.Tag,
		string(release.State),
		string(release.Reason),
		release.CreatedAt,
		release.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create release: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// Delete removes a release
func (r *ReleaseRepository) Delete(ctx context.Context, packageName, version string) error {
	query := `DELETE FROM release WHERE package_name = $1 AND version = $2`

	result, err := r.db.Exec(ctx, query, packageName, version)
	if err != nil {
		return fmt.Errorf("failed to delete release: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s@%s", ErrReleaseNotFound, packageName, version)
	}

	return nil
}

func scanRelease(row pgx.Row) (*models.Release, error) {
	var state, reason string
	release := &models.Release{}
	err := row.Scan(
		&release.PackageName,
		&release.Version,
		&release.Commit,
		&release.Tag,
		&state,
		&reason,
		&release.CreatedAt,
		&release.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	release.State = models.ReleaseState(state)
	release.Reason = models.ReleaseReason(reason)
	return release, nil
}
