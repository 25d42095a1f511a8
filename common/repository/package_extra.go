package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/common/db"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/jackc/pgx/v5"
)

// ErrPackageExtraNotFound is returned when a package has no extra record yet
var ErrPackageExtraNotFound = errors.New("package extra not found")

// PackageExtraRepository handles database operations for package extras
type PackageExtraRepository struct {
	db db.Querier
}

// NewPackageExtraRepository creates a new package extra repository
func NewPackageExtraRepository(database db.Querier) *PackageExtraRepository {
	return &PackageExtraRepository{db: database}
}

// SetRepoUnavailable overwrites the repo_unavailable flag of a package
func (r *PackageExtraRepository) SetRepoUnavailable(ctx context.Context, packageName string, unavailable bool) error {
	query := `
		INSERT INTO package_extra (package_name, repo_unavailable, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (package_name)
		DO UPDATE SET repo_unavailable = EXCLUDED.repo_unavailable, updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, packageName, unavailable); err != nil {
		return fmt.Errorf("failed to set repo unavailable: %w", err)
	}

	return nil
}

// SetInvalidTags overwrites the invalid tag list of a package
func (r *PackageExtraRepository) SetInvalidTags(ctx context.Context, packageName string, tags []models.RemoteTag) error {
	if tags == nil {
		tags = []models.RemoteTag{}
	}

	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode invalid tags: %w", err)
	}

	query := `
		INSERT INTO package_extra (package_name, invalid_tags, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (package_name)
		DO UPDATE SET invalid_tags = EXCLUDED.invalid_tags, updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, packageName, string(data)); err != nil {
		return fmt.Errorf("failed to set invalid tags: %w", err)
	}

	return nil
}

// Get retrieves the extra record of a package
func (r *PackageExtraRepository) Get(ctx context.Context, packageName string) (*models.PackageExtra, error) {
	query := `
		SELECT package_name, repo_unavailable, invalid_tags, updated_at
		FROM package_extra
		WHERE package_name = $1
	`

	var invalidTags []byte
	extra := &models.PackageExtra{}
	err := r.db.QueryRow(ctx, query, packageName).Scan(
		&extra.PackageName,
		&extra.RepoUnavailable,
		&invalidTags,
		&extra.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPackageExtraNotFound, packageName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package extra: %w", err)
	}

	if err := json.Unmarshal(invalidTags, &extra.InvalidTags); err != nil {
		return nil, fmt.Errorf("failed to decode invalid tags: %w", err)
	}

	return extra, nil
}
