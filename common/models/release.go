package models

import "time"

// ReleaseState is the build state of a release
type ReleaseState string

const (
	ReleaseStatePending   ReleaseState = "pending"
	ReleaseStateSucceeded ReleaseState = "succeeded"
	ReleaseStateFailed    ReleaseState = "failed"
)

// ReleaseReason is the cause recorded on a failed release
type ReleaseReason string

const (
	ReasonNone                    ReleaseReason = "none"
	ReasonVersionConflict         ReleaseReason = "version_conflict"
	ReasonPackageNotFound         ReleaseReason = "package_not_found"
	ReasonPackageNameNotMatch     ReleaseReason = "package_name_not_match"
	ReasonPackageJSONParsingError ReleaseReason = "package_json_parsing_error"
	ReasonBadRequest              ReleaseReason = "bad_request"
	ReasonUnauthorized            ReleaseReason = "unauthorized"
	ReasonForbidden               ReleaseReason = "forbidden"
	ReasonEntityTooLarge          ReleaseReason = "entity_too_large"
	ReasonInternalError           ReleaseReason = "internal_error"
	ReasonBadGateway              ReleaseReason = "bad_gateway"
	ReasonServiceUnavailable      ReleaseReason = "service_unavailable"
	ReasonGatewayTimeout          ReleaseReason = "gateway_timeout"
	ReasonBuildTimeout            ReleaseReason = "build_timeout"
	ReasonBuildCancelled          ReleaseReason = "build_cancelled"
)

// Release is the persisted build intent and outcome of one package version
// Maps to: release table, keyed by (package_name, version)
type Release struct {
	PackageName string `db:"package_name" json:"package_name"`

	// Normalized semantic version parsed from Tag at creation time
	Version string `db:"version" json:"version"`

	Commit string `db:"commit" json:"commit"`
	Tag    string `db:"tag" json:"tag"`

	State  ReleaseState  `db:"state" json:"state"`
	Reason ReleaseReason `db:"reason" json:"reason"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewRelease returns a pending release for a tag
func NewRelease(packageName, version string, tag RemoteTag) *Release {
	now := time.Now().UTC()
	return &Release{
		PackageName: packageName,
		Version:     version,
		Commit:      tag.Commit,
		Tag:         tag.Tag,
		State:       ReleaseStatePending,
		Reason:      ReasonNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MatchesTag reports whether the release was created from the exact tag/commit pair
func (r *Release) MatchesTag(tag RemoteTag) bool {
	return r.Tag == tag.Tag && r.Commit == tag.Commit
}
