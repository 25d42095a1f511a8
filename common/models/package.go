package models

import (
	"errors"
	"time"
)

// ErrRepositoryUnavailable marks a remote repository that was deleted, made
// private or is otherwise unreadable
var ErrRepositoryUnavailable = errors.New("repository unavailable")

// RemoteTag is a tag advertised by a remote repository
type RemoteTag struct {
	Tag    string `json:"tag" yaml:"tag"`
	Commit string `json:"commit" yaml:"commit"`
}

// Policy is the per-package tag policy loaded from its manifest
type Policy struct {
	Name         string `yaml:"name" json:"name"`
	RepoURL      string `yaml:"repoUrl" json:"repo_url"`
	GitTagPrefix string `yaml:"gitTagPrefix" json:"git_tag_prefix,omitempty"`
	GitTagIgnore string `yaml:"gitTagIgnore" json:"git_tag_ignore,omitempty"`
	MinVersion   string `yaml:"minVersion" json:"min_version,omitempty"`
}

// PackageExtra is the per-package side record rewritten on each pipeline pass
// Maps to: package_extra table
type PackageExtra struct {
	PackageName     string      `db:"package_name" json:"package_name"`
	RepoUnavailable bool        `db:"repo_unavailable" json:"repo_unavailable"`
	InvalidTags     []RemoteTag `db:"invalid_tags" json:"invalid_tags"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}
