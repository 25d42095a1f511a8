package service

import (
	"regexp"

	"github.com/blang/semver"
	"github.com/bleep-bloop-bloob/openupm/common/models"
)

var (
	// priorityTagPattern marks tags published specifically for the registry
	priorityTagPattern = regexp.MustCompile(`(?i)^upm/|[-_]upm$`)

	// trailingVersionPattern finds a MAJOR.MINOR[.PATCH] version at the end of a
	// tag, preceded by the start of the tag or a separator that is not a letter,
	// digit or dot, and an optional "v"
	trailingVersionPattern = regexp.MustCompile(`(?i)(?:^|[^0-9a-z.])v?(\d+(?:\.\d+){1,2}(?:-[0-9a-z.-]+)?(?:\+[0-9a-z.-]+)?)$`)
)

// IsPriorityTag reports whether a tag carries the upm/ prefix or -upm/_upm suffix
func IsPriorityTag(tag string) bool {
	return priorityTagPattern.MatchString(tag)
}

// ParseTagVersion extracts the semantic version encoded in a tag name. Build
// metadata is dropped, so tags that differ only in "+meta" share a version.
// ok is false when the tag is not version-like.
func ParseTagVersion(tag string) (semver.Version, bool) {
	name := priorityTagPattern.ReplaceAllString(tag, "")

	match := trailingVersionPattern.FindStringSubmatch(name)
	if match == nil {
		return semver.Version{}, false
	}

	version, err := semver.ParseTolerant(match[1])
	if err != nil {
		return semver.Version{}, false
	}
	version.Build = nil
	return version, true
}

// TagVersion returns the normalized version string of a tag, or "" if it has none
func TagVersion(tag string) string {
	version, ok := ParseTagVersion(tag)
	if !ok {
		return ""
	}
	return version.String()
}

// applyVersionFloor keeps tags whose version is >= minVersion. ok is false when
// the floor cannot be applied: minVersion is unset or malformed, or a tag has
// no comparable version. Callers then leave the input unfiltered.
func applyVersionFloor(tags []models.RemoteTag, minVersion string) ([]models.RemoteTag, bool) {
	if minVersion == "" {
		return nil, false
	}

	floor, err := semver.ParseTolerant(minVersion)
	if err != nil {
		return nil, false
	}

	kept := make([]models.RemoteTag, 0, len(tags))
	for _, tag := range tags {
		version, ok := ParseTagVersion(tag.Tag)
		if !ok {
			return nil, false
		}
		if version.GTE(floor) {
			kept = append(kept, tag)
		}
	}
	return kept, true
}
