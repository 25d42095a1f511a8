package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bleep-bloop-bloob/openupm/common/models"
)

// Classification is the outcome of classifying a remote tag list
type Classification struct {
	// Valid tags ordered oldest first, one per version
	Valid []models.RemoteTag
	// Invalid tags are in policy scope but lost to dedup or had no version
	Invalid []models.RemoteTag
}

// TagClassifier applies a package policy to remote tags
type TagClassifier struct {
	prefix     string
	ignore     *regexp.Regexp
	minVersion string
}

// NewTagClassifier compiles the policy's ignore pattern (case-insensitive,
// matched anywhere in the tag)
func NewTagClassifier(policy *models.Policy) (*TagClassifier, error) {
	c := &TagClassifier{
		prefix:     policy.GitTagPrefix,
		minVersion: policy.MinVersion,
	}

	if policy.GitTagIgnore != "" {
		ignore, err := regexp.Compile("(?i)" + policy.GitTagIgnore)
		if err != nil {
			return nil, fmt.Errorf("invalid gitTagIgnore %q: %w", policy.GitTagIgnore, err)
		}
		c.ignore = ignore
	}

	return c, nil
}

// Classify splits remote tags (newest first) into valid and invalid tags
func (c *TagClassifier) Classify(remoteTags []models.RemoteTag) Classification {
	valid := c.validTags(remoteTags)
	return Classification{
		Valid:   valid,
		Invalid: c.invalidTags(remoteTags, valid),
	}
}

func (c *TagClassifier) validTags(remoteTags []models.RemoteTag) []models.RemoteTag {
	tags := c.inScope(remoteTags)

	versioned := make([]models.RemoteTag, 0, len(tags))
	for _, tag := range tags {
		if _, ok := ParseTagVersion(tag.Tag); ok {
			versioned = append(versioned, tag)
		}
	}

	var priority, rest []models.RemoteTag
	for _, tag := range versioned {
		if IsPriorityTag(tag.Tag) {
			priority = append(priority, tag)
		} else {
			rest = append(rest, tag)
		}
	}

	if kept, ok := applyVersionFloor(rest, c.minVersion); ok {
		rest = kept
	}

	seen := make(map[string]struct{}, len(versioned))
	results := make([]models.RemoteTag, 0, len(versioned))
	for _, group := range [][]models.RemoteTag{priority, rest} {
		for _, tag := range group {
			version := TagVersion(tag.Tag)
			if _, dup := seen[version]; dup {
				continue
			}
			seen[version] = struct{}{}
			results = append(results, tag)
		}
	}

	// remote lists are newest first, releases are created oldest first
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results
}

func (c *TagClassifier) invalidTags(remoteTags, valid []models.RemoteTag) []models.RemoteTag {
	validNames := make(map[string]struct{}, len(valid))
	for _, tag := range valid {
		validNames[tag.Tag] = struct{}{}
	}

	var complement []models.RemoteTag
	for _, tag := range remoteTags {
		if _, ok := validNames[tag.Tag]; !ok {
			complement = append(complement, tag)
		}
	}

	invalid := c.inScope(complement)
	if kept, ok := applyVersionFloor(invalid, c.minVersion); ok {
		invalid = kept
	}
	return invalid
}

// inScope applies the prefix and ignore filters, keeping order
func (c *TagClassifier) inScope(tags []models.RemoteTag) []models.RemoteTag {
	results := make([]models.RemoteTag, 0, len(tags))
	for _, tag := range tags {
		if c.prefix != "" && !strings.HasPrefix(tag.Tag, c.prefix) {
			continue
		}
		if c.ignore != nil && c.ignore.MatchString(tag.Tag) {
			continue
		}
		results = append(results, tag)
	}
	return results
}
