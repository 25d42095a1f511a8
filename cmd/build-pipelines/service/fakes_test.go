package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/bleep-bloop-bloob/openupm/common/repository"
)

// memReleaseStore is an in-memory ReleaseStore that records writes
type memReleaseStore struct {
	mu       sync.Mutex
	releases map[string]*models.Release
	creates  []string
	deletes  []string
	err      error
}

func newMemReleaseStore(releases ...*models.Release) *memReleaseStore {
	s := &memReleaseStore{releases: make(map[string]*models.Release)}
	for _, release := range releases {
		s.releases[release.PackageName+"@"+release.Version] = release
	}
	return s
}

func (s *memReleaseStore) ListByPackage(ctx context.Context, packageName string) ([]*models.Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var result []*models.Release
	for _, release := range s.releases {
		if release.PackageName == packageName {
			result = append(result, release)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

func (s *memReleaseStore) Get(ctx context.Context, packageName, version string) (*models.Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, ok := s.releases[packageName+"@"+version]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", repository.ErrReleaseNotFound, packageName, version)
	}
	return release, nil
}

func (s *memReleaseStore) Create(ctx context.Context, release *models.Release) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}

	key := release.PackageName + "@" + release.Version
	if _, exists := s.releases[key]; exists {
		return false, nil
	}
	s.releases[key] = release
	s.creates = append(s.creates, release.Version)
	return true, nil
}

func (s *memReleaseStore) Delete(ctx context.Context, packageName, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := packageName + "@" + version
	if _, ok := s.releases[key]; !ok {
		return fmt.Errorf("%w: %s@%s", repository.ErrReleaseNotFound, packageName, version)
	}
	delete(s.releases, key)
	s.deletes = append(s.deletes, version)
	return nil
}

func (s *memReleaseStore) resetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = nil
	s.deletes = nil
}

type fakeExtras struct {
	repoUnavailable map[string]bool
	invalidTags     map[string][]models.RemoteTag
	err             error
	invalidTagsErr  error
}

func newFakeExtras() *fakeExtras {
	return &fakeExtras{
		repoUnavailable: make(map[string]bool),
		invalidTags:     make(map[string][]models.RemoteTag),
	}
}

func (f *fakeExtras) SetRepoUnavailable(ctx context.Context, packageName string, unavailable bool) error {
	if f.err != nil {
		return f.err
	}
	f.repoUnavailable[packageName] = unavailable
	return nil
}

func (f *fakeExtras) SetInvalidTags(ctx context.Context, packageName string, tags []models.RemoteTag) error {
	if f.err != nil {
		return f.err
	}
	if f.invalidTagsErr != nil {
		return f.invalidTagsErr
	}
	f.invalidTags[packageName] = tags
	return nil
}

type fakeFetcher struct {
	tags  []models.RemoteTag
	err   error
	calls []string
}

func (f *fakeFetcher) ListTags(ctx context.Context, repoURL string) ([]models.RemoteTag, error) {
	f.calls = append(f.calls, repoURL)
	return f.tags, f.err
}

type staticPolicies map[string]*models.Policy

func (p staticPolicies) Load(packageName string) (*models.Policy, error) {
	policy, ok := p[packageName]
	if !ok {
		return nil, fmt.Errorf("no manifest for %s", packageName)
	}
	return policy, nil
}

func release(version, tag, commit string, state models.ReleaseState, reason models.ReleaseReason) *models.Release {
	r := models.NewRelease("com.example.pkg", version, models.RemoteTag{Tag: tag, Commit: commit})
	r.State = state
	r.Reason = reason
	return r
}
