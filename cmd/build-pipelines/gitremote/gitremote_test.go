package gitremote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lsRemoteOutput = `4c5f2a1e	refs/tags/v2.0.0
9a8b7c6d	refs/tags/v2.0.0^{}
1111aaaa	refs/tags/upm/v1.0.0
2222bbbb	refs/tags/v1.0.0

3333cccc	refs/tags/v1.0.0^{}
`

func TestParseLsRemote(t *testing.T) {
	tags, err := parseLsRemote([]byte(lsRemoteOutput))
	require.NoError(t, err)

	assert.Equal(t, []models.RemoteTag{
		{Tag: "v2.0.0", Commit: "9a8b7c6d"},
		{Tag: "upm/v1.0.0", Commit: "1111aaaa"},
		{Tag: "v1.0.0", Commit: "3333cccc"},
	}, tags)
}

func TestParseLsRemote_IgnoresOtherRefs(t *testing.T) {
	tags, err := parseLsRemote([]byte("abc\trefs/heads/main\ndef\trefs/tags/v1\n"))
	require.NoError(t, err)
	assert.Equal(t, []models.RemoteTag{{Tag: "v1", Commit: "def"}}, tags)
}

func TestParseLsRemote_Malformed(t *testing.T) {
	_, err := parseLsRemote([]byte("no-tab-here\n"))
	assert.Error(t, err)
}

func fakeFetcher(stdout, stderr string, err error) (*Fetcher, *[]string) {
	var args []string
	f := NewFetcher(config.GitConfig{Binary: "git", Timeout: time.Second}, logger.Discard())
	f.run = func(ctx context.Context, name string, a ...string) ([]byte, []byte, error) {
		args = append([]string{name}, a...)
		return []byte(stdout), []byte(stderr), err
	}
	return f, &args
}

func TestListTags(t *testing.T) {
	f, args := fakeFetcher(lsRemoteOutput, "", nil)

	tags, err := f.ListTags(context.Background(), "https://github.com/example/pkg")
	require.NoError(t, err)

	assert.Len(t, tags, 3)
	assert.Equal(t, []string{"git", "ls-remote", "--tags", "--sort=-version:refname", "https://github.com/example/pkg"}, *args)
}

func TestListTags_ErrorClassification(t *testing.T) {
	exitErr := errors.New("exit status 128")

	tests := []struct {
		name        string
		stderr      string
		unavailable bool
	}{
		{"not found", "remote: Repository not found.\nfatal: repository 'https://github.com/x/y/' not found", true},
		{"ssh denied", "fatal: Could not read from remote repository.", true},
		{"auth prompt", "fatal: could not read Username for 'https://github.com': terminal prompts disabled", true},
		{"not a repo", "fatal: '/tmp/x' does not appear to be a git repository", true},
		{"dns", "fatal: unable to access 'https://github.com/x/y/': Could not resolve host: github.com", false},
		{"no stderr", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := fakeFetcher("", tt.stderr, exitErr)

			_, err := f.ListTags(context.Background(), "https://github.com/x/y")
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, errors.Is(err, models.ErrRepositoryUnavailable))
			if !tt.unavailable {
				assert.ErrorIs(t, err, exitErr)
			}
		})
	}
}
