package gitremote

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
)

const (
	tagRefPrefix = "refs/tags/"
	peeledSuffix = "^{}"
)

// stderr of git when the remote is gone, private or not a repository
var unavailablePattern = regexp.MustCompile(`(?i)repository not found|could not read from remote repository|could not read username|does not appear to be a git repository`)

// runFunc executes a command and returns its stdout and stderr
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

// Fetcher lists remote tags with git ls-remote
type Fetcher struct {
	binary  string
	timeout time.Duration
	run     runFunc
	log     *logger.Logger
}

// NewFetcher creates a fetcher from git settings
func NewFetcher(cfg config.GitConfig, log *logger.Logger) *Fetcher {
	return &Fetcher{
		binary:  cfg.Binary,
		timeout: cfg.Timeout,
		run:     execCommand,
		log:     log,
	}
}

// ListTags returns the tags of repoURL ordered newest version first
func (f *Fetcher) ListTags(ctx context.Context, repoURL string) ([]models.RemoteTag, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, err := f.run(ctx, f.binary, "ls-remote", "--tags", "--sort=-version:refname", repoURL)
	if err != nil {
		return nil, classify(repoURL, stderr, err)
	}

	tags, err := parseLsRemote(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ls-remote output of %s: %w", repoURL, err)
	}

	f.log.WithContext(ctx).Debug("listed remote tags",
		"repo_url", repoURL,
		"count", len(tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tags, nil
}

func classify(repoURL string, stderr []byte, err error) error {
	msg := strings.TrimSpace(string(stderr))
	if unavailablePattern.MatchString(msg) {
		return fmt.Errorf("%w: %s: %s", models.ErrRepositoryUnavailable, repoURL, msg)
	}
	if msg != "" {
		return fmt.Errorf("git ls-remote %s: %s: %w", repoURL, msg, err)
	}
	return fmt.Errorf("git ls-remote %s: %w", repoURL, err)
}

// parseLsRemote turns "<sha>\trefs/tags/<name>" lines into tags, keeping the
// order of first appearance. An annotated tag's peeled line replaces the tag
// object sha with the commit it points to.
func parseLsRemote(output []byte) ([]models.RemoteTag, error) {
	var tags []models.RemoteTag
	index := make(map[string]int)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sha, ref, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		if !strings.HasPrefix(ref, tagRefPrefix) {
			continue
		}

		name := strings.TrimPrefix(ref, tagRefPrefix)
		peeled := strings.HasSuffix(name, peeledSuffix)
		name = strings.TrimSuffix(name, peeledSuffix)

		if i, seen := index[name]; seen {
			if peeled {
				tags[i].Commit = sha
			}
			continue
		}
		index[name] = len(tags)
		tags = append(tags, models.RemoteTag{Tag: name, Commit: sha})
	}

	return tags, scanner.Err()
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
