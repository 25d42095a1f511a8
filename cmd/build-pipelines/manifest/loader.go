package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bleep-bloop-bloob/openupm/common/models"
	"gopkg.in/yaml.v3"
)

// ErrPackageNotFound is returned when no manifest exists for a package
var ErrPackageNotFound = errors.New("package manifest not found")

// ErrInvalidPackageName is returned for names that cannot map to a manifest file
var ErrInvalidPackageName = errors.New("invalid package name")

var extensions = []string{".yml", ".yaml"}

// Loader reads package manifests from a directory of YAML files named
// <packageName>.yml
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the manifest directory
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads and validates the manifest of a package
func (l *Loader) Load(packageName string) (*models.Policy, error) {
	if err := validateName(packageName); err != nil {
		return nil, err
	}

	for _, ext := range extensions {
		path := filepath.Join(l.dir, packageName+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
		}
		return parse(packageName, path, data)
	}

	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packageName)
}

// List returns the names of all packages with a manifest, sorted
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest dir %s: %w", l.dir, err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

func parse(packageName, path string, data []byte) (*models.Policy, error) {
	var policy models.Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if policy.Name == "" {
		policy.Name = packageName
	}
	if policy.Name != packageName {
		return nil, fmt.Errorf("manifest %s declares name %q", path, policy.Name)
	}
	if strings.TrimSpace(policy.RepoURL) == "" {
		return nil, fmt.Errorf("manifest %s: repoUrl is required", path)
	}

	return &policy, nil
}

func validateName(packageName string) error {
	if packageName == "" || strings.ContainsAny(packageName, `/\`) || strings.Contains(packageName, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPackageName, packageName)
	}
	return nil
}
