// Package regress runs perturbo.x regression tests and compares their
// outputs against reference files.
package regress

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTolerance is the absolute tolerance used for numbers when a
// FileSpec does not set one
const DefaultTolerance = 1e-8

// FileSpec says how one output file is compared with its reference
type FileSpec struct {
	// Ignore lists keywords whose values are skipped at any depth
	Ignore []string `yaml:"ignore keywords"`
	// Tolerance maps keywords to the absolute tolerance of every number
	// beneath them. The "default" entry applies everywhere else.
	Tolerance map[string]float64 `yaml:"tolerance"`
}

// defaultTol returns the tolerance for numbers not under any keyword
func (f FileSpec) defaultTol() float64 {
	if t, ok := f.Tolerance["default"]; ok {
		return t
	}
	return DefaultTolerance
}

// TestInfo is the "test info" section of a test's pert_input.yml
type TestInfo struct {
	Tags  []string            `yaml:"tags"`
	Files map[string]FileSpec `yaml:"test files"`
}

// FileNames returns the names of the files to compare, sorted
func (t *TestInfo) FileNames() []string {
	ret := make([]string, 0, len(t.Files))
	for k := range t.Files {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// HasTag reports whether t is tagged with any of tags
func (t *TestInfo) HasTag(tags ...string) bool {
	for _, want := range tags {
		for _, have := range t.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// LoadTestInfo reads the test info section of the pert_input.yml at path
func LoadTestInfo(path string) (*TestInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Info *TestInfo `yaml:"test info"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc.Info == nil {
		return nil, fmt.Errorf("%s: missing test info", path)
	}
	for name, spec := range doc.Info.Files {
		for k, tol := range spec.Tolerance {
			if tol < 0 {
				return nil, fmt.Errorf("%s: negative tolerance %g for %q in %s",
					path, tol, k, name)
			}
		}
	}
	return doc.Info, nil
}
