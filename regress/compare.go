package regress

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"
)

// EqualValues compares the output file at newPath with the reference file
// at refPath according to spec. YAML files are compared as trees, with the
// keywords in spec.Ignore removed at any depth and numbers compared within
// the tolerance of their innermost keyword. Any other file is compared
// token by token using the default tolerance. When the files differ, the
// returned string describes the difference.
func EqualValues(refPath, newPath string, spec FileSpec) (bool, string,
	error) {
	ref, err := loadTree(refPath, spec)
	if err != nil {
		return false, "", fmt.Errorf("reference: %w", err)
	}
	got, err := loadTree(newPath, spec)
	if err != nil {
		return false, "", fmt.Errorf("output: %w", err)
	}
	opts := compareOptions(spec)
	if cmp.Equal(ref, got, opts) {
		return true, "", nil
	}
	return false, cmp.Diff(ref, got, opts), nil
}

func loadTree(path string, spec FileSpec) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		ignore := make(map[string]bool, len(spec.Ignore))
		for _, k := range spec.Ignore {
			ignore[k] = true
		}
		return normalize(v, ignore), nil
	}
	return tokenize(data), nil
}

// normalize drops ignored keys, gives every mapping string keys, and turns
// every number into a float64 so that 1 and 1.0 compare equal
func normalize(v interface{}, ignore map[string]bool) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		ret := make(map[string]interface{}, len(t))
		for k, x := range t {
			if !ignore[k] {
				ret[k] = normalize(x, ignore)
			}
		}
		return ret
	case map[interface{}]interface{}:
		ret := make(map[string]interface{}, len(t))
		for k, x := range t {
			if ks := fmt.Sprint(k); !ignore[ks] {
				ret[ks] = normalize(x, ignore)
			}
		}
		return ret
	case []interface{}:
		ret := make([]interface{}, len(t))
		for i, x := range t {
			ret[i] = normalize(x, ignore)
		}
		return ret
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	}
	return v
}

// tokenize splits plain text into lines of whitespace-separated fields,
// parsing each field as a float64 where possible
func tokenize(data []byte) []interface{} {
	var ret []interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		line := make([]interface{}, len(fields))
		for i, f := range fields {
			if v, err := strconv.ParseFloat(f, 64); err == nil {
				line[i] = v
			} else {
				line[i] = f
			}
		}
		ret = append(ret, line)
	}
	return ret
}

// tolAt returns the tolerance of the innermost keyword on p that has one
func tolAt(p cmp.Path, spec FileSpec) float64 {
	tol := spec.defaultTol()
	for _, step := range p {
		mi, ok := step.(cmp.MapIndex)
		if !ok || mi.Key().Kind() != reflect.String {
			continue
		}
		k := mi.Key().String()
		if t, ok := spec.Tolerance[k]; ok && k != "default" {
			tol = t
		}
	}
	return tol
}

// compareOptions builds one approximate comparer per distinct tolerance,
// each filtered to the paths that use it, so no two ever apply together
func compareOptions(spec FileSpec) cmp.Options {
	tols := map[float64]bool{spec.defaultTol(): true}
	for k, t := range spec.Tolerance {
		if k != "default" {
			tols[t] = true
		}
	}
	opts := cmp.Options{cmpopts.EquateNaNs()}
	for tol := range tols {
		tol := tol
		opts = append(opts, cmp.FilterPath(func(p cmp.Path) bool {
			return tolAt(p, spec) == tol
		}, cmpopts.EquateApprox(0, tol)))
	}
	return opts
}
