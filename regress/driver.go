package regress

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Directory layout of a test suite, relative to its root
const (
	UtilsDir  = "test_utils"
	TestsDir  = "tests_perturbo"
	RefsDir   = "refs_perturbo"
	JobScript = "run_interactive.sh"
	InputFile = "pert_input.yml"
)

// DefaultTimeout bounds a single perturbo run when the Driver sets none
const DefaultTimeout = 30 * time.Minute

// Materials are the paths needed to run and check one test
type Materials struct {
	Name string
	// ScriptDir contains the job script
	ScriptDir string
	// DriverDir contains pert_input.yml and receives the new outputs
	DriverDir string
	// RefDir contains the reference outputs
	RefDir string
}

// FindMaterials walks root for the script, driver, and reference
// directories of test name. The first match of each, in lexical walk order,
// is used.
func FindMaterials(root, name string) (*Materials, error) {
	m := &Materials{Name: name}
	suffixes := map[*string]string{
		&m.ScriptDir: string(filepath.Separator) + UtilsDir,
		&m.DriverDir: filepath.Join(string(filepath.Separator)+TestsDir, name),
		&m.RefDir:    filepath.Join(string(filepath.Separator)+RefsDir, name),
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry,
		err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		for dst, suffix := range suffixes {
			if *dst == "" && strings.HasSuffix(path, suffix) {
				*dst = path
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, d := range []struct{ path, what string }{
		{m.ScriptDir, UtilsDir},
		{m.DriverDir, filepath.Join(TestsDir, name)},
		{m.RefDir, filepath.Join(RefsDir, name)},
	} {
		if d.path == "" {
			missing = append(missing, d.what)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("test %q: no %s under %s: %w", name,
			strings.Join(missing, ", "), root, fs.ErrNotExist)
	}
	return m, nil
}

// RunPerturbo runs the job script in scriptDir with driverDir as its working
// directory and returns its combined output
func RunPerturbo(ctx context.Context, scriptDir, driverDir string) (string,
	error) {
	script, err := filepath.Abs(filepath.Join(scriptDir, JobScript))
	if err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, script)
	cmd.Dir = driverDir
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return string(out), ctx.Err()
	}
	if err != nil {
		return string(out), fmt.Errorf("%s failed: %w", script, err)
	}
	return string(out), nil
}

// Result is the comparison of one output file with its reference
type Result struct {
	Test    string
	RefPath string
	NewPath string
	Equal   bool
	// Diff describes the mismatch when Equal is false
	Diff string
	// Err is set when the files could not be compared at all
	Err error
}

// Driver runs regression tests found under Root
type Driver struct {
	Root string
	// Keep leaves the new outputs in place after comparison
	Keep bool
	// Tags, when non-empty, restricts runs to tests carrying one of them
	Tags        []string
	ExcludeTags []string
	Timeout     time.Duration
	Logger      *zap.Logger
	// Exec runs perturbo; it defaults to RunPerturbo
	Exec func(ctx context.Context, scriptDir, driverDir string) (string, error)
}

// ErrSkipped is returned by Driver.Run for a test filtered out by its tags
var ErrSkipped = errors.New("test skipped")

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Run executes test name and compares each of its output files with the
// reference. A file that cannot be compared gets a Result with Err set and
// the remaining files are still checked. Unless Keep is set, the new outputs
// are removed once perturbo has been started, whatever the outcome.
func (d *Driver) Run(ctx context.Context, name string) (results []Result,
	err error) {
	log := d.logger().With(zap.String("test", name))
	m, err := FindMaterials(d.Root, name)
	if err != nil {
		return nil, err
	}
	info, err := LoadTestInfo(filepath.Join(m.DriverDir, InputFile))
	if err != nil {
		return nil, err
	}
	if (len(d.Tags) > 0 && !info.HasTag(d.Tags...)) ||
		info.HasTag(d.ExcludeTags...) {
		log.Debug("Skipping test", zap.Strings("tags", info.Tags))
		return nil, ErrSkipped
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	run := d.Exec
	if run == nil {
		run = RunPerturbo
	}
	outs := make([]string, 0, len(info.Files))
	for _, file := range info.FileNames() {
		outs = append(outs, filepath.Join(m.DriverDir, file))
	}
	if !d.Keep {
		defer func() {
			if cerr := Clean(outs); cerr != nil {
				log.Error("Removing outputs failed", zap.Error(cerr))
				if err == nil {
					err = cerr
				}
				return
			}
			log.Debug("Removed outputs", zap.Int("files", len(outs)))
		}()
	}

	log.Info("Running perturbo", zap.String("dir", m.DriverDir))
	start := time.Now()
	tctx, cancel := context.WithTimeout(ctx, timeout)
	out, err := run(tctx, m.ScriptDir, m.DriverDir)
	cancel()
	if err != nil {
		log.Error("Perturbo run failed", zap.Error(err),
			zap.String("output", out))
		return nil, err
	}
	log.Debug("Perturbo finished", zap.Duration("elapsed", time.Since(start)))

	for _, file := range info.FileNames() {
		r := Result{
			Test:    name,
			RefPath: filepath.Join(m.RefDir, file),
			NewPath: filepath.Join(m.DriverDir, file),
		}
		log.Debug("Comparing files", zap.String("ref", r.RefPath),
			zap.String("new", r.NewPath))
		var cerr error
		r.Equal, r.Diff, cerr = EqualValues(r.RefPath, r.NewPath,
			info.Files[file])
		switch {
		case cerr != nil:
			r.Err = fmt.Errorf("comparing %s: %w", file, cerr)
			log.Error("Comparison failed", zap.String("file", file),
				zap.Error(cerr))
		case !r.Equal:
			log.Warn("Files do not match", zap.String("file", file))
		}
		results = append(results, r)
	}
	return results, nil
}

// Clean removes the files in paths, ignoring any that are already gone
func Clean(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ListTests returns the names of the test directories in the first
// tests_perturbo directory under root
func ListTests(root string) ([]string, error) {
	var dir string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry,
		err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == TestsDir {
			dir = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, fmt.Errorf("no %s under %s: %w", TestsDir, root,
			fs.ErrNotExist)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, e := range entries {
		if e.IsDir() {
			ret = append(ret, e.Name())
		}
	}
	return ret, nil
}
