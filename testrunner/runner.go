// Package testrunner runs test262 conformance files against the
// interpreter.
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/example/jscore/config"
	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/logging"
	"github.com/example/jscore/runtime"
)

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

// PassRate is the share of non-skipped tests that passed, in percent.
func (s Summary) PassRate() float64 {
	ran := s.Total - s.Skipped
	if ran == 0 {
		return 0
	}
	return float64(s.Passed) / float64(ran) * 100
}

func (s *Summary) add(r TestResult) {
	s.Total++
	switch r.Result {
	case Pass:
		s.Passed++
	case Fail:
		s.Failed++
	case Skip:
		s.Skipped++
	case Error:
		s.Errors++
	}
}

type Config struct {
	// Dir is a test262 checkout with test/ and harness/ subdirectories.
	Dir    string
	Filter string
	// Limit caps the number of files run; 0 runs everything.
	Limit int
	// Timeout bounds a single file. Zero means 5s.
	Timeout time.Duration
	// Jobs is the number of files evaluated concurrently. Zero means 1.
	Jobs int
	// Engine configures every interpreter the runner creates.
	Engine *config.Config
	Logger *log.Logger
	// OnResult, when set, observes each result as it completes. Calls are
	// serialized.
	OnResult func(TestResult)
}

// Runner evaluates test262 files. Each file gets a fresh interpreter.
type Runner struct {
	cfg Config

	mu      sync.Mutex
	harness map[string]string
}

func New(cfg Config) *Runner {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if cfg.Engine == nil {
		cfg.Engine = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Runner{cfg: cfg, harness: make(map[string]string)}
}

// Discover lists the test files under Dir/test matching the filter, in
// lexical order. Fixture files (*_FIXTURE.js) are excluded.
func (rn *Runner) Discover() ([]string, error) {
	testDir := filepath.Join(rn.cfg.Dir, "test")
	var files []string
	err := filepath.WalkDir(testDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".js") || strings.HasSuffix(path, "_FIXTURE.js") {
			return nil
		}
		if rn.cfg.Filter != "" {
			rel, _ := filepath.Rel(testDir, path)
			if !strings.Contains(filepath.ToSlash(rel), rn.cfg.Filter) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover tests: %w", err)
	}
	sort.Strings(files)
	if rn.cfg.Limit > 0 && len(files) > rn.cfg.Limit {
		files = files[:rn.cfg.Limit]
	}
	return files, nil
}

// Run discovers and runs the suite. Results are returned in discovery
// order.
func (rn *Runner) Run(ctx context.Context) ([]TestResult, Summary, error) {
	files, err := rn.Discover()
	if err != nil {
		return nil, Summary{}, err
	}
	rn.cfg.Logger.Info("running conformance suite", "files", len(files), "jobs", rn.cfg.Jobs)

	start := time.Now()
	results := make([]TestResult, len(files))
	var report sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rn.cfg.Jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, _ := filepath.Rel(rn.cfg.Dir, path)
			tr := rn.RunFile(ctx, path, filepath.ToSlash(rel))
			results[i] = tr
			if rn.cfg.OnResult != nil {
				report.Lock()
				rn.cfg.OnResult(tr)
				report.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	var summary Summary
	for _, tr := range results {
		summary.add(tr)
	}
	summary.Elapsed = time.Since(start)
	return results, summary, nil
}

// RunFile runs one test file. rel names it in the result.
func (rn *Runner) RunFile(ctx context.Context, path, rel string) TestResult {
	start := time.Now()
	result := func(res Result, format string, args ...any) TestResult {
		return TestResult{Path: rel, Result: res, Message: fmt.Sprintf(format, args...), Elapsed: time.Since(start)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result(Error, "read: %v", err)
	}
	source := string(data)
	meta, err := ParseMetadata(source)
	if err != nil {
		return result(Error, "%v", err)
	}
	if f := meta.unsupportedFeature(); f != "" {
		return result(Skip, "unsupported feature: %s", f)
	}
	switch {
	case meta.HasFlag("module"):
		return result(Skip, "module test")
	case meta.HasFlag("async"):
		return result(Skip, "async test")
	case meta.Negative != nil && meta.Negative.Phase == "resolution":
		return result(Skip, "module resolution")
	}

	prelude := ""
	if !meta.HasFlag("raw") {
		includes := append([]string{"sta.js", "assert.js"}, meta.Includes...)
		if prelude, err = rn.loadHarness(includes); err != nil {
			return result(Error, "%v", err)
		}
	}

	var modes []bool
	switch {
	case meta.HasFlag("onlyStrict"):
		modes = []bool{true}
	case meta.HasFlag("noStrict"), meta.HasFlag("raw"):
		modes = []bool{false}
	default:
		modes = []bool{false, true}
	}

	for _, strict := range modes {
		src := prelude + source
		if strict {
			src = "\"use strict\";\n" + src
		}
		res, msg := rn.evaluate(ctx, rel, src, meta.Negative)
		if res != Pass {
			if strict && len(modes) > 1 {
				msg = "strict mode: " + msg
			}
			return result(res, "%s", msg)
		}
	}
	return result(Pass, "")
}

func (rn *Runner) evaluate(ctx context.Context, rel, source string, negative *Negative) (Result, string) {
	ctx, cancel := context.WithTimeout(ctx, rn.cfg.Timeout)
	defer cancel()

	h := newHost(rn.cfg.Engine)
	h.running = true
	_, err := h.interp.EvalFile(ctx, rel, source)
	h.running = false

	if errors.Is(err, runtime.ErrInterrupted) {
		return Error, fmt.Sprintf("timeout (%s)", rn.cfg.Timeout)
	}
	if runtime.IsFatal(err) {
		return Error, err.Error()
	}

	if negative != nil {
		return checkNegative(err, negative)
	}
	if err == nil {
		return Pass, ""
	}
	if isUnsupported(err) {
		return Skip, err.Error()
	}
	return Fail, err.Error()
}

func checkNegative(err error, negative *Negative) (Result, string) {
	want := fmt.Sprintf("expected %s in %s phase", negative.Type, negative.Phase)
	if err == nil {
		return Fail, want
	}
	var se *interpreter.SyntaxError
	var te *interpreter.ThrownError
	switch {
	case errors.As(err, &se):
		if negative.Phase == "parse" && negative.Type == "SyntaxError" {
			return Pass, ""
		}
	case errors.As(err, &te):
		if isUnsupported(err) {
			return Skip, err.Error()
		}
		if te.Name() == negative.Type {
			return Pass, ""
		}
	}
	return Fail, want + ", got " + err.Error()
}

// isUnsupported reports an error raised for syntax the evaluator
// deliberately does not implement.
func isUnsupported(err error) bool {
	var le *runtime.LanguageError
	return errors.As(err, &le) && le.Kind == runtime.KindSyntaxError && strings.HasSuffix(le.Message, "is not supported")
}

// loadHarness concatenates harness files, caching each across tests.
func (rn *Runner) loadHarness(names []string) (string, error) {
	var sb strings.Builder
	for _, name := range names {
		rn.mu.Lock()
		src, ok := rn.harness[name]
		rn.mu.Unlock()
		if !ok {
			data, err := os.ReadFile(filepath.Join(rn.cfg.Dir, "harness", name))
			if err != nil {
				return "", fmt.Errorf("harness %s: %w", name, err)
			}
			src = string(data)
			rn.mu.Lock()
			rn.harness[name] = src
			rn.mu.Unlock()
		}
		sb.WriteString(src)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
