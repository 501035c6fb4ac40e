package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	"github.com/msto63/mlang/foundation/lang"
	mlast "github.com/msto63/mlang/foundation/lang/ast"
)

// Status represents the outcome of a check
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult represents the result of a single check
type CheckResult struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Duration  time.Duration          `json:"duration"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Checker is an interface for checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// CheckFunc is a function type that implements Checker
type CheckFunc func(ctx context.Context) CheckResult

// Check implements the Checker interface
func (f CheckFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// Name returns a default name
func (f CheckFunc) Name() string {
	return "unknown"
}

// NamedCheckFunc wraps a check function with a name
type NamedCheckFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &NamedCheckFunc{name: name, fn: fn}
}

// Name returns the checker name
func (c *NamedCheckFunc) Name() string {
	return c.name
}

// Check runs the check
func (c *NamedCheckFunc) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

// Registry manages the checks run by "mlang doctor"
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	tool     string
	version  string
}

// NewRegistry creates a new check registry
func NewRegistry(tool, version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		tool:     tool,
		version:  version,
	}
}

// Register adds a checker to the registry
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc adds a check function to the registry
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Unregister removes a checker from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Check runs all checks concurrently and returns the overall status.
// Results are sorted by name.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := &Report{
		Tool:      r.tool,
		Version:   r.version,
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, 0, len(r.checkers)),
	}

	var wg sync.WaitGroup
	results := make(chan CheckResult, len(r.checkers))

	for _, checker := range r.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			if result.Name == "" {
				result.Name = c.Name()
			}
			if result.Status == "" {
				result.Status = StatusUnknown
			}
			results <- result
		}(checker)
	}

	// Wait for all checks to complete
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	overallStatus := StatusHealthy
	for result := range results {
		report.Checks = append(report.Checks, result)
		switch result.Status {
		case StatusUnhealthy:
			overallStatus = StatusUnhealthy
		case StatusDegraded, StatusUnknown:
			if overallStatus != StatusUnhealthy {
				overallStatus = StatusDegraded
			}
		}
	}

	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	report.Status = overallStatus
	return report
}

// CheckWithTimeout runs all checks with a timeout
func (r *Registry) CheckWithTimeout(timeout time.Duration) *Report {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Check(ctx)
}

// Report represents the overall result
type Report struct {
	Tool      string        `json:"tool"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// String returns a string representation of the report
func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %s (%d checks)", r.Tool, r.Version, r.Status, len(r.Checks))
}

// Common checks

// selfTestSource exercises every statement form
const selfTestSource = `LABEL start
READ n
LET total = 0
WHILE n > 0
  IF n % 2 == 0
    total = total + n
  ELSE
    PRINT n * (n - 1)
  ENDIF
  n = n - 1
DONE
PRINT total
GOTO start
`

// ParserSelfTest parses a sample program, re-parses its printed form and
// requires both trees to be equal. It also requires a known-bad program to
// fail with a syntax error.
func ParserSelfTest(name string, engine *lang.Engine) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{Name: name, Status: StatusUnhealthy}

		first, err := engine.Parse(selfTestSource)
		if err != nil {
			result.Message = "sample program rejected: " + err.Error()
			return result
		}

		second, err := engine.Parse(first.Program.String())
		if err != nil {
			result.Message = "printed program rejected: " + err.Error()
			return result
		}
		if !mlast.Equal(first.Program, second.Program) {
			result.Message = "printed program parses to a different tree"
			return result
		}

		if _, err := engine.Parse("WHILE 1 > 0"); !mlerror.HasCode(err, mlerror.CodeSyntax) {
			result.Message = "unterminated WHILE was accepted"
			return result
		}

		result.Status = StatusHealthy
		result.Message = fmt.Sprintf("%d statements round-tripped", first.Stats.Statements)
		result.Details = map[string]interface{}{
			"max_depth":        engine.Options().MaxDepth,
			"max_input_length": engine.Options().MaxInputLength,
		}
		return result
	})
}

// WritableDir checks that files can be created in dir, creating it if
// needed. A failure is reported as degraded.
func WritableDir(name, dir string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Status:  StatusDegraded,
			Details: map[string]interface{}{"dir": dir},
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			result.Message = err.Error()
			return result
		}
		f, err := os.CreateTemp(dir, ".mlang-doctor-*")
		if err != nil {
			result.Message = err.Error()
			return result
		}
		f.Close()
		os.Remove(f.Name())

		result.Status = StatusHealthy
		result.Message = "writable"
		return result
	})
}

// FileExists reports healthy when path exists; a missing path is degraded
// unless optional is set.
func FileExists(name, path string, optional bool) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{Name: name, Details: map[string]interface{}{"path": path}}
		if path == "" {
			result.Status = StatusHealthy
			result.Message = "built-in defaults"
			return result
		}
		if _, err := os.Stat(filepath.Clean(path)); err != nil {
			result.Status = StatusDegraded
			if optional {
				result.Status = StatusHealthy
			}
			result.Message = err.Error()
			return result
		}
		result.Status = StatusHealthy
		result.Message = "found"
		return result
	})
}
