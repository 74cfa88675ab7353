package testrunner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/feat/features"
	"github.com/flanksource/feat/shutdown"
)

var (
	ErrPathNotFound       = errors.New("path not found")
	ErrRunnerNotInstalled = errors.New("runner not installed")
)

// MaxListedFeatures bounds the suggestions printed for a missing feature file.
const MaxListedFeatures = 10

// Invocation is a single run of a runner against one feature file.
type Invocation struct {
	BaseDir   string
	File      string
	ExtraArgs []string
}

// FeaturePath is the feature file joined to the base directory.
func (inv Invocation) FeaturePath() string {
	if filepath.IsAbs(inv.File) {
		return inv.File
	}
	return filepath.Join(inv.BaseDir, inv.File)
}

func (inv Invocation) Pretty() api.Text {
	t := clicky.Text(inv.File, "bold").Append(" in ", "text-muted").Append(inv.BaseDir)
	if len(inv.ExtraArgs) > 0 {
		t = t.Space().Append(strings.Join(inv.ExtraArgs, " "), "text-muted")
	}
	return t
}

// Executor starts runner processes.
type Executor interface {
	LookPath(name string) (string, error)
	// Run executes path with args in the current working directory, sharing
	// the terminal, and returns its exit code.
	Run(path string, args []string) (int, error)
}

type osExecutor struct{}

func (osExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (osExecutor) Run(path string, args []string) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 1, err
	}
	hook := shutdown.AddHookWithPriority("kill "+filepath.Base(path), shutdown.PriorityChild, func() {
		_ = cmd.Process.Kill()
	})
	defer shutdown.RemoveHook(hook)

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// terminated by a signal
			code = 1
		}
		return code, nil
	}
	if err != nil {
		return 1, err
	}
	return 0, nil
}

// Invoker runs a Runner against feature files. The process working
// directory is switched to the base directory for the duration of a run, so
// only one invocation runs at a time.
type Invoker struct {
	Runner    Runner
	Extension string
	exec      Executor
	mu        sync.Mutex
}

func NewInvoker(runner Runner, extension string) *Invoker {
	if extension == "" {
		extension = features.DefaultExtension
	}
	return &Invoker{Runner: runner, Extension: extension, exec: osExecutor{}}
}

// WithExecutor replaces how runner processes are looked up and started.
func (i *Invoker) WithExecutor(e Executor) *Invoker {
	i.exec = e
	return i
}

// Check verifies the base directory and the feature file exist. The target
// may be a directory of feature files, which runners accept as well.
func (i *Invoker) Check(inv Invocation) error {
	if info, err := os.Stat(inv.BaseDir); err != nil || !info.IsDir() {
		return fmt.Errorf("directory %s: %w", inv.BaseDir, ErrPathNotFound)
	}
	if _, err := os.Stat(inv.FeaturePath()); err != nil {
		return fmt.Errorf("feature file %s: %w", inv.FeaturePath(), ErrPathNotFound)
	}
	return nil
}

// Run switches to the base directory, runs the runner and restores the
// previous working directory. The returned code is the runner's exit code,
// or 1 when the runner could not be started.
func (i *Invoker) Run(inv Invocation) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	restore, err := Chdir(inv.BaseDir)
	if err != nil {
		return 1, err
	}
	defer restore()

	path, err := i.executor().LookPath(i.Runner.Name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return 1, fmt.Errorf("%s: %w", i.Runner.Name, ErrRunnerNotInstalled)
		}
		return 1, fmt.Errorf("failed to locate %s: %w", i.Runner.Name, err)
	}

	args := append(append(append([]string{}, i.Runner.Args...), inv.File), inv.ExtraArgs...)
	logger.V(2).Infof("running %s %s in %s", path, strings.Join(args, " "), inv.BaseDir)

	code, err := shutdown.WhileChildRuns(func() (int, error) {
		return i.executor().Run(path, args)
	})
	if err != nil {
		return 1, err
	}
	return code, nil
}

// Execute checks the invocation, runs it and reports failures to the user.
// It returns the process exit status.
func (i *Invoker) Execute(inv Invocation) int {
	if err := i.Check(inv); err != nil {
		i.report(inv, err)
		return 1
	}
	code, err := i.Run(inv)
	if err != nil {
		i.report(inv, err)
		return 1
	}
	return code
}

func (i *Invoker) report(inv Invocation, err error) {
	switch {
	case errors.Is(err, ErrPathNotFound):
		if info, statErr := os.Stat(inv.BaseDir); statErr != nil || !info.IsDir() {
			logger.Errorf("Directory does not exist: %s", inv.BaseDir)
			return
		}
		logger.Errorf("Feature file not found: %s", inv.FeaturePath())
		logger.Infof("%s", i.availableFeatures(inv.BaseDir))
	case errors.Is(err, ErrRunnerNotInstalled):
		logger.Errorf("'%s' command not found. Please install %s:", i.Runner.Name, i.Runner.Name)
		logger.Infof("  %s", i.Runner.Hint())
	default:
		logger.Errorf("Error running %s: %v", i.Runner.Name, err)
	}
}

func (i *Invoker) availableFeatures(dir string) string {
	files := features.Find(dir, i.Extension)
	var sb strings.Builder
	sb.WriteString("Available feature files in " + dir + ":")
	if len(files) == 0 {
		sb.WriteString("\n  (none found)")
		return sb.String()
	}
	for _, f := range files[:min(len(files), MaxListedFeatures)] {
		sb.WriteString("\n  " + f)
	}
	if len(files) > MaxListedFeatures {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(files)-MaxListedFeatures))
	}
	return sb.String()
}

func (i *Invoker) executor() Executor {
	if i.exec == nil {
		return osExecutor{}
	}
	return i.exec
}
