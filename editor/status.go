package editor

import (
	"context"
	"strings"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
)

// DefaultStatusTimeout bounds the `<editor> --status` call.
const DefaultStatusTimeout = 5 * time.Second

// CommandFunc runs a short-lived command and returns what it wrote to stdout.
type CommandFunc func(binary string, args []string, timeout time.Duration) (string, error)

// RunningFunc reports whether the editor currently has a live process.
type RunningFunc func(ctx context.Context, e Editor) bool

// StatusProbe asks a running editor for its status and picks the first
// feature-file path out of the unstructured output.
type StatusProbe struct {
	Editor    Editor
	Extension string
	Timeout   time.Duration
	// RequireRunning skips the CLI call when no editor process is found,
	// since `code --status` can open a new window when none is running.
	RequireRunning bool

	run      CommandFunc
	running  RunningFunc
	patterns Patterns
}

// NewStatusProbe creates a probe for the given editor.
func NewStatusProbe(e Editor, ext string) *StatusProbe {
	return &StatusProbe{
		Editor:    e,
		Extension: ext,
		Timeout:   DefaultStatusTimeout,
		run:       runCommand,
		running:   IsRunning,
		patterns:  StatusPatterns(ext),
	}
}

// WithCommand replaces the function used to invoke the editor CLI.
func (p *StatusProbe) WithCommand(fn CommandFunc) *StatusProbe {
	p.run = fn
	return p
}

// WithRunning replaces the editor process check.
func (p *StatusProbe) WithRunning(fn RunningFunc) *StatusProbe {
	p.running = fn
	return p
}

func (p *StatusProbe) Name() string {
	return p.Editor.Binary + " --status"
}

// Locate runs the status command. Timeouts, a missing binary and any other
// invocation error all mean "no signal".
func (p *StatusProbe) Locate(ctx context.Context) (string, bool) {
	if p.RequireRunning && !p.running(ctx, p.Editor) {
		logger.Debugf("%s is not running, skipping status probe", p.Editor.Binary)
		return "", false
	}

	out, err := p.run(p.Editor.Binary, []string{"--status"}, p.Timeout)
	if err != nil {
		logger.Debugf("%s failed: %v", p.Name(), err)
		return "", false
	}
	return p.Parse(out)
}

// Parse extracts the first existing feature-file path from status output.
func (p *StatusProbe) Parse(out string) (string, bool) {
	if strings.TrimSpace(out) == "" {
		return "", false
	}
	return p.patterns.FirstExisting(out)
}

func runCommand(binary string, args []string, timeout time.Duration) (string, error) {
	result := clicky.Exec(binary, args...).
		WithTimeout(timeout).
		Run().
		Result()
	if result.Error != nil {
		return "", result.Error
	}
	return result.Stdout, nil
}
