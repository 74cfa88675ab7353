package editor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/commons/logger"
)

// Locator is one stage of active-file detection.
type Locator interface {
	Name() string
	Locate(ctx context.Context) (string, bool)
}

// Detector tries each Locator in order and stops at the first hit.
type Detector struct {
	locators []Locator
}

// NewDetector creates a detector from an ordered list of locators.
func NewDetector(locators ...Locator) *Detector {
	return &Detector{locators: locators}
}

// Options configures the default detection chain.
type Options struct {
	Editor    Editor
	Extension string
	// UserDir overrides the per-OS editor data directory.
	UserDir        string
	ScanLimit      int
	StatusTimeout  time.Duration
	RequireRunning bool
	StateDB        bool
}

// NewDefaultDetector wires the status probe followed by the workspace scanner.
func NewDefaultDetector(opts Options) *Detector {
	probe := NewStatusProbe(opts.Editor, opts.Extension)
	probe.RequireRunning = opts.RequireRunning
	if opts.StatusTimeout > 0 {
		probe.Timeout = opts.StatusTimeout
	}

	userDir := opts.UserDir
	if userDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			userDir = opts.Editor.UserDir(goos, home)
		} else {
			logger.Debugf("cannot resolve home directory: %v", err)
		}
	}
	scanner := NewWorkspaceScanner(userDir, opts.Extension)
	scanner.StateDB = opts.StateDB
	if opts.ScanLimit > 0 {
		scanner.Limit = opts.ScanLimit
	}

	return NewDetector(probe, scanner)
}

// ActiveFile returns the path of the file active in the editor, if any
// stage can find one.
func (d *Detector) ActiveFile(ctx context.Context) (string, bool) {
	for _, l := range d.locators {
		if path, ok := l.Locate(ctx); ok {
			logger.Debugf("[%s] active file: %s", l.Name(), path)
			return path, true
		}
		logger.V(2).Infof("[%s] no active file", l.Name())
	}
	return "", false
}

// BaseDir returns the directory of the active file. When nothing is
// detected it returns the current working directory and false.
func (d *Detector) BaseDir(ctx context.Context) (string, bool) {
	if path, ok := d.ActiveFile(ctx); ok {
		return filepath.Dir(path), true
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ".", false
	}
	return cwd, false
}
