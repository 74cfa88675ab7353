package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/feat/config"
	"github.com/flanksource/feat/editor"
	"github.com/flanksource/feat/testrunner"
	"github.com/samber/lo"
)

func loadConfig() config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		logger.Debugf("cannot resolve working directory: %v", err)
		return config.FromEnv(config.Default())
	}
	cfg := config.Load(cwd)
	logger.V(4).Infof("config:\n%s", cfg)
	return cfg
}

// editorFor returns the built-in editor named by the config, or an editor
// whose binary and data directory are both the configured name.
func editorFor(cfg config.Config) editor.Editor {
	ed, ok := editor.Lookup(cfg.Editor)
	if !ok {
		logger.Warnf("unknown editor %q (known: %v), using it as both binary and data directory name", cfg.Editor, editor.Known())
		ed = editor.Editor{Name: cfg.Editor, Binary: cfg.Editor, DataDirName: cfg.Editor}
	}
	if cfg.EditorBin != "" {
		ed.Binary = cfg.EditorBin
	}
	return ed
}

func newDetector(cfg config.Config) *editor.Detector {
	return editor.NewDefaultDetector(editor.Options{
		Editor:         editorFor(cfg),
		Extension:      cfg.Extension,
		UserDir:        cfg.EditorDataDir,
		ScanLimit:      cfg.ScanLimit,
		StatusTimeout:  cfg.Timeout(),
		RequireRunning: lo.FromPtr(cfg.RequireRunning),
		StateDB:        lo.FromPtr(cfg.StateDB),
	})
}

// runnerFor resolves the configured runner, warning when it is not one of
// the registered runners.
func runnerFor(registry *testrunner.Registry, cfg config.Config) testrunner.Runner {
	if _, ok := registry.Get(cfg.Runner); !ok {
		logger.Warnf("unknown runner %q, invoking it directly (%s)", cfg.Runner, registry.Pretty().ANSI())
	}
	return registry.Resolve(cfg.Runner, cfg.RunnerArgs...)
}

type activeFileFinder interface {
	ActiveFile(ctx context.Context) (string, bool)
}

// resolveBaseDir picks the directory feature files are resolved against: the
// explicit directory, else the directory of the editor's active file, else
// the working directory.
func resolveBaseDir(ctx context.Context, dir string, finder activeFileFinder) string {
	if dir != "" {
		base := editor.NormalizePath(dir)
		logger.Infof("Using specified directory: %s", base)
		return base
	}

	if path, ok := finder.ActiveFile(ctx); ok {
		logger.Infof("Detected active file in VS Code: %s", path)
		return filepath.Dir(path)
	}

	logger.Infof("Could not detect VS Code active file")
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	logger.Infof("Using current directory: %s", cwd)
	return cwd
}
