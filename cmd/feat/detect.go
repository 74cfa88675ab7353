package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/feat/editor"
	"github.com/flanksource/feat/features"
)

type DetectOptions struct {
	Editor string `json:"editor" flag:"editor" help:"Editor to query: code, code-insiders, codium or cursor (default from config)"`
}

func (opts DetectOptions) GetName() string { return "detect" }

func (opts DetectOptions) Help() api.Text {
	return clicky.Text(`Show what feat detects without running anything.

Prints the working directory, whether the editor is running, the file
active in the editor and the feature files next to it.

EXAMPLES:
  feat detect
  feat detect --editor cursor
  feat detect --format json`)
}

type DetectReport struct {
	Cwd        string   `json:"cwd"`
	Editor     string   `json:"editor"`
	Running    bool     `json:"running"`
	ActiveFile string   `json:"active_file,omitempty"`
	BaseDir    string   `json:"base_dir"`
	Features   []string `json:"features"`
}

func (r DetectReport) Pretty() api.Text {
	t := clicky.Text("")
	t = t.Append("cwd: ", "text-muted").Append(r.Cwd).NewLine()
	t = t.Append("editor: ", "text-muted").Append(r.Editor)
	if r.Running {
		t = t.Append(" (running)", "text-green-600")
	} else {
		t = t.Append(" (not running)", "text-yellow-600")
	}
	t = t.NewLine()
	if r.ActiveFile != "" {
		t = t.Append("active file: ", "text-muted").Append(r.ActiveFile, "font-bold").NewLine()
	} else {
		t = t.Append("active file: ", "text-muted").Append("not detected", "text-yellow-600").NewLine()
	}
	t = t.Append("base dir: ", "text-muted").Append(r.BaseDir).NewLine()
	if len(r.Features) == 0 {
		return t.Append("features: ", "text-muted").Append("(none found)", "text-yellow-600")
	}
	return t.Append(fmt.Sprintf("features (%d): ", len(r.Features)), "text-muted").Append(clicky.CompactList(r.Features))
}

func init() {
	clicky.AddCommand(rootCmd, DetectOptions{}, runDetect)
}

func runDetect(opts DetectOptions) (any, error) {
	cfg := loadConfig()
	if opts.Editor != "" {
		cfg.Editor = opts.Editor
	}
	return detect(context.Background(), editorFor(cfg), newDetector(cfg), cfg.Extension)
}

func detect(ctx context.Context, ed editor.Editor, finder activeFileFinder, ext string) (DetectReport, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return DetectReport{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	report := DetectReport{
		Cwd:     cwd,
		Editor:  ed.Name,
		Running: editor.IsRunning(ctx, ed),
		BaseDir: cwd,
	}
	if path, ok := finder.ActiveFile(ctx); ok {
		report.ActiveFile = path
		report.BaseDir = filepath.Dir(path)
	}
	report.Features = features.Find(report.BaseDir, ext)
	return report, nil
}
