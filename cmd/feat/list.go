package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/feat/features"
)

type ListOptions struct {
	Dirs   []string `json:"-" args:"true"`
	Prefix string   `json:"prefix" flag:"prefix" help:"Only list feature files starting with this prefix"`
}

func (opts ListOptions) GetName() string { return "list" }

func (opts ListOptions) Help() api.Text {
	return clicky.Text(`List the feature files under a directory.

Without a directory the editor's active file decides, as for running.

EXAMPLES:
  feat list
  feat list ./features
  feat list --prefix auth/`)
}

type FeatureList struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

func (l FeatureList) Pretty() api.Text {
	t := clicky.Text(l.Dir, "font-bold").Append(fmt.Sprintf(" (%d)", len(l.Files)), "text-muted")
	if len(l.Files) == 0 {
		return t.NewLine().Append("  (none found)", "text-yellow-600")
	}
	return t.NewLine().Append("  " + strings.Join(l.Files, "\n  "))
}

func init() {
	clicky.AddCommand(rootCmd, ListOptions{}, runList)
}

func runList(opts ListOptions) (any, error) {
	if len(opts.Dirs) > 1 {
		return nil, fmt.Errorf("expected at most one directory, got %d", len(opts.Dirs))
	}
	cfg := loadConfig()
	dir := ""
	if len(opts.Dirs) == 1 {
		dir = opts.Dirs[0]
	}
	base := resolveBaseDir(context.Background(), dir, newDetector(cfg))
	completer := features.Completer{Directory: base, Extension: cfg.Extension}
	return FeatureList{Dir: base, Files: completer.Complete(context.Background(), opts.Prefix)}, nil
}
