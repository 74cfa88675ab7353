package features

import (
	"context"
	"os"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
)

// BaseDirResolver finds the directory feature files are looked up in.
// editor.Detector implements it.
type BaseDirResolver interface {
	BaseDir(ctx context.Context) (string, bool)
}

// Completer provides shell completions for feature-file names.
type Completer struct {
	Resolver BaseDirResolver
	// Directory, when set, is used instead of asking the Resolver.
	Directory string
	Extension string
}

// Complete returns the feature files in the base directory that start with
// prefix. It never fails: any problem yields an empty list.
func (c Completer) Complete(ctx context.Context, prefix string) (matches []string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("completion failed: %v", r)
			matches = []string{}
		}
	}()

	files := Find(c.baseDir(ctx), c.Extension)
	return lo.Filter(files, func(f string, _ int) bool {
		return strings.HasPrefix(f, prefix)
	})
}

func (c Completer) baseDir(ctx context.Context) string {
	if c.Directory != "" {
		return c.Directory
	}
	if c.Resolver != nil {
		dir, _ := c.Resolver.BaseDir(ctx)
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
