package config

import (
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/go-git/go-git/v5"
)

// FindGitRoot returns the worktree root of the repository containing path,
// or "" when path is not inside a non-bare repository.
func FindGitRoot(path string) string {
	dir, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		logger.Tracef("no git repository at %s: %v", dir, err)
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}
