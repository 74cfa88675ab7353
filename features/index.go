package features

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/commons/logger"
)

// DefaultExtension identifies feature files.
const DefaultExtension = ".feature"

// Find returns the files ending in ext below dir, as slash-separated paths
// relative to dir, sorted. A missing dir or a dir that is not a directory
// yields an empty list.
func Find(dir, ext string) []string {
	if ext == "" {
		ext = DefaultExtension
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return []string{}
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*"+ext, doublestar.WithFilesOnly())
	if err != nil {
		logger.Debugf("failed to search %s for %s files: %v", dir, ext, err)
		return []string{}
	}
	sort.Strings(matches)
	return matches
}
