package editor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/shirou/gopsutil/v3/process"
)

// IsRunning reports whether any process looks like the given editor.
// Errors listing processes are treated as "not running".
func IsRunning(ctx context.Context, e Editor) bool {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		logger.Debugf("failed to list processes: %v", err)
		return false
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if matchesProcess(e, name) {
			return true
		}
	}
	return false
}

// matchesProcess accepts the CLI binary name (code, code.exe) and the
// application name with helper suffixes (Code, Code Helper (Renderer)).
func matchesProcess(e Editor, name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	if name == "" {
		return false
	}
	if e.Binary != "" && name == strings.TrimSuffix(strings.ToLower(filepath.Base(e.Binary)), ".exe") {
		return true
	}
	app := strings.ToLower(e.DataDirName)
	return app != "" && (name == app || strings.HasPrefix(name, app+" helper"))
}
