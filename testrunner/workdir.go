package testrunner

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
)

// Chdir switches the process working directory to dir and returns a func
// restoring the previous one. The restore func is safe to call more than once.
func Chdir(dir string) (restore func(), err error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("failed to change directory to %s: %w", dir, err)
	}
	logger.Tracef("chdir %s -> %s", prev, dir)

	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		if err := os.Chdir(prev); err != nil {
			logger.Warnf("failed to restore working directory %s: %v", prev, err)
		}
	}, nil
}
