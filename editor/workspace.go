package editor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
)

// DefaultScanLimit is the number of most recently modified workspaces scanned.
const DefaultScanLimit = 10

// WorkspaceEntry is one workspace-storage subdirectory of the editor.
type WorkspaceEntry struct {
	Path    string
	ModTime time.Time
}

// WorkspaceScanner looks for recently referenced feature files in the
// editor's persisted workspace state. The files are treated as opaque bytes;
// no schema is assumed, and any unreadable file or directory is skipped.
type WorkspaceScanner struct {
	// UserDir is the editor's per-user data directory, see Editor.UserDir.
	UserDir   string
	Extension string
	// Limit caps how many workspaces are scanned, most recent first.
	Limit int
	// StateDB enables reading *.vscdb files through SQLite before falling
	// back to their raw bytes.
	StateDB bool

	patterns Patterns
}

// NewWorkspaceScanner creates a scanner for the workspace storage under userDir.
func NewWorkspaceScanner(userDir, ext string) *WorkspaceScanner {
	return &WorkspaceScanner{
		UserDir:   userDir,
		Extension: ext,
		Limit:     DefaultScanLimit,
		StateDB:   true,
		patterns:  StatePatterns(ext),
	}
}

func (s *WorkspaceScanner) Name() string {
	return "workspace-storage"
}

// StorageDir returns <UserDir>/workspaceStorage.
func (s *WorkspaceScanner) StorageDir() string {
	return filepath.Join(s.UserDir, "workspaceStorage")
}

// Entries lists the workspace-storage subdirectories, most recently modified first.
func (s *WorkspaceScanner) Entries() []WorkspaceEntry {
	dir := s.StorageDir()
	items, err := os.ReadDir(dir)
	if err != nil {
		logger.Tracef("cannot read workspace storage %s: %v", dir, err)
		return nil
	}

	var entries []WorkspaceEntry
	for _, item := range items {
		path := filepath.Join(dir, item.Name())
		info, err := os.Stat(path)
		if err != nil {
			logger.Tracef("skipping %s: %v", path, err)
			continue
		}
		if !info.IsDir() {
			continue
		}
		entries = append(entries, WorkspaceEntry{Path: path, ModTime: info.ModTime()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries
}

// Locate returns the first existing feature file referenced in the most
// recently modified workspaces.
func (s *WorkspaceScanner) Locate(ctx context.Context) (string, bool) {
	entries := s.Entries()
	if s.Limit > 0 && len(entries) > s.Limit {
		entries = entries[:s.Limit]
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return "", false
		}
		logger.V(3).Infof("scanning workspace %s (modified %s)", entry.Path, entry.ModTime.Format(time.RFC3339))
		if path, ok := s.ScanEntry(ctx, entry); ok {
			return path, true
		}
	}
	return "", false
}

// ScanEntry walks every file below a workspace entry and returns the first
// existing candidate path.
func (s *WorkspaceScanner) ScanEntry(ctx context.Context, entry WorkspaceEntry) (string, bool) {
	var found string
	_ = filepath.WalkDir(entry.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Tracef("skipping %s: %v", path, err)
			return nil
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if !isRegularFile(path, d) {
			return nil
		}
		if candidate, ok := s.scanFile(ctx, path); ok {
			found = candidate
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

func (s *WorkspaceScanner) scanFile(ctx context.Context, path string) (string, bool) {
	if s.StateDB && strings.HasSuffix(path, StateDBSuffix) {
		values, err := readStateValues(ctx, path)
		if err != nil {
			logger.Tracef("falling back to raw scan: %v", err)
		}
		for _, value := range values {
			if candidate, ok := s.match(value); ok {
				return candidate, true
			}
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Tracef("skipping %s: %v", path, err)
		return "", false
	}
	return s.match(raw)
}

func (s *WorkspaceScanner) match(raw []byte) (string, bool) {
	if s.patterns == nil {
		s.patterns = StatePatterns(s.Extension)
	}
	for _, text := range decode(raw) {
		for _, candidate := range s.patterns.All(text) {
			if path := NormalizePath(candidate); Exists(path) {
				return path, true
			}
		}
	}
	return "", false
}

// isRegularFile follows symlinks so linked state files are still read, but
// skips devices, sockets and pipes that would block a read.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
