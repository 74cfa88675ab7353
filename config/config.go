package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/ghodss/yaml"
	"github.com/samber/lo"
)

// FileName is looked up in the home directory, the git root and the working directory.
const FileName = ".feat.yaml"

const (
	EnvEditor        = "FEAT_EDITOR"
	EnvEditorBin     = "FEAT_EDITOR_BIN"
	EnvEditorDataDir = "FEAT_EDITOR_DATA_DIR"
	EnvRunner        = "FEAT_RUNNER"
)

type Config struct {
	// Editor is a known editor name: code, code-insiders, codium or cursor.
	Editor string `yaml:"editor" json:"editor"`
	// EditorBin overrides the CLI used for the status probe.
	EditorBin string `yaml:"editor_bin,omitempty" json:"editor_bin,omitempty"`
	// EditorDataDir overrides the editor's per-user data directory.
	EditorDataDir  string   `yaml:"editor_data_dir,omitempty" json:"editor_data_dir,omitempty"`
	Runner         string   `yaml:"runner" json:"runner"`
	RunnerArgs     []string `yaml:"runner_args,omitempty" json:"runner_args,omitempty"`
	Extension      string   `yaml:"extension" json:"extension"`
	ScanLimit      int      `yaml:"scan_limit" json:"scan_limit"`
	StatusTimeout  string   `yaml:"status_timeout" json:"status_timeout"`
	RequireRunning *bool    `yaml:"require_running,omitempty" json:"require_running,omitempty"`
	StateDB        *bool    `yaml:"state_db,omitempty" json:"state_db,omitempty"`
}

func Default() Config {
	return Config{
		Editor:         "code",
		Runner:         "behave",
		Extension:      ".feature",
		ScanLimit:      10,
		StatusTimeout:  "5s",
		RequireRunning: lo.ToPtr(false),
		StateDB:        lo.ToPtr(true),
	}
}

// Load merges the defaults with ~/.feat.yaml, <git root>/.feat.yaml and
// <cwd>/.feat.yaml, later files winning, then applies FEAT_* env overrides.
func Load(cwd string) Config {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err == nil {
		cfg = mergeFromFile(cfg, filepath.Join(home, FileName))
	}

	gitRoot := FindGitRoot(cwd)
	if gitRoot != "" && gitRoot != home {
		cfg = mergeFromFile(cfg, filepath.Join(gitRoot, FileName))
	}

	absCwd, _ := filepath.Abs(cwd)
	if absCwd != gitRoot && absCwd != home {
		cfg = mergeFromFile(cfg, filepath.Join(absCwd, FileName))
	}

	return FromEnv(cfg)
}

func mergeFromFile(base Config, path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return base
	}
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		logger.Debugf("ignoring invalid config %s: %v", path, err)
		return base
	}
	logger.V(3).Infof("loaded config from %s", path)
	return Merge(base, override)
}

// FromEnv applies the FEAT_* environment variables on top of cfg.
func FromEnv(cfg Config) Config {
	return Merge(cfg, Config{
		Editor:        strings.TrimSpace(os.Getenv(EnvEditor)),
		EditorBin:     strings.TrimSpace(os.Getenv(EnvEditorBin)),
		EditorDataDir: strings.TrimSpace(os.Getenv(EnvEditorDataDir)),
		Runner:        strings.TrimSpace(os.Getenv(EnvRunner)),
	})
}

// Merge overlays the non-zero fields of override onto base.
func Merge(base, override Config) Config {
	if override.Editor != "" {
		base.Editor = override.Editor
	}
	if override.EditorBin != "" {
		base.EditorBin = override.EditorBin
	}
	if override.EditorDataDir != "" {
		base.EditorDataDir = override.EditorDataDir
	}
	if override.Runner != "" {
		base.Runner = override.Runner
	}
	if len(override.RunnerArgs) > 0 {
		base.RunnerArgs = override.RunnerArgs
	}
	if override.Extension != "" {
		base.Extension = override.Extension
		if !strings.HasPrefix(base.Extension, ".") {
			base.Extension = "." + base.Extension
		}
	}
	if override.ScanLimit > 0 {
		base.ScanLimit = override.ScanLimit
	}
	if override.StatusTimeout != "" {
		base.StatusTimeout = override.StatusTimeout
	}
	if override.RequireRunning != nil {
		base.RequireRunning = override.RequireRunning
	}
	if override.StateDB != nil {
		base.StateDB = override.StateDB
	}
	return base
}

// Timeout parses StatusTimeout, falling back to 5s when it is empty or invalid.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.StatusTimeout)
	if err != nil || d <= 0 {
		if c.StatusTimeout != "" {
			logger.Debugf("invalid status_timeout %q, using 5s", c.StatusTimeout)
		}
		return 5 * time.Second
	}
	return d
}

func (c Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
