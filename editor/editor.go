package editor

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Editor describes a VS Code family editor: the CLI binary used to query it
// and the directory name it keeps its per-user state under.
type Editor struct {
	Name        string `json:"name"`
	Binary      string `json:"binary"`
	DataDirName string `json:"data_dir_name"`
}

var (
	VSCode         = Editor{Name: "code", Binary: "code", DataDirName: "Code"}
	VSCodeInsiders = Editor{Name: "code-insiders", Binary: "code-insiders", DataDirName: "Code - Insiders"}
	VSCodium       = Editor{Name: "codium", Binary: "codium", DataDirName: "VSCodium"}
	Cursor         = Editor{Name: "cursor", Binary: "cursor", DataDirName: "Cursor"}
)

var known = map[string]Editor{
	VSCode.Name:         VSCode,
	VSCodeInsiders.Name: VSCodeInsiders,
	VSCodium.Name:       VSCodium,
	Cursor.Name:         Cursor,
}

// Lookup returns the built-in editor registered under name (case-insensitive).
func Lookup(name string) (Editor, bool) {
	e, ok := known[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// Known returns the names of the built-in editors, sorted.
func Known() []string {
	names := lo.Keys(known)
	sort.Strings(names)
	return names
}

// UserDir returns the editor's per-user data directory for the given OS:
//
//	windows: <home>/AppData/Roaming/<Editor>/User
//	darwin:  <home>/Library/Application Support/<Editor>/User
//	other:   <home>/.config/<Editor>/User
func (e Editor) UserDir(goos, home string) string {
	switch goos {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", e.DataDirName, "User")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", e.DataDirName, "User")
	default:
		return filepath.Join(home, ".config", e.DataDirName, "User")
	}
}

func (e Editor) String() string {
	if e.Binary == e.Name || e.Binary == "" {
		return e.Name
	}
	return e.Name + " (" + e.Binary + ")"
}
