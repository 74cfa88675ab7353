package editor

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

const fileScheme = "file://"

// goos is a variable so the Windows-only rewrites can be exercised on any host.
var goos = runtime.GOOS

var driveSlash = regexp.MustCompile(`^/[A-Za-z]:([/\\]|$)`)

// NormalizePath turns a candidate extracted from editor output into an
// absolute filesystem path. file:// URIs are unwrapped and percent-decoded,
// a leading ~ is expanded, and on Windows the /C:/ form and forward slashes
// are rewritten. It does not check that the path exists.
func NormalizePath(candidate string) string {
	p := strings.TrimSpace(candidate)
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, fileScheme) {
		p = fromURI(p)
	}
	p = ExpandHome(p)
	if goos == "windows" {
		p = trimDriveSlash(p)
		p = filepath.FromSlash(p)
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return filepath.Clean(p)
}

func fromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		rest := strings.TrimPrefix(uri, fileScheme)
		if unescaped, err := url.PathUnescape(rest); err == nil {
			return unescaped
		}
		return rest
	}
	// file://server/share/x.feature is a UNC path, only meaningful on Windows
	if goos == "windows" && u.Host != "" && u.Host != "localhost" {
		return "//" + u.Host + u.Path
	}
	return u.Path
}

func trimDriveSlash(p string) string {
	if driveSlash.MatchString(p) {
		return p[1:]
	}
	return p
}

// ExpandHome replaces a leading ~ with the current user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}

// Exists reports whether path can be stat'ed.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
