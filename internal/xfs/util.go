// Package xfs holds small filesystem helpers.
package xfs

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading "~" or "~/" with the user's home directory.
// Other paths, including "~user", are returned unchanged.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
