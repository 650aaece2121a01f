package config

import (
	"os"
	"path/filepath"
)

// ResolvePath makes a configured path absolute. Relative paths are looked up
// in the working directory first and then next to the executable, so the
// binary works both from the repository root and from a dist folder. When
// neither location has the file the working-directory form is returned and
// the loader reports it as missing.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	if abs, err := filepath.Abs(path); err == nil && FileExists(abs) {
		return abs
	}

	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidate := filepath.Join(filepath.Dir(exe), path)
		if FileExists(candidate) {
			return candidate
		}
	}

	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
