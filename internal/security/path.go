// Package security confines tool-server file access to configured roots.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator checks that workbook paths stay inside a set of allowed
// directories. The first root is the base for relative paths.
type PathValidator struct {
	roots []string
}

// NewPathValidator creates a validator for the given roots. Empty entries are
// ignored, but at least one root is required.
func NewPathValidator(roots ...string) (*PathValidator, error) {
	v := &PathValidator{}
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve directory %s: %w", root, err)
		}
		v.roots = append(v.roots, filepath.Clean(abs))
	}
	if len(v.roots) == 0 {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return v, nil
}

// Roots returns the allowed directories.
func (v *PathValidator) Roots() []string {
	out := make([]string, len(v.roots))
	copy(out, v.roots)
	return out
}

// BaseDirectory is the directory relative paths are resolved against.
func (v *PathValidator) BaseDirectory() string {
	return v.roots[0]
}

// Resolve returns the absolute, cleaned form of path after null bytes are
// stripped and relative paths are joined to the base directory. It fails
// when the result escapes every root.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.BaseDirectory(), path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !v.Within(absPath) {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}
	return absPath, nil
}

// ResolveFile is Resolve for a path that must name an existing regular file
// no larger than maxSize bytes. maxSize <= 0 disables the size check.
func (v *PathValidator) ResolveFile(path string, maxSize int64) (string, os.FileInfo, error) {
	absPath, err := v.Resolve(path)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file does not exist: %s", path)
		}
		return "", nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), maxSize)
	}
	return absPath, info, nil
}

// ResolveDirectory is Resolve for a path that, when it exists, must be a
// directory.
func (v *PathValidator) ResolveDirectory(path string) (string, error) {
	absPath, err := v.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	switch {
	case os.IsNotExist(err):
		return absPath, nil
	case err != nil:
		return "", fmt.Errorf("cannot access directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path is not a directory: %s", path)
	}
	return absPath, nil
}

// Within reports whether the absolute path lies inside any root, comparing
// both the literal path and its symlink-resolved form.
func (v *PathValidator) Within(absPath string) bool {
	cleanPath := filepath.Clean(absPath)
	realPath := cleanPath
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		realPath = resolved
	}

	for _, root := range v.roots {
		realRoot := root
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			realRoot = resolved
		}
		pathOk := under(cleanPath, root) || under(cleanPath, realRoot)
		realOk := under(realPath, root) || under(realPath, realRoot)
		if pathOk && realOk {
			return true
		}
	}
	return false
}

func under(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
