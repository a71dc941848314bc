package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScriptExt is the extension ExpandGlobs looks for inside directories.
const ScriptExt = ".mtr"

// ExpandGlobs turns script arguments into a sorted list of unique, cleaned
// paths. Each argument may be a file, a glob pattern or a directory; a
// directory contributes its own *.mtr files, not those of subdirectories.
// An argument that matches nothing is kept as given so that opening it
// reports the real error.
func ExpandGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		expanded, err := expandScripts(pattern)
		if err != nil {
			return nil, err
		}
		paths = append(paths, expanded...)
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func expandScripts(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return []string{filepath.Clean(pattern)}, nil
	}

	var paths []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.IsDir() {
			paths = append(paths, filepath.Clean(match))
			continue
		}
		scripts, err := scriptsIn(match)
		if err != nil {
			return nil, err
		}
		paths = append(paths, scripts...)
	}
	return paths, nil
}

// scriptsIn lists the script files directly inside dir.
func scriptsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading script directory: %w", err)
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ScriptExt) {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	return scripts, nil
}
