// Package pathfilter decides which files are eligible for content scanning.
package pathfilter

import (
	"path/filepath"
	"strings"
)

// ignoredFiles are base names never scanned: the alert log, dependency
// manifests, documentation and the program's own sources and artifacts.
var ignoredFiles = map[string]struct{}{
	"dlp_log.log":            {},
	"requirements.txt":       {},
	"task.md":                {},
	"implementation_plan.md": {},
	"walkthrough.md":         {},
	"verify_setup.py":        {},
	"monitor.py":             {},
	"detector.py":            {},
	"logger.py":              {},
	"main.py":                {},
	"zeroleaks.log":          {},
	"go.mod":                 {},
	"go.sum":                 {},
	"config.yaml":            {},
	"alerts.db":              {},
}

// ignoredDirs are path segments that exclude everything beneath them.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	".vscode":      {},
	".idea":        {},
	"__pycache__":  {},
	".venv":        {},
	"env":          {},
	"src":          {},
	".gemini":      {},
	"docs":         {},
	"node_modules": {},
	"vendor":       {},
	".cache":       {},
}

// allowedExtensions is the text-like allow-list.
var allowedExtensions = map[string]struct{}{
	".txt":  {},
	".csv":  {},
	".log":  {},
	".md":   {},
	".json": {},
	".xml":  {},
}

// ShouldScan reports whether the file at path should have its content
// scanned. Rules apply in order: ignored base name, ignored directory
// segment, extension allow-list.
func ShouldScan(path string) bool {
	if path == "" || isSeparator(rune(path[len(path)-1])) {
		return false
	}

	segments := splitSegments(path)
	if len(segments) == 0 {
		return false
	}

	base := segments[len(segments)-1]
	if _, ignored := ignoredFiles[base]; ignored {
		return false
	}

	for _, segment := range segments {
		if _, ignored := ignoredDirs[segment]; ignored {
			return false
		}
	}

	_, allowed := allowedExtensions[extension(base)]
	return allowed
}

// IsIgnoredDir reports whether a directory with this base name is excluded.
// Watchers use it to avoid registering directories whose files would all be
// rejected anyway.
func IsIgnoredDir(name string) bool {
	_, ignored := ignoredDirs[name]
	return ignored
}

// splitSegments splits on both '/' and the OS separator and drops empty
// segments.
func splitSegments(path string) []string {
	return strings.FieldsFunc(path, isSeparator)
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}

// extension is case-sensitive, like the allow-list.
func extension(base string) string {
	idx := strings.LastIndexByte(base, '.')
	if idx < 0 {
		return ""
	}
	return base[idx:]
}
