package pathfilter

import (
	"path/filepath"
	"strings"
	"sync"
)

// Exclusions rejects files the running process writes itself: its log
// file and rotated backups, the alert journal, the alert archive. Paths are
// compared in absolute, cleaned form. The zero value excludes nothing.
type Exclusions struct {
	mu       sync.RWMutex
	files    map[string]struct{}
	dirs     []string
	matchers []func(path string) bool
}

// NewExclusions creates an empty exclusion set.
func NewExclusions() *Exclusions {
	return &Exclusions{files: make(map[string]struct{})}
}

// AddFile excludes a single file.
func (e *Exclusions) AddFile(path string) {
	if path == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.files == nil {
		e.files = make(map[string]struct{})
	}
	e.files[absClean(path)] = struct{}{}
}

// AddDir excludes every file below dir.
func (e *Exclusions) AddDir(dir string) {
	if dir == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirs = append(e.dirs, absClean(dir))
}

// AddMatcher excludes every absolute path for which match returns true.
func (e *Exclusions) AddMatcher(match func(path string) bool) {
	if match == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.matchers = append(e.matchers, match)
}

// Excludes reports whether path is one of the excluded files.
func (e *Exclusions) Excludes(path string) bool {
	if e == nil || path == "" {
		return false
	}
	p := absClean(path)

	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.files[p]; ok {
		return true
	}
	for _, dir := range e.dirs {
		if p != dir && strings.HasPrefix(p, dir+string(filepath.Separator)) {
			return true
		}
	}
	for _, match := range e.matchers {
		if match(p) {
			return true
		}
	}
	return false
}

// ShouldScan combines the package rules with the exclusions.
func (e *Exclusions) ShouldScan(path string) bool {
	return ShouldScan(path) && !e.Excludes(path)
}

func absClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
