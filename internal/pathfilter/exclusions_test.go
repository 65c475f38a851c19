package pathfilter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusions_Files(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "monitor.log")

	e := NewExclusions()
	assert.True(t, e.ShouldScan(log))

	e.AddFile(log)
	e.AddFile("")

	assert.True(t, e.Excludes(log))
	assert.False(t, e.ShouldScan(log))
	assert.False(t, e.ShouldScan(filepath.Join(dir, ".", "monitor.log")))
	assert.True(t, e.ShouldScan(filepath.Join(dir, "notes.log")))
}

func TestExclusions_Dirs(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "database", "alerts")

	e := NewExclusions()
	e.AddDir(archive)

	assert.False(t, e.ShouldScan(filepath.Join(archive, "dump.json")))
	assert.False(t, e.ShouldScan(filepath.Join(archive, "nested", "dump.json")))
	assert.True(t, e.ShouldScan(filepath.Join(dir, "database", "alerts-export.json")))
}

func TestExclusions_Matchers(t *testing.T) {
	e := NewExclusions()
	e.AddMatcher(nil)
	e.AddMatcher(func(path string) bool {
		return strings.HasPrefix(filepath.Base(path), "dlp_log-")
	})

	assert.False(t, e.ShouldScan("/var/app/dlp_log-2026-10-19T15-29-12.997.log"))
	assert.True(t, e.ShouldScan("/var/app/report.log"))
}

func TestExclusions_NilAndZero(t *testing.T) {
	var nilSet *Exclusions
	assert.False(t, nilSet.Excludes("/data/notes.txt"))

	var zero Exclusions
	zero.AddFile("/data/notes.txt")
	assert.False(t, zero.ShouldScan("/data/notes.txt"))
	assert.True(t, zero.ShouldScan("/data/other.txt"))
}
