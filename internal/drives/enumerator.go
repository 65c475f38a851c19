// Package drives enumerates removable storage volumes.
package drives

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// Enumerator lists the roots of currently attached removable drives.
// Failures are transient; callers retry on their next poll.
type Enumerator interface {
	ListRemovableDrives() ([]string, error)
}

// DefaultMountRoots returns the directories under which removable media is
// mounted on this platform.
func DefaultMountRoots() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Volumes"}
	case "windows":
		return nil
	default:
		return []string{"/media", "/run/media", "/mnt"}
	}
}

// PartitionEnumerator finds removable drives among the mounted partitions
// reported by gopsutil.
type PartitionEnumerator struct {
	logger     zerolog.Logger
	mountRoots []string
	partitions func(all bool) ([]disk.PartitionStat, error)
	removable  func(p disk.PartitionStat, mountRoots []string) bool
}

// NewPartitionEnumerator creates an enumerator. Empty mountRoots falls back
// to DefaultMountRoots.
func NewPartitionEnumerator(mountRoots []string, logger zerolog.Logger) *PartitionEnumerator {
	if len(mountRoots) == 0 {
		mountRoots = DefaultMountRoots()
	}
	return &PartitionEnumerator{
		logger:     logger.With().Str("component", "DriveEnumerator").Logger(),
		mountRoots: mountRoots,
		partitions: disk.Partitions,
		removable:  isRemovable,
	}
}

// ListRemovableDrives returns the sorted, de-duplicated drive roots.
func (e *PartitionEnumerator) ListRemovableDrives() ([]string, error) {
	parts, err := e.partitions(false)
	if err != nil {
		return nil, common.WrapError(err, "failed to list disk partitions")
	}

	seen := make(map[string]struct{})
	var roots []string
	for _, p := range parts {
		if p.Mountpoint == "" || !e.removable(p, e.mountRoots) {
			continue
		}
		root := driveRoot(p.Mountpoint)
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}

	sort.Strings(roots)
	e.logger.Debug().Strs("drives", roots).Msg("Enumerated removable drives")
	return roots, nil
}

// underMountRoot reports whether mountpoint is strictly below one of roots.
func underMountRoot(mountpoint string, roots []string) bool {
	clean := filepath.Clean(mountpoint)
	for _, root := range roots {
		root = filepath.Clean(root)
		if clean != root && ContainsPath(root, clean) {
			return true
		}
	}
	return false
}

// ContainsPath reports whether path is root itself or lies beneath it.
// The comparison is case-insensitive because drive letters and removable
// media file systems usually are.
func ContainsPath(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	root = strings.TrimRight(root, `/\`)
	if root == "" {
		return true
	}
	if len(path) < len(root) || !strings.EqualFold(path[:len(root)], root) {
		return false
	}
	if len(path) == len(root) {
		return true
	}
	next := path[len(root)]
	return next == '/' || next == '\\'
}

// UnderAny reports whether path lies beneath any of roots.
func UnderAny(path string, roots []string) bool {
	for _, root := range roots {
		if ContainsPath(root, path) {
			return true
		}
	}
	return false
}
