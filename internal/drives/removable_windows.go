//go:build windows

package drives

import (
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/windows"
)

func isRemovable(p disk.PartitionStat, mountRoots []string) bool {
	if len(mountRoots) > 0 && underMountRoot(p.Mountpoint, mountRoots) {
		return true
	}
	root, err := windows.UTF16PtrFromString(driveRoot(p.Mountpoint))
	if err != nil {
		return false
	}
	return windows.GetDriveType(root) == windows.DRIVE_REMOVABLE
}

// driveRoot turns "E:" into "E:\".
func driveRoot(mountpoint string) string {
	if strings.HasSuffix(mountpoint, `\`) {
		return mountpoint
	}
	return mountpoint + `\`
}
