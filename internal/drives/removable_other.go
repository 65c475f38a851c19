//go:build !windows

package drives

import "github.com/shirou/gopsutil/v3/disk"

func isRemovable(p disk.PartitionStat, mountRoots []string) bool {
	return underMountRoot(p.Mountpoint, mountRoots)
}

func driveRoot(mountpoint string) string {
	return mountpoint
}
