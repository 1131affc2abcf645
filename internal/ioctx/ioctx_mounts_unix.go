//go:build !windows

package ioctx

import (
	"bufio"
	"os"
	"strings"
)

// enumerateMounts reads /proc/mounts on Linux-like systems; on platforms
// without it (e.g. macOS), it returns a single synthetic root mount with no
// filesystem tag, so CopyFile always falls back to streaming there.
func enumerateMounts() ([]Mount, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return []Mount{{Path: "/", Filesystem: ""}}, nil
	}
	defer f.Close()

	var mounts []Mount
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mounts = append(mounts, Mount{Path: fields[1], Filesystem: normalizeFsTag(fields[2])})
	}
	if len(mounts) == 0 {
		mounts = append(mounts, Mount{Path: "/", Filesystem: ""})
	}
	return mounts, nil
}

func normalizeFsTag(raw string) string {
	switch strings.ToLower(raw) {
	case "apfs":
		return "apfs"
	case "btrfs":
		return "btrfs"
	case "xfs":
		return "xfs"
	case "ext4":
		return "ext4"
	default:
		return strings.ToLower(raw)
	}
}
