//go:build windows

package ioctx

import "golang.org/x/sys/windows"

// enumerateMounts walks the drive letters and tags each with its Windows
// filesystem name (NTFS, ReFS, ...) via GetVolumeInformation.
func enumerateMounts() ([]Mount, error) {
	var mounts []Mount
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return []Mount{{Path: `C:\`, Filesystem: ""}}, nil
	}
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		fsTag := volumeFilesystem(root)
		mounts = append(mounts, Mount{Path: root, Filesystem: fsTag})
	}
	if len(mounts) == 0 {
		mounts = append(mounts, Mount{Path: `C:\`, Filesystem: ""})
	}
	return mounts, nil
}

func volumeFilesystem(root string) string {
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return ""
	}
	fsNameBuf := make([]uint16, 261)
	err = windows.GetVolumeInformation(
		rootPtr, nil, 0, nil, nil, nil,
		&fsNameBuf[0], uint32(len(fsNameBuf)),
	)
	if err != nil {
		return ""
	}
	name := windows.UTF16ToString(fsNameBuf)
	switch name {
	case "ReFS":
		return "refs"
	case "NTFS":
		return "ntfs"
	default:
		return name
	}
}
