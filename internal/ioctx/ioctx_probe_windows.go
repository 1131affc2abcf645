//go:build windows

package ioctx

import (
	"golang.org/x/sys/windows"
)

// probeAccess opens path and attempts a non-blocking LockFileEx over its
// first byte in the requested mode, releasing it immediately. Failure to
// acquire means another process holds an incompatible handle.
func probeAccess(path string, mode Mode) error {
	access := uint32(windows.GENERIC_READ)
	shareMode := uint32(windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE)
	flags := uint32(0)
	if mode == Write {
		access = windows.GENERIC_READ | windows.GENERIC_WRITE
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	flags |= windows.LOCKFILE_FAIL_IMMEDIATELY

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	handle, err := windows.CreateFile(pathPtr, access, shareMode, nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(handle)

	overlapped := new(windows.Overlapped)
	if err := windows.LockFileEx(handle, flags, 0, 1, 0, overlapped); err != nil {
		return err
	}
	_ = windows.UnlockFileEx(handle, 0, 1, 0, overlapped)
	return nil
}
