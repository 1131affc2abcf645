//go:build !windows

package ioctx

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// probeAccess opens path and attempts a non-blocking flock in the
// requested mode, releasing it immediately. A failure to acquire the lock
// (EWOULDBLOCK/EAGAIN) means some other process holds an incompatible
// lock; any other open error is also reported so the caller can fold it
// into the aggregate.
func probeAccess(path string, mode Mode) error {
	flag := os.O_RDONLY
	lockType := unix.LOCK_SH
	if mode == Write {
		flag = os.O_RDWR
		lockType = unix.LOCK_EX
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), lockType|unix.LOCK_NB); err != nil {
		return fmt.Errorf("contended: %w", err)
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return nil
}
