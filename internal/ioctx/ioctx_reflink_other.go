//go:build !linux

package ioctx

import "errors"

// tryReflink has no portable implementation outside Linux's FICLONE in this
// module (APFS clonefile and ReFS FSCTL_DUPLICATE_EXTENTS_TO_FILE require
// cgo or platform-specific syscalls this module does not take on); callers
// always fall back to streamCopy.
func tryReflink(src, dst string) error {
	return errors.New("reflink not supported on this platform")
}
