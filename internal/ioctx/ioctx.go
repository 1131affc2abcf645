// Package ioctx implements the cross-platform I/O context: probing whether
// a batch of files is being read or written by another process without
// taking a lasting lock, and copying files with filesystem-aware
// acceleration (reflink) where available. The copy path is built on
// go-git's billy.Filesystem abstraction; the platform lock-probe uses
// golang.org/x/sys.
package ioctx

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/snowfs/snowfs/internal/snowerr"
)

// Mode is the access mode being probed.
type Mode int

const (
	Read Mode = iota
	Write
)

const copyBufferSize = 2 * 1024 * 1024

// Mount describes one filesystem mountpoint discovered by Init.
type Mount struct {
	Path       string
	Filesystem string // "apfs", "refs", "ntfs", "ext4", ... or "" if unknown
}

// Context holds the mountpoint table built by Init and is the entry point
// for copy/probe operations.
type Context struct {
	mounts []Mount
}

// Init enumerates filesystem mountpoints and their filesystem tag. The
// platform-specific enumeration lives in ioctx_mounts_*.go; platforms with
// no enumeration support return a single synthetic root mount.
func Init() (*Context, error) {
	mounts, err := enumerateMounts()
	if err != nil {
		return nil, snowerr.Wrap(snowerr.InternalIo, "enumerating mountpoints", err)
	}
	return &Context{mounts: mounts}, nil
}

// mountFor returns the mountpoint covering path (longest-prefix match).
func (c *Context) mountFor(path string) *Mount {
	var best *Mount
	for i := range c.mounts {
		m := &c.mounts[i]
		if len(m.Path) > 0 && hasPathPrefix(path, m.Path) {
			if best == nil || len(m.Path) > len(best.Path) {
				best = m
			}
		}
	}
	return best
}

func hasPathPrefix(path, prefix string) bool {
	if len(path) < len(prefix) {
		return false
	}
	return path[:len(prefix)] == prefix
}

// CopyFile copies src to dst. When src and dst share a mount whose
// filesystem supports reflink (APFS, ReFS, Linux btrfs/xfs via FICLONE),
// a reflink clone is attempted first; any failure falls back to a
// streaming copy with a >= 2MB buffer, which is also the only path taken
// when Context is nil (no mount information available).
func (c *Context) CopyFile(src, dst string) error {
	if c != nil {
		srcMount := c.mountFor(src)
		dstMount := c.mountFor(dst)
		if srcMount != nil && dstMount != nil && srcMount.Path == dstMount.Path && reflinkCapable(srcMount.Filesystem) {
			if err := tryReflink(src, dst); err == nil {
				return nil
			}
			// fall through to streaming copy
		}
	}
	return streamCopy(src, dst)
}

func reflinkCapable(fsTag string) bool {
	switch fsTag {
	case "apfs", "refs", "btrfs", "xfs", "ext4":
		return true
	default:
		return false
	}
}

func streamCopy(src, dst string) error {
	return streamCopyFS(osfs.New("/"), src, dst)
}

// streamCopyFS copies src to dst through a billy.Filesystem rooted at "/",
// the same abstraction the rest of the engine uses for workdir and
// commondir access, rather than calling the os package directly.
func streamCopyFS(fs billy.Filesystem, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return snowerr.Wrap(snowerr.NotFound, fmt.Sprintf("opening %s", src), err)
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("creating %s", dst), err)
	}
	defer out.Close()

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("copying %s to %s", src, dst), err)
	}
	return nil
}

// PerformFileAccessCheck probes whether each of relPaths (joined to root)
// can be accessed in mode without taking a lasting lock. On any failure it
// returns a single *snowerr.AggregateFileAccessError with one inner error
// per offending path, each formatted as:
//
//	File '<relPath>' is being written by another process
func PerformFileAccessCheck(root string, relPaths []string, mode Mode) error {
	var failures []error
	for _, rel := range relPaths {
		abs := root + string(os.PathSeparator) + rel
		if err := probeAccess(abs, mode); err != nil {
			// Message format is stable and does not vary by mode.
			failures = append(failures, fmt.Errorf("File '%s' is being written by another process", rel))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &snowerr.AggregateFileAccessError{Errors: failures}
}
