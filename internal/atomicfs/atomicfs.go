// Package atomicfs implements the write-to-temp-then-rename durability
// primitive that every durable write in the engine funnels through:
// objects, commits, references, and the HEAD file. It routes writes through
// a billy.Filesystem instead of the os package directly so the same code
// works against the real workdir filesystem or an in-memory one in tests,
// the same abstraction go-git uses for its worktree and storage layers.
package atomicfs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/snowfs/snowfs/internal/snowerr"
)

// WriteSafe writes data to path by first writing to a sibling temp file
// named "<path>.<6-hex-nonce>.tmp" and renaming it over path. On any
// failure the temp file is best-effort unlinked and the original error is
// returned.
func WriteSafe(fs billy.Filesystem, path string, data []byte) error {
	tmp, err := tempName(fs, path)
	if err != nil {
		return err
	}
	if err := writeTemp(fs, tmp, data); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("renaming %s into place", path), err)
	}
	return nil
}

// WriteSafeStream is the streaming counterpart of WriteSafe, used for large
// object bodies where buffering the whole file in memory is undesirable.
func WriteSafeStream(fs billy.Filesystem, path string, src io.Reader) error {
	tmp, err := tempName(fs, path)
	if err != nil {
		return err
	}
	f, err := fs.Create(tmp)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("creating temp file for %s", path), err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		_ = fs.Remove(tmp)
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("writing temp file for %s", path), err)
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("closing temp file for %s", path), err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("renaming %s into place", path), err)
	}
	return nil
}

func writeTemp(fs billy.Filesystem, tmp string, data []byte) error {
	f, err := fs.Create(tmp)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("creating temp file %s", tmp), err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("writing temp file %s", tmp), err)
	}
	return nil
}

func tempName(fs billy.Filesystem, path string) (string, error) {
	var nonce [3]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", snowerr.Wrap(snowerr.InternalIo, "generating temp-file nonce", err)
	}
	return fmt.Sprintf("%s.%s.tmp", path, hex.EncodeToString(nonce[:])), nil
}

// IsTempOrStale reports whether basename looks like a leftover temp file or
// a stale dotfile: basenames starting with "." or ending with ".tmp" are
// ignored when loading refs/ and versions/.
func IsTempOrStale(basename string) bool {
	if basename == "" {
		return true
	}
	if basename[0] == '.' {
		return true
	}
	const suffix = ".tmp"
	return len(basename) >= len(suffix) && basename[len(basename)-len(suffix):] == suffix
}

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(fs billy.Filesystem, dir string) error {
	if err := fs.MkdirAll(dir, os.FileMode(0o755)); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("creating directory %s", dir), err)
	}
	return nil
}

// RemoveQuiet deletes path, ignoring any error; used for best-effort
// cleanup.
func RemoveQuiet(fs billy.Filesystem, path string) {
	_ = fs.Remove(path)
}

// WriteFile is a thin util.WriteFile re-export kept for call sites that do
// not need atomicity (e.g. creating the empty logs/mainlog file at init).
func WriteFile(fs billy.Filesystem, path string, data []byte, mode os.FileMode) error {
	if err := util.WriteFile(fs, path, data, mode); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, fmt.Sprintf("writing %s", path), err)
	}
	return nil
}
