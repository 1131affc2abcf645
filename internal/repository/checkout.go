package repository

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
	"github.com/snowfs/snowfs/internal/tree"
)

// ResetFlags control Checkout's handling of local workdir divergence; flags
// may be ORed together.
type ResetFlags uint8

const (
	ResetDefault ResetFlags = 0
	Detach       ResetFlags = 1 << iota
	RestoreDeletedFiles
	DiscardChanges
	DeleteNewFiles
)

func (f ResetFlags) has(bit ResetFlags) bool { return f&bit != 0 }

// Checkout switches the workdir snapshot to target (a reference name or
// commit hash): it snapshots local divergence, refuses to clobber it unless
// overridden, then removes/restores files to match the target tree and
// updates HEAD.
func (r *Repository) Checkout(target string, reset ResetFlags) error {
	if err := r.acquireState(); err != nil {
		return err
	}
	defer r.releaseState()

	targetCommit, err := r.FindCommitByHash(target)
	if err != nil {
		return err
	}
	currentHash, err := r.HeadCommitHash()
	if err != nil {
		return err
	}
	currentCommit, ok := r.commits[currentHash]
	if !ok {
		return snowerr.New(snowerr.Corruption, "HEAD commit missing from commit graph")
	}

	// Step 1: snapshot workdir status vs. current HEAD.
	snapshot, err := r.GetStatus(FilterAll)
	if err != nil {
		return err
	}

	var modifiedFiles, untrackedFiles, deletedFiles []Entry
	for _, e := range snapshot {
		switch e.Status {
		case WTModified:
			modifiedFiles = append(modifiedFiles, e)
		case WTNew:
			untrackedFiles = append(untrackedFiles, e)
		case WTDeleted:
			deletedFiles = append(deletedFiles, e)
		}
	}

	// Step 2: refuse on local divergence unless overridden.
	if len(modifiedFiles) > 0 && !reset.has(DiscardChanges) {
		return snowerr.New(snowerr.WouldOverwriteWorkingCopy, "checkout would overwrite local modifications; use --discard")
	}

	plan := Diff(targetCommit.Root, currentCommit.Root, true)

	untrackedSet := make(map[string]bool, len(untrackedFiles))
	for _, e := range untrackedFiles {
		untrackedSet[e.Path] = true
	}
	if !reset.has(DiscardChanges) {
		for _, e := range plan.Added {
			if !e.IsDir && untrackedSet[e.Path] {
				return snowerr.New(snowerr.WouldOverwriteWorkingCopy, "checkout would overwrite untracked file '"+e.Path+"'")
			}
		}
	}

	// Step 4: remove deleted files, then deleted directories deepest-first
	// so a child directory is always gone before its parent's os.Remove
	// (which fails on a non-empty directory) runs.
	for _, e := range plan.Deleted {
		if e.IsDir {
			continue
		}
		_ = os.Remove(filepath.Join(r.Workdir, filepath.FromSlash(e.Path)))
	}
	deletedDirs := make([]DiffEntry, 0, len(plan.Deleted))
	for _, e := range plan.Deleted {
		if e.IsDir {
			deletedDirs = append(deletedDirs, e)
		}
	}
	sort.Slice(deletedDirs, func(i, j int) bool {
		return strings.Count(deletedDirs[i].Path, "/") > strings.Count(deletedDirs[j].Path, "/")
	})
	for _, e := range deletedDirs {
		abs := filepath.Join(r.Workdir, filepath.FromSlash(e.Path))
		_ = os.Remove(abs) // no-op unless already empty
	}

	// Step 5: copy added/modified file bodies into place, then set mtime.
	targetPaths := tree.PathSet(targetCommit.Root)
	for _, e := range append(append([]DiffEntry{}, plan.Added...), plan.Modified...) {
		if e.IsDir {
			continue
		}
		node := targetPaths[e.Path]
		if node == nil {
			continue
		}
		if err := r.restoreFile(node); err != nil {
			return err
		}
	}

	// Step 6: restore files the user deleted locally that the target
	// still carries unchanged (Diff would otherwise call them non-modified
	// and skip them in step 5).
	if reset.has(RestoreDeletedFiles) {
		for _, d := range deletedFiles {
			if d.IsDir {
				continue
			}
			if node := targetPaths[d.Path]; node != nil {
				if err := r.restoreFile(node); err != nil {
					return err
				}
			}
		}
	}

	// Step 7: delete untracked files.
	if reset.has(DeleteNewFiles) {
		for _, e := range untrackedFiles {
			if e.IsDir {
				continue
			}
			_ = os.Remove(filepath.Join(r.Workdir, filepath.FromSlash(e.Path)))
		}
	}

	// Step 8: update HEAD.
	if branchName, isBranch := r.resolveBranchTarget(target); isBranch && !reset.has(Detach) {
		if err := r.attachHead(branchName); err != nil {
			return err
		}
	} else {
		if err := r.detachHead(targetCommit.Hash); err != nil {
			return err
		}
	}

	return nil
}

// resolveBranchTarget reports whether target names a branch reference
// directly (not via HEAD or a commit hash).
func (r *Repository) resolveBranchTarget(target string) (string, bool) {
	ref, ok := r.refs[target]
	if !ok || ref.Type != objects.Branch {
		return "", false
	}
	return ref.Name, true
}

func (r *Repository) restoreFile(node *tree.Node) error {
	dst := filepath.Join(r.Workdir, filepath.FromSlash(node.Path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "creating parent directory for "+node.Path, err)
	}

	src, err := r.store.ReadObject(node.Hash)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "creating "+dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return snowerr.Wrap(snowerr.InternalIo, "writing "+dst, err)
	}
	if err := out.Close(); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "closing "+dst, err)
	}

	mtime := time.UnixMilli(node.Stats.Mtime)
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "setting mtime on "+dst, err)
	}
	return nil
}
