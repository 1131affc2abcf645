package repository

import (
	"sort"

	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/tree"
)

// DiffEntry is one row of a Diff result.
type DiffEntry struct {
	Path  string
	Hash  string
	Size  int64
	IsDir bool
}

// DiffResult partitions every path touched between two trees.
type DiffResult struct {
	Added       []DiffEntry
	Modified    []DiffEntry
	NonModified []DiffEntry
	Deleted     []DiffEntry
}

// Diff compares newRoot against oldRoot: a path present only in newRoot is
// added, only in oldRoot is deleted, present in both with a differing hash
// is modified, same hash is non-modified. With includeDirs, directory
// entries participate under the same hash-comparison rule. Each returned
// slice is sorted by path so repeated calls over the same trees are
// byte-for-byte reproducible.
func Diff(newRoot, oldRoot *tree.Node, includeDirs bool) DiffResult {
	newPaths := tree.PathSet(newRoot)
	oldPaths := tree.PathSet(oldRoot)

	var result DiffResult

	for path, n := range newPaths {
		if !includeDirs && n.Kind == tree.Dir {
			continue
		}
		o, existed := oldPaths[path]
		if !existed {
			result.Added = append(result.Added, toDiffEntry(path, n))
			continue
		}
		if n.Hash == o.Hash {
			result.NonModified = append(result.NonModified, toDiffEntry(path, n))
		} else {
			result.Modified = append(result.Modified, toDiffEntry(path, n))
		}
	}

	for path, o := range oldPaths {
		if !includeDirs && o.Kind == tree.Dir {
			continue
		}
		if _, stillExists := newPaths[path]; !stillExists {
			result.Deleted = append(result.Deleted, toDiffEntry(path, o))
		}
	}

	sortDiffEntries(result.Added)
	sortDiffEntries(result.Modified)
	sortDiffEntries(result.NonModified)
	sortDiffEntries(result.Deleted)

	return result
}

func sortDiffEntries(entries []DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return spath.Compare(entries[i].Path, entries[j].Path) < 0
	})
}

func toDiffEntry(path string, n *tree.Node) DiffEntry {
	return DiffEntry{Path: path, Hash: n.Hash, Size: n.Stats.Size, IsDir: n.Kind == tree.Dir}
}
