package tree

import (
	"os"

	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/walk"
)

// ConstructTree walks dirPath and builds a TreeDir mirroring its current
// on-disk layout, attaching size/mtime stats to every entry. File hashes
// are left empty: they are filled in later by the index when bodies are
// actually stored, since constructing the tree should not force a full
// re-hash of every file in the workdir.
func ConstructTree(dirPath string) (*Node, error) {
	entries, err := walk.Walk(dirPath, walk.Files|walk.Dirs)
	if err != nil {
		return nil, err
	}

	root := CreateRootTree()
	byPath := map[string]*Node{"": root}

	for _, e := range entries {
		parent := byPath[spath.Dirname(e.RelPath)]
		if parent == nil {
			// Parent directory was skipped (e.g. hidden) - skip this entry too.
			continue
		}

		info, statErr := os.Stat(e.AbsPath)
		if statErr != nil {
			continue
		}
		stats := statsFromInfo(info)

		if e.IsDir {
			dir := NewDir(e.RelPath)
			dir.Stats = stats
			parent.AddChild(dir)
			byPath[e.RelPath] = dir
			continue
		}

		file := NewFile(e.RelPath, "", stats)
		parent.AddChild(file)
	}

	RecomputeHashes(root)
	return root, nil
}

// statsFromInfo extracts the size/mtime that modification detection relies
// on. Go's os.FileInfo has no portable ctime/birthtime, so both are
// approximated with mtime rather than reaching for per-platform
// stat syscalls this module otherwise has no use for.
func statsFromInfo(info os.FileInfo) Stats {
	mtime := info.ModTime().UnixMilli()
	return Stats{
		Size:      info.Size(),
		Mtime:     mtime,
		Ctime:     mtime,
		Birthtime: mtime,
	}
}
