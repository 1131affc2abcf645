package repository

import (
	"os"
	"path/filepath"

	"github.com/snowfs/snowfs/internal/snowerr"
	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/walk"
)

// AddPaths stages paths (files or directories, absolute or cwd-relative)
// for the next commit, expanding directories to the files beneath them.
// Entries whose name starts with "." (and .DS_Store/thumbs.db) are skipped
// during that expansion.
func (r *Repository) AddPaths(paths []string) error {
	expanded, err := r.expandPaths(paths)
	if err != nil {
		return err
	}
	r.mainIndex.AddFiles(expanded)
	return r.mainIndex.Write()
}

// RemovePaths stages paths for deletion from the next commit.
func (r *Repository) RemovePaths(paths []string) error {
	expanded, err := r.expandPaths(paths)
	if err != nil {
		return err
	}
	r.mainIndex.DeleteFiles(expanded)
	return r.mainIndex.Write()
}

// expandPaths normalises each user-supplied path to workdir-relative form,
// expanding any directory argument to the files it currently contains.
func (r *Repository) expandPaths(paths []string) ([]string, error) {
	rel, err := r.normalizeUserPaths(paths)
	if err != nil {
		return nil, err
	}

	var out []string
	for i, relPath := range rel {
		abs := filepath.Join(r.Workdir, filepath.FromSlash(relPath))
		info, statErr := os.Stat(abs)
		if statErr != nil {
			return nil, snowerr.Wrap(snowerr.NotFound, "path '"+paths[i]+"' not found", statErr)
		}
		if !info.IsDir() {
			out = append(out, relPath)
			continue
		}
		entries, walkErr := walk.Walk(abs, walk.Files)
		if walkErr != nil {
			return nil, walkErr
		}
		for _, e := range entries {
			out = append(out, spath.Join(relPath, e.RelPath))
		}
	}
	return out, nil
}
