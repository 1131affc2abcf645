package repository

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/tree"
)

// CommitOptions configures CreateCommit: whether to allow a commit with
// nothing staged, and the tags/user-data to attach to the commit record.
type CommitOptions struct {
	AllowEmpty bool
	Tags       []string
	UserData   map[string]string
}

// CreateCommit materialises the main index into the object database, applies
// its add/delete sets to HEAD's tree, and writes a new commit whose single
// parent is the current HEAD, advancing the attached branch (or HEAD itself
// when detached).
func (r *Repository) CreateCommit(message string, opts CommitOptions) (*objects.Commit, error) {
	if err := r.acquireState(); err != nil {
		return nil, err
	}
	defer r.releaseState()

	idx := r.mainIndex
	if !opts.AllowEmpty && len(idx.AddSet) == 0 && len(idx.DelSet) == 0 {
		return nil, snowerr.New(snowerr.InvalidArgument, "nothing to commit")
	}

	parentHash, err := r.HeadCommitHash()
	if err != nil {
		return nil, err
	}
	parent, ok := r.commits[parentHash]
	if !ok {
		return nil, snowerr.New(snowerr.Corruption, "HEAD commit missing from commit graph")
	}

	if err := idx.WriteFiles(); err != nil {
		return nil, err
	}

	newRoot := parent.Root.Clone(nil)

	delPaths := make(map[string]bool, len(idx.DelSet))
	for p := range idx.DelSet {
		delPaths[p] = true
	}
	tree.Remove(newRoot, func(n *tree.Node) bool { return delPaths[n.Path] })

	addPaths := make([]string, 0, len(idx.AddSet))
	for p := range idx.AddSet {
		addPaths = append(addPaths, p)
	}
	sort.Strings(addPaths)

	for _, relPath := range addPaths {
		abs := filepath.Join(r.Workdir, filepath.FromSlash(relPath))
		info, statErr := os.Stat(abs)
		if statErr != nil {
			return nil, snowerr.Wrap(snowerr.NotFound, "staged file "+relPath+" not found", statErr)
		}
		mtime := info.ModTime().UnixMilli()
		stats := tree.Stats{Size: info.Size(), Ctime: mtime, Mtime: mtime, Birthtime: mtime}
		insertFile(newRoot, relPath, idx.Fingerprint(relPath), stats)
	}

	tree.RecomputeHashes(newRoot)

	commitHash, err := objects.NewCommitHash()
	if err != nil {
		return nil, err
	}
	commit := &objects.Commit{
		Hash:     commitHash,
		Message:  message,
		Date:     time.Now().UnixMilli(),
		Parents:  []string{parentHash},
		Tags:     opts.Tags,
		UserData: opts.UserData,
		Root:     newRoot,
	}
	if err := r.store.WriteCommit(commit); err != nil {
		return nil, err
	}

	if branch, attached := r.HeadBranch(); attached {
		ref := r.refs[branch]
		updated := &objects.Reference{Name: ref.Name, Target: commitHash, Type: ref.Type, Start: ref.Start}
		if err := r.store.WriteReference(updated); err != nil {
			return nil, err
		}
		r.refs[branch] = updated
	} else {
		if err := r.detachHead(commitHash); err != nil {
			return nil, err
		}
	}

	r.commits[commitHash] = commit

	idx.Invalidate()
	if err := idx.Write(); err != nil {
		return nil, err
	}

	return commit, nil
}

// insertFile upserts a File node at relPath under root, creating any missing
// intermediate Dir nodes along the way. An existing entry at relPath
// (whether File or Dir) is replaced outright.
func insertFile(root *tree.Node, relPath, hash string, stats tree.Stats) {
	dir := ensureDir(root, spath.Dirname(relPath))
	removeChildAt(dir, relPath)
	dir.AddChild(tree.NewFile(relPath, hash, stats))
}

// ensureDir returns the Dir node at dirPath under root, creating any missing
// intermediate directories (and their parents) along the way.
func ensureDir(root *tree.Node, dirPath string) *tree.Node {
	if dirPath == "" {
		return root
	}
	segments := splitPath(dirPath)
	cur := root
	built := ""
	for _, seg := range segments {
		built = spath.Join(built, seg)
		next := findChildByPath(cur, built)
		if next == nil {
			next = tree.NewDir(built)
			cur.AddChild(next)
		}
		cur = next
	}
	return cur
}

func findChildByPath(dir *tree.Node, path string) *tree.Node {
	for _, c := range dir.Children {
		if c.Path == path {
			return c
		}
	}
	return nil
}

func removeChildAt(dir *tree.Node, path string) {
	kept := dir.Children[:0:0]
	for _, c := range dir.Children {
		if c.Path != path {
			kept = append(kept, c)
		}
	}
	dir.Children = kept
}

func splitPath(p string) []string {
	var out []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if i > start {
				out = append(out, p[start:i])
			}
			start = i + 1
		}
	}
	if start < len(p) {
		out = append(out, p[start:])
	}
	return out
}
