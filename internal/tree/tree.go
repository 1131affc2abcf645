// Package tree implements the in-memory directory tree with stable
// aggregate hashing: a live, parent-linked, clonable tree whose directory
// nodes carry a hash computed from their sorted children's hashes, and
// whose file nodes carry stats used for cheap modification detection.
package tree

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/snowfs/snowfs/internal/fingerprint"
	"github.com/snowfs/snowfs/internal/spath"
)

// Stats is the retained subset of filesystem metadata for a tree entry.
// Birthtime never appears in the on-disk JSON form: it is an in-memory-only
// aid, not part of a commit's persisted identity.
type Stats struct {
	Size      int64 `json:"size"`
	Ctime     int64 `json:"ctime"` // ms since epoch
	Mtime     int64 `json:"mtime"` // ms since epoch
	Birthtime int64 `json:"-"`     // ms since epoch
}

// Kind tags a Node as File or Dir.
type Kind int

const (
	File Kind = iota
	Dir
)

// Node is a tagged File/Dir tree entry. Dir-only fields (Children) are nil
// for File nodes; both kinds share the Hash field, holding a content hash
// for files and an aggregate children hash for directories.
type Node struct {
	Kind     Kind
	Hash     string
	Path     string // "" for the root; normalised, no trailing separator otherwise
	Stats    Stats
	Ext      string // File only
	Parent   *Node  `json:"-"`
	Children []*Node
	Blocks   []fingerprint.Block `json:"-"` // File only, cached per-block hashes for verification
}

// CreateRootTree returns an empty root Dir with zeroed stats.
func CreateRootTree() *Node {
	return &Node{Kind: Dir, Path: "", Children: nil}
}

// NewFile constructs a File node; the caller is responsible for linking it
// into a parent via AddChild.
func NewFile(relPath, hash string, stats Stats) *Node {
	return &Node{
		Kind:  File,
		Hash:  hash,
		Path:  relPath,
		Stats: stats,
		Ext:   spath.Extname(relPath),
	}
}

// NewDir constructs an empty Dir node at relPath ("" only for the root).
func NewDir(relPath string) *Node {
	return &Node{Kind: Dir, Path: relPath}
}

// AddChild appends child to dir's children and links the parent pointer.
// It does not sort or rehash; call RecomputeHashes afterwards.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Clone deep-copies the subtree rooted at n. Stats are copied by value;
// the clone's Parent is re-linked to parent (nil for the clone of a root).
// Mutating any field of the result never affects n.
func (n *Node) Clone(parent *Node) *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Kind:   n.Kind,
		Hash:   n.Hash,
		Path:   n.Path,
		Stats:  n.Stats,
		Ext:    n.Ext,
		Parent: parent,
	}
	if n.Blocks != nil {
		clone.Blocks = append([]fingerprint.Block(nil), n.Blocks...)
	}
	for _, c := range n.Children {
		clone.Children = append(clone.Children, c.Clone(clone))
	}
	return clone
}

// Walk traverses the subtree rooted at n in preorder, calling cb on every
// node including n itself. Walk stops early if cb returns false.
func Walk(n *Node, cb func(*Node) bool) {
	if n == nil {
		return
	}
	if !cb(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, cb)
	}
}

// Find returns the entry at relPath, or nil if none exists.
func Find(root *Node, relPath string) *Node {
	relPath = spath.Normalize(relPath)
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.Path == relPath {
			found = n
			return false
		}
		return true
	})
	return found
}

// Remove drops every entry (at any depth) for which predicate returns
// true, recursing into children first so a child's own removal is decided
// independently of its ancestor's. It mutates root in place and does not
// update aggregate hashes; call RecomputeHashes afterwards.
func Remove(root *Node, predicate func(*Node) bool) {
	if root == nil || root.Kind != Dir {
		return
	}
	kept := root.Children[:0:0]
	for _, c := range root.Children {
		if c.Kind == Dir {
			Remove(c, predicate)
		}
		if predicate(c) {
			continue
		}
		kept = append(kept, c)
	}
	root.Children = kept
}

// RecomputeHashes recomputes aggregate Dir hashes and sizes bottom-up,
// sorting each Dir's children by the path-aware comparator first so the
// result is independent of insertion order.
func RecomputeHashes(n *Node) {
	if n == nil || n.Kind != Dir {
		return
	}
	for _, c := range n.Children {
		if c.Kind == Dir {
			RecomputeHashes(c)
		}
	}
	sort.Slice(n.Children, func(i, j int) bool {
		return spath.Compare(n.Children[i].Path, n.Children[j].Path) < 0
	})

	h := sha256.New()
	var size int64
	for _, c := range n.Children {
		h.Write([]byte(c.Hash))
		size += c.Stats.Size
	}
	n.Hash = hex.EncodeToString(h.Sum(nil))
	n.Stats.Size = size
}

// Merge set-unions source's children into a clone of target keyed by path.
// On a path present in both: when both are files, target's file wins; when
// one side is a file and the other a directory, the file wins and the
// directory's subtree is discarded; both-directory conflicts recurse.
// source is never mutated. Aggregate hashes are recomputed afterward.
func Merge(source, target *Node) *Node {
	result := target.Clone(nil)
	mergeInto(source, result)
	RecomputeHashes(result)
	return result
}

func mergeInto(source, target *Node) {
	if source == nil || source.Kind != Dir || target == nil || target.Kind != Dir {
		return
	}
	byPath := linkedhashmap.New()
	for _, c := range target.Children {
		byPath.Put(c.Path, c)
	}

	for _, sc := range source.Children {
		existingRaw, found := byPath.Get(sc.Path)
		if !found {
			clone := sc.Clone(target)
			target.Children = append(target.Children, clone)
			byPath.Put(sc.Path, clone)
			continue
		}
		existing := existingRaw.(*Node)
		switch {
		case existing.Kind == File:
			// target (file) wins outright; source's subtree (if any) is discarded.
		case sc.Kind == File:
			// source is a file, target is a dir: the file wins, so it
			// overwrites the directory at this path.
			replaceChild(target, sc.Clone(target))
		default:
			mergeInto(sc, existing)
		}
	}
}

func replaceChild(parent *Node, replacement *Node) {
	for i, c := range parent.Children {
		if c.Path == replacement.Path {
			replacement.Parent = parent
			parent.Children[i] = replacement
			return
		}
	}
	replacement.Parent = parent
	parent.Children = append(parent.Children, replacement)
}

// Flatten returns every node in the subtree (including root) as a flat
// slice, preorder.
func Flatten(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// PathSet returns the set of relative paths in the subtree, root excluded.
func PathSet(root *Node) map[string]*Node {
	out := make(map[string]*Node)
	Walk(root, func(n *Node) bool {
		if n.Path != "" {
			out[n.Path] = n
		}
		return true
	})
	return out
}

