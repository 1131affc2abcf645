package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(paths map[string]string) *Node {
	root := CreateRootTree()
	for _, p := range mapKeys(paths) {
		insertFile(root, p, paths[p])
	}
	RecomputeHashes(root)
	return root
}

// mapKeys returns m's keys in map iteration order (unsorted).
func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// insertFile creates any missing intermediate Dir nodes along relPath.
func insertFile(root *Node, relPath, hash string) {
	segs := splitPath(relPath)
	dir := root
	prefix := ""
	for _, s := range segs[:len(segs)-1] {
		if prefix == "" {
			prefix = s
		} else {
			prefix = prefix + "/" + s
		}
		child := findChild(dir, prefix)
		if child == nil {
			child = NewDir(prefix)
			dir.AddChild(child)
		}
		dir = child
	}
	dir.AddChild(NewFile(relPath, hash, Stats{Size: int64(len(hash))}))
}

func findChild(dir *Node, path string) *Node {
	for _, c := range dir.Children {
		if c.Path == path {
			return c
		}
	}
	return nil
}

func splitPath(p string) []string {
	var segs []string
	start := 0
	for i, r := range p {
		if r == '/' {
			segs = append(segs, p[start:i])
			start = i + 1
		}
	}
	segs = append(segs, p[start:])
	return segs
}

func TestRecomputeHashesOrderIndependent(t *testing.T) {
	files := map[string]string{
		"a.txt":       "hash-a",
		"b/c.txt":     "hash-c",
		"b/d.txt":     "hash-d",
		"zz_last.txt": "hash-z",
	}

	first := buildTree(files)

	// Insert the same entries through a randomly shuffled map iteration a
	// few times; the aggregate hash must not depend on insertion order.
	for i := 0; i < 5; i++ {
		second := buildTree(files)
		assert.Equal(t, first.Hash, second.Hash)
	}

	// Changing one file's content must change the root hash.
	mutated := map[string]string{}
	for k, v := range files {
		mutated[k] = v
	}
	mutated["a.txt"] = "hash-a-changed"
	third := buildTree(mutated)
	assert.NotEqual(t, first.Hash, third.Hash)
}

func TestRecomputeHashesSortsChildren(t *testing.T) {
	root := CreateRootTree()
	// add children out of path order
	root.AddChild(NewFile("z.txt", "h1", Stats{}))
	root.AddChild(NewFile("a.txt", "h2", Stats{}))
	root.AddChild(NewFile("m.txt", "h3", Stats{}))
	RecomputeHashes(root)

	require.Len(t, root.Children, 3)
	assert.Equal(t, "a.txt", root.Children[0].Path)
	assert.Equal(t, "m.txt", root.Children[1].Path)
	assert.Equal(t, "z.txt", root.Children[2].Path)
}

func TestCloneIsIndependent(t *testing.T) {
	root := buildTree(map[string]string{"a.txt": "h1", "b/c.txt": "h2"})
	clone := root.Clone(nil)

	assert.Equal(t, root.Hash, clone.Hash)

	clone.Children[0].Hash = "tampered"
	assert.NotEqual(t, root.Children[0].Hash, clone.Children[0].Hash)
}

func TestFindAndRemove(t *testing.T) {
	root := buildTree(map[string]string{
		"keep.txt":     "h1",
		"drop.tmp":     "h2",
		"sub/drop.tmp": "h3",
		"sub/keep.txt": "h4",
	})

	require.NotNil(t, Find(root, "drop.tmp"))

	Remove(root, func(n *Node) bool {
		return n.Kind == File && n.Ext == ".tmp"
	})
	RecomputeHashes(root)

	assert.Nil(t, Find(root, "drop.tmp"))
	assert.Nil(t, Find(root, "sub/drop.tmp"))
	assert.NotNil(t, Find(root, "keep.txt"))
	assert.NotNil(t, Find(root, "sub/keep.txt"))
}

func TestMergeFileWinsOverDirectory(t *testing.T) {
	target := CreateRootTree()
	target.AddChild(NewFile("asset", "target-file-hash", Stats{Size: 10}))
	RecomputeHashes(target)

	source := CreateRootTree()
	dir := NewDir("asset")
	dir.AddChild(NewFile("asset/inner.txt", "inner-hash", Stats{Size: 1}))
	source.AddChild(dir)
	RecomputeHashes(source)

	merged := Merge(source, target)

	node := Find(merged, "asset")
	require.NotNil(t, node)
	assert.Equal(t, File, node.Kind)
	assert.Equal(t, "target-file-hash", node.Hash)

	// source must not have been mutated
	assert.Equal(t, Dir, Find(source, "asset").Kind)
}

func TestMergeDirectoryRecurses(t *testing.T) {
	target := CreateRootTree()
	tdir := NewDir("shared")
	tdir.AddChild(NewFile("shared/only-target.txt", "t1", Stats{Size: 1}))
	target.AddChild(tdir)
	RecomputeHashes(target)

	source := CreateRootTree()
	sdir := NewDir("shared")
	sdir.AddChild(NewFile("shared/only-source.txt", "s1", Stats{Size: 1}))
	source.AddChild(sdir)
	RecomputeHashes(source)

	merged := Merge(source, target)

	assert.NotNil(t, Find(merged, "shared/only-target.txt"))
	assert.NotNil(t, Find(merged, "shared/only-source.txt"))
}

func TestMergeDoesNotMutateSource(t *testing.T) {
	source := buildTree(map[string]string{"a.txt": "h1"})
	target := buildTree(map[string]string{"b.txt": "h2"})
	before := source.Hash

	_ = Merge(source, target)

	RecomputeHashes(source)
	assert.Equal(t, before, source.Hash)
}

func TestWalkVisitsEveryNode(t *testing.T) {
	root := buildTree(map[string]string{"a.txt": "h1", "b/c.txt": "h2", "b/d.txt": "h3"})

	var paths []string
	Walk(root, func(n *Node) bool {
		if n.Path != "" {
			paths = append(paths, n.Path)
		}
		return true
	})

	assert.ElementsMatch(t, []string{"a.txt", "b", "b/c.txt", "b/d.txt"}, paths)
}

func fuzzShuffledKeys(files map[string]string) []string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	return keys
}

func TestRecomputeHashesStableAcrossManyShuffles(t *testing.T) {
	files := map[string]string{
		"1.bin": "a", "10.bin": "b", "2.bin": "c",
		"dir/1.bin": "d", "dir/2.bin": "e", "dir2/x.bin": "f",
	}
	want := buildTree(files).Hash

	for i := 0; i < 10; i++ {
		root := CreateRootTree()
		for _, k := range fuzzShuffledKeys(files) {
			insertFile(root, k, files[k])
		}
		RecomputeHashes(root)
		assert.Equal(t, want, root.Hash)
	}
}
