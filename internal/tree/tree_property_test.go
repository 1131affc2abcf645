package tree

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

// genFileSet draws a small set of unique relative paths (flat or one level
// deep) paired with random fingerprint stand-ins, modelling the inputs
// RecomputeHashes must stay order-independent over.
func genFileSet(t *rapid.T) map[string]string {
	count := rapid.IntRange(0, 12).Draw(t, "file_count")
	files := make(map[string]string, count)
	for i := 0; i < count; i++ {
		name := rapid.StringMatching(`[a-z][a-z0-9]{0,4}\.bin`).Draw(t, "name")
		inDir := rapid.Bool().Draw(t, "in_dir")
		path := name
		if inDir {
			dir := rapid.StringMatching(`[a-z][a-z0-9]{0,4}`).Draw(t, "dir")
			path = dir + "/" + name
		}
		hash := rapid.StringMatching(`[0-9a-f]{8}`).Draw(t, "hash")
		files[path] = hash
	}
	return files
}

// TestProperty_TreeHashOrderIndependent checks that the aggregate root hash
// RecomputeHashes assigns depends only on the set of (path, hash) pairs
// inserted, never on the order they were inserted in.
func TestProperty_TreeHashOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		files := genFileSet(t)

		baseline := buildTree(files).Hash

		keys := make([]string, 0, len(files))
		for k := range files {
			keys = append(keys, k)
		}
		rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

		shuffled := CreateRootTree()
		for _, k := range keys {
			insertFile(shuffled, k, files[k])
		}
		RecomputeHashes(shuffled)

		if shuffled.Hash != baseline {
			t.Fatalf("hash depends on insertion order: baseline=%s shuffled=%s", baseline, shuffled.Hash)
		}
	})
}
