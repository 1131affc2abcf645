package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestFileHashEmptyFile(t *testing.T) {
	path := writeTemp(t, nil)
	result, err := FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, EmptyHash, result.Hash)
	assert.Nil(t, result.Blocks)
}

func TestFileHashOneByteFiles(t *testing.T) {
	a, err := FileHash(writeTemp(t, []byte("a")))
	require.NoError(t, err)
	assert.Equal(t, "ca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb", a.Hash)

	b, err := FileHash(writeTemp(t, []byte("b")))
	require.NoError(t, err)
	assert.Equal(t, "3e23e8160039594a33894f6564e1b1348bbd7a0088d42c4acb73eeaed59c009d", b.Hash)
}

func TestFileHashBelowThresholdMatchesPartHash(t *testing.T) {
	path := writeTemp(t, []byte("the quick brown fox jumps over the lazy dog"))
	whole, err := FileHash(path)
	require.NoError(t, err)

	part, err := PartHash(path, PartOptions{Start: 0, End: 43})
	require.NoError(t, err)
	assert.Equal(t, part.Hash, whole.Hash)
}

func TestFileHashIsDeterministic(t *testing.T) {
	content := make([]byte, 1<<20)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeTemp(t, content)

	first, err := FileHash(path)
	require.NoError(t, err)
	second, err := FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.Hash)
}

// writeSparseTemp creates a size-byte file with a few distinguishing bytes
// at the given offsets, backed by a sparse allocation so the test doesn't
// need to hold the whole content in memory.
func writeSparseTemp(t *testing.T, size int64, marks map[int64]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	for offset, b := range marks {
		_, err := f.WriteAt([]byte{b}, offset)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
	return path
}

func TestFileHashAboveThresholdSpansMultipleBlocks(t *testing.T) {
	size := BlockSize + 4096
	marks := map[int64]byte{0: 'a', int64(BlockSize): 'b', int64(size - 1): 'c'}
	path := writeSparseTemp(t, int64(size), marks)

	result, err := FileHash(path)
	require.NoError(t, err)
	require.Len(t, result.Blocks, 2)
	assert.NotEqual(t, result.Blocks[0].Hash, result.Blocks[1].Hash)
	assert.Equal(t, int64(0), result.Blocks[0].Start)
	assert.Equal(t, int64(BlockSize), result.Blocks[0].End)
	assert.Equal(t, int64(BlockSize), result.Blocks[1].Start)
	assert.Equal(t, int64(size), result.Blocks[1].End)

	ok, warn := VerifyHash(path, result.Hash, result.Blocks)
	assert.True(t, ok)
	assert.False(t, warn)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, os.Truncate(path, int64(size)))
	ok, _ = VerifyHash(path, result.Hash, result.Blocks)
	assert.False(t, ok)
}

func TestVerifyHashDetectsTamperedContent(t *testing.T) {
	path := writeTemp(t, []byte("hello world"))
	result, err := FileHash(path)
	require.NoError(t, err)

	ok, warn := VerifyHash(path, result.Hash, result.Blocks)
	assert.True(t, ok)
	assert.False(t, warn)

	require.NoError(t, os.WriteFile(path, []byte("hello world!"), 0o644))
	ok, _ = VerifyHash(path, result.Hash, result.Blocks)
	assert.False(t, ok)
}
