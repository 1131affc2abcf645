package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileNegationUnignoresSpecificFile(t *testing.T) {
	m, err := Compile([]string{"subdir", "!subdir/file5.txt"}, false)
	require.NoError(t, err)

	paths := []string{
		"file1.txt", "file2.txt", "file3.txt", "file4.txt", "file5.txt",
		"subdir", "subdir/file1.txt", "subdir/file2.txt", "subdir/file3.txt",
		"subdir/file4.txt", "subdir/file5.txt",
	}
	ignored := m.Classify(paths)

	assert.Equal(t, map[string]bool{
		"subdir":           true,
		"subdir/file1.txt": true,
		"subdir/file2.txt": true,
		"subdir/file3.txt": true,
		"subdir/file4.txt": true,
	}, ignored)
}

func TestDefaultPatternsIgnoreTempAndBackupFiles(t *testing.T) {
	m, err := Compile(nil, true)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored("thumbs.db"))
	assert.True(t, m.IsIgnored("tmp/scratch.bin"))
	assert.True(t, m.IsIgnored("project.blend1"))
	assert.False(t, m.IsIgnored("project.blend"))
	assert.False(t, m.IsIgnored("main.go"))
}

func TestParseFileSplitsCRLFAndLF(t *testing.T) {
	lines := ParseFile("foo\r\nbar\nbaz")
	assert.Equal(t, []string{"foo", "bar", "baz"}, lines)
}
