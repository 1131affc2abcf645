package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitExtCreatesLayout(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")

	repo, err := InitExt(workdir, InitOptions{})
	require.NoError(t, err)

	for _, p := range []string{"HEAD", "config", "versions", "refs", "objects/tmp", "indexes", "logs/mainlog", "hooks"} {
		_, statErr := os.Stat(filepath.Join(repo.Commondir, filepath.FromSlash(p)))
		assert.NoError(t, statErr, "expected %s to exist", p)
	}

	branch, attached := repo.HeadBranch()
	assert.True(t, attached)
	assert.Equal(t, "Main", branch)

	commits := repo.GetAllCommits(Undefined)
	require.Len(t, commits, 1)
	assert.Equal(t, "Created Project", commits[0].Message)
	assert.Empty(t, commits[0].Root.Children)
}

func TestInitExtFailsWhenWorkdirExists(t *testing.T) {
	workdir := t.TempDir()
	_, err := InitExt(workdir, InitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workdir already exists")
}

func TestInitExtRejectsCommondirInsideWorkdir(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")
	_, err := InitExt(workdir, InitOptions{Commondir: filepath.Join(workdir, "inner")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commondir must be outside repository")
}

func TestOpenIsIdempotentAcrossReopens(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")
	_, err := InitExt(workdir, InitOptions{})
	require.NoError(t, err)

	first, err := Open(workdir)
	require.NoError(t, err)
	second, err := Open(workdir)
	require.NoError(t, err)

	assert.Equal(t, len(first.commits), len(second.commits))
	assert.Equal(t, len(first.refs), len(second.refs))
}

func TestOpenWalksUpToNearestAncestor(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")
	_, err := InitExt(workdir, InitOptions{})
	require.NoError(t, err)

	sub := filepath.Join(workdir, "a", "b", "c")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, err := Open(sub)
	require.NoError(t, err)
	assert.Equal(t, workdir, repo.Workdir)
}

func TestCommitLifecycle(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")
	repo, err := InitExt(workdir, InitOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(workdir, "foo"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(workdir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "subdir", "bar"), []byte("world"), 0o644))

	require.NoError(t, repo.AddPaths([]string{filepath.Join(workdir, "foo"), filepath.Join(workdir, "subdir", "bar")}))
	_, err = repo.CreateCommit("Add Foo", CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, repo.RemovePaths([]string{filepath.Join(workdir, "foo")}))
	require.NoError(t, os.Remove(filepath.Join(workdir, "foo")))
	last, err := repo.CreateCommit("Delete Foo", CommitOptions{})
	require.NoError(t, err)

	assert.Len(t, repo.commits, 3)
	require.Len(t, last.Root.Children, 1)
	assert.Equal(t, "subdir", last.Root.Children[0].Path)
}

func TestMergeUnrelatedHistoriesFails(t *testing.T) {
	r1, err := InitExt(filepath.Join(t.TempDir(), "r1"), InitOptions{})
	require.NoError(t, err)
	r2, err := InitExt(filepath.Join(t.TempDir(), "r2"), InitOptions{})
	require.NoError(t, err)

	_, err = Merge(r1, r2)
	require.Error(t, err)
	assert.Equal(t, "refusing to merge unrelated histories", err.Error())
}

func TestFindCommitByHashWithParentWalk(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")
	repo, err := InitExt(workdir, InitOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(workdir, "a"), []byte("1"), 0o644))
	require.NoError(t, repo.AddPaths([]string{filepath.Join(workdir, "a")}))
	second, err := repo.CreateCommit("second", CommitOptions{})
	require.NoError(t, err)

	found, err := repo.FindCommitByHash("HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, "Created Project", found.Message)
	assert.NotEqual(t, second.Hash, found.Hash)

	_, err = repo.FindCommitByHash("HEAD~5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of history")
}

func TestCheckoutRestoresFileContentAndDetachesHead(t *testing.T) {
	workdir := filepath.Join(t.TempDir(), "repo")
	repo, err := InitExt(workdir, InitOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(workdir, "a"), []byte("1"), 0o644))
	require.NoError(t, repo.AddPaths([]string{filepath.Join(workdir, "a")}))
	first, err := repo.CreateCommit("first", CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(workdir, "a"), []byte("2"), 0o644))
	require.NoError(t, repo.AddPaths([]string{filepath.Join(workdir, "a")}))
	_, err = repo.CreateCommit("second", CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, repo.Checkout(first.Hash, DiscardChanges))

	data, err := os.ReadFile(filepath.Join(workdir, "a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	hash, attached := repo.HeadBranch()
	assert.False(t, attached)
	assert.Empty(t, hash)
}
