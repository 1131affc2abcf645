package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes a fresh command tree with args inside dir, capturing
// stdout. Subcommands print with plain fmt.Printf rather than cmd.Print, so
// output is captured by redirecting os.Stdout rather than cobra's SetOut.
// Tests chdir because every subcommand opens the repository via
// repository.Open(".").
func runCmd(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	realStdout := os.Stdout
	os.Stdout = w

	root := newRootCommand()
	root.SetArgs(args)
	runErr := root.Execute()

	w.Close()
	os.Stdout = realStdout
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(out), runErr
}

func TestInitAddCommitStatusLifecycle(t *testing.T) {
	base := t.TempDir()
	repoDir := filepath.Join(base, "repo")

	_, err := runCmd(t, base, "init", repoDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "a.txt"), []byte("hello"), 0o644))

	_, err = runCmd(t, repoDir, "add", "a.txt")
	require.NoError(t, err)

	_, err = runCmd(t, repoDir, "commit", "-m", "first commit")
	require.NoError(t, err)

	out, err := runCmd(t, repoDir, "status", "--all", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")

	out, err = runCmd(t, repoDir, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "first commit")
}

func TestCommitWithoutMessageFailsWithUserExitCode(t *testing.T) {
	base := t.TempDir()
	repoDir := filepath.Join(base, "repo")

	_, err := runCmd(t, base, "init", repoDir)
	require.NoError(t, err)

	_, err = runCmd(t, repoDir, "commit")
	require.Error(t, err)
	assert.Equal(t, 1, exitCodeFor(err))
}

func TestBranchListShowsCurrentBranch(t *testing.T) {
	base := t.TempDir()
	repoDir := filepath.Join(base, "repo")

	_, err := runCmd(t, base, "init", repoDir)
	require.NoError(t, err)

	out, err := runCmd(t, repoDir, "branch")
	require.NoError(t, err)
	assert.Contains(t, out, "Main")
}
