package repository

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/snowfs/snowfs/internal/atomicfs"
	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
)

func writeHead(fs billy.Filesystem, content string) error {
	return atomicfs.WriteSafe(fs, headFileName, []byte(content))
}

func readHead(fs billy.Filesystem) (string, error) {
	f, err := fs.Open(headFileName)
	if err != nil {
		return "", snowerr.Wrap(snowerr.NotFound, "HEAD not found", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", snowerr.Wrap(snowerr.InternalIo, "reading HEAD", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// HeadBranch returns the attached branch name and true, or "" and false if
// HEAD is detached.
func (r *Repository) HeadBranch() (string, bool) {
	head, err := readHead(r.fs)
	if err != nil {
		return "", false
	}
	if strings.HasPrefix(head, "ref: ") {
		return strings.TrimPrefix(head, "ref: "), true
	}
	return "", false
}

// HeadCommitHash resolves HEAD (attached or detached) to a commit hash.
func (r *Repository) HeadCommitHash() (string, error) {
	head, err := readHead(r.fs)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(head, "ref: ") {
		name := strings.TrimPrefix(head, "ref: ")
		ref, ok := r.refs[name]
		if !ok {
			return "", snowerr.New(snowerr.Corruption, fmt.Sprintf("HEAD references missing branch %q", name))
		}
		return ref.Target, nil
	}
	return head, nil
}

// HeadCommit resolves and loads the commit HEAD currently points at.
func (r *Repository) HeadCommit() (*objects.Commit, error) {
	hash, err := r.HeadCommitHash()
	if err != nil {
		return nil, err
	}
	c, ok := r.commits[hash]
	if !ok {
		return nil, snowerr.New(snowerr.Corruption, fmt.Sprintf("HEAD commit %s missing from commit graph", hash))
	}
	return c, nil
}

func (r *Repository) attachHead(branchName string) error {
	return writeHead(r.fs, "ref: "+branchName)
}

func (r *Repository) detachHead(commitHash string) error {
	return writeHead(r.fs, commitHash)
}
