package objects

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/snowfs/snowfs/internal/atomicfs"
	"github.com/snowfs/snowfs/internal/snowerr"
	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/tree"
)

// Commit is the on-disk commit record. Hash is 32 random bytes rendered
// hex on creation, never content-derived: it is the stable identity carried
// across clones and repository merges even though the body it names is
// content-addressed.
type Commit struct {
	Hash     string            `json:"hash"`
	Message  string            `json:"message"`
	Date     int64             `json:"date"`
	Parents  []string          `json:"parents"`
	Tags     []string          `json:"tags"`
	UserData map[string]string `json:"userData"`
	Root     *tree.Node        `json:"root"`
}

// NewCommitHash draws a fresh 32-byte random commit identity.
func NewCommitHash() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", snowerr.Wrap(snowerr.InternalIo, "generating commit hash", err)
	}
	return hex.EncodeToString(b[:]), nil
}

func commitPath(hash string) string { return spath.Join(versionsDir, hash) }

// WriteCommit serialises c as JSON and atomic-writes it to versions/<hash>.
func (s *Store) WriteCommit(c *Commit) error {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.UserData == nil {
		c.UserData = map[string]string{}
	}
	if c.Parents == nil {
		c.Parents = []string{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "serialising commit", err)
	}
	if err := atomicfs.EnsureDir(s.fs, versionsDir); err != nil {
		return err
	}
	return atomicfs.WriteSafe(s.fs, commitPath(c.Hash), data)
}

// ReadCommit loads and parses versions/<hash>. A malformed record is a
// Corruption error.
func (s *Store) ReadCommit(hash string) (*Commit, error) {
	f, err := s.fs.Open(commitPath(hash))
	if err != nil {
		return nil, snowerr.Wrap(snowerr.NotFound, fmt.Sprintf("commit %s not found", hash), err)
	}
	defer f.Close()

	var c Commit
	dec := json.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, snowerr.Wrap(snowerr.Corruption, fmt.Sprintf("parsing commit %s", hash), err)
	}
	return &c, nil
}

// ReferenceType distinguishes a reference's role.
type ReferenceType string

const (
	Branch   ReferenceType = "BRANCH"
	Tag      ReferenceType = "TAG"
	Detached ReferenceType = "DETACHED"
)

// Reference is the on-disk reference record.
type Reference struct {
	Name   string        `json:"name"`
	Target string        `json:"target"`
	Type   ReferenceType `json:"type"`
	Start  string        `json:"start"`
}

func referencePath(name string) string { return spath.Join(refsDir, name) }

// WriteReference atomic-writes ref to refs/<ref.name>.
func (s *Store) WriteReference(ref *Reference) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "serialising reference", err)
	}
	if err := atomicfs.EnsureDir(s.fs, refsDir); err != nil {
		return err
	}
	return atomicfs.WriteSafe(s.fs, referencePath(ref.Name), data)
}

// DeleteReference removes refs/<name>.
func (s *Store) DeleteReference(name string) error {
	if err := s.fs.Remove(referencePath(name)); err != nil {
		return snowerr.Wrap(snowerr.NotFound, fmt.Sprintf("reference %s not found", name), err)
	}
	return nil
}

// ReadReference loads and parses refs/<name>.
func (s *Store) ReadReference(name string) (*Reference, error) {
	f, err := s.fs.Open(referencePath(name))
	if err != nil {
		return nil, snowerr.Wrap(snowerr.NotFound, fmt.Sprintf("reference %s not found", name), err)
	}
	defer f.Close()

	var ref Reference
	dec := json.NewDecoder(f)
	if err := dec.Decode(&ref); err != nil {
		return nil, snowerr.Wrap(snowerr.Corruption, fmt.Sprintf("parsing reference %s", name), err)
	}
	return &ref, nil
}

// LoadResult is the outcome of enumerating the object database's durable
// records: every parsed commit keyed by hash, every parsed reference keyed
// by name.
type LoadResult struct {
	Commits map[string]*Commit
	Refs    map[string]*Reference
}

// LoadAll enumerates versions/ and refs/, skipping basenames that look like
// temp or stale files (leading "." or trailing ".tmp"), and parses the
// rest. A parse failure on a non-temp file is Corruption and aborts the
// whole load.
func (s *Store) LoadAll() (*LoadResult, error) {
	result := &LoadResult{Commits: map[string]*Commit{}, Refs: map[string]*Reference{}}

	versionEntries, err := s.fs.ReadDir(versionsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, snowerr.Wrap(snowerr.InternalIo, "reading versions directory", err)
	}
	for _, e := range versionEntries {
		if e.IsDir() || atomicfs.IsTempOrStale(e.Name()) {
			continue
		}
		c, err := s.ReadCommit(e.Name())
		if err != nil {
			return nil, err
		}
		result.Commits[c.Hash] = c
	}

	refEntries, err := s.fs.ReadDir(refsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, snowerr.Wrap(snowerr.InternalIo, "reading refs directory", err)
	}
	for _, e := range refEntries {
		if e.IsDir() || atomicfs.IsTempOrStale(e.Name()) {
			continue
		}
		ref, err := s.ReadReference(e.Name())
		if err != nil {
			return nil, err
		}
		result.Refs[ref.Name] = ref
	}

	return result, nil
}
