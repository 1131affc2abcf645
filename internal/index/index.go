// Package index implements the per-repository staging object: two sets of
// workdir-relative paths (added, deleted) that writeFiles() materialises
// into the object database, read from and written to a single JSON index
// file.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/snowfs/snowfs/internal/atomicfs"
	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
	"github.com/snowfs/snowfs/internal/spath"
)

const indexesDir = "indexes"

// Index is a single staging record.
type Index struct {
	ID        string            `json:"id"`
	AddSet    map[string]bool   `json:"addSet"`
	DelSet    map[string]bool   `json:"delSet"`
	Processed bool              `json:"processed"`
	fp        map[string]string // rel path -> fingerprint, populated by writeFiles

	workdir string
	fs      billy.Filesystem
	store   *objects.Store
}

// New creates an empty, unprocessed index with the given id.
func New(id, workdir string, fs billy.Filesystem, store *objects.Store) *Index {
	return &Index{
		ID:      id,
		AddSet:  map[string]bool{},
		DelSet:  map[string]bool{},
		workdir: workdir,
		fs:      fs,
		store:   store,
		fp:      map[string]string{},
	}
}

func indexPath(id string) string { return spath.Join(indexesDir, id) }

// Load reads indexes/<id> back into memory.
func Load(id, workdir string, fs billy.Filesystem, store *objects.Store) (*Index, error) {
	f, err := fs.Open(indexPath(id))
	if err != nil {
		return nil, snowerr.Wrap(snowerr.NotFound, fmt.Sprintf("index %s not found", id), err)
	}
	defer f.Close()

	idx := New(id, workdir, fs, store)
	dec := json.NewDecoder(f)
	if err := dec.Decode(idx); err != nil {
		return nil, snowerr.Wrap(snowerr.Corruption, fmt.Sprintf("parsing index %s", id), err)
	}
	if idx.AddSet == nil {
		idx.AddSet = map[string]bool{}
	}
	if idx.DelSet == nil {
		idx.DelSet = map[string]bool{}
	}
	return idx, nil
}

// Write atomic-writes the index record to indexes/<id>.
func (i *Index) Write() error {
	data, err := json.Marshal(i)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "serialising index", err)
	}
	if err := atomicfs.EnsureDir(i.fs, indexesDir); err != nil {
		return err
	}
	return atomicfs.WriteSafe(i.fs, indexPath(i.ID), data)
}

// AddFiles stages relPaths for addition. A path already present in DelSet is
// removed from it: a pending add cancels a pending delete.
func (i *Index) AddFiles(relPaths []string) {
	for _, p := range relPaths {
		p = spath.Normalize(p)
		delete(i.DelSet, p)
		i.AddSet[p] = true
	}
}

// DeleteFiles stages relPaths for deletion. A path already present in
// AddSet is removed from it (delete cancels a pending add).
func (i *Index) DeleteFiles(relPaths []string) {
	for _, p := range relPaths {
		p = spath.Normalize(p)
		delete(i.AddSet, p)
		i.DelSet[p] = true
	}
}

// Invalidate clears both sets and the fingerprint cache without touching
// the on-disk record; callers persist the cleared state with Write.
func (i *Index) Invalidate() {
	i.AddSet = map[string]bool{}
	i.DelSet = map[string]bool{}
	i.fp = map[string]string{}
	i.Processed = false
}

// WriteFiles materialises every added path into the object database and
// caches its resulting fingerprint by relative path. Deleted paths need no
// object-database action: they are applied against the parent tree at
// commit time.
func (i *Index) WriteFiles() error {
	for relPath := range i.AddSet {
		abs := filepath.Join(i.workdir, filepath.FromSlash(relPath))
		info, err := os.Stat(abs)
		if err != nil {
			return snowerr.Wrap(snowerr.NotFound, fmt.Sprintf("staged file %s not found", relPath), err)
		}
		if info.IsDir() {
			continue
		}
		hash, err := i.store.WriteObjectFile(abs)
		if err != nil {
			return err
		}
		i.fp[relPath] = hash
	}
	i.Processed = true
	return nil
}

// Fingerprint returns the cached fingerprint for relPath after WriteFiles,
// or "" if it was never staged or not yet written.
func (i *Index) Fingerprint(relPath string) string {
	return i.fp[spath.Normalize(relPath)]
}
