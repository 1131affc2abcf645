package repository

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
)

var branchNamePattern = regexp.MustCompile(`^[A-Za-z0-9_ .-]+$`)

func isLegalReferenceName(name string) bool {
	if !branchNamePattern.MatchString(name) {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	return true
}

// CreateNewReference creates a new reference named name, pointing at
// startHash, failing if the name is illegal or already taken.
func (r *Repository) CreateNewReference(refType objects.ReferenceType, name, startHash string) (*objects.Reference, error) {
	if !isLegalReferenceName(name) {
		return nil, snowerr.New(snowerr.InvalidArgument, fmt.Sprintf("'%s' is not a legal reference name", name))
	}
	if _, exists := r.refs[name]; exists {
		return nil, snowerr.New(snowerr.AlreadyExists, fmt.Sprintf("reference '%s' already exists", name))
	}
	if _, ok := r.commits[startHash]; !ok {
		return nil, snowerr.New(snowerr.NotFound, fmt.Sprintf("commit '%s' not found", startHash))
	}

	ref := &objects.Reference{Name: name, Target: startHash, Type: refType, Start: startHash}
	if err := r.store.WriteReference(ref); err != nil {
		return nil, err
	}
	r.refs[name] = ref
	return ref, nil
}

// DeleteReference removes a reference, refusing for the name "HEAD" (HEAD
// is not itself a stored reference file).
func (r *Repository) DeleteReference(name string) error {
	if name == "HEAD" {
		return snowerr.New(snowerr.InvalidArgument, "cannot delete HEAD")
	}
	if _, exists := r.refs[name]; !exists {
		return snowerr.New(snowerr.NotFound, fmt.Sprintf("reference '%s' not found", name))
	}
	if err := r.store.DeleteReference(name); err != nil {
		return err
	}
	delete(r.refs, name)
	return nil
}

// RenameReference atomic-writes the reference under newName and unlinks the
// old file.
func (r *Repository) RenameReference(oldName, newName string) error {
	if !isLegalReferenceName(newName) {
		return snowerr.New(snowerr.InvalidArgument, fmt.Sprintf("'%s' is not a legal reference name", newName))
	}
	ref, exists := r.refs[oldName]
	if !exists {
		return snowerr.New(snowerr.NotFound, fmt.Sprintf("reference '%s' not found", oldName))
	}
	if _, taken := r.refs[newName]; taken {
		return snowerr.New(snowerr.AlreadyExists, fmt.Sprintf("reference '%s' already exists", newName))
	}

	renamed := &objects.Reference{Name: newName, Target: ref.Target, Type: ref.Type, Start: ref.Start}
	if err := r.store.WriteReference(renamed); err != nil {
		return err
	}
	if err := r.store.DeleteReference(oldName); err != nil {
		return err
	}
	delete(r.refs, oldName)
	r.refs[newName] = renamed

	if branch, attached := r.HeadBranch(); attached && branch == oldName {
		if err := r.attachHead(newName); err != nil {
			return err
		}
	}
	return nil
}

// Refs returns the loaded reference set, keyed by name.
func (r *Repository) Refs() map[string]*objects.Reference { return r.refs }

// Commits returns the loaded commit set, keyed by hash.
func (r *Repository) Commits() map[string]*objects.Commit { return r.commits }
