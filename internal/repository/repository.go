// Package repository implements the repository lifecycle, commit graph,
// status/diff, checkout, and reference CRUD. The on-disk layout is flat and
// JSON-based throughout: init checks the target does not already exist,
// creates the directory skeleton, writes a HEAD file, and reports a clear
// error for each failure mode, building on the object/commit/reference/index
// packages underneath.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/snowfs/snowfs/internal/atomicfs"
	"github.com/snowfs/snowfs/internal/config"
	"github.com/snowfs/snowfs/internal/index"
	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
	"github.com/snowfs/snowfs/internal/tree"
)

const (
	dotDirName    = ".snow"
	headFileName  = "HEAD"
	stateFileName = "state"
	mainIndexID   = "main"
)

var initDirs = []string{"objects/tmp", "versions", "refs", "indexes", "logs", "hooks"}

// Repository is an open handle on a repository's workdir and commondir.
type Repository struct {
	Workdir   string
	Commondir string

	fs    billy.Filesystem // rooted at Commondir
	store *objects.Store
	cfg   config.Config

	commits map[string]*objects.Commit
	refs    map[string]*objects.Reference

	mainIndex *index.Index
}

// InitOptions configures InitExt.
type InitOptions struct {
	Commondir         string
	DefaultBranchName string
}

// InitExt creates a brand-new repository rooted at workdir.
func InitExt(workdir string, opts InitOptions) (*Repository, error) {
	if _, err := os.Stat(workdir); err == nil {
		return nil, snowerr.New(snowerr.AlreadyExists, "workdir already exists")
	}

	commondir := opts.Commondir
	pointerMode := commondir != ""
	if pointerMode {
		absWorkdir, err := filepath.Abs(workdir)
		if err != nil {
			return nil, snowerr.Wrap(snowerr.InternalIo, "resolving workdir", err)
		}
		absCommon, err := filepath.Abs(commondir)
		if err != nil {
			return nil, snowerr.Wrap(snowerr.InternalIo, "resolving commondir", err)
		}
		if absCommon == absWorkdir || strings.HasPrefix(absCommon, absWorkdir+string(os.PathSeparator)) {
			return nil, snowerr.New(snowerr.InvalidArgument, "commondir must be outside repository")
		}
		if _, err := os.Stat(commondir); err == nil {
			return nil, snowerr.New(snowerr.AlreadyExists, "commondir already exists")
		}
	} else {
		commondir = filepath.Join(workdir, dotDirName)
	}

	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return nil, snowerr.Wrap(snowerr.InternalIo, "creating workdir", err)
	}
	if err := os.MkdirAll(commondir, 0o755); err != nil {
		return nil, snowerr.Wrap(snowerr.InternalIo, "creating commondir", err)
	}

	if pointerMode {
		absCommon, err := filepath.Abs(commondir)
		if err != nil {
			return nil, snowerr.Wrap(snowerr.InternalIo, "resolving commondir", err)
		}
		if err := os.WriteFile(filepath.Join(workdir, dotDirName), []byte(absCommon), 0o644); err != nil {
			return nil, snowerr.Wrap(snowerr.InternalIo, "writing commondir pointer", err)
		}
	}

	fs := osfs.New(commondir)
	store := objects.NewStore(fs)

	for _, dir := range initDirs {
		if err := atomicfs.EnsureDir(fs, dir); err != nil {
			return nil, err
		}
	}

	cfg := config.Default(opts.DefaultBranchName)
	if err := config.Write(fs, cfg); err != nil {
		return nil, err
	}

	genesisRoot := tree.CreateRootTree()
	tree.RecomputeHashes(genesisRoot)

	commitHash, err := objects.NewCommitHash()
	if err != nil {
		return nil, err
	}
	genesis := &objects.Commit{
		Hash:    commitHash,
		Message: "Created Project",
		Date:    time.Now().UnixMilli(),
		Root:    genesisRoot,
	}
	if err := store.WriteCommit(genesis); err != nil {
		return nil, err
	}

	ref := &objects.Reference{
		Name:   cfg.DefaultBranchName,
		Target: genesis.Hash,
		Type:   objects.Branch,
		Start:  genesis.Hash,
	}
	if err := store.WriteReference(ref); err != nil {
		return nil, err
	}

	if err := writeHead(fs, "ref: "+cfg.DefaultBranchName); err != nil {
		return nil, err
	}
	if err := atomicfs.WriteFile(fs, "logs/mainlog", []byte{}, 0o644); err != nil {
		return nil, err
	}

	repo := &Repository{
		Workdir:   workdir,
		Commondir: commondir,
		fs:        fs,
		store:     store,
		cfg:       cfg,
		commits:   map[string]*objects.Commit{genesis.Hash: genesis},
		refs:      map[string]*objects.Reference{ref.Name: ref},
	}
	repo.mainIndex = index.New(mainIndexID, repo.Workdir, repo.fs, repo.store)
	return repo, nil
}

// Open walks up from path looking for .snow, loads config/commits/refs, and
// clears a stale state marker left by a crashed mutation.
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, snowerr.Wrap(snowerr.InternalIo, "resolving path", err)
	}

	workdir, commondir, err := discoverCommondir(absPath)
	if err != nil {
		return nil, err
	}

	fs := osfs.New(commondir)
	store := objects.NewStore(fs)

	localCfg, err := config.Load(fs)
	if err != nil {
		return nil, err
	}
	globalCfg, err := config.LoadUserGlobal()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Layer(localCfg, globalCfg)
	if err != nil {
		return nil, err
	}

	loaded, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	// A crash between BUSY and IDLE leaves only temp files and a leftover
	// state marker; clear it so the repository reopens as IDLE.
	atomicfs.RemoveQuiet(fs, stateFileName)

	repo := &Repository{
		Workdir:   workdir,
		Commondir: commondir,
		fs:        fs,
		store:     store,
		cfg:       cfg,
		commits:   loaded.Commits,
		refs:      loaded.Refs,
	}
	repo.mainIndex = index.New(mainIndexID, repo.Workdir, repo.fs, repo.store)
	if idx, err := index.Load(mainIndexID, repo.Workdir, repo.fs, repo.store); err == nil {
		repo.mainIndex = idx
	}
	return repo, nil
}

// discoverCommondir walks up from start looking for a .snow entry, resolving
// a pointer file into its absolute commondir target.
func discoverCommondir(start string) (workdir, commondir string, err error) {
	dir := start
	for {
		candidate := filepath.Join(dir, dotDirName)
		info, statErr := os.Stat(candidate)
		if statErr == nil {
			if info.IsDir() {
				return dir, candidate, nil
			}
			data, readErr := os.ReadFile(candidate)
			if readErr != nil {
				return "", "", snowerr.Wrap(snowerr.InternalIo, "reading commondir pointer", readErr)
			}
			return dir, strings.TrimSpace(string(data)), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", snowerr.New(snowerr.NotFound, fmt.Sprintf("not a snowfs repository (or any parent up to mount point): %s", start))
		}
		dir = parent
	}
}

// Index returns the repository's main staging index.
func (r *Repository) Index() *index.Index { return r.mainIndex }

// Config returns the repository's layered configuration.
func (r *Repository) Config() config.Config { return r.cfg }
