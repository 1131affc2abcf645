package repository

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/snowfs/snowfs/internal/ignore"
	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/tree"
	"github.com/snowfs/snowfs/internal/walk"
)

// Filter controls which status entries GetStatus returns.
type Filter uint16

const (
	IncludeUntracked Filter = 1 << iota
	IncludeModified
	IncludeDeleted
	IncludeUnmodified
	IncludeIgnored
	IncludeDirectories
	SortCaseSensitively
)

// FilterDefault is the default status view: untracked + modified + deleted,
// no ignored, no unmodified entries.
const FilterDefault = IncludeUntracked | IncludeModified | IncludeDeleted

// FilterAll includes every entry, ignored and unmodified alike.
const FilterAll = IncludeUntracked | IncludeModified | IncludeDeleted |
	IncludeUnmodified | IncludeIgnored | IncludeDirectories

// Kind is a status entry's classification. Exactly one applies to a given
// entry at a time; it is not a combinable flag set despite the Filter bits
// above selecting which kinds to include.
type Kind int

const (
	WTNew Kind = iota
	WTModified
	WTDeleted
	WTUnmodified
	Ignored
)

func (k Kind) String() string {
	switch k {
	case WTNew:
		return "new"
	case WTModified:
		return "modified"
	case WTDeleted:
		return "deleted"
	case WTUnmodified:
		return "unmodified"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Entry is one status result row.
type Entry struct {
	Path   string
	IsDir  bool
	Status Kind
	Size   int64
}

// ignoreMatcher compiles the matcher for this repository: built-in defaults
// (unless config.nodefaultignore) plus .snowignore lines from the workdir.
func (r *Repository) ignoreMatcher() (*ignore.Matcher, error) {
	var lines []string
	if data, err := os.ReadFile(filepath.Join(r.Workdir, ".snowignore")); err == nil {
		lines = ignore.ParseFile(string(data))
	}
	return ignore.Compile(lines, !r.cfg.NoDefaultIgnore)
}

// GetStatus traverses the workdir, applies the ignore matcher, and compares
// every observed path against the HEAD tree. The returned slice is sorted
// by path so repeated calls over unchanged state are reproducible.
func (r *Repository) GetStatus(filter Filter) ([]Entry, error) {
	headCommit, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	headPaths := tree.PathSet(headCommit.Root)

	matcher, err := r.ignoreMatcher()
	if err != nil {
		return nil, err
	}

	walkFlags := walk.Files | walk.Hidden
	if filter&IncludeDirectories != 0 {
		walkFlags |= walk.Dirs
	}
	onDisk, err := walk.Walk(r.Workdir, walkFlags)
	if err != nil {
		return nil, err
	}

	relPaths := make([]string, len(onDisk))
	for i, e := range onDisk {
		relPaths[i] = e.RelPath
	}
	ignoredSet := matcher.Classify(relPaths)

	seen := make(map[string]bool, len(onDisk))
	var entries []Entry

	for _, e := range onDisk {
		seen[e.RelPath] = true
		if ignoredSet[e.RelPath] {
			if node := headPaths[e.RelPath]; node == nil && filter&IncludeIgnored != 0 {
				entries = append(entries, Entry{Path: e.RelPath, IsDir: e.IsDir, Status: Ignored})
			}
			continue
		}

		node := headPaths[e.RelPath]
		if node == nil {
			if filter&IncludeUntracked != 0 {
				size := int64(0)
				if info, statErr := os.Stat(e.AbsPath); statErr == nil {
					size = info.Size()
				}
				entries = append(entries, Entry{Path: e.RelPath, IsDir: e.IsDir, Status: WTNew, Size: size})
			}
			continue
		}

		if e.IsDir {
			// Directories never carry WTModified: their contents are
			// reflected by the status of the files within them.
			if filter&IncludeUnmodified != 0 {
				entries = append(entries, Entry{Path: e.RelPath, IsDir: true, Status: WTUnmodified, Size: node.Stats.Size})
			}
			continue
		}

		modified, err := tree.IsFileModified(node, e.AbsPath, tree.Default)
		if err != nil {
			return nil, err
		}
		if modified {
			if filter&IncludeModified != 0 {
				info, statErr := os.Stat(e.AbsPath)
				size := node.Stats.Size
				if statErr == nil {
					size = info.Size()
				}
				entries = append(entries, Entry{Path: e.RelPath, IsDir: false, Status: WTModified, Size: size})
			}
			continue
		}
		if filter&IncludeUnmodified != 0 {
			entries = append(entries, Entry{Path: e.RelPath, IsDir: false, Status: WTUnmodified, Size: node.Stats.Size})
		}
	}

	if filter&IncludeDeleted != 0 {
		for relPath, node := range headPaths {
			if node.Kind == tree.Dir && filter&IncludeDirectories == 0 {
				continue
			}
			if !seen[relPath] {
				entries = append(entries, Entry{Path: relPath, IsDir: node.Kind == tree.Dir, Status: WTDeleted, Size: node.Stats.Size})
			}
		}
	}

	sortEntries(entries, filter&SortCaseSensitively != 0)
	return entries, nil
}

func sortEntries(entries []Entry, caseSensitive bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		if caseSensitive {
			return entries[i].Path < entries[j].Path
		}
		return spath.CompareFold(entries[i].Path, entries[j].Path) < 0
	})
}

// normalizeUserPaths converts CLI-supplied paths (absolute or cwd-relative)
// into workdir-relative, forward-slash normalised form.
func (r *Repository) normalizeUserPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(r.Workdir, abs)
		if err != nil {
			return nil, err
		}
		out = append(out, spath.Normalize(filepath.ToSlash(rel)))
	}
	return out, nil
}
