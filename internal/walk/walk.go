// Package walk implements a flag-driven, mutation-tolerant subtree walker:
// unlike filepath.WalkDir, a vanished file or a directory renamed away
// mid-walk does not abort the whole traversal, it is simply skipped.
package walk

import (
	"os"
	"sort"

	"github.com/snowfs/snowfs/internal/spath"
	"github.com/snowfs/snowfs/internal/snowerr"
)

// Flags controls what Walk yields.
type Flags uint8

const (
	Dirs Flags = 1 << iota
	Files
	Hidden
	BrowseRepos
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Entry is one yielded filesystem node.
type Entry struct {
	AbsPath string
	RelPath string
	IsDir   bool
}

var alwaysSkipped = map[string]bool{
	".DS_Store": true,
	"thumbs.db": true,
}

// Walk enumerates root according to flags and returns every matching entry.
// It never aborts because a single file vanished mid-walk; it simply omits
// what it could not observe.
func Walk(root string, flags Flags) ([]Entry, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, snowerr.Wrap(snowerr.NotFound, "walk root does not exist", err)
	}
	var out []Entry
	walkDir(root, root, "", flags, &out)
	return out, nil
}

func walkDir(absRoot, absDir, relDir string, flags Flags, out *[]Entry) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		// Directory vanished or became unreadable mid-walk: yield nothing
		// further from here, but do not fail the whole traversal.
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, de := range entries {
		name := de.Name()
		if alwaysSkipped[name] {
			continue
		}
		if !flags.has(Hidden) && len(name) > 0 && name[0] == '.' {
			continue
		}
		if !flags.has(BrowseRepos) && (name == ".snow" || name == ".git") {
			continue
		}

		relPath := spath.Join(relDir, name)
		absPath := absDir + string(os.PathSeparator) + name

		info, err := de.Info()
		if err != nil {
			// File vanished between ReadDir and Info: skip, keep going.
			continue
		}

		if info.IsDir() {
			if flags.has(Dirs) {
				*out = append(*out, Entry{AbsPath: absPath, RelPath: relPath, IsDir: true})
			}
			walkDir(absRoot, absPath, relPath, flags, out)
			continue
		}

		if flags.has(Files) {
			*out = append(*out, Entry{AbsPath: absPath, RelPath: relPath, IsDir: false})
		}
	}
}
