package tree

import (
	"os"
	"strings"

	"github.com/snowfs/snowfs/internal/fingerprint"
)

// DetectionMode controls how aggressively IsFileModified falls back to
// re-hashing a file once size and mtime are inconclusive.
type DetectionMode int

const (
	OnlySizeAndMtime DetectionMode = iota
	SizeAndHashForSmallFiles
	Default
	SizeAndHashForAllFiles
)

// smallFileThreshold mirrors the chunked hasher's block threshold (20 MB):
// a file at or above it is never re-hashed under SizeAndHashForSmallFiles.
const smallFileThreshold = 20 * 1024 * 1024

// mtimeEpsilonMillis is the tolerance under which a commit-recorded mtime
// and the on-disk mtime are considered equal (filesystems and JSON-via-ms
// round-tripping both lose sub-millisecond precision).
const mtimeEpsilonMillis = 1

// TextExtensions is the lower-cased extension set used by Default mode to
// decide whether a file is cheap enough to re-hash instead of trusting
// size+mtime alone.
var TextExtensions = map[string]bool{
	".txt": true, ".html": true, ".htm": true, ".css": true, ".js": true,
	".jsx": true, ".ts": true, ".less": true, ".scss": true, ".wasm": true,
	".php": true, ".c": true, ".cc": true, ".cpp": true, ".cxx": true,
	".h": true, ".hh": true, ".hpp": true, ".cs": true, ".clj": true,
	".class": true, ".el": true, ".go": true, ".java": true, ".lua": true,
	".m": true, ".m4": true, ".pl": true, ".po": true, ".py": true,
	".rb": true, ".rs": true, ".sh": true, ".swift": true, ".vb": true,
	".vcxproj": true, ".xcodeproj": true, ".xml": true, ".plist": true,
	".diff": true, ".patch": true,
}

// IsFileModified compares a committed file entry against its current state
// on disk at absPath, applying the four-mode detection heuristic.
func IsFileModified(file *Node, absPath string, mode DetectionMode) (bool, error) {
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if info.Size() != file.Stats.Size {
		return true, nil
	}

	diskMtime := info.ModTime().UnixMilli()
	if abs64(diskMtime-file.Stats.Mtime) < mtimeEpsilonMillis {
		return false, nil
	}

	effective := mode
	if mode == Default {
		if TextExtensions[strings.ToLower(file.Ext)] {
			effective = SizeAndHashForSmallFiles
		} else {
			effective = OnlySizeAndMtime
		}
	}

	switch effective {
	case OnlySizeAndMtime:
		return true, nil
	case SizeAndHashForSmallFiles:
		if file.Stats.Size >= smallFileThreshold {
			return true, nil
		}
		return rehashDiffers(file, absPath)
	case SizeAndHashForAllFiles:
		return rehashDiffers(file, absPath)
	default:
		return true, nil
	}
}

func rehashDiffers(file *Node, absPath string) (bool, error) {
	result, err := fingerprint.FileHash(absPath)
	if err != nil {
		return false, err
	}
	return result.Hash != file.Hash, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
