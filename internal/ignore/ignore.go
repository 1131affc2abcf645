// Package ignore implements the .snowignore matcher: built-in defaults plus
// user patterns, compiled into a predicate over relative paths with
// negation, anchoring, and any-depth matching.
package ignore

import (
	"fmt"
	"strings"
)

// DefaultPatterns is the built-in ignore set shipped whenever
// config.nodefaultignore is false.
var DefaultPatterns = []string{
	"thumbs.db", "*.bkp", "bkp/**", "*_bak[0-9]*.[A-Za-z0-9]+", "*.tmp",
	"tmp/**", "temp/**", "cache/**", "*.lnk", "[Dd]esktop.ini",
	"Backup_of*", "Adobe Premiere Pro Auto-Save/**",
	"Adobe After Effects Auto-Save/**", "tmpAEtoAMEProject-*.aep",
	"RECOVER_*", "temp.noindex/**", "~*", "*.blend+([0-9])",
	"*.bak*([0-9])", "backup/**", "*.3dm.rhl", "*.3dmbak",
}

type compiledPattern struct {
	negate   bool
	anchored bool
	tokens   []token
	source   string
}

// Matcher is a compiled, ordered predicate over relative paths.
type Matcher struct {
	patterns []compiledPattern
}

// Compile builds a Matcher from .snowignore lines (already split, one
// pattern per element is not required — raw lines, including comments and
// blanks, are accepted). includeDefaults controls whether DefaultPatterns
// are prepended (false when config.nodefaultignore is set).
func Compile(lines []string, includeDefaults bool) (*Matcher, error) {
	var raw []string
	if includeDefaults {
		raw = append(raw, DefaultPatterns...)
	}
	raw = append(raw, lines...)

	m := &Matcher{}
	for _, line := range raw {
		cp, ok, err := compileLine(line)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", line, err)
		}
		if !ok {
			continue
		}
		m.patterns = append(m.patterns, cp)
	}
	return m, nil
}

// ParseFile splits raw .snowignore file content into lines ready for
// Compile (exported separately so callers can read the file however they
// access the workdir, e.g. through a billy.Filesystem).
func ParseFile(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

func compileLine(line string) (compiledPattern, bool, error) {
	line = stripComment(line)
	line = strings.TrimSpace(line)
	if line == "" {
		return compiledPattern{}, false, nil
	}

	negate := false
	if strings.HasPrefix(line, "!") {
		negate = true
		line = line[1:]
	}

	anchored := false
	if strings.HasPrefix(line, "/") {
		anchored = true
		line = line[1:]
	}

	// Any trailing /**, /*, or / is normalised away and the canonical
	// ?(/**) suffix is re-appended unconditionally (not only when a
	// marker was present): a pattern that happens to match a directory
	// must ignore everything beneath it too, the same way a plain
	// .gitignore directory entry does.
	core, _ := stripTrailingDirMarker(line)
	core = core + "?(/**)"

	tokens, err := parsePattern(core)
	if err != nil {
		return compiledPattern{}, false, err
	}

	return compiledPattern{negate: negate, anchored: anchored, tokens: tokens, source: line}, true, nil
}

// stripComment removes /*...*/ block comments, //... and #... line
// comments (including inline).
func stripComment(line string) string {
	for {
		start := strings.Index(line, "/*")
		if start < 0 {
			break
		}
		end := strings.Index(line[start+2:], "*/")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+2+end+2:]
	}
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return line
}

// stripTrailingDirMarker removes a trailing "/**", "/*", or "/" from
// pattern, reporting whether one was present.
func stripTrailingDirMarker(pattern string) (string, bool) {
	switch {
	case strings.HasSuffix(pattern, "/**"):
		return pattern[:len(pattern)-3], true
	case strings.HasSuffix(pattern, "/*"):
		return pattern[:len(pattern)-2], true
	case strings.HasSuffix(pattern, "/"):
		return pattern[:len(pattern)-1], true
	default:
		return pattern, false
	}
}

// matchesPath reports whether cp matches relPath, trying every segment
// boundary as a candidate start position when the pattern is not anchored.
func (cp compiledPattern) matchesPath(relPath string) bool {
	s := []rune(relPath)
	if cp.anchored {
		return fullMatch(cp.tokens, s)
	}
	if fullMatch(cp.tokens, s) {
		return true
	}
	for i, r := range s {
		if r == '/' && i+1 < len(s) {
			if fullMatch(cp.tokens, s[i+1:]) {
				return true
			}
		}
	}
	return false
}

// Classify returns the subset of relPaths the matcher ignores, applying
// last-match-wins negation semantics across the whole ordered pattern list.
func (m *Matcher) Classify(relPaths []string) map[string]bool {
	ignored := make(map[string]bool)
	for _, p := range relPaths {
		state := false
		for _, cp := range m.patterns {
			if cp.matchesPath(p) {
				state = !cp.negate
			}
		}
		if state {
			ignored[p] = true
		}
	}
	return ignored
}

// IsIgnored is a single-path convenience wrapper around Classify.
func (m *Matcher) IsIgnored(relPath string) bool {
	state := false
	for _, cp := range m.patterns {
		if cp.matchesPath(relPath) {
			state = !cp.negate
		}
	}
	return state
}
