package repository

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
)

// Order controls GetAllCommits' result ordering.
type Order int

const (
	Undefined Order = iota
	OldestFirst
	NewestFirst
)

// GetAllCommits returns every loaded commit, ordered per order. UNDEFINED
// carries no ordering guarantee beyond a stable, repeatable tie-break on
// hash (map iteration order is not itself deterministic across runs).
func (r *Repository) GetAllCommits(order Order) []*objects.Commit {
	out := make([]*objects.Commit, 0, len(r.commits))
	for _, c := range r.commits {
		out = append(out, c)
	}
	switch order {
	case OldestFirst:
		sort.Slice(out, func(i, j int) bool { return lessCommit(out[i], out[j]) })
	case NewestFirst:
		sort.Slice(out, func(i, j int) bool { return lessCommit(out[j], out[i]) })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	}
	return out
}

func lessCommit(a, b *objects.Commit) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.Hash < b.Hash
}

// FindCommitByHash resolves spec: a full hex hash, a reference name
// (including "HEAD"), or either of those followed by one or more "~<n>"
// suffixes that walk n first-parents back.
func (r *Repository) FindCommitByHash(spec string) (*objects.Commit, error) {
	base, steps, err := parseCommitSpec(spec)
	if err != nil {
		return nil, err
	}

	hash, err := r.resolveBase(base, spec)
	if err != nil {
		return nil, err
	}

	commit, ok := r.commits[hash]
	if !ok {
		return nil, snowerr.New(snowerr.InvalidArgument, fmt.Sprintf("invalid commit-hash '%s'", spec))
	}

	for i := 0; i < steps; i++ {
		if len(commit.Parents) == 0 {
			return nil, snowerr.New(snowerr.NotFound, fmt.Sprintf("commit hash '%s' out of history", spec))
		}
		parent, ok := r.commits[commit.Parents[0]]
		if !ok {
			return nil, snowerr.New(snowerr.Corruption, fmt.Sprintf("missing parent commit %s", commit.Parents[0]))
		}
		commit = parent
	}
	return commit, nil
}

// parseCommitSpec splits spec into its base (hash or reference name) and
// the total number of "~<n>" parent-walk steps requested.
func parseCommitSpec(spec string) (base string, steps int, err error) {
	base = spec
	for {
		idx := strings.LastIndex(base, "~")
		if idx < 0 {
			break
		}
		n, convErr := strconv.Atoi(base[idx+1:])
		if convErr != nil || n < 0 {
			return "", 0, snowerr.New(snowerr.InvalidArgument, fmt.Sprintf("invalid commit-hash '%s'", spec))
		}
		steps += n
		base = base[:idx]
	}
	if base == "" {
		return "", 0, snowerr.New(snowerr.InvalidArgument, fmt.Sprintf("invalid commit-hash '%s'", spec))
	}
	return base, steps, nil
}

// resolveBase resolves base (a reference name, "HEAD", or a full commit
// hash) to a commit hash, following at most one reference indirection chain
// with a cycle guard.
func (r *Repository) resolveBase(base, origSpec string) (string, error) {
	if base == "HEAD" {
		return r.HeadCommitHash()
	}

	visited := map[string]bool{}
	cur := base
	for {
		if visited[cur] {
			return "", snowerr.New(snowerr.Corruption, fmt.Sprintf("reference cycle detected resolving '%s'", origSpec))
		}
		visited[cur] = true

		if ref, ok := r.refs[cur]; ok {
			cur = ref.Target
			continue
		}
		if isCommitHash(cur) {
			return cur, nil
		}
		return "", snowerr.New(snowerr.InvalidArgument, fmt.Sprintf("invalid commit-hash '%s'", origSpec))
	}
}

func isCommitHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
