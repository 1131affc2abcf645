package repository

import (
	"fmt"
	"sort"

	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/snowerr"
)

// MergeResult is the pure (non-writing) outcome of merging two repositories'
// commit graphs and reference sets.
type MergeResult struct {
	Commits map[string]*objects.Commit
	Refs    map[string]*objects.Reference
}

// Merge unions repoA's and repoB's commit and reference sets. It performs
// no writes. Commit hashes are random-but-stable identities shared
// identically across clones of the same history, so
// "unrelated histories" reduces to a plain set-intersection check over
// commit hash maps rather than a common-ancestor graph walk.
func Merge(repoA, repoB *Repository) (*MergeResult, error) {
	if !shareCommit(repoA.commits, repoB.commits) {
		return nil, snowerr.New(snowerr.UnrelatedHistories, "refusing to merge unrelated histories")
	}

	commits := make(map[string]*objects.Commit, len(repoA.commits)+len(repoB.commits))
	for hash, c := range repoA.commits {
		commits[hash] = c
	}
	for hash, c := range repoB.commits {
		commits[hash] = c
	}

	refs := mergeRefs(repoA.refs, repoB.refs)

	return &MergeResult{Commits: commits, Refs: refs}, nil
}

func shareCommit(a, b map[string]*objects.Commit) bool {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for hash := range small {
		if _, ok := large[hash]; ok {
			return true
		}
	}
	return false
}

// mergeRefs unions two reference sets keyed by name. When both sides name
// the same reference pointing at the same commit, either copy is kept. When
// they diverge, both are kept: the side that loses the name keeps it under
// a deterministic collision-avoiding suffix so the result never depends on
// iteration order.
func mergeRefs(a, b map[string]*objects.Reference) map[string]*objects.Reference {
	out := make(map[string]*objects.Reference, len(a)+len(b))
	for name, ref := range a {
		out[name] = ref
	}

	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		refB := b[name]
		existing, collides := out[name]
		if !collides {
			out[name] = refB
			continue
		}
		if existing.Target == refB.Target {
			continue
		}
		out[uniqueName(out, name)] = refB
	}
	return out
}

func uniqueName(existing map[string]*objects.Reference, base string) string {
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s~merged-%d", base, i)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
