package repository

import "github.com/snowfs/snowfs/internal/snowerr"

// acquireState creates the state marker, failing with RepositoryBusy if one
// is already present.
func (r *Repository) acquireState() error {
	if _, err := r.fs.Stat(stateFileName); err == nil {
		return snowerr.New(snowerr.RepositoryBusy, "repository busy")
	}
	f, err := r.fs.Create(stateFileName)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "acquiring repository state", err)
	}
	return f.Close()
}

// releaseState removes the state marker (BUSY -> IDLE, success or failure).
func (r *Repository) releaseState() {
	_ = r.fs.Remove(stateFileName)
}
