package store

import (
	"sync/atomic"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
)

// Store is the process-wide holder of the current snapshot. Replace swaps
// the whole generation atomically, so in-flight readers keep the snapshot
// they started with and never observe a half-built store.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// New returns an empty, uninitialized store.
func New() *Store {
	return &Store{}
}

// Current returns the active snapshot, or *NotInitializedError when no
// build has completed yet.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, &NotInitializedError{}
	}
	return snap, nil
}

// Replace atomically installs a new snapshot generation.
func (s *Store) Replace(snap *Snapshot) {
	s.current.Store(snap)
}

// Initialized reports whether a snapshot is available.
func (s *Store) Initialized() bool {
	return s.current.Load() != nil
}

// Lookup resolves a program profile from the current snapshot.
func (s *Store) Lookup(programID string) (*profile.ProgramProfile, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	return snap.Lookup(programID)
}
