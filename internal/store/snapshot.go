// Package store owns the program profiles for the process lifetime: an
// immutable snapshot behind an atomic reference, plus the durable artifact
// it is saved to and reloaded from. One writer replaces the snapshot per
// rebuild; any number of readers score against it without locking.
package store

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
)

// Snapshot is one immutable generation of program profiles. Never mutate a
// snapshot after construction; rebuilds create a new one.
type Snapshot struct {
	BuildID  string
	BuiltAt  time.Time
	profiles map[string]*profile.ProgramProfile
	programs []string
	skipped  map[string]string
}

// NewSnapshot builds a snapshot from profiles keyed by normalized program
// id, plus the per-program reasons for anything excluded during the build.
func NewSnapshot(profiles map[string]*profile.ProgramProfile, skipped map[string]string) *Snapshot {
	s := &Snapshot{
		BuildID:  uuid.NewString(),
		BuiltAt:  time.Now().UTC(),
		profiles: make(map[string]*profile.ProgramProfile, len(profiles)),
		skipped:  make(map[string]string, len(skipped)),
	}
	for id, p := range profiles {
		s.profiles[id] = p
		s.programs = append(s.programs, id)
	}
	for id, reason := range skipped {
		s.skipped[id] = reason
	}
	sort.Strings(s.programs)
	return s
}

// Lookup returns the profile for a program id, tolerating cosmetic spelling
// variants. Misses return *UnknownProgramError with the supported list.
func (s *Snapshot) Lookup(programID string) (*profile.ProgramProfile, error) {
	key := corpus.NormalizeProgramID(programID)
	if p, ok := s.profiles[key]; ok {
		return p, nil
	}
	return nil, &UnknownProgramError{ProgramID: programID, Known: s.Programs()}
}

// Programs returns the supported program ids in sorted order. Callers must
// not modify the returned slice.
func (s *Snapshot) Programs() []string {
	return s.programs
}

// Skipped returns the programs excluded during the build and why.
func (s *Snapshot) Skipped() map[string]string {
	return s.skipped
}

// Len returns the number of supported programs.
func (s *Snapshot) Len() int {
	return len(s.profiles)
}
