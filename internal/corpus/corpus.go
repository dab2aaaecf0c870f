// Package corpus holds the historical application data the profiles are
// built from: one record per successful application, grouped per program.
package corpus

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// Record is one historical successful application. The corpus contains only
// admits, so the success label is implicit.
type Record struct {
	ProgramID string         `json:"program_id"`
	Features  feature.Vector `json:"features"`
}

// ProgramCorpus is the full record set for one program. It is built once per
// batch run and treated as immutable afterwards.
type ProgramCorpus struct {
	ProgramID   string
	DisplayName string
	Records     []Record
}

// Len returns the number of records in the corpus.
func (c *ProgramCorpus) Len() int {
	return len(c.Records)
}

// Vectors returns the feature vectors of all records, in corpus order.
func (c *ProgramCorpus) Vectors() []feature.Vector {
	vectors := make([]feature.Vector, len(c.Records))
	for i, r := range c.Records {
		vectors[i] = r.Features
	}
	return vectors
}

// InsufficientDataError reports a program whose application history is too
// small for the requested operation. It is terminal for that program within
// a batch run: the program is reported as unsupported, never silently
// defaulted.
type InsufficientDataError struct {
	ProgramID string
	Have      int
	Need      int
}

func (e *InsufficientDataError) Error() string {
	if e.ProgramID == "" {
		return fmt.Sprintf("insufficient data: %d applications, need at least %d", e.Have, e.Need)
	}
	return fmt.Sprintf("program %q has insufficient data: %d applications, need at least %d", e.ProgramID, e.Have, e.Need)
}

// Kind returns the machine-readable error kind.
func (e *InsufficientDataError) Kind() string { return "INSUFFICIENT_DATA" }

// Suggestion returns an actionable hint for the caller.
func (e *InsufficientDataError) Suggestion() string {
	return "choose a program with a larger application history or wait for more data to accumulate"
}

// NormalizeProgramID canonicalizes a program identifier so cosmetic variants
// (case, width, stray whitespace) resolve to the same program at build and
// lookup time.
func NormalizeProgramID(id string) string {
	id = norm.NFKC.String(id)
	id = strings.ToLower(id)
	return strings.Join(strings.Fields(id), " ")
}

// GroupByProgram splits records into per-program corpora keyed by normalized
// program id. The first spelling seen for a program is kept as its display
// name. Programs are returned in sorted key order.
func GroupByProgram(records []Record) []*ProgramCorpus {
	byID := make(map[string]*ProgramCorpus)
	for _, r := range records {
		key := NormalizeProgramID(r.ProgramID)
		if key == "" {
			continue
		}
		c, ok := byID[key]
		if !ok {
			c = &ProgramCorpus{ProgramID: key, DisplayName: strings.TrimSpace(r.ProgramID)}
			byID[key] = c
		}
		c.Records = append(c.Records, r)
	}

	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*ProgramCorpus, 0, len(keys))
	for _, k := range keys {
		out = append(out, byID[k])
	}
	return out
}
