// Package project applies LABELS/REDACT field projection to a record,
// preserving field order (spec.md §4.D).
package project

import "github.com/coffersTech/nanots/internal/tsvalue"

// Mode selects which projection, if any, applies to a record.
type Mode int

const (
	ModeNone Mode = iota
	ModeInclude
	ModeExclude
)

// Spec is a compiled projection: a mode plus the set of names it tests.
type Spec struct {
	Mode  Mode
	Names map[string]struct{}
}

// None is the no-op projection.
var None = Spec{Mode: ModeNone}

// NewInclude builds a LABELS projection keeping only the named fields.
func NewInclude(names []string) Spec {
	return Spec{Mode: ModeInclude, Names: toSet(names)}
}

// NewExclude builds a REDACT projection dropping the named fields.
func NewExclude(names []string) Spec {
	return Spec{Mode: ModeExclude, Names: toSet(names)}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Apply returns the surviving fields in their original order; for Include
// and Exclude it builds a new slice and leaves fields untouched.
func (s Spec) Apply(fields []tsvalue.Field) []tsvalue.Field {
	if s.Mode == ModeNone {
		return fields
	}
	out := make([]tsvalue.Field, 0, len(fields))
	for _, f := range fields {
		_, listed := s.Names[f.Name]
		keep := (s.Mode == ModeInclude && listed) || (s.Mode == ModeExclude && !listed)
		if keep {
			out = append(out, f)
		}
	}
	return out
}
