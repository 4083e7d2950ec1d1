package territory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter indicates a territory filter that violates hierarchy
// containment or references a name missing from the reference table.
var ErrInvalidFilter = errors.New("territory: invalid filter")

// Filter carries the optional narrowing requested by the caller. The
// regional root is implicit and comes from configuration, never from the
// request.
type Filter struct {
	Branch    string
	Subbranch string
	Cluster   string
	Kabupaten string
}

// Validate enforces strict containment: each supplied level requires its
// parent level. Violations surface before any warehouse query runs.
func (f Filter) Validate() error {
	if f.Subbranch != "" && f.Branch == "" {
		return fmt.Errorf("%w: subbranch requires branch", ErrInvalidFilter)
	}
	if f.Cluster != "" && f.Subbranch == "" {
		return fmt.Errorf("%w: cluster requires subbranch", ErrInvalidFilter)
	}
	if f.Kabupaten != "" && f.Cluster == "" {
		return fmt.Errorf("%w: kabupaten requires cluster", ErrInvalidFilter)
	}
	return nil
}

// IsZero reports whether no narrowing was requested.
func (f Filter) IsZero() bool {
	return f.Branch == "" && f.Subbranch == "" && f.Cluster == "" && f.Kabupaten == ""
}

// Token renders a stable cache-key fragment for the filter.
func (f Filter) Token() string {
	parts := []string{f.Branch, f.Subbranch, f.Cluster, f.Kabupaten}
	for i, p := range parts {
		if p == "" {
			parts[i] = "-"
		}
	}
	return strings.ToLower(strings.Join(parts, "|"))
}

// Scope is a resolved filter: the fixed regional root plus whatever
// narrowing the filter supplies. Absent levels mean "no restriction
// beyond parent scope".
type Scope struct {
	Regional  string
	Branch    string
	Subbranch string
	Cluster   string
	Kabupaten string
}

// NewScope roots a filter at the configured regional.
func NewScope(regional string, f Filter) Scope {
	return Scope{
		Regional:  regional,
		Branch:    f.Branch,
		Subbranch: f.Subbranch,
		Cluster:   f.Cluster,
		Kabupaten: f.Kabupaten,
	}
}

// Condition is one equality predicate contributed to a WHERE clause.
type Condition struct {
	Column string
	Value  string
}

// Conditions lists the narrowing predicates in containment order.
// Narrowing composes by AND.
func (s Scope) Conditions() []Condition {
	conds := []Condition{{Column: LevelRegional.Column(), Value: s.Regional}}
	if s.Branch != "" {
		conds = append(conds, Condition{Column: LevelBranch.Column(), Value: s.Branch})
	}
	if s.Subbranch != "" {
		conds = append(conds, Condition{Column: LevelSubbranch.Column(), Value: s.Subbranch})
	}
	if s.Cluster != "" {
		conds = append(conds, Condition{Column: LevelCluster.Column(), Value: s.Cluster})
	}
	if s.Kabupaten != "" {
		conds = append(conds, Condition{Column: LevelKabupaten.Column(), Value: s.Kabupaten})
	}
	return conds
}

// ValueAt returns the scoped name at the given level, empty when the
// level is unrestricted.
func (s Scope) ValueAt(level Level) string {
	switch level {
	case LevelRegional:
		return s.Regional
	case LevelBranch:
		return s.Branch
	case LevelSubbranch:
		return s.Subbranch
	case LevelCluster:
		return s.Cluster
	case LevelKabupaten:
		return s.Kabupaten
	}
	return ""
}

// ParentScope drops the predicate at the given level and below, leaving
// the containment chain above it. Used to validate a supplied name
// against the reference set of its parent scope.
func (s Scope) ParentScope(level Level) Scope {
	out := Scope{Regional: s.Regional}
	switch level {
	case LevelKabupaten:
		out.Cluster = s.Cluster
		fallthrough
	case LevelCluster:
		out.Subbranch = s.Subbranch
		fallthrough
	case LevelSubbranch:
		out.Branch = s.Branch
	}
	return out
}
