// Package rid implements the DBPF resource identifier (group, instance,
// type), the resource filter family used to restrict index scans, and
// the three interchange text forms (colon, maxis, s4pe).
package rid

import "fmt"

// RID is the immutable (group, instance, type) triple identifying a
// resource within a DBPF archive. Equality is plain Go struct equality.
// An RID is itself a Filter: it matches only itself.
type RID struct {
	Group    uint32
	Instance uint64
	Type     uint32
}

// Matches reports whether r equals candidate, satisfying Filter.
func (r RID) Matches(candidate RID) bool {
	return r == candidate
}

// Filter restricts which RIDs an index scan yields. The set of
// implementations is closed: RID (exact match), Wildcard (a triple where
// any component may be unset), and AnyOf (disjunction of filters).
type Filter interface {
	Matches(candidate RID) bool
}

// Wildcard matches an RID iff every non-nil field equals the
// corresponding candidate field. A Wildcard with all fields nil matches
// everything.
type Wildcard struct {
	Group    *uint32
	Instance *uint64
	Type     *uint32
}

func (w Wildcard) Matches(candidate RID) bool {
	if w.Group != nil && *w.Group != candidate.Group {
		return false
	}
	if w.Instance != nil && *w.Instance != candidate.Instance {
		return false
	}
	if w.Type != nil && *w.Type != candidate.Type {
		return false
	}
	return true
}

// AnyOf matches an RID iff any of its member filters matches it.
type AnyOf []Filter

func (a AnyOf) Matches(candidate RID) bool {
	for _, f := range a {
		if f.Matches(candidate) {
			return true
		}
	}
	return false
}

// String formats r using the colon form, matching the package default
// used by the CLI front end.
func (r RID) String() string {
	return Format(r, Colon)
}

// TextForm selects one of the three interchange text forms for Format.
type TextForm int

const (
	Colon TextForm = iota
	Maxis
	S4PE
)

// Format renders id in the requested text form. There is no process-wide
// default form (per the redesign flag in the spec's design notes); every
// caller picks the form explicitly.
func Format(id RID, form TextForm) string {
	switch form {
	case Colon:
		return fmt.Sprintf("%08x:%016x:%08x", id.Group, id.Instance, id.Type)
	case Maxis:
		return fmt.Sprintf("%08x!%016x.%08x", id.Group, id.Instance, id.Type)
	case S4PE:
		return fmt.Sprintf("S4_%08X_%08X_%016X", id.Type, id.Group, id.Instance)
	default:
		return fmt.Sprintf("%08x:%016x:%08x", id.Group, id.Instance, id.Type)
	}
}
