package feature

import "fmt"

// Source is whatever contributed a feature: a type definition or a live object.
type Source interface {
	SourceID() string
}

// NamedSource is a source known only by id, e.g. an event, or a source
// restored from a saved game that is not a type definition.
type NamedSource string

// SourceID implements Source.
func (s NamedSource) SourceID() string { return string(s) }

// SourceID returns the id of src, or "" for a nil source.
func SourceID(src Source) string {
	if src == nil {
		return ""
	}
	return src.SourceID()
}

// SameSource compares sources by id, so a restored object matches the
// original it was serialized from.
func SameSource(a, b Source) bool {
	return SourceID(a) == SourceID(b)
}

// Ability is a named boolean trait.
//
// Only Value may change after construction, and only during post-load fixups.
type Ability struct {
	ID       TraitID
	Source   Source
	Value    bool
	Validity TurnRange
	Scopes   []*Scope
}

// NewAbility creates an always-valid, unscoped ability.
func NewAbility(id TraitID, source Source, value bool) *Ability {
	return &Ability{ID: id, Source: source, Value: value}
}

// AppliesTo reports whether the ability is active for subject at turn.
func (a *Ability) AppliesTo(subject Subject, turn int) bool {
	return a.Validity.Contains(turn) && scopesMatch(a.Scopes, subject, turn)
}

// Same reports whether a and o are the same trait occurrence (id and source).
func (a *Ability) Same(o *Ability) bool {
	return a.ID == o.ID && SameSource(a.Source, o.Source)
}

// Equal reports same id, source and value.
func (a *Ability) Equal(o *Ability) bool {
	return a.Same(o) && a.Value == o.Value
}

// Identical additionally compares validity and scopes.
func (a *Ability) Identical(o *Ability) bool {
	return a.Equal(o) && a.Validity == o.Validity && scopesEqual(a.Scopes, o.Scopes)
}

// Clone returns a copy; scopes are immutable and shared.
func (a *Ability) Clone() *Ability {
	c := *a
	return &c
}

func (a *Ability) String() string {
	return fmt.Sprintf("%s=%t (source=%s, %s)", a.ID, a.Value, SourceID(a.Source), a.Validity)
}
