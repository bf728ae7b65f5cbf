package rules

import (
	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// holderSubject tests scopes against a live object.
type holderSubject struct {
	h  model.Holder
	ev evaluation
}

func (s holderSubject) SubjectID() string { return s.h.SourceID() }

func (s holderSubject) IsA(typeID string) bool {
	t := s.h.FeatureType()
	return t != nil && t.IsA(typeID)
}

func (s holderSubject) HasAbility(id feature.TraitID) bool {
	if s.ev.depth >= maxScopeDepth {
		return false
	}
	ok, err := evaluation{turn: s.ev.turn, depth: s.ev.depth + 1}.hasAbility(s.h, id, nil)
	return err == nil && ok
}

// typeSubject tests scopes against a type definition.
type typeSubject struct {
	t  *spec.Type
	ev evaluation
}

func (s typeSubject) SubjectID() string { return s.t.ID }

func (s typeSubject) IsA(typeID string) bool { return s.t.IsA(typeID) }

func (s typeSubject) HasAbility(id feature.TraitID) bool {
	if s.ev.depth >= maxScopeDepth {
		return false
	}
	return evaluation{turn: s.ev.turn, depth: s.ev.depth + 1}.typeHasAbility(s.t, id, nil)
}

// SubjectOf returns h as a scope subject, for queries about one holder
// whose scopes should be tested against another (e.g. a player's
// modifiers applied to one of its units).
func SubjectOf(h model.Holder, turn int) feature.Subject {
	return holderSubject{h: h, ev: evaluation{turn: turn}}
}
