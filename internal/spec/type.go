package spec

import (
	"github.com/oss-qm/freecol-sub000/internal/feature"
)

// Kind is the category of a type definition.
type Kind int8

const (
	KindGeneric Kind = iota
	KindBuilding
	KindUnit
	KindNation
)

var kindNames = [...]string{
	KindGeneric:  "type",
	KindBuilding: "building-type",
	KindUnit:     "unit-type",
	KindNation:   "nation-type",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(?)"
}

// Type is a data-loaded template other objects are created from.
// Types are immutable once the specification is built, except through
// Specification fixups.
type Type struct {
	ID            string
	Kind          Kind
	Index         int // declaration order
	ModifierIndex int // default fold index of modifiers this type contributes
	Abstract      bool
	Parent        *Type

	Features *feature.Container

	concrete any // *BuildingType, *UnitType, *NationType or nil
}

// SourceID implements feature.Source.
func (t *Type) SourceID() string {
	return t.ID
}

// Depth is the number of ancestors.
func (t *Type) Depth() int {
	n := 0
	for p := t.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// IsA reports whether t is typeID or extends it, directly or transitively.
func (t *Type) IsA(typeID string) bool {
	for c := t; c != nil; c = c.Parent {
		if c.ID == typeID {
			return true
		}
	}
	return false
}

// Concrete returns the kind-specific definition embedding t.
func (t *Type) Concrete() any {
	return t.concrete
}

// Abilities returns t's abilities with the given id.
func (t *Type) Abilities(id feature.TraitID) []feature.AbilityEntry {
	return t.Features.Abilities(id)
}

// Modifiers returns t's modifiers with the given id.
func (t *Type) Modifiers(id feature.TraitID) []feature.ModifierEntry {
	return t.Features.Modifiers(id)
}

func (t *Type) String() string {
	return t.ID
}
