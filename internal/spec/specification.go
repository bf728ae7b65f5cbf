package spec

import (
	"fmt"
	"log/slog"

	"github.com/oss-qm/freecol-sub000/internal/feature"
)

// Specification is a resolved, immutable catalog of type definitions.
//
// Abstract types are not part of the catalog; they stay reachable as
// parents and as feature sources. Safe for concurrent reads.
type Specification struct {
	records []*rawType
	all     map[string]*Type // every resolved type, abstract included

	types     map[string]*Type
	typeList  []*Type
	buildings map[string]*BuildingType
	units     map[string]*UnitType
	nations   map[string]*NationType

	buildingList []*BuildingType
	unitList     []*UnitType
	nationList   []*NationType
	genericList  []*Type

	abstractCount int
	checksum      uint64
}

func newSpecification(set *recordSet, resolved map[string]*Type) *Specification {
	n := len(set.order)
	s := &Specification{
		records:   set.order,
		all:       resolved,
		types:     make(map[string]*Type, n),
		buildings: make(map[string]*BuildingType),
		units:     make(map[string]*UnitType),
		nations:   make(map[string]*NationType),
	}

	for _, raw := range set.order {
		t := resolved[raw.common.ID]
		if t.Abstract {
			s.abstractCount++
			continue
		}
		s.types[t.ID] = t
		s.typeList = append(s.typeList, t)

		switch c := t.concrete.(type) {
		case *BuildingType:
			s.buildings[t.ID] = c
			s.buildingList = append(s.buildingList, c)
		case *UnitType:
			s.units[t.ID] = c
			s.unitList = append(s.unitList, c)
		case *NationType:
			s.nations[t.ID] = c
			s.nationList = append(s.nationList, c)
		default:
			s.genericList = append(s.genericList, t)
		}
	}
	s.checksum = s.computeChecksum()
	return s
}

// Type returns a concrete (non-abstract) type by id.
func (s *Specification) Type(id string) (*Type, bool) {
	t, ok := s.types[id]
	return t, ok
}

// Source returns any resolved type by id, abstract ones included.
// Used to rebind feature sources when restoring saved objects.
func (s *Specification) Source(id string) (*Type, bool) {
	t, ok := s.all[id]
	return t, ok
}

// BuildingType returns a building type by id.
func (s *Specification) BuildingType(id string) (*BuildingType, bool) {
	t, ok := s.buildings[id]
	return t, ok
}

// UnitType returns a unit type by id.
func (s *Specification) UnitType(id string) (*UnitType, bool) {
	t, ok := s.units[id]
	return t, ok
}

// NationType returns a nation type by id.
func (s *Specification) NationType(id string) (*NationType, bool) {
	t, ok := s.nations[id]
	return t, ok
}

// Types returns every concrete type in declaration order.
func (s *Specification) Types() []*Type { return s.typeList }

// BuildingTypes returns building types in declaration order.
func (s *Specification) BuildingTypes() []*BuildingType { return s.buildingList }

// UnitTypes returns unit types in declaration order.
func (s *Specification) UnitTypes() []*UnitType { return s.unitList }

// NationTypes returns nation types in declaration order.
func (s *Specification) NationTypes() []*NationType { return s.nationList }

// GenericTypes returns types declared in the generic "types" section.
func (s *Specification) GenericTypes() []*Type { return s.genericList }

// Len returns the number of concrete types.
func (s *Specification) Len() int { return len(s.typeList) }

// Checksum identifies the resolved content; peers with equal checksums
// resolve every trait query identically.
func (s *Specification) Checksum() uint64 { return s.checksum }

// Fixup runs a post-load correction. Fixups must run before the
// specification is shared between goroutines.
func (s *Specification) Fixup(name string, fn func(*Specification) error) error {
	if err := fn(s); err != nil {
		return fmt.Errorf("specification fixup %s: %w", name, err)
	}
	old := s.checksum
	s.checksum = s.computeChecksum()
	slog.Debug("specification fixup applied", "fixup", name,
		"checksum_before", fmt.Sprintf("%016x", old),
		"checksum_after", fmt.Sprintf("%016x", s.checksum))
	return nil
}

// SetAbilityValue changes every ability with the given id contributed by
// source, in every type that carries it. Returns the number changed.
func (s *Specification) SetAbilityValue(source string, id feature.TraitID, value bool) int {
	n := 0
	for _, t := range s.all {
		for _, e := range t.Features.Abilities(id) {
			if feature.SourceID(e.Ability.Source) == source {
				e.Ability.Value = value
				n++
			}
		}
	}
	return n
}

// SetModifier changes magnitude and index of every modifier with the given
// id contributed by source. Returns the number changed.
func (s *Specification) SetModifier(source string, id feature.TraitID, magnitude float64, index int) int {
	n := 0
	for _, t := range s.all {
		for _, e := range t.Features.Modifiers(id) {
			if feature.SourceID(e.Modifier.Source) == source {
				e.Modifier.Magnitude = magnitude
				e.Modifier.Index = index
				n++
			}
		}
	}
	return n
}
