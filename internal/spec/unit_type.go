package spec

import "github.com/oss-qm/freecol-sub000/internal/feature"

// UnitAttrs are the inheritable scalars of a unit type.
type UnitAttrs struct {
	Offence            int
	Defence            int
	Space              int
	SpaceTaken         int
	HitPoints          int
	LineOfSight        int
	Movement           int
	Skill              int
	Price              int
	RecruitProbability int
	ExpertProduction   string
}

func defaultUnitAttrs() UnitAttrs {
	return UnitAttrs{
		Offence:     0,
		Defence:     1,
		SpaceTaken:  1,
		LineOfSight: 1,
		Movement:    3,
		Price:       -1,
	}
}

// UnitType defines a kind of unit.
type UnitType struct {
	Type
	UnitAttrs
}

func newUnitType() *UnitType {
	ut := &UnitType{UnitAttrs: defaultUnitAttrs()}
	ut.Kind = KindUnit
	ut.ModifierIndex = feature.UnitNormalCombatIndex
	ut.concrete = ut
	return ut
}

// IsOffensive reports whether the unit type has an attack strength above the base.
func (ut *UnitType) IsOffensive() bool {
	return ut.Offence > 0
}

// CanBeBought reports whether the unit type has a purchase price.
func (ut *UnitType) CanBeBought() bool {
	return ut.Price > 0
}
