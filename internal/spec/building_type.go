package spec

import "github.com/oss-qm/freecol-sub000/internal/feature"

// BuildingAttrs are the inheritable scalars of a building type.
type BuildingAttrs struct {
	Workplaces         int
	BasicProduction    int
	MinSkill           int
	MaxSkill           int
	UpkeepCost         int
	Priority           int
	RequiredPopulation int
	HammersRequired    int
}

func defaultBuildingAttrs() BuildingAttrs {
	return BuildingAttrs{
		Workplaces: 3,
		MinSkill:   -100,
		MaxSkill:   100,
		Priority:   50,
	}
}

// BuildingType defines a colony building.
type BuildingType struct {
	Type
	BuildingAttrs

	// UpgradesFrom is the building this one replaces when built.
	UpgradesFrom *BuildingType
	// UpgradesTo is derived: the building that replaces this one.
	UpgradesTo *BuildingType
	// Level is 1 for a building that upgrades from nothing.
	Level int
}

func newBuildingType() *BuildingType {
	bt := &BuildingType{BuildingAttrs: defaultBuildingAttrs(), Level: 1}
	bt.Kind = KindBuilding
	bt.ModifierIndex = feature.BuildingProductionIndex
	bt.concrete = bt
	return bt
}

// CanAdd reports whether a unit with the given skill may work in the building.
func (bt *BuildingType) CanAdd(skill int) bool {
	return bt.Workplaces > 0 && skill >= bt.MinSkill && skill <= bt.MaxSkill
}

// IsAutomatic reports whether the building produces without workers.
func (bt *BuildingType) IsAutomatic() bool {
	return bt.Workplaces == 0 && bt.BasicProduction > 0
}

// FirstLevel walks the upgrade chain back to its first building.
func (bt *BuildingType) FirstLevel() *BuildingType {
	for bt.UpgradesFrom != nil {
		bt = bt.UpgradesFrom
	}
	return bt
}
