package model

import (
	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// Holder is anything traits are resolved over: an instance container,
// the type it was created from and an optional owner.
type Holder interface {
	feature.Source

	// Features returns the instance container, nil once disposed.
	Features() *feature.Container
	// FeatureType returns the type definition, nil if the holder has none.
	FeatureType() *spec.Type
	// FeatureOwner returns the holder whose features also apply, e.g. the
	// owning player of a unit. Nil if none.
	FeatureOwner() Holder
	IsDisposed() bool
}

// Tile is a map position.
type Tile struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Location is an object units can be placed in.
type Location interface {
	GameObject
	// AddUnit places u here. Returns ErrNoRoom when full.
	AddUnit(u *Unit) error
	// RemoveUnit removes u; reports whether it was present.
	RemoveUnit(u *Unit) bool
	// Units returns a copy of the units here.
	Units() []*Unit
}
