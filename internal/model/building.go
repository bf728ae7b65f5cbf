package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// Building is a building of a settlement. Units work inside it.
type Building struct {
	*Object

	mu           sync.RWMutex
	buildingType *spec.BuildingType
	settlement   *Settlement
	workers      []*Unit
}

// NewBuilding creates a building of type bt and adds it to settlement.
func NewBuilding(id ident.ID, settlement *Settlement, bt *spec.BuildingType) *Building {
	b := &Building{buildingType: bt, settlement: settlement}
	b.Object = NewObject(id, b)
	if settlement != nil {
		settlement.addBuilding(b)
	}
	return b
}

// Base implements GameObject.
func (b *Building) Base() *Object { return b.Object }

// Type returns the current building type.
func (b *Building) Type() *spec.BuildingType {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buildingType
}

// SetType replaces the building type, e.g. when restoring a saved game.
func (b *Building) SetType(bt *spec.BuildingType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buildingType = bt
}

// Settlement returns the settlement, nil once disposed.
func (b *Building) Settlement() *Settlement {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settlement
}

// Upgrade replaces the building type with the next level.
func (b *Building) Upgrade() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := b.buildingType.UpgradesTo
	if next == nil {
		return fmt.Errorf("%s (%s): %w", b.ID(), b.buildingType.ID, ErrNoUpgrade)
	}
	b.buildingType = next
	return nil
}

// CanAdd reports whether u may start working here.
func (b *Building) CanAdd(u *Unit) bool {
	ut := u.Type()
	b.mu.RLock()
	defer b.mu.RUnlock()
	if slices.Contains(b.workers, u) {
		return true
	}
	return len(b.workers) < b.buildingType.Workplaces && b.buildingType.CanAdd(ut.Skill)
}

// AddUnit implements Location.
func (b *Building) AddUnit(u *Unit) error {
	ut := u.Type()
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.Contains(b.workers, u) {
		return nil
	}
	if len(b.workers) >= b.buildingType.Workplaces || !b.buildingType.CanAdd(ut.Skill) {
		return fmt.Errorf("%s into %s (%s): %w", u.ID(), b.ID(), b.buildingType.ID, ErrNoRoom)
	}
	b.workers = append(b.workers, u)
	return nil
}

// RemoveUnit implements Location.
func (b *Building) RemoveUnit(u *Unit) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.workers)
	b.workers = slices.DeleteFunc(b.workers, func(x *Unit) bool { return x == u })
	return len(b.workers) != n
}

// Units implements Location.
func (b *Building) Units() []*Unit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.workers)
}

// FeatureType implements Holder.
func (b *Building) FeatureType() *spec.Type {
	bt := b.Type()
	if bt == nil {
		return nil
	}
	return &bt.Type
}

// FeatureOwner implements Holder: the settlement, and through it the player.
func (b *Building) FeatureOwner() Holder {
	if s := b.Settlement(); s != nil {
		return s
	}
	return nil
}

// DisposeList implements GameObject: workers first, then the building.
func (b *Building) DisposeList() []GameObject {
	var out []GameObject
	for _, u := range b.Units() {
		out = append(out, u.DisposeList()...)
	}
	return append(out, b)
}

// DisposeResources implements GameObject.
func (b *Building) DisposeResources() {
	b.mu.Lock()
	settlement := b.settlement
	b.settlement = nil
	b.workers = nil
	b.mu.Unlock()

	if settlement != nil {
		settlement.removeBuilding(b)
	}
	b.releaseFeatures()
}

var (
	_ Holder   = (*Building)(nil)
	_ Location = (*Building)(nil)
)
