package model

import (
	"slices"
	"sync"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// Settlement is a colony or native settlement. It owns its buildings, the
// units on its tile and its goods.
type Settlement struct {
	*Object

	mu        sync.RWMutex
	name      string
	owner     *Player
	tile      Tile
	liberty   int
	buildings []*Building
	units     []*Unit
	goods     *Goods
}

// NewSettlement creates a settlement and registers it with owner.
func NewSettlement(id ident.ID, name string, owner *Player, tile Tile) *Settlement {
	s := &Settlement{name: name, owner: owner, tile: tile, goods: NewGoods()}
	s.Object = NewObject(id, s)
	if owner != nil {
		owner.addSettlement(s)
	}
	return s
}

// Base implements GameObject.
func (s *Settlement) Base() *Object { return s.Object }

// Name returns the settlement name.
func (s *Settlement) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetName sets the settlement name.
func (s *Settlement) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Owner returns the owning player, nil once disposed.
func (s *Settlement) Owner() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// SetOwner transfers the settlement, e.g. after capture.
func (s *Settlement) SetOwner(p *Player) {
	s.mu.Lock()
	old := s.owner
	s.owner = p
	s.mu.Unlock()

	if old == p {
		return
	}
	if old != nil {
		old.removeSettlement(s)
	}
	if p != nil {
		p.addSettlement(s)
	}
}

// Tile returns the map position.
func (s *Settlement) Tile() Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tile
}

// SetTile sets the map position.
func (s *Settlement) SetTile(t Tile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tile = t
}

// Liberty returns accumulated liberty bells.
func (s *Settlement) Liberty() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liberty
}

// SetLiberty sets accumulated liberty bells.
func (s *Settlement) SetLiberty(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liberty = n
}

// Goods returns the goods store.
func (s *Settlement) Goods() *Goods {
	return s.goods
}

// Buildings returns a copy of the buildings.
func (s *Settlement) Buildings() []*Building {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.buildings)
}

// Building returns the building whose upgrade chain contains typeID.
func (s *Settlement) Building(typeID string) *Building {
	for _, b := range s.Buildings() {
		for bt := b.Type(); bt != nil; bt = bt.UpgradesFrom {
			if bt.ID == typeID {
				return b
			}
		}
	}
	return nil
}

// Population returns the number of units working in buildings.
func (s *Settlement) Population() int {
	n := 0
	for _, b := range s.Buildings() {
		n += len(b.Units())
	}
	return n
}

// CanBuild reports whether bt may be built here: the population
// requirement is met and, for upgrades, the previous level is present
// and not already upgraded.
func (s *Settlement) CanBuild(bt *spec.BuildingType) bool {
	if s.Population() < bt.RequiredPopulation {
		return false
	}
	existing := s.Building(bt.FirstLevel().ID)
	if bt.UpgradesFrom == nil {
		return existing == nil
	}
	return existing != nil && existing.Type() == bt.UpgradesFrom
}

func (s *Settlement) addBuilding(b *Building) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.buildings, b) {
		s.buildings = append(s.buildings, b)
	}
}

func (s *Settlement) removeBuilding(b *Building) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings = slices.DeleteFunc(s.buildings, func(x *Building) bool { return x == b })
}

// AddUnit implements Location. The settlement tile holds any number of units.
func (s *Settlement) AddUnit(u *Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.units, u) {
		s.units = append(s.units, u)
	}
	return nil
}

// RemoveUnit implements Location.
func (s *Settlement) RemoveUnit(u *Unit) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.units)
	s.units = slices.DeleteFunc(s.units, func(x *Unit) bool { return x == u })
	return len(s.units) != n
}

// Units implements Location.
func (s *Settlement) Units() []*Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.units)
}

// FeatureType implements Holder. Settlements have no type definition.
func (s *Settlement) FeatureType() *spec.Type { return nil }

// FeatureOwner implements Holder.
func (s *Settlement) FeatureOwner() Holder {
	if o := s.Owner(); o != nil {
		return o
	}
	return nil
}

// DisposeList implements GameObject: buildings with their workers, then
// units on the tile, then the settlement.
func (s *Settlement) DisposeList() []GameObject {
	var out []GameObject
	for _, b := range s.Buildings() {
		out = append(out, b.DisposeList()...)
	}
	for _, u := range s.Units() {
		out = append(out, u.DisposeList()...)
	}
	return append(out, s)
}

// DisposeResources implements GameObject.
func (s *Settlement) DisposeResources() {
	s.mu.Lock()
	owner := s.owner
	s.owner = nil
	s.buildings = nil
	s.units = nil
	s.mu.Unlock()

	if owner != nil {
		owner.removeSettlement(s)
	}
	s.goods.Clear()
	s.releaseFeatures()
}

var (
	_ Holder   = (*Settlement)(nil)
	_ Location = (*Settlement)(nil)
)
