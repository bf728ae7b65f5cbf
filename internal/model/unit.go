package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// UnitState is what a unit is doing this turn.
type UnitState int8

const (
	UnitActive UnitState = iota
	UnitSentry
	UnitFortifying
	UnitFortified
	UnitSkipped
)

var unitStateNames = [...]string{
	UnitActive:     "active",
	UnitSentry:     "sentry",
	UnitFortifying: "fortifying",
	UnitFortified:  "fortified",
	UnitSkipped:    "skipped",
}

func (s UnitState) String() string {
	if s >= 0 && int(s) < len(unitStateNames) {
		return unitStateNames[s]
	}
	return fmt.Sprintf("unit-state(%d)", int8(s))
}

// ParseUnitState parses a state name.
func ParseUnitState(s string) (UnitState, error) {
	for i, name := range unitStateNames {
		if name == s {
			return UnitState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown unit state %q", s)
}

// Unit is a live unit. Carriers (units with space) are locations for
// other units.
type Unit struct {
	*Object

	mu         sync.RWMutex
	name       string
	unitType   *spec.UnitType
	owner      *Player
	location   Location
	tile       Tile
	state      UnitState
	movesLeft  int
	experience int
	carried    []*Unit
}

// NewUnit creates a unit of type ut and registers it with owner.
func NewUnit(id ident.ID, ut *spec.UnitType, owner *Player) *Unit {
	u := &Unit{unitType: ut, owner: owner, movesLeft: ut.Movement}
	u.Object = NewObject(id, u)
	if owner != nil {
		owner.addUnit(u)
	}
	return u
}

// Base implements GameObject.
func (u *Unit) Base() *Object { return u.Object }

// Name returns the unit's custom name, "" if none.
func (u *Unit) Name() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.name
}

// SetName sets a custom name.
func (u *Unit) SetName(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.name = name
}

// Type returns the unit type.
func (u *Unit) Type() *spec.UnitType {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.unitType
}

// ChangeType changes the unit type, e.g. on promotion or when artillery
// is damaged.
func (u *Unit) ChangeType(ut *spec.UnitType) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.unitType = ut
	u.movesLeft = min(u.movesLeft, ut.Movement)
}

// Owner returns the owning player, nil once disposed.
func (u *Unit) Owner() *Player {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.owner
}

// SetOwner transfers the unit to p.
func (u *Unit) SetOwner(p *Player) {
	u.mu.Lock()
	old := u.owner
	u.owner = p
	u.mu.Unlock()

	if old == p {
		return
	}
	if old != nil {
		old.removeUnit(u)
	}
	if p != nil {
		p.addUnit(u)
	}
}

// Location returns the location the unit is in, nil if it is on the map.
func (u *Unit) Location() Location {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.location
}

// SetLocation moves the unit into loc, or onto the map if loc is nil.
// On error the unit stays where it was.
func (u *Unit) SetLocation(loc Location) error {
	if loc != nil {
		if err := loc.AddUnit(u); err != nil {
			return err
		}
	}

	u.mu.Lock()
	old := u.location
	u.location = loc
	u.mu.Unlock()

	if old != nil && old != loc {
		old.RemoveUnit(u)
	}
	return nil
}

// Tile returns the map position.
func (u *Unit) Tile() Tile {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.tile
}

// SetTile sets the map position.
func (u *Unit) SetTile(t Tile) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tile = t
}

// UnitState returns the unit state.
func (u *Unit) UnitState() UnitState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

// SetUnitState sets the unit state.
func (u *Unit) SetUnitState(s UnitState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = s
}

// MovesLeft returns the remaining moves this turn.
func (u *Unit) MovesLeft() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.movesLeft
}

// SetMovesLeft sets the remaining moves this turn.
func (u *Unit) SetMovesLeft(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.movesLeft = n
}

// Experience returns accumulated work experience.
func (u *Unit) Experience() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.experience
}

// SetExperience sets accumulated work experience.
func (u *Unit) SetExperience(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.experience = n
}

// SpaceLeft returns the cargo space not taken by carried units.
func (u *Unit) SpaceLeft() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.spaceLeftLocked()
}

func (u *Unit) spaceLeftLocked() int {
	left := u.unitType.Space
	for _, c := range u.carried {
		left -= c.Type().SpaceTaken
	}
	return left
}

// AddUnit implements Location for carriers. A unit cannot board itself
// or anything it carries, directly or not.
func (u *Unit) AddUnit(c *Unit) error {
	if c == u || c.carries(u) {
		return fmt.Errorf("%s aboard %s: %w", c.ID(), u.ID(), ErrCarrierCycle)
	}
	need := c.Type().SpaceTaken
	u.mu.Lock()
	defer u.mu.Unlock()
	if slices.Contains(u.carried, c) {
		return nil
	}
	if u.spaceLeftLocked() < need {
		return fmt.Errorf("%s aboard %s: %w", c.ID(), u.ID(), ErrNoRoom)
	}
	u.carried = append(u.carried, c)
	return nil
}

// carries reports whether x is aboard u or aboard anything u carries.
func (u *Unit) carries(x *Unit) bool {
	seen := map[*Unit]bool{u: true}
	stack := []*Unit{u}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range top.Units() {
			if c == x {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// RemoveUnit implements Location.
func (u *Unit) RemoveUnit(c *Unit) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := len(u.carried)
	u.carried = slices.DeleteFunc(u.carried, func(x *Unit) bool { return x == c })
	return len(u.carried) != n
}

// Units implements Location: the carried units.
func (u *Unit) Units() []*Unit {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.carried)
}

// FeatureType implements Holder.
func (u *Unit) FeatureType() *spec.Type {
	ut := u.Type()
	if ut == nil {
		return nil
	}
	return &ut.Type
}

// FeatureOwner implements Holder.
func (u *Unit) FeatureOwner() Holder {
	if o := u.Owner(); o != nil {
		return o
	}
	return nil
}

// DisposeList implements GameObject: carried units, then the carrier.
func (u *Unit) DisposeList() []GameObject {
	var out []GameObject
	for _, c := range u.Units() {
		out = append(out, c.DisposeList()...)
	}
	return append(out, u)
}

// DisposeResources implements GameObject: detaches the unit from its
// location and owner.
func (u *Unit) DisposeResources() {
	u.mu.Lock()
	loc, owner := u.location, u.owner
	u.location = nil
	u.owner = nil
	u.carried = nil
	u.mu.Unlock()

	if loc != nil {
		loc.RemoveUnit(u)
	}
	if owner != nil {
		owner.removeUnit(u)
	}
	u.releaseFeatures()
}

var (
	_ Holder   = (*Unit)(nil)
	_ Location = (*Unit)(nil)
)
