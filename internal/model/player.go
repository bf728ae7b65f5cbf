package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// Player представляет участника игры: европейскую державу, индейскую нацию или REF.
// The nation type contributes type-level features; founding fathers
// contribute instance features.
type Player struct {
	*Object

	mu          sync.RWMutex
	name        string
	nationType  *spec.NationType
	gold        int
	tax         int
	score       int
	fathers     []*spec.Type
	settlements []*Settlement
	units       []*Unit
}

// NewPlayer creates an uninitialized player.
func NewPlayer(id ident.ID, name string, nationType *spec.NationType) *Player {
	p := &Player{name: name, nationType: nationType}
	p.Object = NewObject(id, p)
	return p
}

// Base implements GameObject.
func (p *Player) Base() *Object { return p.Object }

// Name returns the player name.
func (p *Player) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName sets the player name.
func (p *Player) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

// NationType returns the player's nation type.
func (p *Player) NationType() *spec.NationType {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nationType
}

// Gold returns the treasury.
func (p *Player) Gold() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gold
}

// SetGold sets the treasury.
func (p *Player) SetGold(gold int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gold = gold
}

// ModifyGold adds delta to the treasury. A payment the player cannot
// afford is rejected and the treasury is left unchanged.
func (p *Player) ModifyGold(delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gold+delta < 0 {
		return fmt.Errorf("%s: cannot pay %d with %d gold", p.ID(), -delta, p.gold)
	}
	p.gold += delta
	return nil
}

// Tax returns the tax rate in percent.
func (p *Player) Tax() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tax
}

// SetTax sets the tax rate in percent.
func (p *Player) SetTax(tax int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tax = tax
}

// Score returns the score.
func (p *Player) Score() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.score
}

// SetScore sets the score.
func (p *Player) SetScore(score int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.score = score
}

// AddFather elects a founding father: its features are attached to the
// player instance with the father type as source.
func (p *Player) AddFather(father *spec.Type) error {
	features := p.Features()
	if features == nil {
		return fmt.Errorf("add father %s to %s: %w", father.ID, p.ID(), ErrDisposed)
	}

	p.mu.Lock()
	if slices.Contains(p.fathers, father) {
		p.mu.Unlock()
		return nil
	}
	p.fathers = append(p.fathers, father)
	p.mu.Unlock()

	for _, e := range father.Features.AllAbilities() {
		features.AddAbility(e.Ability.Clone())
	}
	for _, e := range father.Features.AllModifiers() {
		features.AddModifier(e.Modifier.Clone())
	}
	return nil
}

// RestoreFathers sets the elected fathers without touching features.
// Used when the instance container is restored separately.
func (p *Player) RestoreFathers(fathers []*spec.Type) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fathers = slices.Clone(fathers)
}

// Fathers returns the elected founding fathers in election order.
func (p *Player) Fathers() []*spec.Type {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.fathers)
}

// HasFather reports whether the father with the given id was elected.
func (p *Player) HasFather(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.ContainsFunc(p.fathers, func(t *spec.Type) bool { return t.ID == id })
}

// Settlements returns a copy of the player's settlements.
func (p *Player) Settlements() []*Settlement {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.settlements)
}

// Units returns a copy of the player's units.
func (p *Player) Units() []*Unit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.units)
}

func (p *Player) addSettlement(s *Settlement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.settlements, s) {
		p.settlements = append(p.settlements, s)
	}
}

func (p *Player) removeSettlement(s *Settlement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settlements = slices.DeleteFunc(p.settlements, func(x *Settlement) bool { return x == s })
}

func (p *Player) addUnit(u *Unit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.units, u) {
		p.units = append(p.units, u)
	}
}

func (p *Player) removeUnit(u *Unit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units = slices.DeleteFunc(p.units, func(x *Unit) bool { return x == u })
}

// FeatureType implements Holder.
func (p *Player) FeatureType() *spec.Type {
	nt := p.NationType()
	if nt == nil {
		return nil
	}
	return &nt.Type
}

// FeatureOwner implements Holder. Players are top-level.
func (p *Player) FeatureOwner() Holder { return nil }

// DisposeList implements GameObject: settlements (with everything in
// them), then the remaining units, then the player.
func (p *Player) DisposeList() []GameObject {
	var out []GameObject
	for _, s := range p.Settlements() {
		out = append(out, s.DisposeList()...)
	}
	for _, u := range p.Units() {
		out = append(out, u.DisposeList()...)
	}
	return append(out, p)
}

// DisposeResources implements GameObject.
func (p *Player) DisposeResources() {
	p.mu.Lock()
	p.settlements = nil
	p.units = nil
	p.fathers = nil
	p.mu.Unlock()
	p.releaseFeatures()
}

var _ Holder = (*Player)(nil)
