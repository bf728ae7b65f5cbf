package world

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/rules"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// Options configure a Game.
type Options struct {
	// ID is the game identity; uuid.Nil generates a new one.
	ID       uuid.UUID
	Registry RegistryOptions
}

// Game является корнем живых объектов одной партии.
//
// The game holds players strongly; players hold their settlements and
// units. The registry only indexes them, so whatever the object graph
// drops is collected.
type Game struct {
	id       uuid.UUID
	spec     *spec.Specification
	turn     atomic.Int32
	alloc    *ident.Allocator
	registry *Registry
	rules    *rules.Resolver

	mu      sync.RWMutex
	players []*model.Player
}

// NewGame creates an empty game over sp at turn 1.
func NewGame(sp *spec.Specification, opts Options) *Game {
	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	g := &Game{
		id:    id,
		spec:  sp,
		alloc: ident.NewAllocator(),
	}
	g.registry = NewRegistry(g.alloc, opts.Registry)
	g.rules = rules.NewResolver(g.Turn)
	g.turn.Store(1)
	return g
}

// ID returns the game identity.
func (g *Game) ID() uuid.UUID { return g.id }

// Spec returns the specification the game was created over.
func (g *Game) Spec() *spec.Specification { return g.spec }

// Allocator returns the identifier allocator.
func (g *Game) Allocator() *ident.Allocator { return g.alloc }

// Registry returns the object registry.
func (g *Game) Registry() *Registry { return g.registry }

// Rules returns a resolver answering queries at the current turn.
func (g *Game) Rules() *rules.Resolver { return g.rules }

// Turn returns the current turn.
func (g *Game) Turn() int { return int(g.turn.Load()) }

// SetTurn sets the current turn, e.g. when restoring a saved game.
func (g *Game) SetTurn(turn int) { g.turn.Store(int32(turn)) }

// NextTurn advances the turn and snapshots settlement goods so the new
// turn's changes can be reported.
func (g *Game) NextTurn() int {
	for _, p := range g.Players() {
		for _, s := range p.Settlements() {
			s.Goods().SaveState()
		}
	}
	turn := int(g.turn.Add(1))
	slog.Debug("turn advanced", "game", g.id, "turn", turn)
	return turn
}

// Players returns the players in creation order.
func (g *Game) Players() []*model.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.players)
}

// Lookup returns the live object with the given id.
func (g *Game) Lookup(id ident.ID) (model.GameObject, bool) {
	return g.registry.Lookup(id)
}

// Attach binds obj to the game, interns it and marks it initialized.
// Players become roots of the game. Used for objects built outside the
// Add* helpers, e.g. when restoring a saved game.
func (g *Game) Attach(obj model.GameObject) error {
	base := obj.Base()
	if err := base.BindGame(g.id); err != nil {
		return err
	}
	g.registry.Intern(base.ID(), obj)
	base.MarkInitialized()

	if p, ok := obj.(*model.Player); ok {
		g.mu.Lock()
		if !slices.Contains(g.players, p) {
			g.players = append(g.players, p)
		}
		g.mu.Unlock()
	}
	return nil
}

func (g *Game) attach(obj model.GameObject) {
	if err := g.Attach(obj); err != nil {
		// fresh objects are never bound to another game
		panic(err)
	}
}

// AddPlayer creates a player of the given nation type.
func (g *Game) AddPlayer(name, nationType string) (*model.Player, error) {
	nt, ok := g.spec.NationType(nationType)
	if !ok {
		return nil, fmt.Errorf("nation type %q: %w", nationType, ErrUnknownType)
	}
	p := model.NewPlayer(g.alloc.Next(model.KindPlayer), name, nt)
	g.attach(p)
	return p, nil
}

// AddSettlement founds a settlement for owner.
func (g *Game) AddSettlement(owner *model.Player, name string, tile model.Tile) *model.Settlement {
	s := model.NewSettlement(g.alloc.Next(model.KindSettlement), name, owner, tile)
	g.attach(s)
	return s
}

// AddBuilding builds a building of the given type in s. Upgrades replace
// the previous level's type in place and return the existing building.
func (g *Game) AddBuilding(s *model.Settlement, buildingType string) (*model.Building, error) {
	bt, ok := g.spec.BuildingType(buildingType)
	if !ok {
		return nil, fmt.Errorf("building type %q: %w", buildingType, ErrUnknownType)
	}
	if !s.CanBuild(bt) {
		return nil, fmt.Errorf("%s in %s: %w", bt.ID, s.ID(), ErrCannotBuild)
	}
	if bt.UpgradesFrom != nil {
		b := s.Building(bt.FirstLevel().ID)
		if err := b.Upgrade(); err != nil {
			return nil, err
		}
		return b, nil
	}
	b := model.NewBuilding(g.alloc.Next(model.KindBuilding), s, bt)
	g.attach(b)
	return b, nil
}

// AddUnit creates a unit of the given type for owner and places it in
// loc (nil for the map).
func (g *Game) AddUnit(owner *model.Player, unitType string, loc model.Location) (*model.Unit, error) {
	ut, ok := g.spec.UnitType(unitType)
	if !ok {
		return nil, fmt.Errorf("unit type %q: %w", unitType, ErrUnknownType)
	}
	u := model.NewUnit(g.alloc.Next(model.KindUnit), ut, owner)
	if loc != nil {
		if err := u.SetLocation(loc); err != nil {
			u.SetOwner(nil)
			return nil, err
		}
	}
	g.attach(u)
	return u, nil
}

func (g *Game) removePlayer(p *model.Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.players = slices.DeleteFunc(g.players, func(x *model.Player) bool { return x == p })
}
