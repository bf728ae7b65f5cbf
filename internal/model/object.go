package model

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/ident"
)

// Object kinds. The kind is the ident.ID namespace of each live object.
const (
	KindPlayer     = "player"
	KindSettlement = "settlement"
	KindBuilding   = "building"
	KindUnit       = "unit"
)

// State is the lifecycle state of a live object.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// GameObject is a live object that can be interned and disposed.
type GameObject interface {
	// Base returns the common object state.
	Base() *Object
	// DisposeList returns every object that dies with this one,
	// in pre-order, with this object last.
	DisposeList() []GameObject
	// DisposeResources clears containers and drops cross-references.
	DisposeResources()
}

// Object хранит общее состояние всех живых объектов игры.
// Each concrete object holds its own *Object; the registry keeps weak
// pointers to it, so Object must be a separate allocation.
type Object struct {
	id    ident.ID
	self  GameObject
	state atomic.Int32

	mu       sync.RWMutex
	game     uuid.UUID
	features *feature.Container
}

// NewObject creates the base of self with the given id.
func NewObject(id ident.ID, self GameObject) *Object {
	return &Object{
		id:       id,
		self:     self,
		features: feature.NewContainer(),
	}
}

// ID returns the object id (immutable).
func (o *Object) ID() ident.ID {
	return o.id
}

// SourceID implements feature.Source, so objects can contribute features.
func (o *Object) SourceID() string {
	return o.id.String()
}

// Self returns the concrete object embedding o.
func (o *Object) Self() GameObject {
	return o.self
}

// State returns the lifecycle state.
func (o *Object) State() State {
	return State(o.state.Load())
}

// IsInitialized reports whether the object finished construction and is not disposed.
func (o *Object) IsInitialized() bool {
	return o.State() == StateInitialized
}

// IsDisposed reports whether the object was disposed. Safe to call after disposal.
func (o *Object) IsDisposed() bool {
	return o.State() == StateDisposed
}

// MarkInitialized moves an uninitialized object to initialized.
// Returns false if the object was not uninitialized.
func (o *Object) MarkInitialized() bool {
	return o.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitialized))
}

// MarkDisposed flips the disposed flag. Returns false if it was already set.
func (o *Object) MarkDisposed() bool {
	for {
		cur := o.state.Load()
		if State(cur) == StateDisposed {
			return false
		}
		if o.state.CompareAndSwap(cur, int32(StateDisposed)) {
			return true
		}
	}
}

// BindGame binds the object to a game. Binding is set once; binding the
// same game again is a no-op.
func (o *Object) BindGame(game uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.game == uuid.Nil || o.game == game {
		o.game = game
		return nil
	}
	return fmt.Errorf("%s: %w (bound to %s, rebinding to %s)", o.id, ErrGameRebind, o.game, game)
}

// GameID returns the bound game, uuid.Nil if unbound.
func (o *Object) GameID() uuid.UUID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.game
}

// Features returns the instance feature container, nil once disposed.
// Only features specific to this instance are held here; type features
// are resolved from the type.
func (o *Object) Features() *feature.Container {
	if o.IsDisposed() {
		return nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.features
}

// releaseFeatures clears the instance container. Part of DisposeResources.
func (o *Object) releaseFeatures() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.features != nil {
		o.features.Clear()
	}
}

func (o *Object) String() string {
	return o.id.String()
}
