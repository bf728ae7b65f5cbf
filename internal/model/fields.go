package model

import (
	"fmt"
	"strconv"
)

// Scalars is implemented by objects whose scalar fields can be read and
// written by name, for partial updates.
type Scalars interface {
	FieldNames() []string
	GetField(name string) (string, error)
	SetField(name, value string) error
}

// Field is one named scalar of T.
type Field[T any] struct {
	Name string
	Get  func(T) string
	Set  func(T, string) error
}

// FieldTable is the fixed set of scalar fields of T, in declaration order.
type FieldTable[T any] struct {
	kind   string
	fields []Field[T]
	byName map[string]int
}

// NewFieldTable builds a table. Duplicate names panic.
func NewFieldTable[T any](kind string, fields ...Field[T]) *FieldTable[T] {
	t := &FieldTable[T]{kind: kind, fields: fields, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := t.byName[f.Name]; dup {
			panic(fmt.Sprintf("duplicate %s field %q", kind, f.Name))
		}
		t.byName[f.Name] = i
	}
	return t
}

// Names returns the field names in declaration order.
func (t *FieldTable[T]) Names() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name
	}
	return out
}

// Get reads one field.
func (t *FieldTable[T]) Get(obj T, name string) (string, error) {
	i, ok := t.byName[name]
	if !ok {
		return "", &FieldError{Kind: t.kind, Field: name, Err: ErrUnknownField}
	}
	return t.fields[i].Get(obj), nil
}

// Set writes one field.
func (t *FieldTable[T]) Set(obj T, name, value string) error {
	i, ok := t.byName[name]
	if !ok {
		return &FieldError{Kind: t.kind, Field: name, Value: value, Err: ErrUnknownField}
	}
	if err := t.fields[i].Set(obj, value); err != nil {
		return &FieldError{Kind: t.kind, Field: name, Value: value, Err: err}
	}
	return nil
}

// Snapshot reads every field.
func (t *FieldTable[T]) Snapshot(obj T) map[string]string {
	out := make(map[string]string, len(t.fields))
	for _, f := range t.fields {
		out[f.Name] = f.Get(obj)
	}
	return out
}

// Apply writes every field in values in declaration order. Unknown names
// are rejected before anything is written.
func (t *FieldTable[T]) Apply(obj T, values map[string]string) error {
	for name := range values {
		if _, ok := t.byName[name]; !ok {
			return &FieldError{Kind: t.kind, Field: name, Value: values[name], Err: ErrUnknownField}
		}
	}
	for _, f := range t.fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := f.Set(obj, v); err != nil {
			return &FieldError{Kind: t.kind, Field: f.Name, Value: v, Err: err}
		}
	}
	return nil
}

// IntField is a Field over an int accessor pair.
func IntField[T any](name string, get func(T) int, set func(T, int)) Field[T] {
	return Field[T]{
		Name: name,
		Get:  func(obj T) string { return strconv.Itoa(get(obj)) },
		Set: func(obj T, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			set(obj, n)
			return nil
		},
	}
}

// StringField is a Field over a string accessor pair.
func StringField[T any](name string, get func(T) string, set func(T, string)) Field[T] {
	return Field[T]{
		Name: name,
		Get:  get,
		Set: func(obj T, v string) error {
			set(obj, v)
			return nil
		},
	}
}

var playerFields = NewFieldTable(KindPlayer,
	StringField("name", (*Player).Name, (*Player).SetName),
	IntField("gold", (*Player).Gold, (*Player).SetGold),
	IntField("tax", (*Player).Tax, (*Player).SetTax),
	IntField("score", (*Player).Score, (*Player).SetScore),
)

var settlementFields = NewFieldTable(KindSettlement,
	StringField("name", (*Settlement).Name, (*Settlement).SetName),
	IntField("x",
		func(s *Settlement) int { return s.Tile().X },
		(*Settlement).setX),
	IntField("y",
		func(s *Settlement) int { return s.Tile().Y },
		(*Settlement).setY),
	IntField("liberty", (*Settlement).Liberty, (*Settlement).SetLiberty),
)

var buildingFields = NewFieldTable[*Building](KindBuilding)

var unitFields = NewFieldTable(KindUnit,
	StringField("name", (*Unit).Name, (*Unit).SetName),
	IntField("x",
		func(u *Unit) int { return u.Tile().X },
		(*Unit).setX),
	IntField("y",
		func(u *Unit) int { return u.Tile().Y },
		(*Unit).setY),
	Field[*Unit]{
		Name: "state",
		Get:  func(u *Unit) string { return u.UnitState().String() },
		Set: func(u *Unit, v string) error {
			s, err := ParseUnitState(v)
			if err != nil {
				return err
			}
			u.SetUnitState(s)
			return nil
		},
	},
	IntField("moves", (*Unit).MovesLeft, (*Unit).SetMovesLeft),
	IntField("experience", (*Unit).Experience, (*Unit).SetExperience),
)

// FieldNames implements Scalars.
func (p *Player) FieldNames() []string { return playerFields.Names() }

// GetField implements Scalars.
func (p *Player) GetField(name string) (string, error) { return playerFields.Get(p, name) }

// SetField implements Scalars.
func (p *Player) SetField(name, value string) error { return playerFields.Set(p, name, value) }

// FieldNames implements Scalars.
func (s *Settlement) FieldNames() []string { return settlementFields.Names() }

// GetField implements Scalars.
func (s *Settlement) GetField(name string) (string, error) { return settlementFields.Get(s, name) }

// SetField implements Scalars.
func (s *Settlement) SetField(name, value string) error {
	return settlementFields.Set(s, name, value)
}

// FieldNames implements Scalars.
func (b *Building) FieldNames() []string { return buildingFields.Names() }

// GetField implements Scalars.
func (b *Building) GetField(name string) (string, error) { return buildingFields.Get(b, name) }

// SetField implements Scalars.
func (b *Building) SetField(name, value string) error { return buildingFields.Set(b, name, value) }

// FieldNames implements Scalars.
func (u *Unit) FieldNames() []string { return unitFields.Names() }

// GetField implements Scalars.
func (u *Unit) GetField(name string) (string, error) { return unitFields.Get(u, name) }

// SetField implements Scalars.
func (u *Unit) SetField(name, value string) error { return unitFields.Set(u, name, value) }

// ApplyFields writes several fields of obj at once, validating names first.
func ApplyFields(obj GameObject, values map[string]string) error {
	switch o := obj.(type) {
	case *Player:
		return playerFields.Apply(o, values)
	case *Settlement:
		return settlementFields.Apply(o, values)
	case *Building:
		return buildingFields.Apply(o, values)
	case *Unit:
		return unitFields.Apply(o, values)
	}
	return fmt.Errorf("%T: %w", obj, ErrUnknownField)
}

// SnapshotFields reads every scalar field of obj.
func SnapshotFields(obj GameObject) map[string]string {
	switch o := obj.(type) {
	case *Player:
		return playerFields.Snapshot(o)
	case *Settlement:
		return settlementFields.Snapshot(o)
	case *Building:
		return buildingFields.Snapshot(o)
	case *Unit:
		return unitFields.Snapshot(o)
	}
	return nil
}

func (s *Settlement) setX(x int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tile.X = x
}

func (s *Settlement) setY(y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tile.Y = y
}

func (u *Unit) setX(x int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tile.X = x
}

func (u *Unit) setY(y int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tile.Y = y
}
