package codec

import (
	"fmt"
	"log/slog"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/spec"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

// Decode restores a game saved by Encode against sp.
func Decode(data []byte, sp *spec.Specification, opts world.RegistryOptions) (*world.Game, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return Restore(&doc, sp, opts)
}

// Restore rebuilds the game described by doc. Objects are created
// first, then placed, then given their features, so records may refer
// to objects listed after them.
func Restore(doc *Document, sp *spec.Specification, opts world.RegistryOptions) (*world.Game, error) {
	if doc.Checksum != "" && doc.Checksum != checksumString(sp) {
		return nil, fmt.Errorf("game %s: have %s, document %s: %w",
			doc.Game, checksumString(sp), doc.Checksum, ErrChecksumMismatch)
	}

	g := world.NewGame(sp, world.Options{ID: doc.Game, Registry: opts})
	g.SetTurn(doc.Turn)
	g.Allocator().Restore(doc.Counters)

	d := &decoder{
		game:    g,
		spec:    sp,
		objects: make(map[ident.ID]model.GameObject, len(doc.Objects)),
	}

	full := slices.DeleteFunc(slices.Clone(doc.Objects), func(r *ObjectRecord) bool { return r.Partial })
	slices.SortStableFunc(full, func(a, b *ObjectRecord) int {
		return kindRank(a.ID.Kind) - kindRank(b.ID.Kind)
	})

	for _, rec := range full {
		if err := d.create(rec); err != nil {
			return nil, &RecordError{ID: rec.ID, Err: err}
		}
	}
	for _, rec := range full {
		if err := d.place(rec); err != nil {
			return nil, &RecordError{ID: rec.ID, Err: err}
		}
	}
	for _, rec := range full {
		if err := d.features(rec); err != nil {
			return nil, &RecordError{ID: rec.ID, Err: err}
		}
		if err := g.Attach(d.objects[rec.ID]); err != nil {
			return nil, &RecordError{ID: rec.ID, Err: err}
		}
	}

	for _, rec := range doc.Objects {
		if !rec.Partial {
			continue
		}
		if err := ApplyPartial(g, rec); err != nil {
			return nil, err
		}
	}

	slog.Debug("game restored",
		"game", g.ID(),
		"turn", g.Turn(),
		"objects", len(full))
	return g, nil
}

// ApplyPartial writes the fields of a partial record to the live object
// it names. Unknown fields reject the whole record before anything is
// written.
func ApplyPartial(g *world.Game, rec *ObjectRecord) error {
	obj, ok := g.Lookup(rec.ID)
	if !ok {
		return &RecordError{ID: rec.ID, Err: ErrUnknownObject}
	}
	if err := model.ApplyFields(obj, rec.Fields); err != nil {
		return &RecordError{ID: rec.ID, Err: err}
	}
	return nil
}

type decoder struct {
	game    *world.Game
	spec    *spec.Specification
	objects map[ident.ID]model.GameObject
}

func kindRank(kind string) int {
	switch kind {
	case model.KindPlayer:
		return 0
	case model.KindSettlement:
		return 1
	case model.KindBuilding:
		return 2
	case model.KindUnit:
		return 3
	}
	return 4
}

func (d *decoder) create(rec *ObjectRecord) error {
	if _, dup := d.objects[rec.ID]; dup {
		return &world.DuplicateIdentifierError{ID: rec.ID}
	}

	var obj model.GameObject
	switch rec.ID.Kind {
	case model.KindPlayer:
		nt, ok := d.spec.NationType(rec.Type)
		if !ok {
			return fmt.Errorf("nation type %q: %w", rec.Type, world.ErrUnknownType)
		}
		p := model.NewPlayer(rec.ID, "", nt)
		fathers := make([]*spec.Type, 0, len(rec.Fathers))
		for _, id := range rec.Fathers {
			t, ok := d.spec.Type(id)
			if !ok {
				return fmt.Errorf("father %q: %w", id, world.ErrUnknownType)
			}
			fathers = append(fathers, t)
		}
		p.RestoreFathers(fathers)
		obj = p

	case model.KindSettlement:
		owner, err := lookup[*model.Player](d, rec.Owner)
		if err != nil {
			return err
		}
		s := model.NewSettlement(rec.ID, "", owner, model.Tile{})
		restoreGoods(s.Goods(), rec.Goods, rec.PreviousGoods)
		obj = s

	case model.KindBuilding:
		s, err := lookup[*model.Settlement](d, rec.Location)
		if err != nil {
			return err
		}
		bt, ok := d.spec.BuildingType(rec.Type)
		if !ok {
			return fmt.Errorf("building type %q: %w", rec.Type, world.ErrUnknownType)
		}
		obj = model.NewBuilding(rec.ID, s, bt)

	case model.KindUnit:
		ut, ok := d.spec.UnitType(rec.Type)
		if !ok {
			return fmt.Errorf("unit type %q: %w", rec.Type, world.ErrUnknownType)
		}
		var owner *model.Player
		if !rec.Owner.IsZero() {
			var err error
			if owner, err = lookup[*model.Player](d, rec.Owner); err != nil {
				return err
			}
		}
		obj = model.NewUnit(rec.ID, ut, owner)

	default:
		return fmt.Errorf("kind %q: %w", rec.ID.Kind, ErrUnknownObject)
	}

	if err := model.ApplyFields(obj, rec.Fields); err != nil {
		return err
	}
	d.objects[rec.ID] = obj
	return nil
}

func (d *decoder) place(rec *ObjectRecord) error {
	u, ok := d.objects[rec.ID].(*model.Unit)
	if !ok || rec.Location.IsZero() {
		return nil
	}
	loc, err := lookup[model.Location](d, rec.Location)
	if err != nil {
		return err
	}
	return u.SetLocation(loc)
}

func (d *decoder) features(rec *ObjectRecord) error {
	c := d.objects[rec.ID].Base().Features()
	for _, r := range rec.Abilities {
		a, err := r.Build(d.source(r.Source))
		if err != nil {
			return err
		}
		c.AddAbility(a)
	}
	for _, r := range rec.Modifiers {
		m, err := r.Build(d.source(r.Source), 0)
		if err != nil {
			return err
		}
		c.AddModifier(m)
	}
	return nil
}

// source resolves a feature source by id: a specification type, a
// restored object, or else an opaque named source.
func (d *decoder) source(id string) feature.Source {
	if t, ok := d.spec.Source(id); ok {
		return t
	}
	if oid, err := ident.Parse(id); err == nil {
		if obj, ok := d.objects[oid]; ok {
			if src, ok := obj.(feature.Source); ok {
				return src
			}
		}
	}
	return feature.NamedSource(id)
}

func lookup[T any](d *decoder, id ident.ID) (T, error) {
	var zero T
	obj, ok := d.objects[id]
	if !ok {
		return zero, fmt.Errorf("%s: %w", id, ErrUnknownObject)
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%s is a %s: %w", id, id.Kind, ErrUnknownObject)
	}
	return t, nil
}

func restoreGoods(g *model.Goods, current, previous map[string]int) {
	for k, v := range previous {
		g.Set(k, v)
	}
	g.SaveState()
	for k := range previous {
		g.Set(k, 0)
	}
	for k, v := range current {
		g.Set(k, v)
	}
}
