package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/spec"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

// Encode serializes g.
func Encode(g *world.Game) ([]byte, error) {
	data, err := yaml.Marshal(Snapshot(g))
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", g.ID(), err)
	}
	return data, nil
}

// Snapshot walks the object graph from the players and returns the
// document for g. Owners precede what they own. Units without an owner
// follow, in identifier order.
func Snapshot(g *world.Game) *Document {
	doc := &Document{
		Game:     g.ID(),
		Turn:     g.Turn(),
		Checksum: checksumString(g.Spec()),
		Counters: g.Allocator().Snapshot(),
	}
	seen := make(map[ident.ID]bool)
	for _, p := range g.Players() {
		if p.IsDisposed() {
			continue
		}
		doc.Objects = append(doc.Objects, playerRecord(p))
		for _, s := range p.Settlements() {
			doc.Objects = append(doc.Objects, settlementRecord(s))
			for _, b := range s.Buildings() {
				doc.Objects = append(doc.Objects, buildingRecord(b))
			}
		}
		for _, u := range p.Units() {
			seen[u.ID()] = true
			doc.Objects = append(doc.Objects, unitRecord(u))
		}
	}
	for id, obj := range g.Registry().All() {
		u, ok := obj.(*model.Unit)
		if !ok || seen[id] || u.IsDisposed() {
			continue
		}
		doc.Objects = append(doc.Objects, unitRecord(u))
	}
	return doc
}

// EncodePartial returns a partial record of obj holding only the named
// fields, or every field when none are named.
func EncodePartial(obj model.GameObject, fields ...string) (*ObjectRecord, error) {
	sc, ok := obj.(model.Scalars)
	if !ok {
		return nil, fmt.Errorf("%s: %w", obj.Base().ID(), model.ErrUnknownField)
	}
	rec := &ObjectRecord{ID: obj.Base().ID(), Partial: true}
	if len(fields) == 0 {
		rec.Fields = model.SnapshotFields(obj)
		return rec, nil
	}
	rec.Fields = make(map[string]string, len(fields))
	for _, name := range fields {
		v, err := sc.GetField(name)
		if err != nil {
			return nil, err
		}
		rec.Fields[name] = v
	}
	return rec, nil
}

func playerRecord(p *model.Player) *ObjectRecord {
	rec := baseRecord(p)
	rec.Type = p.NationType().ID
	for _, f := range p.Fathers() {
		rec.Fathers = append(rec.Fathers, f.ID)
	}
	return rec
}

func settlementRecord(s *model.Settlement) *ObjectRecord {
	rec := baseRecord(s)
	if owner := s.Owner(); owner != nil {
		rec.Owner = owner.ID()
	}
	goods := s.Goods()
	prev := goods.Amounts()
	for k, d := range goods.Changes() {
		prev[k] -= d
	}
	rec.Goods = nonEmpty(goods.Amounts())
	rec.PreviousGoods = nonEmpty(prev)
	return rec
}

func buildingRecord(b *model.Building) *ObjectRecord {
	rec := baseRecord(b)
	rec.Type = b.Type().ID
	rec.Location = b.Settlement().ID()
	return rec
}

func unitRecord(u *model.Unit) *ObjectRecord {
	rec := baseRecord(u)
	rec.Type = u.Type().ID
	if owner := u.Owner(); owner != nil {
		rec.Owner = owner.ID()
	}
	if loc := u.Location(); loc != nil {
		rec.Location = loc.Base().ID()
	}
	return rec
}

func baseRecord(obj model.GameObject) *ObjectRecord {
	base := obj.Base()
	rec := &ObjectRecord{
		ID:     base.ID(),
		Fields: nonEmptyFields(model.SnapshotFields(obj)),
	}
	if c := base.Features(); c != nil {
		rec.Abilities, rec.Modifiers = featureRecords(c)
	}
	return rec
}

func featureRecords(c *feature.Container) ([]*spec.AbilityRecord, []*spec.ModifierRecord) {
	var abilities []*spec.AbilityRecord
	for _, e := range c.AllAbilities() {
		abilities = append(abilities, spec.AbilityRecordOf(e.Ability))
	}
	var modifiers []*spec.ModifierRecord
	for _, e := range c.AllModifiers() {
		modifiers = append(modifiers, spec.ModifierRecordOf(e.Modifier))
	}
	return abilities, modifiers
}

func nonEmpty(m map[string]int) map[string]int {
	for k, v := range m {
		if v == 0 {
			delete(m, k)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func nonEmptyFields(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
