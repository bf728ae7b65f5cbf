package spec

import (
	"fmt"

	"github.com/oss-qm/freecol-sub000/internal/feature"
)

// resolver is pass 2: it turns the record set into resolved types,
// parents strictly before children.
type resolver struct {
	set      *recordSet
	shells   map[string]*Type // allocated up front so features can name any type as source
	done     map[string]bool
	visiting map[string]bool
	stack    []string
}

func build(set *recordSet) (*Specification, error) {
	r := &resolver{
		set:      set,
		shells:   make(map[string]*Type, len(set.order)),
		done:     make(map[string]bool, len(set.order)),
		visiting: make(map[string]bool),
	}
	for _, raw := range set.order {
		r.shells[raw.common.ID] = newShell(raw)
	}

	for _, raw := range set.order {
		if err := r.resolve(raw); err != nil {
			return nil, err
		}
	}
	if err := r.resolveUpgrades(); err != nil {
		return nil, err
	}
	return newSpecification(set, r.shells), nil
}

func newShell(raw *rawType) *Type {
	var t *Type
	switch raw.kind {
	case KindBuilding:
		t = &newBuildingType().Type
	case KindUnit:
		t = &newUnitType().Type
	case KindNation:
		t = &newNationType().Type
	default:
		t = newGenericType()
	}
	t.ID = raw.common.ID
	t.Index = raw.index
	t.Abstract = raw.common.Abstract
	t.Features = feature.NewContainer()
	return t
}

func (r *resolver) resolve(raw *rawType) error {
	id := raw.common.ID
	if r.done[id] {
		return nil
	}
	if r.visiting[id] {
		return &CyclicInheritanceError{Field: "extends", Cycle: r.cycleFrom(id)}
	}
	r.visiting[id] = true
	r.stack = append(r.stack, id)
	defer func() {
		delete(r.visiting, id)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	var parent *Type
	if ext := raw.common.Extends; ext != "" {
		praw, ok := r.set.byID[ext]
		if !ok {
			return &UnresolvedTypeReferenceError{TypeID: id, Field: "extends", Ref: ext}
		}
		if praw.kind != raw.kind {
			return &UnresolvedTypeReferenceError{TypeID: id, Field: "extends", Ref: ext,
				Reason: fmt.Sprintf("%s cannot extend a %s", raw.kind, praw.kind)}
		}
		if err := r.resolve(praw); err != nil {
			return err
		}
		parent = r.shells[ext]
	}

	if err := r.fill(raw, r.shells[id], parent); err != nil {
		return err
	}
	r.done[id] = true
	return nil
}

func (r *resolver) cycleFrom(id string) []string {
	for i, s := range r.stack {
		if s == id {
			cycle := append([]string(nil), r.stack[i:]...)
			return append(cycle, id)
		}
	}
	return []string{id, id}
}

// fill resolves scalars and features of t from its record and resolved parent.
func (r *resolver) fill(raw *rawType, t *Type, parent *Type) error {
	t.Parent = parent

	switch raw.kind {
	case KindBuilding:
		bt := t.concrete.(*BuildingType)
		if parent != nil {
			bt.BuildingAttrs = parent.concrete.(*BuildingType).BuildingAttrs
		}
		raw.building.apply(&bt.BuildingAttrs)
	case KindUnit:
		ut := t.concrete.(*UnitType)
		if parent != nil {
			ut.UnitAttrs = parent.concrete.(*UnitType).UnitAttrs
		}
		raw.unit.apply(&ut.UnitAttrs)
	case KindNation:
		nt := t.concrete.(*NationType)
		if parent != nil {
			nt.NationAttrs = parent.concrete.(*NationType).NationAttrs
		}
		raw.nation.apply(&nt.NationAttrs)
	}

	switch {
	case raw.common.ModifierIndex != nil:
		t.ModifierIndex = *raw.common.ModifierIndex
	case parent != nil:
		t.ModifierIndex = parent.ModifierIndex
	}

	if parent != nil {
		t.Features.Inherit(parent.Features)
	}

	for _, a := range raw.common.Abilities {
		if a.Delete {
			t.Features.RemoveAbilitiesByID(a.ID)
		}
	}
	for _, m := range raw.common.Modifiers {
		if m.Delete {
			t.Features.RemoveModifiersByID(m.ID)
		}
	}

	for _, a := range raw.common.Abilities {
		if a.Delete {
			continue
		}
		ab, err := r.ability(t, raw, a)
		if err != nil {
			return err
		}
		t.Features.AddAbility(ab)
	}
	for _, m := range raw.common.Modifiers {
		if m.Delete {
			continue
		}
		mod, err := r.modifier(t, raw, m)
		if err != nil {
			return err
		}
		t.Features.AddModifier(mod)
	}

	if parent != nil && parent.Abstract {
		t.Features.ReplaceSource(parent, t)
	}
	return nil
}

func (r *resolver) source(t *Type, ref string) (feature.Source, error) {
	if ref == "" {
		return t, nil
	}
	src, ok := r.shells[ref]
	if !ok {
		return nil, &UnresolvedTypeReferenceError{TypeID: t.ID, Field: "source", Ref: ref}
	}
	return src, nil
}

func (r *resolver) ability(t *Type, raw *rawType, rec *AbilityRecord) (*feature.Ability, error) {
	src, err := r.source(t, rec.Source)
	if err != nil {
		return nil, err
	}
	a, err := rec.Build(src)
	if err != nil {
		return nil, &InvalidRecordError{TypeID: t.ID, Origin: raw.origin, Err: err}
	}
	return a, nil
}

func (r *resolver) modifier(t *Type, raw *rawType, rec *ModifierRecord) (*feature.Modifier, error) {
	src, err := r.source(t, rec.Source)
	if err != nil {
		return nil, err
	}
	m, err := rec.Build(src, t.ModifierIndex)
	if err != nil {
		return nil, &InvalidRecordError{TypeID: t.ID, Origin: raw.origin, Err: err}
	}
	return m, nil
}

// resolveUpgrades links building upgrade chains and derives levels.
func (r *resolver) resolveUpgrades() error {
	for _, raw := range r.set.order {
		if raw.kind != KindBuilding || raw.building.UpgradesFrom == "" {
			continue
		}
		bt := r.shells[raw.common.ID].concrete.(*BuildingType)
		ref := raw.building.UpgradesFrom

		from, ok := r.shells[ref]
		if !ok || from.Kind != KindBuilding {
			return &UnresolvedTypeReferenceError{TypeID: bt.ID, Field: "upgrades-from", Ref: ref}
		}
		fbt := from.concrete.(*BuildingType)
		if fbt.UpgradesTo != nil {
			return &InvalidRecordError{TypeID: bt.ID, Origin: raw.origin,
				Err: fmt.Errorf("%s already upgrades to %s", fbt.ID, fbt.UpgradesTo.ID)}
		}
		bt.UpgradesFrom = fbt
		fbt.UpgradesTo = bt
	}

	for _, raw := range r.set.order {
		if raw.kind != KindBuilding {
			continue
		}
		bt := r.shells[raw.common.ID].concrete.(*BuildingType)
		seen := map[string]bool{bt.ID: true}
		path := []string{bt.ID}
		level := 1
		for from := bt.UpgradesFrom; from != nil; from = from.UpgradesFrom {
			path = append(path, from.ID)
			if seen[from.ID] {
				return &CyclicInheritanceError{Field: "upgrades-from", Cycle: path}
			}
			seen[from.ID] = true
			level++
		}
		bt.Level = level
	}
	return nil
}
