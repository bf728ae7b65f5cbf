// Package rules answers trait questions: whether an object has an ability
// and what a modified value comes to, aggregating features from the object,
// its type ancestry and its owners.
package rules

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// Precedence levels. Lower is more specific.
//
//	instance features           entry depth (0 unless merged)
//	type features               1 + inheritance depth
//	owner layers                ownerStride per owner step, same pattern inside
const (
	instanceLevel = 0
	typeLevel     = 1
	ownerStride   = 1 << 16

	// maxOwnerChain bounds FeatureOwner walks; real chains are
	// building -> settlement -> player.
	maxOwnerChain = 8

	// maxScopeDepth bounds nested ability checks made by scopes.
	maxScopeDepth = 8
)

// Query carries the optional parts of a trait question.
type Query struct {
	// Turn filters features by validity window; 0 disables the filter.
	Turn int
	// Subject is what scopes are tested against; nil means the holder
	// being queried (or the type, for type queries).
	Subject feature.Subject
}

// AtTurn returns a query for the given turn.
func AtTurn(turn int) Query {
	return Query{Turn: turn}
}

// layer is one feature container with the level of its depth-0 entries.
type layer struct {
	c    *feature.Container
	base int
}

// collect returns the containers contributing to h, in collection order:
// type (ancestry first, as stored), then instance, then each owner the same way.
func collect(h model.Holder) ([]layer, error) {
	if h.IsDisposed() {
		return nil, fmt.Errorf("%s: %w", h.SourceID(), model.ErrDisposed)
	}

	var out []layer
	seen := make(map[model.Holder]bool, 4)
	for step := 0; h != nil && step < maxOwnerChain; step++ {
		if seen[h] || h.IsDisposed() {
			break
		}
		seen[h] = true

		offset := step * ownerStride
		if t := h.FeatureType(); t != nil {
			out = append(out, layer{c: t.Features, base: offset + typeLevel})
		}
		if c := h.Features(); c != nil {
			out = append(out, layer{c: c, base: offset + instanceLevel})
		}
		h = h.FeatureOwner()
	}
	return out, nil
}

func typeLayers(t *spec.Type) []layer {
	if t == nil {
		return nil
	}
	return []layer{{c: t.Features, base: typeLevel}}
}

// evaluation is the turn and scope nesting of one top-level query.
type evaluation struct {
	turn  int
	depth int
}

func hasAbility(layers []layer, id feature.TraitID, subject feature.Subject, turn int) bool {
	bestTrue, bestFalse := math.MaxInt, math.MaxInt
	for _, l := range layers {
		for _, e := range l.c.Abilities(id) {
			if !e.Ability.AppliesTo(subject, turn) {
				continue
			}
			level := l.base + e.Depth
			if e.Ability.Value {
				bestTrue = min(bestTrue, level)
			} else {
				bestFalse = min(bestFalse, level)
			}
		}
	}
	// A false wins only from a strictly more specific level.
	return bestTrue != math.MaxInt && bestTrue <= bestFalse
}

func modifiers(layers []layer, id feature.TraitID, subject feature.Subject, turn int) []*feature.Modifier {
	var out []*feature.Modifier
	for _, l := range layers {
		for _, e := range l.c.Modifiers(id) {
			if e.Modifier.AppliesTo(subject, turn) {
				out = append(out, e.Modifier)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b *feature.Modifier) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}

// Fold applies mods to base in order. mods must already be sorted.
// Empty mods return base unchanged; nothing is clamped.
func Fold(base float64, mods []*feature.Modifier) float64 {
	acc := base
	for _, m := range mods {
		acc = m.Apply(acc)
	}
	return acc
}

// HasAbility resolves ability id on h.
//
// The result is true iff at least one applicable ability has value true
// and no applicable ability with value false comes from a strictly more
// specific level. Instance features are more specific than type features,
// a type's own features more specific than inherited ones, and the
// holder's layers more specific than its owner's.
func HasAbility(h model.Holder, id feature.TraitID, q Query) (bool, error) {
	return evaluation{turn: q.Turn}.hasAbility(h, id, q.Subject)
}

func (ev evaluation) hasAbility(h model.Holder, id feature.TraitID, subject feature.Subject) (bool, error) {
	layers, err := collect(h)
	if err != nil {
		return false, err
	}
	if subject == nil {
		subject = holderSubject{h: h, ev: ev}
	}
	return hasAbility(layers, id, subject, ev.turn), nil
}

// Modifiers returns the modifiers with id applicable to h, in fold order.
func Modifiers(h model.Holder, id feature.TraitID, q Query) ([]*feature.Modifier, error) {
	layers, err := collect(h)
	if err != nil {
		return nil, err
	}
	subject := q.Subject
	if subject == nil {
		subject = holderSubject{h: h, ev: evaluation{turn: q.Turn}}
	}
	return modifiers(layers, id, subject, q.Turn), nil
}

// ApplyModifiers collects every applicable modifier with id once, sorts
// them by index (ties keep collection order) and folds them over base.
func ApplyModifiers(h model.Holder, base float64, id feature.TraitID, q Query) (float64, error) {
	mods, err := Modifiers(h, id, q)
	if err != nil {
		return base, err
	}
	result := Fold(base, mods)
	logFold(h.SourceID(), id, base, result, mods)
	return result, nil
}

// TypeHasAbility resolves ability id on a type alone, e.g. to decide
// whether a building type may be built.
func TypeHasAbility(t *spec.Type, id feature.TraitID, q Query) bool {
	return evaluation{turn: q.Turn}.typeHasAbility(t, id, q.Subject)
}

func (ev evaluation) typeHasAbility(t *spec.Type, id feature.TraitID, subject feature.Subject) bool {
	if t == nil {
		return false
	}
	if subject == nil {
		subject = typeSubject{t: t, ev: ev}
	}
	return hasAbility(typeLayers(t), id, subject, ev.turn)
}

// ApplyTypeModifiers folds the modifiers of a type alone over base.
func ApplyTypeModifiers(t *spec.Type, base float64, id feature.TraitID, q Query) float64 {
	if t == nil {
		return base
	}
	subject := q.Subject
	if subject == nil {
		subject = typeSubject{t: t, ev: evaluation{turn: q.Turn}}
	}
	mods := modifiers(typeLayers(t), id, subject, q.Turn)
	result := Fold(base, mods)
	logFold(t.ID, id, base, result, mods)
	return result
}

func logFold(holder string, id feature.TraitID, base, result float64, mods []*feature.Modifier) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	steps := make([]string, len(mods))
	for i, m := range mods {
		steps[i] = m.String()
	}
	slog.Debug("modifiers folded",
		"holder", holder,
		"trait", id,
		"base", base,
		"result", result,
		"steps", steps)
}
