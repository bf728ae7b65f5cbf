package rules

import (
	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/model"
)

// Resolver answers queries at the current turn of a game.
type Resolver struct {
	turn func() int
}

// NewResolver returns a Resolver reading the current turn from turn.
func NewResolver(turn func() int) *Resolver {
	return &Resolver{turn: turn}
}

// Query returns a query for the current turn.
func (r *Resolver) Query() Query {
	return Query{Turn: r.turn()}
}

// HasAbility resolves ability id on h at the current turn.
func (r *Resolver) HasAbility(h model.Holder, id feature.TraitID) (bool, error) {
	return HasAbility(h, id, r.Query())
}

// ApplyModifiers folds the modifiers id of h over base at the current turn.
func (r *Resolver) ApplyModifiers(h model.Holder, base float64, id feature.TraitID) (float64, error) {
	return ApplyModifiers(h, base, id, r.Query())
}

// Offence is the attack strength of u: the unit type's offence with every
// offence modifier of the unit, its type and its owner applied.
func (r *Resolver) Offence(u *model.Unit) (float64, error) {
	return ApplyModifiers(u, float64(u.Type().Offence), feature.ModifierOffence, r.Query())
}

// Defence is the defence strength of u.
func (r *Resolver) Defence(u *model.Unit) (float64, error) {
	return ApplyModifiers(u, float64(u.Type().Defence), feature.ModifierDefence, r.Query())
}
