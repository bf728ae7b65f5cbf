package codec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/rules"
	"github.com/oss-qm/freecol-sub000/internal/spec"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

const testRules = `
types:
  - id: test.father.revere
    abilities:
      - id: model.ability.expertSoldier
    modifiers:
      - id: model.modifier.defence
        type: percentage
        value: 50
nation-types:
  - id: test.nation.dutch
    abilities:
      - id: model.ability.tradeBonus
    modifiers:
      - id: model.modifier.offence
        value: 1
        scopes:
          - ability: model.ability.navalUnit
            match-negated: true
unit-types:
  - id: test.unit.soldier
    offence: 2
    defence: 1
  - id: test.unit.expert
    skill: 2
  - id: test.unit.ship
    space: 2
    offence: 1
    abilities:
      - id: model.ability.navalUnit
building-types:
  - id: test.building.school
    min-skill: 1
    workplaces: 2
`

var (
	queriedAbilities = []feature.TraitID{
		feature.AbilityExpertSoldier,
		feature.Intern("model.ability.tradeBonus"),
		feature.AbilityNavalUnit,
		feature.AbilityPiracy,
	}
	queriedModifiers = []feature.TraitID{
		feature.ModifierOffence,
		feature.ModifierDefence,
	}
	queriedTurns = []int{0, 5, 12, 25}
)

type fixture struct {
	game    *world.Game
	player  *model.Player
	colony  *model.Settlement
	school  *model.Building
	ship    *model.Unit
	soldier *model.Unit
	expert  *model.Unit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sp := spec.MustLoadString(testRules)
	g := world.NewGame(sp, world.Options{})
	g.SetTurn(12)

	f := &fixture{game: g}
	var err error
	f.player, err = g.AddPlayer("Stuyvesant", "test.nation.dutch")
	require.NoError(t, err)
	f.player.SetGold(500)
	revere, ok := sp.Type("test.father.revere")
	require.True(t, ok)
	require.NoError(t, f.player.AddFather(revere))

	f.colony = g.AddSettlement(f.player, "Nieuw Amsterdam", model.Tile{X: 3, Y: 4})
	f.colony.SetLiberty(40)
	f.colony.Goods().Set("food", 10)
	f.colony.Goods().Set("ore", 3)
	f.colony.Goods().SaveState()
	f.colony.Goods().Set("food", 14)
	f.colony.Goods().Set("furs", 2)
	f.colony.Goods().Set("ore", 0)

	f.school, err = g.AddBuilding(f.colony, "test.building.school")
	require.NoError(t, err)
	f.ship, err = g.AddUnit(f.player, "test.unit.ship", nil)
	require.NoError(t, err)
	f.ship.SetTile(model.Tile{X: 5, Y: 5})
	f.soldier, err = g.AddUnit(f.player, "test.unit.soldier", f.ship)
	require.NoError(t, err)
	f.soldier.SetUnitState(model.UnitSentry)
	f.expert, err = g.AddUnit(f.player, "test.unit.expert", f.school)
	require.NoError(t, err)

	// instance features: a timed event, an object-sourced ability and a scoped bonus
	f.soldier.Features().AddModifier(feature.NewModifier(feature.ModifierOffence,
		feature.NamedSource("model.event.ambush"), feature.Percentage, 50).
		WithValidity(feature.Turns(10, 20)).WithIndex(70))
	f.ship.Features().AddAbility(feature.NewAbility(feature.AbilityPiracy, f.colony, true))
	rec := &spec.ModifierRecord{
		ID:     feature.ModifierDefence,
		Type:   feature.Additive,
		Value:  2,
		Scopes: []*spec.ScopeRecord{{Condition: "Turn >= 12"}},
	}
	m, err := rec.Build(f.colony, 5)
	require.NoError(t, err)
	f.colony.Features().AddModifier(m)
	return f
}

func (f *fixture) holders() []model.Holder {
	return []model.Holder{f.player, f.colony, f.school, f.ship, f.soldier, f.expert}
}

type answers map[string]any

func collectAnswers(t *testing.T, g *world.Game, ids []ident.ID) answers {
	t.Helper()
	out := answers{}
	for _, id := range ids {
		obj, ok := g.Lookup(id)
		require.True(t, ok, id.String())
		h := obj.(model.Holder)
		for _, turn := range queriedTurns {
			q := rules.AtTurn(turn)
			for _, a := range queriedAbilities {
				v, err := rules.HasAbility(h, a, q)
				require.NoError(t, err)
				out[fmt.Sprintf("%s/%s/%d", id, a, turn)] = v
			}
			for _, m := range queriedModifiers {
				v, err := rules.ApplyModifiers(h, 10, m, q)
				require.NoError(t, err)
				out[fmt.Sprintf("%s/%s/%d", id, m, turn)] = v
			}
		}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	var ids []ident.ID
	for _, h := range f.holders() {
		ids = append(ids, h.(model.GameObject).Base().ID())
	}
	before := collectAnswers(t, f.game, ids)

	data, err := Encode(f.game)
	require.NoError(t, err)

	g, err := Decode(data, f.game.Spec(), world.RegistryOptions{})
	require.NoError(t, err)

	assert.Equal(t, f.game.ID(), g.ID())
	assert.Equal(t, 12, g.Turn())
	assert.Equal(t, f.game.Registry().Len(), g.Registry().Len())
	assert.Equal(t, before, collectAnswers(t, g, ids), "queries answer the same after restore")

	players := g.Players()
	require.Len(t, players, 1)
	p := players[0]
	assert.Equal(t, "Stuyvesant", p.Name())
	assert.Equal(t, 500, p.Gold())
	assert.True(t, p.HasFather("test.father.revere"))
	assert.Same(t, f.game.Spec().NationTypes()[0], p.NationType())

	require.Len(t, p.Settlements(), 1)
	colony := p.Settlements()[0]
	assert.Equal(t, model.Tile{X: 3, Y: 4}, colony.Tile())
	assert.Equal(t, 40, colony.Liberty())
	assert.Equal(t, map[string]int{"food": 14, "furs": 2}, colony.Goods().Amounts())
	assert.Equal(t, f.colony.Goods().Changes(), colony.Goods().Changes())
	assert.Equal(t, 1, colony.Population())

	obj, ok := g.Lookup(f.soldier.ID())
	require.True(t, ok)
	soldier := obj.(*model.Unit)
	require.NotNil(t, soldier.Location())
	assert.Equal(t, f.ship.ID(), soldier.Location().Base().ID())
	assert.Equal(t, model.UnitSentry, soldier.UnitState())
	assert.Same(t, p, soldier.Owner())

	obj, ok = g.Lookup(f.ship.ID())
	require.True(t, ok)
	ship := obj.(*model.Unit)
	assert.Equal(t, model.Tile{X: 5, Y: 5}, ship.Tile())
	assert.Equal(t, 1, ship.SpaceLeft())
	piracy, _ := ship.Features().FromSource(colony)
	require.Len(t, piracy, 1, "object sources are rebound to the restored object")

	next := g.Allocator().Next(model.KindUnit)
	assert.Equal(t, f.game.Allocator().Last(model.KindUnit)+1, next.Seq)
}

func TestRoundTrip_Disposed(t *testing.T) {
	f := newFixture(t)
	f.game.Dispose(f.soldier)

	data, err := Encode(f.game)
	require.NoError(t, err)
	g, err := Decode(data, f.game.Spec(), world.RegistryOptions{})
	require.NoError(t, err)

	_, ok := g.Lookup(f.soldier.ID())
	assert.False(t, ok)
	assert.Len(t, g.Players()[0].Units(), 2)
	assert.Greater(t, g.Allocator().Next(model.KindUnit).Seq, f.soldier.ID().Seq,
		"identifiers of disposed objects are not reused")
}

func TestRoundTrip_Unowned(t *testing.T) {
	f := newFixture(t)
	scout, err := f.game.AddUnit(nil, "test.unit.soldier", f.colony)
	require.NoError(t, err)
	stowaway, err := f.game.AddUnit(nil, "test.unit.expert", f.ship)
	require.NoError(t, err)

	data, err := Encode(f.game)
	require.NoError(t, err)
	g, err := Decode(data, f.game.Spec(), world.RegistryOptions{})
	require.NoError(t, err)

	for _, u := range []*model.Unit{scout, stowaway} {
		obj, ok := g.Lookup(u.ID())
		require.True(t, ok, u.ID().String())
		assert.Nil(t, obj.(*model.Unit).Owner())
	}
	obj, _ := g.Lookup(scout.ID())
	require.NotNil(t, obj.(*model.Unit).Location())
	assert.Equal(t, f.colony.ID(), obj.(*model.Unit).Location().Base().ID())
	obj, _ = g.Lookup(stowaway.ID())
	require.NotNil(t, obj.(*model.Unit).Location())
	assert.Equal(t, f.ship.ID(), obj.(*model.Unit).Location().Base().ID())
	assert.Len(t, g.Players()[0].Units(), 3)
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	f := newFixture(t)
	data, err := Encode(f.game)
	require.NoError(t, err)

	other := spec.MustLoadString(testRules, "unit-types:\n  - id: test.unit.scout\n")
	_, err = Decode(data, other, world.RegistryOptions{})
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecode_BadRecords(t *testing.T) {
	sp := spec.MustLoadString(testRules)
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown unit type",
			doc:  "objects:\n  - id: unit:1\n    type: test.unit.dragoon\n",
			want: world.ErrUnknownType,
		},
		{
			name: "missing owner",
			doc:  "objects:\n  - id: settlement:1\n    owner: player:9\n",
			want: ErrUnknownObject,
		},
		{
			name: "unknown field",
			doc:  "objects:\n  - id: player:1\n    type: test.nation.dutch\n    fields:\n      colour: orange\n",
			want: model.ErrUnknownField,
		},
		{
			name: "carriers aboard each other",
			doc: "objects:\n" +
				"  - id: unit:1\n    type: test.unit.ship\n    location: unit:2\n" +
				"  - id: unit:2\n    type: test.unit.ship\n    location: unit:1\n",
			want: model.ErrCarrierCycle,
		},
		{
			name: "unknown kind",
			doc:  "objects:\n  - id: tile:1\n",
			want: ErrUnknownObject,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.doc), sp, world.RegistryOptions{})
			var rec *RecordError
			require.ErrorAs(t, err, &rec)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecode_Duplicate(t *testing.T) {
	sp := spec.MustLoadString(testRules)
	doc := "objects:\n  - id: player:1\n    type: test.nation.dutch\n  - id: player:1\n    type: test.nation.dutch\n"
	_, err := Decode([]byte(doc), sp, world.RegistryOptions{})
	var dup *world.DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, ident.New(model.KindPlayer, 1), dup.ID)
}

func TestDecode_PartialRecords(t *testing.T) {
	sp := spec.MustLoadString(testRules)
	doc := `
turn: 3
objects:
  - id: player:1
    partial: true
    fields:
      gold: "77"
  - id: player:1
    type: test.nation.dutch
    fields:
      name: Minuit
      gold: "10"
`
	g, err := Decode([]byte(doc), sp, world.RegistryOptions{})
	require.NoError(t, err)
	p := g.Players()[0]
	assert.Equal(t, "Minuit", p.Name())
	assert.Equal(t, 77, p.Gold(), "partial records apply after the full ones")
	assert.Equal(t, 3, g.Turn())
}

func TestApplyPartial(t *testing.T) {
	f := newFixture(t)

	rec, err := EncodePartial(f.soldier, "moves", "state")
	require.NoError(t, err)
	assert.True(t, rec.Partial)
	assert.Equal(t, map[string]string{"moves": "3", "state": "sentry"}, rec.Fields)

	rec.Fields["moves"] = "0"
	rec.Fields["state"] = "fortified"
	require.NoError(t, ApplyPartial(f.game, rec))
	assert.Equal(t, 0, f.soldier.MovesLeft())
	assert.Equal(t, model.UnitFortified, f.soldier.UnitState())

	t.Run("unknown field rejects the record", func(t *testing.T) {
		err := ApplyPartial(f.game, &ObjectRecord{
			ID:      f.soldier.ID(),
			Partial: true,
			Fields:  map[string]string{"moves": "3", "rank": "captain"},
		})
		require.ErrorIs(t, err, model.ErrUnknownField)
		assert.Equal(t, 0, f.soldier.MovesLeft(), "nothing written")
	})

	t.Run("unknown object", func(t *testing.T) {
		err := ApplyPartial(f.game, &ObjectRecord{ID: ident.New(model.KindUnit, 99), Partial: true})
		require.ErrorIs(t, err, ErrUnknownObject)
	})

	t.Run("all fields", func(t *testing.T) {
		rec, err := EncodePartial(f.player)
		require.NoError(t, err)
		assert.Equal(t, model.SnapshotFields(f.player), rec.Fields)
	})

	t.Run("unknown field name", func(t *testing.T) {
		_, err := EncodePartial(f.player, "colour")
		require.ErrorIs(t, err, model.ErrUnknownField)
	})
}
