package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-qm/freecol-sub000/internal/codec"
	"github.com/oss-qm/freecol-sub000/internal/data"
	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/rules"
	"github.com/oss-qm/freecol-sub000/internal/spec"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

func classicSpec(t *testing.T) *spec.Specification {
	t.Helper()
	sp, err := data.Load(context.Background(), data.DefaultRuleSet)
	require.NoError(t, err)
	return sp
}

func newClassicGame(t *testing.T, sp *spec.Specification) (*world.Game, *model.Unit) {
	t.Helper()
	g := world.NewGame(sp, world.Options{})
	g.SetTurn(7)
	p, err := g.AddPlayer("Stuyvesant", sp.NationTypes()[0].ID)
	require.NoError(t, err)
	p.SetGold(1000)
	s := g.AddSettlement(p, "Nieuw Amsterdam", model.Tile{X: 10, Y: 12})
	s.Goods().Set("model.goods.food", 20)
	u, err := g.AddUnit(p, sp.UnitTypes()[0].ID, s)
	require.NoError(t, err)
	u.Features().AddModifier(feature.NewModifier(feature.ModifierOffence,
		feature.NamedSource("model.event.ambush"), feature.Percentage, 50))
	return g, u
}

func TestGamePersistence_SaveLoad(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sp := classicSpec(t)
	svc := NewGamePersistenceService(pool)

	g, u := newClassicGame(t, sp)
	want, err := rules.ApplyModifiers(u, 4, feature.ModifierOffence, rules.AtTurn(7))
	require.NoError(t, err)

	require.NoError(t, svc.SaveGame(ctx, g))
	require.NoError(t, svc.SaveGame(ctx, g), "saving twice replaces the stored game")

	loaded, err := svc.LoadGame(ctx, g.ID(), sp, world.RegistryOptions{})
	require.NoError(t, err)
	assert.Equal(t, g.ID(), loaded.ID())
	assert.Equal(t, 7, loaded.Turn())
	assert.Equal(t, g.Registry().Len(), loaded.Registry().Len())

	obj, ok := loaded.Lookup(u.ID())
	require.True(t, ok)
	got, err := rules.ApplyModifiers(obj.(*model.Unit), 4, feature.ModifierOffence, rules.AtTurn(7))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	p := loaded.Players()[0]
	assert.Equal(t, 1000, p.Gold())
	assert.Equal(t, 20, p.Settlements()[0].Goods().Amount("model.goods.food"))
}

func TestGamePersistence_UpdateFields(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sp := classicSpec(t)
	svc := NewGamePersistenceService(pool)

	g, u := newClassicGame(t, sp)
	require.NoError(t, svc.SaveGame(ctx, g))

	u.SetMovesLeft(0)
	rec, err := codec.EncodePartial(u, "moves")
	require.NoError(t, err)
	require.NoError(t, svc.Objects().UpdateFields(ctx, g.ID(), rec))

	loaded, err := svc.LoadGame(ctx, g.ID(), sp, world.RegistryOptions{})
	require.NoError(t, err)
	obj, ok := loaded.Lookup(u.ID())
	require.True(t, ok)
	assert.Equal(t, 0, obj.(*model.Unit).MovesLeft())

	rec.ID = ident.New(model.KindUnit, 999)
	err = svc.Objects().UpdateFields(ctx, g.ID(), rec)
	require.ErrorIs(t, err, codec.ErrUnknownObject)
}

func TestGamePersistence_ListDelete(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sp := classicSpec(t)
	svc := NewGamePersistenceService(pool)

	first, _ := newClassicGame(t, sp)
	second, _ := newClassicGame(t, sp)
	require.NoError(t, svc.SaveGame(ctx, first))
	require.NoError(t, svc.SaveGame(ctx, second))

	rows, err := svc.Games().List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.ElementsMatch(t, []uuid.UUID{first.ID(), second.ID()}, []uuid.UUID{rows[0].ID, rows[1].ID})
	assert.False(t, rows[0].SavedAt.Before(rows[1].SavedAt), "most recent first")
	assert.Equal(t, map[string]int64{
		model.KindPlayer:     1,
		model.KindSettlement: 1,
		model.KindUnit:       1,
	}, rows[0].Counters)

	require.NoError(t, svc.DeleteGame(ctx, first.ID()))
	require.ErrorIs(t, svc.DeleteGame(ctx, first.ID()), ErrGameNotFound)

	_, err = svc.LoadGame(ctx, first.ID(), sp, world.RegistryOptions{})
	require.ErrorIs(t, err, ErrGameNotFound)

	objects, err := svc.Objects().LoadAll(ctx, first.ID())
	require.NoError(t, err)
	assert.Empty(t, objects, "objects are deleted with their game")
}

func TestGamePersistence_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	_, err := NewGameRepository(pool).Load(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrGameNotFound)
}
