package data_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-qm/freecol-sub000/internal/data"
	"github.com/oss-qm/freecol-sub000/internal/feature"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

func loadClassic(t *testing.T) *spec.Specification {
	t.Helper()
	fsys, err := data.RuleSet(data.DefaultRuleSet)
	require.NoError(t, err)
	inputs, err := spec.Glob(fsys, "*.yaml")
	require.NoError(t, err)
	require.Len(t, inputs, 4)

	s, err := spec.Load(context.Background(), inputs...)
	require.NoError(t, err)
	return s
}

func TestRuleSets(t *testing.T) {
	assert.Contains(t, data.RuleSets(), data.DefaultRuleSet)

	_, err := data.RuleSet("nonexistent")
	assert.Error(t, err)
}

func TestClassicRuleSet(t *testing.T) {
	s := loadClassic(t)

	_, ok := s.Type("model.unit.colonist")
	assert.False(t, ok, "abstract colonist is not instantiable")

	criminal, ok := s.UnitType("model.unit.pettyCriminal")
	require.True(t, ok)
	assert.Equal(t, -2, criminal.Skill)
	assert.Equal(t, -1, criminal.Price, "inherited from indentured servant")
	assert.Equal(t, 3, criminal.Movement, "inherited from unit default")
	assert.True(t, criminal.IsA("model.unit.colonist"))

	artillery, ok := s.UnitType("model.unit.artillery")
	require.True(t, ok)
	assert.Empty(t, artillery.Abilities(feature.AbilityCanBeEquipped))

	caravel, ok := s.UnitType("model.unit.caravel")
	require.True(t, ok)
	assert.Empty(t, caravel.Abilities(feature.AbilityCanBeCaptured))
	assert.Len(t, caravel.Abilities(feature.AbilityNavalUnit), 1)

	fortress, ok := s.BuildingType("model.building.fortress")
	require.True(t, ok)
	assert.Equal(t, 3, fortress.Level)
	assert.Equal(t, "model.building.stockade", fortress.FirstLevel().ID)
	assert.Equal(t, 0, fortress.Workplaces)
	assert.Empty(t, fortress.Abilities(feature.AbilityBuild))

	college, ok := s.BuildingType("model.building.college")
	require.True(t, ok)
	assert.Equal(t, 1, college.MinSkill, "inherited from schoolhouse")
	assert.Equal(t, 2, college.MaxSkill)

	assert.NotEmpty(t, s.NationTypes())
	assert.NotEmpty(t, s.GenericTypes())
}

func TestClassicRuleSet_StableChecksum(t *testing.T) {
	a := loadClassic(t)
	b := loadClassic(t)
	assert.Equal(t, a.Checksum(), b.Checksum())
}

func TestLoad(t *testing.T) {
	s, err := data.Load(context.Background(), data.DefaultRuleSet)
	require.NoError(t, err)
	assert.Equal(t, loadClassic(t).Checksum(), s.Checksum())

	_, err = data.Load(context.Background(), "nonexistent")
	assert.Error(t, err)
}
