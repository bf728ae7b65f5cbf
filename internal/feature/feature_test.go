package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testSubject is a Subject with a fixed type chain and ability set.
type testSubject struct {
	id        string
	types     []string
	abilities map[TraitID]bool
}

func (s *testSubject) SubjectID() string { return s.id }

func (s *testSubject) IsA(typeID string) bool {
	for _, t := range s.types {
		if t == typeID {
			return true
		}
	}
	return false
}

func (s *testSubject) HasAbility(id TraitID) bool { return s.abilities[id] }

func TestIntern(t *testing.T) {
	assert.Equal(t, AbilityNavalUnit, Intern("model.ability.navalUnit"))
	assert.True(t, AbilityNavalUnit.IsWellKnown())
	assert.Equal(t, "model.modifier.offence", ModifierOffence.String())
	assert.Equal(t, NoTrait, Intern(""))

	custom := Intern("mod.ability.flying")
	assert.False(t, custom.IsWellKnown())
	assert.Equal(t, custom, Intern("mod.ability.flying"))
	assert.Equal(t, "mod.ability.flying", custom.String())

	got, ok := Lookup("mod.ability.flying")
	require.True(t, ok)
	assert.Equal(t, custom, got)

	_, ok = Lookup("mod.ability.neverSeen")
	assert.False(t, ok)
}

func TestTraitID_YAML(t *testing.T) {
	var doc struct {
		ID TraitID `yaml:"id"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("id: model.ability.piracy\n"), &doc))
	assert.Equal(t, AbilityPiracy, doc.ID)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "id: model.ability.piracy\n", string(out))
}

func TestTurnRange(t *testing.T) {
	r := Turns(10, 20)

	assert.True(t, r.Contains(0), "turn 0 is unfiltered")
	assert.False(t, r.Contains(9))
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20), "end is exclusive")
	assert.False(t, r.Contains(25))

	assert.True(t, Always.Contains(1000))
	assert.True(t, Turns(0, 5).Contains(1))
	assert.False(t, Turns(5, 0).Contains(4))
	assert.True(t, Turns(5, 0).Contains(4000))

	require.NoError(t, r.Validate())
	require.Error(t, Turns(20, 10).Validate())
	require.Error(t, Turns(-1, 0).Validate())
}

func TestScope_Matches(t *testing.T) {
	artillery := &testSubject{
		id:        "unit:1",
		types:     []string{"model.unit.artillery", "model.unit.military"},
		abilities: map[TraitID]bool{AbilityBombard: true},
	}
	ship := &testSubject{
		id:        "unit:2",
		types:     []string{"model.unit.caravel"},
		abilities: map[TraitID]bool{AbilityNavalUnit: true},
	}

	tests := []struct {
		name    string
		scope   Scope
		subject Subject
		want    bool
	}{
		{name: "type match", scope: Scope{Type: "model.unit.military"}, subject: artillery, want: true},
		{name: "type mismatch", scope: Scope{Type: "model.unit.military"}, subject: ship, want: false},
		{name: "negated type", scope: Scope{Type: "model.unit.military", MatchNegated: true}, subject: ship, want: true},
		{name: "ability", scope: Scope{AbilityID: AbilityNavalUnit, AbilityValue: true}, subject: ship, want: true},
		{name: "ability false wanted", scope: Scope{AbilityID: AbilityNavalUnit, AbilityValue: false}, subject: artillery, want: true},
		{name: "ability mismatch", scope: Scope{AbilityID: AbilityNavalUnit, AbilityValue: true}, subject: artillery, want: false},
		{name: "nil subject", scope: Scope{Type: "x", MatchesNull: true}, subject: nil, want: true},
		{name: "nil subject default", scope: Scope{Type: "x"}, subject: nil, want: false},
		{name: "condition", scope: Scope{Condition: `Is("model.unit.artillery") && Has("model.ability.bombard")`}, subject: artillery, want: true},
		{name: "condition false", scope: Scope{Condition: `Has("model.ability.bombard")`}, subject: ship, want: false},
		{name: "condition subject id", scope: Scope{Condition: `Subject == "unit:2"`}, subject: ship, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.scope
			require.NoError(t, s.Compile())
			assert.Equal(t, tt.want, s.Matches(tt.subject, 1))
		})
	}
}

func TestScope_CompileError(t *testing.T) {
	s := Scope{Condition: `Turn +`}
	require.Error(t, s.Compile())

	s = Scope{Condition: `Turn + 1`}
	require.Error(t, s.Compile(), "non-boolean conditions are rejected")
}

func TestModifier_Apply(t *testing.T) {
	tests := []struct {
		op   Operator
		mag  float64
		acc  float64
		want float64
	}{
		{Additive, 10, 5, 15},
		{Multiplicative, 2, 5, 10},
		{Percentage, 50, 10, 15},
		{Percentage, -25, 8, 6},
		{Value, 3, 100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			m := NewModifier(ModifierOffence, nil, tt.op, tt.mag)
			assert.InDelta(t, tt.want, m.Apply(tt.acc), 1e-9)
		})
	}

	// no clamping
	huge := NewModifier(ModifierOffence, nil, Multiplicative, math.MaxFloat64)
	assert.True(t, math.IsInf(huge.Apply(10), 1))
}

func TestOperator_Text(t *testing.T) {
	for _, op := range []Operator{Additive, Multiplicative, Percentage, Value} {
		text, err := op.MarshalText()
		require.NoError(t, err)

		var back Operator
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, op, back)
	}

	op, err := ParseOperator("PERCENTAGE")
	require.NoError(t, err)
	assert.Equal(t, Percentage, op)

	_, err = ParseOperator("exponential")
	require.Error(t, err)
}

func TestFeature_AppliesTo(t *testing.T) {
	subject := &testSubject{id: "unit:1", types: []string{"model.unit.artillery"}}

	m := NewModifier(ModifierDefence, nil, Percentage, 75).WithValidity(Turns(10, 20))
	m.Scopes = []*Scope{{Type: "model.unit.caravel"}, {Type: "model.unit.artillery"}}

	assert.True(t, m.AppliesTo(subject, 15), "any scope may match")
	assert.False(t, m.AppliesTo(subject, 25))

	a := NewAbility(AbilityBombard, nil, true)
	a.Scopes = []*Scope{{Type: "model.unit.caravel"}}
	assert.False(t, a.AppliesTo(subject, 1))
}

func TestAbility_Equality(t *testing.T) {
	a := NewAbility(AbilityBuild, NamedSource("p"), true)
	b := NewAbility(AbilityBuild, NamedSource("p"), false)
	c := NewAbility(AbilityBuild, NamedSource("q"), true)

	assert.True(t, a.Same(b))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Same(c))
	assert.True(t, a.Equal(a.Clone()))
}

func TestContainer_AddRemove(t *testing.T) {
	p, q := NamedSource("p"), NamedSource("q")
	c := NewContainer()

	c.AddAbility(NewAbility(AbilityBuild, p, true))
	c.AddAbility(NewAbility(AbilityBuild, q, false))
	c.AddAbility(NewAbility(AbilityBuild, p, true)) // identical, ignored
	c.AddModifier(NewModifier(ModifierOffence, p, Additive, 1))
	c.AddModifier(NewModifier(ModifierOffence, q, Additive, 2))

	assert.Len(t, c.Abilities(AbilityBuild), 2)
	assert.Equal(t, 4, c.Len())

	assert.Equal(t, 1, c.RemoveAbility(NewAbility(AbilityBuild, q, true)))
	assert.Equal(t, 1, c.RemoveModifier(NewModifier(ModifierOffence, p, Value, 0)))
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 1, c.RemoveAbilitiesByID(AbilityBuild))
	assert.Equal(t, 1, c.RemoveModifiersByID(ModifierOffence))
	assert.Zero(t, c.Len())
}

func TestContainer_InheritAndReplaceSource(t *testing.T) {
	parentSrc, childSrc := NamedSource("parent"), NamedSource("child")

	parent := NewContainer()
	parent.AddAbility(NewAbility(AbilityBuild, parentSrc, true))
	parent.AddModifier(NewModifier(ModifierOffence, parentSrc, Additive, 1))

	child := NewContainer()
	child.Inherit(parent)
	child.AddAbility(NewAbility(AbilityBuild, childSrc, false))

	entries := child.Abilities(AbilityBuild)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Depth)
	assert.Equal(t, 0, entries[1].Depth)

	assert.Equal(t, 2, child.ReplaceSource(parentSrc, childSrc))

	abilities, modifiers := child.FromSource(childSrc)
	assert.Len(t, abilities, 2)
	assert.Len(t, modifiers, 1)

	// the parent is untouched
	pa, pm := parent.FromSource(parentSrc)
	assert.Len(t, pa, 1)
	assert.Len(t, pm, 1)
	assert.Equal(t, 0, parent.Abilities(AbilityBuild)[0].Depth)
}

func TestContainer_CloneIsDeep(t *testing.T) {
	src := NamedSource("s")
	c := NewContainer()
	c.AddAbility(NewAbility(AbilityTeach, src, true))

	clone := c.Clone()
	clone.Abilities(AbilityTeach)[0].Ability.Value = false

	assert.True(t, c.Abilities(AbilityTeach)[0].Ability.Value)

	assert.Equal(t, 1, c.RemoveSource(src))
	assert.Equal(t, 1, clone.Len())
	clone.Clear()
	assert.Zero(t, clone.Len())
}
