package spec

import (
	"errors"
	"fmt"

	"github.com/oss-qm/freecol-sub000/internal/feature"
)

// Document is one specification file.
type Document struct {
	Types         []*TypeRecord     `yaml:"types,omitempty"`
	BuildingTypes []*BuildingRecord `yaml:"building-types,omitempty"`
	UnitTypes     []*UnitRecord     `yaml:"unit-types,omitempty"`
	NationTypes   []*NationRecord   `yaml:"nation-types,omitempty"`
}

// TypeRecord is the part of a type record shared by every kind.
type TypeRecord struct {
	ID            string            `yaml:"id"`
	Extends       string            `yaml:"extends,omitempty"`
	Abstract      bool              `yaml:"abstract,omitempty"`
	Preserve      bool              `yaml:"preserve,omitempty"`
	ModifierIndex *int              `yaml:"modifier-index,omitempty"`
	Abilities     []*AbilityRecord  `yaml:"abilities,omitempty"`
	Modifiers     []*ModifierRecord `yaml:"modifiers,omitempty"`
}

// AbilityRecord declares an ability, or with Delete set removes every
// inherited ability with ID.
type AbilityRecord struct {
	ID       feature.TraitID   `yaml:"id"`
	Delete   bool              `yaml:"delete,omitempty"`
	Value    *bool             `yaml:"value,omitempty"`
	Source   string            `yaml:"source,omitempty"`
	Validity feature.TurnRange `yaml:",inline"`
	Scopes   []*ScopeRecord    `yaml:"scopes,omitempty"`
}

// ModifierRecord declares a modifier, or with Delete set removes every
// inherited modifier with ID.
type ModifierRecord struct {
	ID       feature.TraitID   `yaml:"id"`
	Delete   bool              `yaml:"delete,omitempty"`
	Type     feature.Operator  `yaml:"type,omitempty"`
	Value    float64           `yaml:"value,omitempty"`
	Index    *int              `yaml:"index,omitempty"`
	Source   string            `yaml:"source,omitempty"`
	Validity feature.TurnRange `yaml:",inline"`
	Scopes   []*ScopeRecord    `yaml:"scopes,omitempty"`
}

// ScopeRecord is the serialized form of feature.Scope.
type ScopeRecord struct {
	Type         string          `yaml:"type,omitempty"`
	Ability      feature.TraitID `yaml:"ability,omitempty"`
	AbilityValue *bool           `yaml:"ability-value,omitempty"`
	MatchNegated bool            `yaml:"match-negated,omitempty"`
	MatchesNull  bool            `yaml:"matches-null,omitempty"`
	Condition    string          `yaml:"condition,omitempty"`
}

// BuildingRecord is a building type record. Nil scalars are inherited.
type BuildingRecord struct {
	TypeRecord `yaml:",inline"`

	Workplaces         *int   `yaml:"workplaces,omitempty"`
	BasicProduction    *int   `yaml:"basic-production,omitempty"`
	MinSkill           *int   `yaml:"min-skill,omitempty"`
	MaxSkill           *int   `yaml:"max-skill,omitempty"`
	UpkeepCost         *int   `yaml:"upkeep,omitempty"`
	Priority           *int   `yaml:"priority,omitempty"`
	RequiredPopulation *int   `yaml:"required-population,omitempty"`
	HammersRequired    *int   `yaml:"required-hammers,omitempty"`
	UpgradesFrom       string `yaml:"upgrades-from,omitempty"`
}

// UnitRecord is a unit type record. Nil scalars are inherited.
type UnitRecord struct {
	TypeRecord `yaml:",inline"`

	Offence            *int    `yaml:"offence,omitempty"`
	Defence            *int    `yaml:"defence,omitempty"`
	Space              *int    `yaml:"space,omitempty"`
	SpaceTaken         *int    `yaml:"space-taken,omitempty"`
	HitPoints          *int    `yaml:"hit-points,omitempty"`
	LineOfSight        *int    `yaml:"line-of-sight,omitempty"`
	Movement           *int    `yaml:"movement,omitempty"`
	Skill              *int    `yaml:"skill,omitempty"`
	Price              *int    `yaml:"price,omitempty"`
	RecruitProbability *int    `yaml:"recruit-probability,omitempty"`
	ExpertProduction   *string `yaml:"expert-production,omitempty"`
}

// NationRecord is a nation type record. Nil scalars are inherited.
type NationRecord struct {
	TypeRecord `yaml:",inline"`

	European         *bool   `yaml:"european,omitempty"`
	SettlementNumber *int    `yaml:"settlement-number,omitempty"`
	Aggression       *string `yaml:"aggression,omitempty"`
}

func (r *BuildingRecord) apply(a *BuildingAttrs) {
	set(&a.Workplaces, r.Workplaces)
	set(&a.BasicProduction, r.BasicProduction)
	set(&a.MinSkill, r.MinSkill)
	set(&a.MaxSkill, r.MaxSkill)
	set(&a.UpkeepCost, r.UpkeepCost)
	set(&a.Priority, r.Priority)
	set(&a.RequiredPopulation, r.RequiredPopulation)
	set(&a.HammersRequired, r.HammersRequired)
}

func (r *UnitRecord) apply(a *UnitAttrs) {
	set(&a.Offence, r.Offence)
	set(&a.Defence, r.Defence)
	set(&a.Space, r.Space)
	set(&a.SpaceTaken, r.SpaceTaken)
	set(&a.HitPoints, r.HitPoints)
	set(&a.LineOfSight, r.LineOfSight)
	set(&a.Movement, r.Movement)
	set(&a.Skill, r.Skill)
	set(&a.Price, r.Price)
	set(&a.RecruitProbability, r.RecruitProbability)
	set(&a.ExpertProduction, r.ExpertProduction)
}

func (r *NationRecord) apply(a *NationAttrs) {
	set(&a.European, r.European)
	set(&a.SettlementNumber, r.SettlementNumber)
	set(&a.Aggression, r.Aggression)
}

// set copies an explicit value over the inherited one.
func set[T any](dst *T, explicit *T) {
	if explicit != nil {
		*dst = *explicit
	}
}

// overlay merges a preserve patch into r: explicit patch scalars win,
// patch deletions also drop r's own matching declarations.
func (r *BuildingRecord) overlay(p *BuildingRecord) {
	r.TypeRecord.overlay(&p.TypeRecord)
	overlayPtr(&r.Workplaces, p.Workplaces)
	overlayPtr(&r.BasicProduction, p.BasicProduction)
	overlayPtr(&r.MinSkill, p.MinSkill)
	overlayPtr(&r.MaxSkill, p.MaxSkill)
	overlayPtr(&r.UpkeepCost, p.UpkeepCost)
	overlayPtr(&r.Priority, p.Priority)
	overlayPtr(&r.RequiredPopulation, p.RequiredPopulation)
	overlayPtr(&r.HammersRequired, p.HammersRequired)
	if p.UpgradesFrom != "" {
		r.UpgradesFrom = p.UpgradesFrom
	}
}

func (r *UnitRecord) overlay(p *UnitRecord) {
	r.TypeRecord.overlay(&p.TypeRecord)
	overlayPtr(&r.Offence, p.Offence)
	overlayPtr(&r.Defence, p.Defence)
	overlayPtr(&r.Space, p.Space)
	overlayPtr(&r.SpaceTaken, p.SpaceTaken)
	overlayPtr(&r.HitPoints, p.HitPoints)
	overlayPtr(&r.LineOfSight, p.LineOfSight)
	overlayPtr(&r.Movement, p.Movement)
	overlayPtr(&r.Skill, p.Skill)
	overlayPtr(&r.Price, p.Price)
	overlayPtr(&r.RecruitProbability, p.RecruitProbability)
	overlayPtr(&r.ExpertProduction, p.ExpertProduction)
}

func (r *NationRecord) overlay(p *NationRecord) {
	r.TypeRecord.overlay(&p.TypeRecord)
	overlayPtr(&r.European, p.European)
	overlayPtr(&r.SettlementNumber, p.SettlementNumber)
	overlayPtr(&r.Aggression, p.Aggression)
}

func overlayPtr[T any](dst **T, p *T) {
	if p != nil {
		*dst = p
	}
}

func (r *TypeRecord) overlay(p *TypeRecord) {
	if p.Extends != "" {
		r.Extends = p.Extends
	}
	r.Abstract = r.Abstract || p.Abstract
	if p.ModifierIndex != nil {
		r.ModifierIndex = p.ModifierIndex
	}

	for _, d := range p.Abilities {
		if d.Delete {
			r.Abilities = dropAbilities(r.Abilities, d.ID)
		}
	}
	for _, d := range p.Modifiers {
		if d.Delete {
			r.Modifiers = dropModifiers(r.Modifiers, d.ID)
		}
	}
	r.Abilities = append(r.Abilities, p.Abilities...)
	r.Modifiers = append(r.Modifiers, p.Modifiers...)
}

func dropAbilities(in []*AbilityRecord, id feature.TraitID) []*AbilityRecord {
	out := in[:0:0]
	for _, a := range in {
		if a.Delete || a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func dropModifiers(in []*ModifierRecord, id feature.TraitID) []*ModifierRecord {
	out := in[:0:0]
	for _, m := range in {
		if m.Delete || m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func (r *TypeRecord) validate() error {
	if r.ID == "" {
		return errors.New("missing id")
	}
	for _, a := range r.Abilities {
		if a.ID == feature.NoTrait {
			return errors.New("ability without id")
		}
		if err := a.Validity.Validate(); err != nil {
			return fmt.Errorf("ability %s: %w", a.ID, err)
		}
	}
	for _, m := range r.Modifiers {
		if m.ID == feature.NoTrait {
			return errors.New("modifier without id")
		}
		if err := m.Validity.Validate(); err != nil {
			return fmt.Errorf("modifier %s: %w", m.ID, err)
		}
	}
	return nil
}

// AbilityRecordOf returns the record form of a, with its source by id.
func AbilityRecordOf(a *feature.Ability) *AbilityRecord {
	v := a.Value
	return &AbilityRecord{
		ID:       a.ID,
		Value:    &v,
		Source:   feature.SourceID(a.Source),
		Validity: a.Validity,
		Scopes:   scopeRecordsOf(a.Scopes),
	}
}

// Build creates the ability the record declares, contributed by src.
func (r *AbilityRecord) Build(src feature.Source) (*feature.Ability, error) {
	scopes, err := compileScopes(r.Scopes)
	if err != nil {
		return nil, fmt.Errorf("ability %s: %w", r.ID, err)
	}
	a := feature.NewAbility(r.ID, src, true)
	if r.Value != nil {
		a.Value = *r.Value
	}
	a.Validity = r.Validity
	a.Scopes = scopes
	return a, nil
}

// ModifierRecordOf returns the record form of m, with its source by id.
func ModifierRecordOf(m *feature.Modifier) *ModifierRecord {
	index := m.Index
	return &ModifierRecord{
		ID:       m.ID,
		Type:     m.Operator,
		Value:    m.Magnitude,
		Index:    &index,
		Source:   feature.SourceID(m.Source),
		Validity: m.Validity,
		Scopes:   scopeRecordsOf(m.Scopes),
	}
}

// Build creates the modifier the record declares, contributed by src.
// defaultIndex applies when the record sets no index.
func (r *ModifierRecord) Build(src feature.Source, defaultIndex int) (*feature.Modifier, error) {
	scopes, err := compileScopes(r.Scopes)
	if err != nil {
		return nil, fmt.Errorf("modifier %s: %w", r.ID, err)
	}
	m := feature.NewModifier(r.ID, src, r.Type, r.Value)
	m.Index = defaultIndex
	if r.Index != nil {
		m.Index = *r.Index
	}
	m.Validity = r.Validity
	m.Scopes = scopes
	return m, nil
}

func scopeRecordsOf(scopes []*feature.Scope) []*ScopeRecord {
	if len(scopes) == 0 {
		return nil
	}
	out := make([]*ScopeRecord, len(scopes))
	for i, s := range scopes {
		r := &ScopeRecord{
			Type:         s.Type,
			Ability:      s.AbilityID,
			MatchNegated: s.MatchNegated,
			MatchesNull:  s.MatchesNull,
			Condition:    s.Condition,
		}
		if !s.AbilityValue {
			v := false
			r.AbilityValue = &v
		}
		out[i] = r
	}
	return out
}

func (s *ScopeRecord) scope() (*feature.Scope, error) {
	sc := &feature.Scope{
		Type:         s.Type,
		AbilityID:    s.Ability,
		AbilityValue: true,
		MatchNegated: s.MatchNegated,
		MatchesNull:  s.MatchesNull,
		Condition:    s.Condition,
	}
	if s.AbilityValue != nil {
		sc.AbilityValue = *s.AbilityValue
	}
	if err := sc.Compile(); err != nil {
		return nil, err
	}
	return sc, nil
}

func compileScopes(in []*ScopeRecord) ([]*feature.Scope, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]*feature.Scope, 0, len(in))
	for _, s := range in {
		sc, err := s.scope()
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
