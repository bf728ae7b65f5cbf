package feature

import (
	"fmt"
	"strings"
)

// Operator defines how a modifier combines with the running value.
type Operator int8

const (
	Additive       Operator = iota // acc + magnitude
	Multiplicative                 // acc * magnitude
	Percentage                     // acc + acc*magnitude/100
	Value                          // magnitude replaces acc
)

var operatorNames = [...]string{
	Additive:       "additive",
	Multiplicative: "multiplicative",
	Percentage:     "percentage",
	Value:          "value",
}

// ParseOperator parses an operator name (case-insensitive).
func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if strings.EqualFold(s, name) {
			return Operator(op), nil
		}
	}
	return 0, fmt.Errorf("unknown modifier operator %q", s)
}

func (op Operator) String() string {
	if int(op) < len(operatorNames) && op >= 0 {
		return operatorNames[op]
	}
	return fmt.Sprintf("operator(%d)", int8(op))
}

// MarshalText implements encoding.TextMarshaler.
func (op Operator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// Modifier fold indices. Lower indices are applied first.
const (
	DefaultIndex = 0

	BaseCombatIndex           = 10
	UnitAdditiveCombatIndex   = 20
	RoleCombatIndex           = 30
	UnitNormalCombatIndex     = 40
	GenericCombatIndex        = 50
	AttackBonusCombatIndex    = 60
	FortificationBonusIndex   = 70
	OffenceAgainstCombatIndex = 80

	ResourceProductionIndex    = 10
	ColonyProductionIndex      = 20
	ExpertProductionIndex      = 30
	FatherProductionIndex      = 40
	ImprovementProductionIndex = 50
	AutoProductionIndex        = 60
	BuildingProductionIndex    = 70
	NationProductionIndex      = 80
)

// Modifier is a named numeric effect.
//
// Magnitude and Index may change after construction, only during post-load fixups.
type Modifier struct {
	ID        TraitID
	Source    Source
	Operator  Operator
	Magnitude float64
	Index     int
	Validity  TurnRange
	Scopes    []*Scope
}

// NewModifier creates an always-valid, unscoped modifier with the default index.
func NewModifier(id TraitID, source Source, op Operator, magnitude float64) *Modifier {
	return &Modifier{ID: id, Source: source, Operator: op, Magnitude: magnitude}
}

// WithIndex sets the fold index and returns m.
func (m *Modifier) WithIndex(index int) *Modifier {
	m.Index = index
	return m
}

// WithValidity sets the turn window and returns m.
func (m *Modifier) WithValidity(r TurnRange) *Modifier {
	m.Validity = r
	return m
}

// Apply combines the modifier with the running value.
// No clamping: overflow and NaN propagate to the caller.
func (m *Modifier) Apply(acc float64) float64 {
	switch m.Operator {
	case Additive:
		return acc + m.Magnitude
	case Multiplicative:
		return acc * m.Magnitude
	case Percentage:
		return acc + acc*(m.Magnitude/100)
	case Value:
		return m.Magnitude
	}
	return acc
}

// AppliesTo reports whether the modifier is active for subject at turn.
func (m *Modifier) AppliesTo(subject Subject, turn int) bool {
	return m.Validity.Contains(turn) && scopesMatch(m.Scopes, subject, turn)
}

// Same reports whether m and o have the same id and source.
func (m *Modifier) Same(o *Modifier) bool {
	return m.ID == o.ID && SameSource(m.Source, o.Source)
}

// Identical compares every defining field.
func (m *Modifier) Identical(o *Modifier) bool {
	return m.Same(o) &&
		m.Operator == o.Operator &&
		m.Magnitude == o.Magnitude &&
		m.Index == o.Index &&
		m.Validity == o.Validity &&
		scopesEqual(m.Scopes, o.Scopes)
}

// Clone returns a copy; scopes are immutable and shared.
func (m *Modifier) Clone() *Modifier {
	c := *m
	return &c
}

func (m *Modifier) String() string {
	return fmt.Sprintf("%s %s %g #%d (source=%s, %s)",
		m.ID, m.Operator, m.Magnitude, m.Index, SourceID(m.Source), m.Validity)
}
