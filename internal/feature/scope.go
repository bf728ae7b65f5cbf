package feature

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Subject is what a Scope is tested against: the object or type a feature
// is being applied to.
type Subject interface {
	// SubjectID is the object or type id.
	SubjectID() string
	// IsA reports whether the subject is the type typeID or descends from it.
	IsA(typeID string) bool
	// HasAbility resolves an ability on the subject.
	HasAbility(id TraitID) bool
}

// ScopeEnv is the environment Scope conditions are evaluated in.
type ScopeEnv struct {
	Subject string
	Turn    int

	subject Subject
}

// Is reports whether the subject is (or descends from) the given type.
func (e ScopeEnv) Is(typeID string) bool {
	return e.subject != nil && e.subject.IsA(typeID)
}

// Has reports whether the subject has the named ability.
func (e ScopeEnv) Has(ability string) bool {
	if e.subject == nil {
		return false
	}
	id, ok := Lookup(ability)
	return ok && e.subject.HasAbility(id)
}

// Scope restricts the subjects a feature applies to.
//
// A scope fails if the subject is not of Type, or does not have AbilityID
// with AbilityValue, or Condition evaluates to false. A failing scope yields
// MatchNegated, a passing one !MatchNegated. A nil subject yields MatchesNull.
type Scope struct {
	Type         string
	AbilityID    TraitID
	AbilityValue bool
	MatchNegated bool
	MatchesNull  bool
	Condition    string

	program *vm.Program
}

// Compile compiles Condition. Scopes with a condition must be compiled before use.
func (s *Scope) Compile() error {
	if s.Condition == "" {
		s.program = nil
		return nil
	}
	prog, err := expr.Compile(s.Condition, expr.Env(ScopeEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile scope condition %q: %w", s.Condition, err)
	}
	s.program = prog
	return nil
}

// Matches tests the scope against subject at the given turn.
func (s *Scope) Matches(subject Subject, turn int) bool {
	if subject == nil {
		return s.MatchesNull
	}
	if s.Type != "" && !subject.IsA(s.Type) {
		return s.MatchNegated
	}
	if s.AbilityID != NoTrait && subject.HasAbility(s.AbilityID) != s.AbilityValue {
		return s.MatchNegated
	}
	if s.program != nil {
		out, err := expr.Run(s.program, ScopeEnv{Subject: subject.SubjectID(), Turn: turn, subject: subject})
		if err != nil {
			return s.MatchNegated
		}
		if ok, _ := out.(bool); !ok {
			return s.MatchNegated
		}
	}
	return !s.MatchNegated
}

// Equal compares scope definitions (the compiled program is derived state).
func (s *Scope) Equal(o *Scope) bool {
	return s.Type == o.Type &&
		s.AbilityID == o.AbilityID &&
		s.AbilityValue == o.AbilityValue &&
		s.MatchNegated == o.MatchNegated &&
		s.MatchesNull == o.MatchesNull &&
		s.Condition == o.Condition
}

func (s *Scope) String() string {
	return fmt.Sprintf("scope(type=%q ability=%s/%t negated=%t null=%t cond=%q)",
		s.Type, s.AbilityID, s.AbilityValue, s.MatchNegated, s.MatchesNull, s.Condition)
}

// scopesMatch applies the any-of rule: no scopes means unrestricted.
func scopesMatch(scopes []*Scope, subject Subject, turn int) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s.Matches(subject, turn) {
			return true
		}
	}
	return false
}

func scopesEqual(a, b []*Scope) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
