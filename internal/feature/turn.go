package feature

import "fmt"

// TurnRange is the half-open window [Start, End) of game turns in which a
// feature is active. Turns are numbered from 1; a zero bound is unbounded.
// In rule files end-turn is the first turn the feature no longer applies.
type TurnRange struct {
	Start int `yaml:"first-turn,omitempty"`
	End   int `yaml:"end-turn,omitempty"`
}

// Always is the unbounded validity window.
var Always = TurnRange{}

// Turns returns the window [start, end).
func Turns(start, end int) TurnRange {
	return TurnRange{Start: start, End: end}
}

// IsBounded reports whether the window restricts any turn.
func (r TurnRange) IsBounded() bool {
	return r.Start > 0 || r.End > 0
}

// Contains reports whether turn falls inside the window.
// Turn 0 means "no particular turn" and is never excluded.
func (r TurnRange) Contains(turn int) bool {
	if turn <= 0 {
		return true
	}
	if r.Start > 0 && turn < r.Start {
		return false
	}
	if r.End > 0 && turn >= r.End {
		return false
	}
	return true
}

// Validate checks that a bounded window is not empty.
func (r TurnRange) Validate() error {
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("negative turn bound [%d, %d)", r.Start, r.End)
	}
	if r.Start > 0 && r.End > 0 && r.End <= r.Start {
		return fmt.Errorf("empty turn window [%d, %d)", r.Start, r.End)
	}
	return nil
}

func (r TurnRange) String() string {
	if !r.IsBounded() {
		return "always"
	}
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
