package spec

import (
	"fmt"
	"strings"
)

// UnresolvedTypeReferenceError reports a reference to a type id that was
// never declared (or declared with a different kind).
type UnresolvedTypeReferenceError struct {
	TypeID string // type holding the reference
	Field  string // "extends", "upgrades-from", "source"
	Ref    string // referenced id
	Reason string
}

func (e *UnresolvedTypeReferenceError) Error() string {
	msg := fmt.Sprintf("type %q: unresolved %s reference %q", e.TypeID, e.Field, e.Ref)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// CyclicInheritanceError reports a direct or transitive inheritance cycle.
// Cycle lists the ids in order, starting and ending with the same id.
type CyclicInheritanceError struct {
	Field string
	Cycle []string
}

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("cyclic %s: %s", e.Field, strings.Join(e.Cycle, " -> "))
}

// DuplicateTypeError reports the same id declared twice in one load.
type DuplicateTypeError struct {
	TypeID string
	First  string // origin of the first declaration
	Second string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("type %q declared twice (%s, %s)", e.TypeID, e.First, e.Second)
}

// InvalidRecordError reports a malformed record.
type InvalidRecordError struct {
	TypeID string
	Origin string
	Err    error
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("%s: type %q: %v", e.Origin, e.TypeID, e.Err)
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Err
}
