package world

import (
	"errors"
	"fmt"

	"github.com/oss-qm/freecol-sub000/internal/ident"
)

// Registry invariant violations. These are programming errors; the
// registry panics with them.
var (
	ErrNullIdentifier = errors.New("null identifier")
	ErrNullObject     = errors.New("null object")
)

// Errors returned by Game operations.
var (
	ErrUnknownType = errors.New("unknown type")
	ErrCannotBuild = errors.New("cannot build")
)

// DuplicateIdentifierError reports an attempt to intern a second live
// object under an id already in use.
type DuplicateIdentifierError struct {
	ID ident.ID
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate identifier %s", e.ID)
}
