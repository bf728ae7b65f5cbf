// Package codec saves and restores games as YAML documents.
//
// A document lists every live object with its scalar fields and its
// instance features. Type features are not written: they come from the
// specification the game is restored against, so the document carries
// the specification checksum and refuses a different one.
package codec

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

var (
	// ErrChecksumMismatch is returned when a document was written against
	// a different specification.
	ErrChecksumMismatch = errors.New("specification checksum mismatch")
	// ErrUnknownObject is returned for records naming an object the game
	// does not hold.
	ErrUnknownObject = errors.New("unknown object")
)

// Document is a saved game.
type Document struct {
	Game     uuid.UUID        `yaml:"game"`
	Turn     int              `yaml:"turn"`
	Checksum string           `yaml:"spec-checksum,omitempty"`
	Counters map[string]int64 `yaml:"counters,omitempty"`
	Objects  []*ObjectRecord  `yaml:"objects"`
}

// ObjectRecord is one live object. A partial record carries only the
// fields it lists and updates an existing object in place.
type ObjectRecord struct {
	ID       ident.ID          `yaml:"id"`
	Type     string            `yaml:"type,omitempty"`
	Owner    ident.ID          `yaml:"owner,omitempty"`
	Location ident.ID          `yaml:"location,omitempty"`
	Partial  bool              `yaml:"partial,omitempty"`
	Fields   map[string]string `yaml:"fields,omitempty"`
	Fathers  []string          `yaml:"fathers,omitempty"`

	Goods         map[string]int `yaml:"goods,omitempty"`
	PreviousGoods map[string]int `yaml:"previous-goods,omitempty"`

	Abilities []*spec.AbilityRecord  `yaml:"abilities,omitempty"`
	Modifiers []*spec.ModifierRecord `yaml:"modifiers,omitempty"`
}

// RecordError reports a record that cannot be restored.
type RecordError struct {
	ID  ident.ID
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s: %v", e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func checksumString(sp *spec.Specification) string {
	return fmt.Sprintf("%016x", sp.Checksum())
}
