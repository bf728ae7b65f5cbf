package ident

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned by Parse for strings that are not "kind:n".
var ErrMalformed = errors.New("malformed identifier")

// ID is the identity of a live game object: a kind tag plus a sequence
// number unique within that kind for the lifetime of one game.
// The zero value is the null identifier.
type ID struct {
	Kind string
	Seq  int64
}

// New returns the identifier kind:seq.
func New(kind string, seq int64) ID {
	return ID{Kind: kind, Seq: seq}
}

// Parse parses the canonical "kind:n" form.
// The kind may contain dots and colons; the sequence is taken after the last colon.
func Parse(s string) (ID, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	seq, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || seq < 0 {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return ID{Kind: s[:i], Seq: seq}, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether id is the null identifier.
func (id ID) IsZero() bool {
	return id.Kind == "" && id.Seq == 0
}

// String returns the canonical "kind:seq" form.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Kind + ":" + strconv.FormatInt(id.Seq, 10)
}

// Compare orders identifiers by kind lexicographically, then by sequence numerically,
// so unit:2 sorts before unit:10.
func Compare(a, b ID) int {
	if c := strings.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// An empty input yields the null identifier.
func (id *ID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = ID{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
