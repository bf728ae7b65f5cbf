package spec

import (
	"context"
	"fmt"
)

// MustLoadString loads a specification from YAML literals.
// Intended for tests from other packages that need a small rule set.
func MustLoadString(docs ...string) *Specification {
	inputs := make([]Input, len(docs))
	for i, d := range docs {
		inputs[i] = Bytes(fmt.Sprintf("inline-%d.yaml", i), []byte(d))
	}
	s, err := Load(context.Background(), inputs...)
	if err != nil {
		panic(err)
	}
	return s
}
