package data

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/oss-qm/freecol-sub000/internal/spec"
)

//go:embed rules
var rules embed.FS

// DefaultRuleSet is the rule set used when the configuration names none.
const DefaultRuleSet = "classic"

// RuleSet returns the embedded specification files of the named rule set.
func RuleSet(name string) (fs.FS, error) {
	sub, err := fs.Sub(rules, "rules/"+name)
	if err != nil {
		return nil, fmt.Errorf("rule set %q: %w", name, err)
	}
	if _, err := fs.Stat(sub, "."); err != nil {
		return nil, fmt.Errorf("rule set %q: %w", name, err)
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil || len(entries) == 0 {
		return nil, fmt.Errorf("rule set %q not found", name)
	}
	return sub, nil
}

// RuleSets lists the embedded rule set names.
func RuleSets() []string {
	entries, err := fs.ReadDir(rules, "rules")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}

// Load loads the named embedded rule set.
func Load(ctx context.Context, name string) (*spec.Specification, error) {
	fsys, err := RuleSet(name)
	if err != nil {
		return nil, err
	}
	inputs, err := spec.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("rule set %q: %w", name, err)
	}
	return spec.Load(ctx, inputs...)
}
