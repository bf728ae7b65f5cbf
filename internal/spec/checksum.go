package spec

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/oss-qm/freecol-sub000/internal/feature"
)

func (s *Specification) computeChecksum() uint64 {
	h := xxhash.New()
	for _, raw := range s.records {
		writeType(h, s.all[raw.common.ID])
	}
	return h.Sum64()
}

func writeType(w io.Writer, t *Type) {
	parent := ""
	if t.Parent != nil {
		parent = t.Parent.ID
	}
	fmt.Fprintf(w, "%s|%s|%d|%d|%t|%s\n", t.ID, t.Kind, t.Index, t.ModifierIndex, t.Abstract, parent)

	switch c := t.concrete.(type) {
	case *BuildingType:
		from := ""
		if c.UpgradesFrom != nil {
			from = c.UpgradesFrom.ID
		}
		fmt.Fprintf(w, "%+v|%s|%d\n", c.BuildingAttrs, from, c.Level)
	case *UnitType:
		fmt.Fprintf(w, "%+v\n", c.UnitAttrs)
	case *NationType:
		fmt.Fprintf(w, "%+v\n", c.NationAttrs)
	}

	for _, e := range t.Features.AllAbilities() {
		a := e.Ability
		fmt.Fprintf(w, "a|%s|%s|%t|%d|%s|%s\n", a.ID, feature.SourceID(a.Source), a.Value, e.Depth, a.Validity, scopeKey(a.Scopes))
	}
	for _, e := range t.Features.AllModifiers() {
		m := e.Modifier
		fmt.Fprintf(w, "m|%s|%s|%s|%g|%d|%d|%s|%s\n", m.ID, feature.SourceID(m.Source), m.Operator, m.Magnitude, m.Index, e.Depth, m.Validity, scopeKey(m.Scopes))
	}
}

func scopeKey(scopes []*feature.Scope) string {
	out := ""
	for _, s := range scopes {
		out += s.String() + ";"
	}
	return out
}
