package world

import (
	"fmt"
	"log/slog"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/spec"
)

// IntegrityStatus is the outcome of an integrity check.
type IntegrityStatus int

const (
	IntegrityOK IntegrityStatus = iota
	IntegrityFixed
	IntegrityBroken
)

func (s IntegrityStatus) String() string {
	switch s {
	case IntegrityOK:
		return "ok"
	case IntegrityFixed:
		return "fixed"
	case IntegrityBroken:
		return "broken"
	}
	return fmt.Sprintf("integrity(%d)", int(s))
}

// IntegrityProblem is one inconsistent registry entry.
type IntegrityProblem struct {
	ID     ident.ID
	Reason string
}

// IntegrityReport lists what CheckIntegrity found.
type IntegrityReport struct {
	Status   IntegrityStatus
	Problems []IntegrityProblem
}

// CheckIntegrity walks the registry looking for objects that are
// uninitialized, disposed but still interned, registered under another
// id, bound to another game, or referring to a type the specification
// does not hold. With fix set, offending entries are removed from the
// registry and the status is IntegrityFixed; otherwise nothing changes
// and the status is IntegrityBroken.
func (g *Game) CheckIntegrity(fix bool) IntegrityReport {
	var report IntegrityReport
	for _, e := range g.registry.snapshot() {
		reason := g.inspect(e.id, e.obj)
		if reason == "" {
			continue
		}
		report.Problems = append(report.Problems, IntegrityProblem{ID: e.id, Reason: reason})
		slog.Warn("integrity problem", "game", g.id, "id", e.id, "reason", reason, "fix", fix)
		if fix {
			g.registry.Remove(e.id, "integrity")
		}
	}

	switch {
	case len(report.Problems) == 0:
		report.Status = IntegrityOK
	case fix:
		report.Status = IntegrityFixed
	default:
		report.Status = IntegrityBroken
	}
	return report
}

func (g *Game) inspect(key ident.ID, obj model.GameObject) string {
	base := obj.Base()
	switch {
	case base.ID() != key:
		return fmt.Sprintf("registered as %s", key)
	case base.State() == model.StateUninitialized:
		return "uninitialized"
	case base.IsDisposed():
		return "disposed but interned"
	case base.GameID() != g.id:
		return fmt.Sprintf("bound to game %s", base.GameID())
	}
	if t := danglingType(g.spec, obj); t != "" {
		return "unknown type " + t
	}
	return ""
}

// danglingType returns the id of a type obj refers to that the
// specification does not hold (or holds as a different definition).
func danglingType(sp *spec.Specification, obj model.GameObject) string {
	switch o := obj.(type) {
	case *model.Player:
		if nt := o.NationType(); nt != nil {
			if cur, ok := sp.NationType(nt.ID); !ok || cur != nt {
				return nt.ID
			}
		}
	case *model.Building:
		if bt := o.Type(); bt != nil {
			if cur, ok := sp.BuildingType(bt.ID); !ok || cur != bt {
				return bt.ID
			}
		}
	case *model.Unit:
		if ut := o.Type(); ut != nil {
			if cur, ok := sp.UnitType(ut.ID); !ok || cur != ut {
				return ut.ID
			}
		}
	}
	return ""
}
