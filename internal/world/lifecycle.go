package world

import (
	"log/slog"

	"github.com/oss-qm/freecol-sub000/internal/model"
)

// Dispose disposes obj and everything that dies with it.
//
// The dispose list is collected first (pre-order, obj last); then each
// object not yet disposed releases its resources, is removed from the
// registry and is marked disposed. Disposing an already disposed object
// is a no-op. Objects missing from the registry are tolerated. A zero id
// panics with ErrNullIdentifier. Returns the number of objects disposed.
func (g *Game) Dispose(obj model.GameObject) int {
	base := obj.Base()
	if base.ID().IsZero() {
		panic(ErrNullIdentifier)
	}
	if base.IsDisposed() {
		return 0
	}

	n := 0
	for _, o := range obj.DisposeList() {
		b := o.Base()
		if b.IsDisposed() {
			continue
		}
		o.DisposeResources()
		g.registry.Remove(b.ID(), "dispose")
		b.MarkDisposed()
		if p, ok := o.(*model.Player); ok {
			g.removePlayer(p)
		}
		n++
	}
	slog.Debug("object disposed", "id", base.ID(), "cascade", n)
	return n
}
