package model

import (
	"testing"

	"github.com/Vitadek/ownworld/internal/hexcoord"
)

func TestEdgeKeyIsOrderIndependent(t *testing.T) {
	a := hexcoord.Coord{Q: 3, R: -1}
	b := hexcoord.Coord{Q: 4, R: -1}
	if MakeEdgeKey(a, b) != MakeEdgeKey(b, a) {
		t.Error("edge key should not depend on argument order")
	}
}

func TestRecordExploredEdgeIsIdempotent(t *testing.T) {
	w := NewWorld(1)
	a := hexcoord.Coord{Q: 0, R: 0}
	b := hexcoord.Coord{Q: 1, R: 0}
	w.RecordExploredEdge(1, a, b, 10)
	w.RecordExploredEdge(1, a, b, 11)
	if len(w.Dirty.PendingEdges) != 1 {
		t.Errorf("expected exactly one pending edge record, got %d", len(w.Dirty.PendingEdges))
	}
	if !w.HasExploredEdge(1, b, a) {
		t.Error("edge should be discoverable regardless of query order")
	}
}

func TestHasVisitedDerivedFromEdges(t *testing.T) {
	w := NewWorld(1)
	origin := hexcoord.Coord{Q: 0, R: 0}
	neighbor := hexcoord.Coord{Q: 1, R: 0}
	if w.HasVisited(1, origin) {
		t.Error("should not be visited before any edge is recorded")
	}
	w.RecordExploredEdge(1, origin, neighbor, 5)
	if !w.HasVisited(1, origin) || !w.HasVisited(1, neighbor) {
		t.Error("both endpoints of a recorded edge should count as visited")
	}
}

func TestDirtyTrackingMarksTouchedEntities(t *testing.T) {
	w := NewWorld(1)
	p := &Player{ID: 7, Name: "alpha"}
	w.AddPlayer(p)
	if _, ok := w.Dirty.Players[7]; !ok {
		t.Error("AddPlayer should mark the player dirty")
	}
	w.Dirty.Clear()
	w.MarkPlayerDirty(7)
	if _, ok := w.Dirty.Players[7]; !ok {
		t.Error("MarkPlayerDirty should mark the player dirty")
	}
}

func TestResourceBundleArithmetic(t *testing.T) {
	a := ResourceBundle{Metal: 100, Crystal: 50, Deuterium: 10}
	b := ResourceBundle{Metal: 30, Crystal: 10, Deuterium: 5}
	sum := a.Add(b)
	if sum[Metal] != 130 || sum[Crystal] != 60 || sum[Deuterium] != 15 {
		t.Errorf("unexpected sum %+v", sum)
	}
	diff := a.Sub(b)
	if diff[Metal] != 70 {
		t.Errorf("unexpected diff %+v", diff)
	}
	if !a.GreaterOrEqual(b) {
		t.Error("a should be >= b component-wise")
	}
	if b.GreaterOrEqual(a) {
		t.Error("b should not be >= a component-wise")
	}
}

func TestDensityStepTransitions(t *testing.T) {
	if DensityPristine.Upgrade() != DensityPristine {
		t.Error("pristine should saturate on upgrade")
	}
	if DensityNone.Downgrade() != DensityNone {
		t.Error("none should saturate on downgrade")
	}
	if DensityModerate.Downgrade() != DensitySparse {
		t.Error("moderate should downgrade to sparse")
	}
}
