package engine

import (
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
	"github.com/Vitadek/ownworld/internal/worldgen"
)

// SectorProjection is the read-only, arena-copied view of a sector
// handed to session code. It merges the procedural template with any
// stored override and the NPC fleet (if any) currently present, and
// holds no pointer back into engine-owned state.
type SectorProjection struct {
	Terrain model.Terrain
	Density model.ResourceDensities
	Salvage *model.ResourceBundle
	NPC     *NPCProjection
}

// NPCProjection is the arena-copied view of hostile content in a sector.
type NPCProjection struct {
	Behavior  model.NPCBehavior
	ShipCount int
}

// ProjectSector builds the merged view of a sector for the wire. It
// never returns a pointer into World.Sectors or World.NPCFleets; every
// field is copied by value.
func ProjectSector(e *Engine, c hexcoord.Coord) SectorProjection {
	w := e.World
	tmpl := worldgen.Generate(w.Seed, c)
	so := w.Sectors[hexcoord.ToKey(c)]

	proj := SectorProjection{Terrain: tmpl.Terrain}
	for _, rk := range model.Resources() {
		proj.Density[rk] = so.EffectiveDensity(rk, tmpl.Density[rk])
	}
	if so != nil && so.Salvage != nil {
		bundle := *so.Salvage
		proj.Salvage = &bundle
	}

	if n, ok := w.NPCFleetAt(c); ok {
		proj.NPC = &NPCProjection{Behavior: n.Behavior, ShipCount: len(n.LiveShips())}
		return proj
	}
	if tmpl.NPC != nil && (so == nil || so.NPCClearedTick == nil) {
		proj.NPC = &NPCProjection{Behavior: tmpl.NPC.Behavior, ShipCount: len(tmpl.NPC.Ships)}
	}
	return proj
}
