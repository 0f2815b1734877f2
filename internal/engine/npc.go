package engine

import (
	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
	"github.com/Vitadek/ownworld/internal/worldgen"
)

// --- Phase 5: NPC behavior ----------------------------------------------

func (e *Engine) phaseNPCBehavior(tick int64) []model.Event {
	var events []model.Event
	w := e.World

	for key, so := range w.Sectors {
		if so.NPCClearedTick == nil {
			continue
		}
		coord := hexcoord.FromKey(key)
		zone := hexcoord.ZoneOf(coord)
		if tick >= *so.NPCClearedTick+balance.ZoneRespawnDelay(zone) {
			so.NPCClearedTick = nil
			w.MarkSectorDirty(coord)
		}
	}

	rng := tickRNG(tick, 5)
	for _, n := range w.NPCFleets {
		if n.Behavior != model.NPCPatrol || n.InCombat {
			continue
		}
		if n.PatrolCooldown > 0 {
			n.PatrolCooldown--
			continue
		}
		mask := worldgen.ConnectivityMask(w.Seed, n.Location)
		dirs := connectedDirections(mask)
		if len(dirs) == 0 {
			continue
		}
		n.Location = n.Location.Neighbor(dirs[rng.Intn(len(dirs))])
		n.PatrolCooldown = balance.NPCPatrolCooldown

		for _, f := range w.PlayerFleetsAt(n.Location) {
			if f.Status == model.FleetInCombat || f.ShipCount == 0 {
				continue
			}
			e.initiateCombat(n.Location, []int64{f.ID}, []int64{n.ID}, tick)
		}
	}
	return events
}

// connectedDirections expands a connectivity bitmask into the list of
// directions it marks as traversable.
func connectedDirections(mask uint8) []hexcoord.Direction {
	var out []hexcoord.Direction
	for _, d := range hexcoord.Directions() {
		if worldgen.HasEdge(mask, d) {
			out = append(out, d)
		}
	}
	return out
}
