package engine

import (
	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// --- Phase 7: Salvage despawn ---------------------------------------

func (e *Engine) phaseSalvageDespawn(tick int64) {
	w := e.World
	for key, so := range w.Sectors {
		if so.Salvage == nil || tick < so.SalvageDespawnTick {
			continue
		}
		so.Salvage = nil
		so.SalvageDespawnTick = 0
		w.MarkSectorDirty(hexcoord.FromKey(key))
	}
}

// --- Phase 8: Cooldowns -----------------------------------------------

func (e *Engine) phaseCooldowns(tick int64) {
	_ = tick
	w := e.World
	for _, f := range w.Fleets {
		dirty := false
		if f.ActionCooldown > 0 {
			f.ActionCooldown--
			dirty = true
		}
		if f.Status == model.FleetIdle {
			f.IdleTicks++
			dirty = true
			if f.IdleTicks >= balance.ShieldRegenIdleTicks {
				for _, s := range f.LiveShips() {
					if s.Shield >= s.ShieldMax {
						continue
					}
					regen := int(float64(s.ShieldMax) * balance.ShieldRegenFraction)
					if regen < 1 {
						regen = 1
					}
					s.Shield += regen
					if s.Shield > s.ShieldMax {
						s.Shield = s.ShieldMax
					}
				}
			}
		} else {
			f.IdleTicks = 0
		}
		if dirty {
			w.MarkFleetDirty(f.ID)
		}
	}
}
