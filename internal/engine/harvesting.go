package engine

import (
	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
	"github.com/Vitadek/ownworld/internal/worldgen"
)

// --- Phase 3: Harvesting ---------------------------------------------

func (e *Engine) phaseHarvesting(tick int64) []model.Event {
	var events []model.Event
	w := e.World
	for _, f := range w.Fleets {
		if f.Status != model.FleetHarvesting {
			continue
		}
		p, ok := w.Players[f.PlayerID]
		if !ok {
			continue
		}
		harvestedAny := e.harvestOne(f, p, tick, &events)
		if !harvestedAny {
			f.Status = model.FleetIdle
			w.MarkFleetDirty(f.ID)
		}
	}
	return events
}

// harvestOne applies one tick of harvesting to fleet f and reports
// whether any resource yielded a nonzero amount.
func (e *Engine) harvestOne(f *model.Fleet, p *model.Player, tick int64, events *[]model.Event) bool {
	w := e.World
	tmpl := worldgen.Generate(w.Seed, f.Location)
	so := w.Sectors[hexcoord.ToKey(f.Location)]

	power := balance.HarvestPowerForShips(liveShipClasses(f), p.ResearchLevels[model.TechHarvestRate])
	if power <= 0 {
		return false
	}

	harvestedAny := false
	for _, rk := range model.Resources() {
		density := tmpl.Density[rk]
		if so != nil {
			density = so.EffectiveDensity(rk, density)
		}
		if density == model.DensityNone {
			continue
		}
		amount := int64(density.Multiplier() * float64(power))
		if amount <= 0 {
			continue
		}
		free := f.CargoFree()
		if amount > free {
			amount = free
		}
		if amount <= 0 {
			continue
		}

		f.Cargo[rk] += amount
		harvestedAny = true
		*events = append(*events, model.Event{
			Tick: tick, Kind: model.EventResourceHarvested, PlayerID: f.PlayerID,
			FleetID: f.ID, Coord: f.Location, Resource: rk, Amount: amount,
		})

		so = w.SectorOverrideFor(f.Location)
		so.HarvestAccum[rk] += amount
		threshold := density.DepletionThreshold()
		if threshold > 0 && so.HarvestAccum[rk] >= threshold {
			downgraded := density.Downgrade()
			so.DensityOverride[rk] = &downgraded
			// Seed the accumulator with a regen budget rather than
			// zeroing it outright, so phaseSectorRegen's per-tick
			// decrement takes multiple ticks to cross back to zero
			// instead of upgrading the very next tick it runs.
			so.HarvestAccum[rk] = threshold
		}
		w.MarkSectorDirty(f.Location)
	}
	if harvestedAny {
		w.MarkFleetDirty(f.ID)
	}
	return harvestedAny
}

func liveShipClasses(f *model.Fleet) []model.ShipClass {
	classes := make([]model.ShipClass, 0, f.ShipCount)
	for _, s := range f.LiveShips() {
		classes = append(classes, s.Class)
	}
	return classes
}

// --- Phase 4: Sector regeneration -------------------------------------

func (e *Engine) phaseSectorRegen(tick int64) {
	w := e.World
	for key, so := range w.Sectors {
		coord := hexcoord.FromKey(key)
		if len(w.PlayerFleetsAt(coord)) > 0 {
			continue
		}
		tmpl := worldgen.Generate(w.Seed, coord)
		changed := false
		for _, rk := range model.Resources() {
			if so.DensityOverride[rk] == nil {
				continue
			}
			if *so.DensityOverride[rk] >= tmpl.Density[rk] {
				continue
			}
			so.HarvestAccum[rk] -= balance.SectorRegenPerTick
			changed = true
			if so.HarvestAccum[rk] <= 0 {
				upgraded := (*so.DensityOverride[rk]).Upgrade()
				so.HarvestAccum[rk] = 0
				if upgraded >= tmpl.Density[rk] {
					so.DensityOverride[rk] = nil
				} else {
					so.DensityOverride[rk] = &upgraded
				}
			}
		}
		if changed {
			w.MarkSectorDirty(coord)
		}
	}
	_ = tick
}
