package engine

import (
	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/model"
)

// --- Phase 6: Homeworlds & queues ----------------------------------------

func (e *Engine) phaseHomeworldsAndQueues(tick int64) []model.Event {
	var events []model.Event
	w := e.World
	for _, p := range w.Players {
		dirty := e.accrueProduction(p)
		dirty = e.progressBuildQueue(p, tick, &events) || dirty
		dirty = e.progressShipQueue(p, tick, &events) || dirty
		dirty = e.progressResearchQueue(p, tick, &events) || dirty
		if dirty {
			w.MarkPlayerDirty(p.ID)
		}
	}
	return events
}

func (e *Engine) accrueProduction(p *model.Player) bool {
	changed := false
	for _, bt := range model.BuildingTypes() {
		level := p.BuildingLevels[bt]
		if level <= 0 {
			continue
		}
		prod := balance.BuildingProductionPerTick(bt, level)
		if prod.Sum() == 0 {
			continue
		}
		p.Resources = p.Resources.Add(prod)
		changed = true
	}
	return changed
}

func (e *Engine) progressBuildQueue(p *model.Player, tick int64, events *[]model.Event) bool {
	q := p.BuildQueue
	if q == nil || tick < q.EndTick {
		return false
	}
	newLevel := p.BuildingLevels[q.Building] + 1
	p.BuildingLevels[q.Building] = newLevel
	p.BuildQueue = nil

	*events = append(*events, model.Event{
		Tick: tick, Kind: model.EventBuildingCompleted, PlayerID: p.ID,
		BuildingType: q.Building, NewLevel: newLevel,
	})

	if q.Building == model.BuildingFuelDepot {
		e.recomputeFuelMaxForPlayer(p)
	}
	return true
}

// recomputeFuelMaxForPlayer refreshes fuel_max on every fleet the
// player owns after a change to extended-tanks or fuel-depot level,
// never letting fuel_max fall below the fleet's current fuel.
func (e *Engine) recomputeFuelMaxForPlayer(p *model.Player) {
	w := e.World
	etLevel := p.ResearchLevels[model.TechExtendedTanks]
	fdLevel := p.BuildingLevels[model.BuildingFuelDepot]
	for _, f := range w.Fleets {
		if f.PlayerID != p.ID {
			continue
		}
		newMax := balance.FuelMaxForShips(liveShipClasses(f), etLevel, fdLevel)
		if newMax < f.Fuel {
			newMax = f.Fuel
		}
		if newMax != f.FuelMax {
			f.FuelMax = newMax
			w.MarkFleetDirty(f.ID)
		}
	}
}

func (e *Engine) progressShipQueue(p *model.Player, tick int64, events *[]model.Event) bool {
	q := p.ShipQueue
	if q == nil || tick < q.EndTick {
		return false
	}
	spec := balance.Spec(q.Class)
	hull, shield, weapon := balance.BuiltShipStats(q.Class,
		p.ResearchLevels[model.TechHullPlating], p.ResearchLevels[model.TechShielding], p.ResearchLevels[model.TechWeapons])
	p.DockedShips = append(p.DockedShips, &model.Ship{
		ID: e.World.NextID(), Class: q.Class,
		Hull: hull, HullMax: hull,
		Shield: shield, ShieldMax: shield,
		WeaponPower: weapon, Speed: spec.BaseSpeed,
	})
	q.Built++

	*events = append(*events, model.Event{
		Tick: tick, Kind: model.EventShipCompleted, PlayerID: p.ID, ShipClass: q.Class,
	})

	if q.Built < q.Count {
		shipyardLevel := p.BuildingLevels[model.BuildingShipyard]
		q.EndTick += int64(balance.ShipBuildTimePerUnit(q.Class, shipyardLevel))
	} else {
		p.ShipQueue = nil
	}
	return true
}

func (e *Engine) progressResearchQueue(p *model.Player, tick int64, events *[]model.Event) bool {
	q := p.ResearchQueue
	if q == nil || tick < q.EndTick {
		return false
	}
	newLevel := p.ResearchLevels[q.Tech] + 1
	p.ResearchLevels[q.Tech] = newLevel
	p.ResearchQueue = nil

	*events = append(*events, model.Event{
		Tick: tick, Kind: model.EventResearchCompleted, PlayerID: p.ID,
		Tech: q.Tech, NewLevel: newLevel,
	})

	if q.Tech == model.TechExtendedTanks {
		e.recomputeFuelMaxForPlayer(p)
	}
	return true
}
