package engine

import (
	"math/rand"

	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
	"github.com/Vitadek/ownworld/internal/worldgen"
)

// Command handlers run during the command-drain window between ticks.
// Each validates preconditions against the caller's fleet/player and
// returns a *CmdError without mutating on any failure.

func (e *Engine) requireFleet(playerID, fleetID int64) (*model.Fleet, *CmdError) {
	f, ok := e.World.Fleets[fleetID]
	if !ok || f.PlayerID != playerID {
		return nil, ErrFleetNotFound
	}
	return f, nil
}

func (e *Engine) requirePlayer(playerID int64) (*model.Player, *CmdError) {
	p, ok := e.World.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// Move validates and issues a move order for fleetID toward the
// neighboring sector in direction dir.
func (e *Engine) Move(playerID, fleetID int64, dir hexcoord.Direction) *CmdError {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return cerr
	}
	if f.ShipCount == 0 {
		return ErrNoShips
	}
	if f.Status == model.FleetInCombat {
		return ErrInCombat
	}
	if f.ActionCooldown > 0 {
		return ErrOnCooldown
	}
	mask := worldgen.ConnectivityMask(w.Seed, f.Location)
	if !worldgen.HasEdge(mask, dir) {
		return ErrNoConnection
	}
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	cost := balance.MoveFuelCost(p.ResearchLevels[model.TechFuelEfficiency])
	if f.Fuel < cost {
		return ErrInsufficientFuel
	}

	f.Fuel -= cost
	f.Status = model.FleetMoving
	f.MoveTarget = f.Location.Neighbor(dir)
	slowest := slowestSpeed(f)
	f.MoveCooldown = balance.MoveCooldownForShips(slowest, p.ResearchLevels[model.TechNavigation])
	w.MarkFleetDirty(f.ID)
	return nil
}

func slowestSpeed(f *model.Fleet) int {
	slowest := -1
	for _, s := range f.LiveShips() {
		if slowest == -1 || s.Speed < slowest {
			slowest = s.Speed
		}
	}
	if slowest <= 0 {
		return 1
	}
	return slowest
}

// Harvest sets a fleet to harvesting status at its current sector.
func (e *Engine) Harvest(playerID, fleetID int64, resource model.ResourceKind) *CmdError {
	_ = resource // precondition-only: the tick phase harvests every nonzero resource in fixed order
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return cerr
	}
	if f.ShipCount == 0 {
		return ErrNoShips
	}
	if f.Status == model.FleetInCombat {
		return ErrInCombat
	}
	if f.ActionCooldown > 0 {
		return ErrOnCooldown
	}
	if f.CargoFree() <= 0 {
		return ErrCargoFull
	}
	tmpl := worldgen.Generate(w.Seed, f.Location)
	so := w.Sectors[hexcoord.ToKey(f.Location)]
	anyResource := false
	for _, rk := range model.Resources() {
		if so.EffectiveDensity(rk, tmpl.Density[rk]) != model.DensityNone {
			anyResource = true
			break
		}
	}
	if !anyResource {
		return ErrNoResources
	}

	f.Status = model.FleetHarvesting
	f.ActionCooldown = balance.HarvestCooldown
	w.MarkFleetDirty(f.ID)
	return nil
}

// CollectSalvage moves available salvage into a fleet's cargo.
func (e *Engine) CollectSalvage(playerID, fleetID int64, tick int64) ([]model.Event, *CmdError) {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return nil, cerr
	}
	if f.ShipCount == 0 {
		return nil, ErrNoShips
	}
	if f.Status != model.FleetIdle {
		if f.Status == model.FleetInCombat {
			return nil, ErrInCombat
		}
		return nil, ErrOnCooldown
	}
	so := w.Sectors[hexcoord.ToKey(f.Location)]
	if so == nil || so.Salvage == nil {
		return nil, ErrNoResources
	}

	var events []model.Event
	moved := false
	for _, rk := range model.Resources() {
		avail := so.Salvage[rk]
		if avail <= 0 {
			continue
		}
		free := f.CargoFree()
		if free <= 0 {
			break
		}
		amount := avail
		if amount > free {
			amount = free
		}
		f.Cargo[rk] += amount
		so.Salvage[rk] -= amount
		moved = true
		events = append(events, model.Event{
			Tick: tick, Kind: model.EventSalvageCollected, PlayerID: playerID,
			FleetID: f.ID, Coord: f.Location, Resource: rk, Amount: amount,
		})
	}
	if !moved {
		return nil, ErrCargoFull
	}
	if so.Salvage.Sum() == 0 {
		so.Salvage = nil
		so.SalvageDespawnTick = 0
	}
	w.MarkFleetDirty(f.ID)
	w.MarkSectorDirty(f.Location)
	return events, nil
}

// Attack initiates or joins combat against whatever NPC occupies the
// fleet's current sector, spawning the sector's template NPC on first
// hostile contact if none is live yet.
func (e *Engine) Attack(playerID, fleetID int64, tick int64) *CmdError {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return cerr
	}
	if f.Status != model.FleetIdle {
		if f.Status == model.FleetInCombat {
			return ErrInCombat
		}
		return ErrOnCooldown
	}
	if f.ShipCount == 0 {
		return ErrNoShips
	}

	if n, ok := w.NPCFleetAt(f.Location); ok {
		e.initiateCombat(f.Location, []int64{f.ID}, []int64{n.ID}, tick)
		return nil
	}
	tmpl := worldgen.Generate(w.Seed, f.Location)
	if tmpl.NPC == nil {
		return ErrInvalidTarget
	}
	if so := w.Sectors[hexcoord.ToKey(f.Location)]; so != nil && so.NPCClearedTick != nil {
		return ErrInvalidTarget
	}
	n := e.spawnNPCFromTemplate(tmpl, f.Location)
	e.initiateCombat(f.Location, []int64{f.ID}, []int64{n.ID}, tick)
	return nil
}

// Recall teleports a fleet directly home, rolling combat-style hull
// damage per ship scaled by distance traveled, and docks survivors.
func (e *Engine) Recall(playerID, fleetID int64, tick int64) ([]model.Event, *CmdError) {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return nil, cerr
	}
	if f.ShipCount == 0 {
		return nil, ErrNoShips
	}
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return nil, cerr
	}

	dist := hexcoord.Distance(f.Location, p.Homeworld)
	fuelCost := int64(float64(dist)*balance.RecallFuelMultiplier*float64(balance.BaseMoveFuelCost) + 0.5)
	if f.Fuel < fuelCost {
		return nil, ErrInsufficientFuel
	}
	f.Fuel -= fuelCost

	chance := balance.RecallDamagePerHex*float64(dist) - balance.EmergencyJumpReduction(p.ResearchLevels[model.TechEmergencyJump])
	if chance > balance.RecallDamageBaseCap {
		chance = balance.RecallDamageBaseCap
	}
	if chance < 0 {
		chance = 0
	}

	rng := rand.New(rand.NewSource(tick*1_000_037 + fleetID))
	var events []model.Event
	for _, s := range f.LiveShips() {
		if rng.Float64() >= chance {
			continue
		}
		lossPct := balance.RecallHullLossMinPct + rng.Float64()*(balance.RecallHullLossMaxPct-balance.RecallHullLossMinPct)
		s.Hull -= int(float64(s.HullMax) * lossPct)
		if s.Hull <= 0 {
			s.Hull = 0
			events = append(events, model.Event{
				Tick: tick, Kind: model.EventShipDestroyed, PlayerID: playerID,
				FleetID: f.ID, ShipID: s.ID, ShipClass: s.Class, Coord: f.Location,
			})
		}
	}
	f.ShipCount = compactShips(f.Ships, f.ShipCount)

	if cb, ok := w.CombatAt(f.Location); ok && f.CombatID == cb.ID {
		cb.PlayerFleets = removeID(cb.PlayerFleets, f.ID)
	}

	f.Location = p.Homeworld
	f.Status = model.FleetDocked
	f.CombatID = 0
	f.MoveCooldown = 0
	f.ActionCooldown = 0
	w.MarkFleetDirty(f.ID)

	if f.ShipCount == 0 {
		w.RemoveFleet(f.ID)
	}
	return events, nil
}

func compactShips(ships []*model.Ship, count int) int {
	write := 0
	for read := 0; read < count; read++ {
		if ships[read].Alive() {
			ships[write] = ships[read]
			write++
		}
	}
	return write
}

func removeID(ids []int64, drop int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Build validates and commits a building upgrade order.
func (e *Engine) Build(playerID int64, bt model.BuildingType, tick int64) *CmdError {
	w := e.World
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	if p.BuildQueue != nil {
		return ErrQueueFull
	}
	target := p.BuildingLevels[bt] + 1
	if target > balance.MaxBuildingLevel {
		return ErrMaxLevelReached
	}
	if !balance.BuildingPrereqsMet(bt, p) {
		return ErrPrerequisitesNotMet
	}
	cost := balance.BuildingCostForLevel(bt, target)
	if !p.Resources.GreaterOrEqual(cost) {
		return ErrNoResources
	}

	p.Resources = p.Resources.Sub(cost)
	p.BuildQueue = &model.BuildQueue{
		Building: bt, StartTick: tick,
		EndTick:       tick + int64(balance.BuildingTimeForLevel(bt, target)),
		RemainingCost: cost,
	}
	w.MarkPlayerDirty(p.ID)
	return nil
}

// Research validates and commits a research upgrade order.
func (e *Engine) Research(playerID int64, tech model.ResearchTech, tick int64) *CmdError {
	w := e.World
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	if p.ResearchQueue != nil {
		return ErrQueueFull
	}
	if p.BuildingLevels[model.BuildingResearchLab] <= 0 {
		return ErrNoResearchLab
	}
	target := p.ResearchLevels[tech] + 1
	if target > balance.MaxResearchLevel {
		return ErrMaxLevelReached
	}
	if !balance.ResearchPrereqsMet(tech, p) {
		return ErrPrerequisitesNotMet
	}
	cost := balance.ResearchCostForLevel(tech, target)
	fragCost := balance.ResearchFragmentCostForLevel(tech, target)
	if !p.Resources.GreaterOrEqual(cost) {
		return ErrNoResources
	}
	if p.Fragments < fragCost {
		return ErrInsufficientFragments
	}

	p.Resources = p.Resources.Sub(cost)
	p.Fragments -= fragCost
	p.ResearchQueue = &model.ResearchQueue{
		Tech: tech, StartTick: tick,
		EndTick:       tick + int64(balance.ResearchTimeForLevel(tech, target)),
		RemainingCost: cost, RemainingFrag: fragCost,
	}
	w.MarkPlayerDirty(p.ID)
	return nil
}

// BuildShip validates and commits a ship production order.
func (e *Engine) BuildShip(playerID int64, class model.ShipClass, count int, tick int64) *CmdError {
	w := e.World
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	if p.ShipQueue != nil {
		return ErrQueueFull
	}
	if p.BuildingLevels[model.BuildingShipyard] <= 0 {
		return ErrNoShipyard
	}
	if !balance.IsUnlocked(class, p.ResearchLevel) {
		return ErrShipLocked
	}
	if count <= 0 {
		count = 1
	}
	unitCost := balance.ShipCost(class, 1)
	totalCost := balance.ShipCost(class, count)
	if !p.Resources.GreaterOrEqual(totalCost) {
		return ErrNoResources
	}

	p.Resources = p.Resources.Sub(totalCost)
	shipyardLevel := p.BuildingLevels[model.BuildingShipyard]
	p.ShipQueue = &model.ShipQueue{
		Class: class, Count: count, StartTick: tick,
		EndTick:  tick + int64(balance.ShipBuildTimePerUnit(class, shipyardLevel)),
		UnitCost: unitCost,
	}
	w.MarkPlayerDirty(p.ID)
	return nil
}

// CancelBuild refunds and clears whichever single queue is named.
func (e *Engine) CancelBuild(playerID int64, kind model.QueueKind) *CmdError {
	w := e.World
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	switch kind {
	case model.QueueBuilding:
		if p.BuildQueue == nil {
			return ErrNoQueue
		}
		p.Resources = p.Resources.Add(balance.CancelRefund(p.BuildQueue.RemainingCost))
		p.BuildQueue = nil
	case model.QueueResearch:
		if p.ResearchQueue == nil {
			return ErrNoQueue
		}
		p.Resources = p.Resources.Add(balance.CancelRefund(p.ResearchQueue.RemainingCost))
		p.ResearchQueue = nil
	case model.QueueShip:
		if p.ShipQueue == nil {
			return ErrNoQueue
		}
		remaining := p.ShipQueue.Count - p.ShipQueue.Built
		var remCost model.ResourceBundle
		for i, v := range p.ShipQueue.UnitCost {
			remCost[i] = v * int64(remaining)
		}
		p.Resources = p.Resources.Add(balance.CancelRefund(remCost))
		p.ShipQueue = nil
	default:
		return ErrNoQueue
	}
	w.MarkPlayerDirty(p.ID)
	return nil
}

// CreateFleet inserts a new empty fleet at the player's homeworld.
func (e *Engine) CreateFleet(playerID int64) (*model.Fleet, *CmdError) {
	w := e.World
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return nil, cerr
	}
	if e.countPlayerFleets(playerID) >= balance.MaxFleetsPerPlayer {
		return nil, ErrFleetLimit
	}
	f := &model.Fleet{ID: w.NextID(), PlayerID: playerID, Location: p.Homeworld, Status: model.FleetIdle}
	w.AddFleet(f)
	return f, nil
}

func (e *Engine) countPlayerFleets(playerID int64) int {
	n := 0
	for _, f := range e.World.Fleets {
		if f.PlayerID == playerID {
			n++
		}
	}
	return n
}

// DissolveFleet docks every ship in a fleet and deposits its cargo,
// then removes the fleet record.
func (e *Engine) DissolveFleet(playerID, fleetID int64) *CmdError {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return cerr
	}
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	if f.Location != p.Homeworld {
		return ErrNotAtHomeworld
	}
	if f.Status == model.FleetInCombat {
		return ErrInCombat
	}
	p.DockedShips = append(p.DockedShips, f.LiveShips()...)
	p.Resources = p.Resources.Add(f.Cargo)
	w.MarkPlayerDirty(playerID)
	w.RemoveFleet(fleetID)
	return nil
}

// TransferShip moves a docked ship into a fleet sitting at the
// homeworld, refreshing fuel capacity and adding the ship's base fuel
// (capped at the new capacity).
func (e *Engine) TransferShip(playerID, fleetID, shipID int64) *CmdError {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return cerr
	}
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	if f.Location != p.Homeworld {
		return ErrNotAtHomeworld
	}
	if f.ShipCount >= balance.MaxShipsPerFleet {
		return ErrCargoFull
	}
	idx := -1
	for i, s := range p.DockedShips {
		if s.ID == shipID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrShipNotFound
	}

	s := p.DockedShips[idx]
	p.DockedShips = append(p.DockedShips[:idx], p.DockedShips[idx+1:]...)
	f.Ships = append(f.Ships[:f.ShipCount], s)
	f.ShipCount++
	f.CargoCap = cargoCapForShips(liveShipClasses(f))

	etLevel := p.ResearchLevels[model.TechExtendedTanks]
	fdLevel := p.BuildingLevels[model.BuildingFuelDepot]
	f.FuelMax = balance.FuelMaxForShips(liveShipClasses(f), etLevel, fdLevel)
	f.Fuel += balance.Spec(s.Class).BaseFuel
	if f.Fuel > f.FuelMax {
		f.Fuel = f.FuelMax
	}

	w.MarkPlayerDirty(playerID)
	w.MarkFleetDirty(fleetID)
	return nil
}

// DockShip removes a ship from a homeworld fleet into the player's
// docked pool, clipping any fuel the fleet can no longer hold.
func (e *Engine) DockShip(playerID, fleetID, shipID int64) *CmdError {
	w := e.World
	f, cerr := e.requireFleet(playerID, fleetID)
	if cerr != nil {
		return cerr
	}
	p, cerr := e.requirePlayer(playerID)
	if cerr != nil {
		return cerr
	}
	if f.Location != p.Homeworld {
		return ErrNotAtHomeworld
	}
	if f.Status != model.FleetIdle {
		return ErrInCombat
	}
	if len(p.DockedShips) >= balance.MaxDockedShips {
		return ErrDockFull
	}

	idx := -1
	for i, s := range f.LiveShips() {
		if s.ID == shipID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrShipNotFound
	}

	s := f.Ships[idx]
	copy(f.Ships[idx:f.ShipCount-1], f.Ships[idx+1:f.ShipCount])
	f.ShipCount--
	p.DockedShips = append(p.DockedShips, s)

	f.CargoCap = cargoCapForShips(liveShipClasses(f))
	etLevel := p.ResearchLevels[model.TechExtendedTanks]
	fdLevel := p.BuildingLevels[model.BuildingFuelDepot]
	f.FuelMax = balance.FuelMaxForShips(liveShipClasses(f), etLevel, fdLevel)
	if f.Fuel > f.FuelMax {
		f.Fuel = f.FuelMax
	}

	w.MarkPlayerDirty(playerID)
	w.MarkFleetDirty(fleetID)
	return nil
}
