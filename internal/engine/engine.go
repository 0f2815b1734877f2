package engine

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/combat"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
	"github.com/Vitadek/ownworld/internal/store"
	"github.com/Vitadek/ownworld/internal/worldgen"
)

// Engine owns the single in-memory World and drives it one tick at a
// time. Nothing outside this package (and internal/combat, which it
// calls into for one concern) mutates a model entity.
type Engine struct {
	World             *model.World
	Store             store.Store
	Log               zerolog.Logger
	PersistEveryTicks int64
}

// NewEngine wires a freshly loaded or freshly created World to its
// checkpoint store and logger.
func NewEngine(w *model.World, st store.Store, log zerolog.Logger, persistEveryTicks int64) *Engine {
	if persistEveryTicks <= 0 {
		persistEveryTicks = balance.DefaultPersistEveryTick
	}
	return &Engine{World: w, Store: st, Log: log, PersistEveryTicks: persistEveryTicks}
}

// LoadOrInit rebuilds a World from the checkpoint store's last flush,
// or returns a brand new one seeded from configuredSeed if the store
// has never been written to. Procedural state (templates,
// connectivity, patrol state, active combats) is never persisted and
// so is simply absent after a fresh load; it is re-derived on demand.
func LoadOrInit(st store.Store, configuredSeed uint64, log zerolog.Logger) (*model.World, error) {
	snap, err := st.LoadAtStartup()
	if err != nil {
		return nil, err
	}

	w := model.NewWorld(configuredSeed)
	if snap.WorldSeed != 0 {
		if snap.WorldSeed != configuredSeed {
			log.Warn().
				Uint64("persisted_seed", snap.WorldSeed).
				Uint64("configured_seed", configuredSeed).
				Msg("world seed mismatch at startup; continuing with the configured seed")
		}
		w.CurrentTick = snap.CurrentTick
		w.SetNextID(snap.NextID)
	}

	for _, p := range snap.Players {
		w.RehydratePlayer(p)
	}
	for _, f := range snap.Fleets {
		w.RehydrateFleet(f)
	}
	for _, s := range snap.Sectors {
		w.RehydrateSector(s)
	}
	for _, rec := range snap.ExploredEdges {
		w.RehydrateExploredEdge(rec)
	}
	w.Dirty.Clear()

	log.Info().
		Int("players", len(snap.Players)).
		Int("fleets", len(snap.Fleets)).
		Int64("current_tick", w.CurrentTick).
		Msg("world loaded")
	return w, nil
}

// Tick advances the simulation by exactly one step, running the eight
// fixed-order phases from movement through cooldowns, and returns
// every event produced. It never runs command handlers; those run
// during the command-drain window between calls to Tick.
func (e *Engine) Tick() []model.Event {
	e.World.CurrentTick++
	tick := e.World.CurrentTick

	var events []model.Event
	events = append(events, e.phaseMovement(tick)...)
	events = append(events, e.phaseCombat(tick)...)
	events = append(events, e.phaseHarvesting(tick)...)
	e.phaseSectorRegen(tick)
	events = append(events, e.phaseNPCBehavior(tick)...)
	events = append(events, e.phaseHomeworldsAndQueues(tick)...)
	e.phaseSalvageDespawn(tick)
	e.phaseCooldowns(tick)

	if tick%e.PersistEveryTicks == 0 {
		if err := e.Flush(tick); err != nil {
			e.Log.Error().Err(err).Int64("tick", tick).Msg("checkpoint flush failed; dirty sets retained for retry")
		}
	}
	return events
}

// tickRNG seeds a local, non-shared RNG from the current tick and a
// phase identifier, per the rule that no tick phase may read a
// process-wide random source.
func tickRNG(tick int64, phaseID int) *rand.Rand {
	return rand.New(rand.NewSource(tick*1_000_033 + int64(phaseID)))
}

// --- Phase 1: Movement --------------------------------------------------

func (e *Engine) phaseMovement(tick int64) []model.Event {
	var events []model.Event
	w := e.World
	for _, f := range w.Fleets {
		if f.Status != model.FleetMoving {
			continue
		}
		if f.MoveCooldown > 0 {
			f.MoveCooldown--
			w.MarkFleetDirty(f.ID)
			if f.MoveCooldown > 0 {
				continue
			}
		}

		f.Location = f.MoveTarget
		f.Status = model.FleetIdle
		w.MarkFleetDirty(f.ID)

		p, ok := w.Players[f.PlayerID]
		if !ok {
			continue
		}
		firstVisit := !w.HasVisited(f.PlayerID, f.Location)
		mask := worldgen.ConnectivityMask(w.Seed, f.Location)
		for _, d := range hexcoord.Directions() {
			if worldgen.HasEdge(mask, d) {
				w.RecordExploredEdge(f.PlayerID, f.Location, f.Location.Neighbor(d), tick)
			}
		}
		events = append(events, model.Event{
			Tick: tick, Kind: model.EventSectorEntered, PlayerID: f.PlayerID,
			FleetID: f.ID, Coord: f.Location, FirstVisit: firstVisit,
		})

		if f.Location == p.Homeworld {
			// Friendly territory: the fleet settles idle, no encounter
			// check runs.
			continue
		}
		e.checkEncounter(f, tick)
	}
	return events
}

// checkEncounter looks for hostile content at a fleet's new location
// and, if found, initiates combat. Passive NPC templates remain
// visible in the sector projection but never trigger this path.
func (e *Engine) checkEncounter(f *model.Fleet, tick int64) {
	w := e.World
	if n, ok := w.NPCFleetAt(f.Location); ok {
		if n.Behavior != model.NPCPassive {
			e.initiateCombat(f.Location, []int64{f.ID}, []int64{n.ID}, tick)
		}
		return
	}
	tmpl := worldgen.Generate(w.Seed, f.Location)
	if tmpl.NPC == nil || tmpl.NPC.Behavior == model.NPCPassive {
		return
	}
	if so := w.Sectors[hexcoord.ToKey(f.Location)]; so != nil && so.NPCClearedTick != nil {
		return
	}
	n := e.spawnNPCFromTemplate(tmpl, f.Location)
	e.initiateCombat(f.Location, []int64{f.ID}, []int64{n.ID}, tick)
}

func (e *Engine) spawnNPCFromTemplate(tmpl worldgen.SectorTemplate, at hexcoord.Coord) *model.NPCFleet {
	w := e.World
	n := &model.NPCFleet{
		ID:       w.NextID(),
		Location: at,
		Behavior: tmpl.NPC.Behavior,
		HomeSector: at,
	}
	for _, class := range tmpl.NPC.Ships {
		spec := balance.Spec(class)
		n.Ships = append(n.Ships, &model.Ship{
			ID: w.NextID(), Class: class,
			Hull: spec.BaseHull, HullMax: spec.BaseHull,
			Shield: spec.BaseShield, ShieldMax: spec.BaseShield,
			WeaponPower: spec.BaseWeapon, Speed: spec.BaseSpeed,
		})
	}
	n.ShipCount = len(n.Ships)
	w.AddNPCFleet(n)
	return n
}

// initiateCombat opens a fresh combat or enrolls the given fleets into
// the one already open at sec, per §4.5.2.
func (e *Engine) initiateCombat(sec hexcoord.Coord, playerFleetIDs, npcFleetIDs []int64, tick int64) {
	w := e.World
	if cb, ok := w.CombatAt(sec); ok {
		cb.PlayerFleets = appendMissing(cb.PlayerFleets, playerFleetIDs...)
		cb.NPCFleets = appendMissing(cb.NPCFleets, npcFleetIDs...)
		for _, id := range npcFleetIDs {
			if n, ok := w.NPCFleets[id]; ok {
				cb.NPCValue += npcValue(n)
				n.InCombat, n.CombatID = true, cb.ID
			}
		}
		for _, fid := range playerFleetIDs {
			if f, ok := w.Fleets[fid]; ok {
				f.Status, f.CombatID = model.FleetInCombat, cb.ID
				w.MarkFleetDirty(fid)
			}
		}
		// Enroll every other uninvolved player fleet already sitting in
		// this sector; a reopened combat draws in the whole sector.
		for _, f := range w.PlayerFleetsAt(sec) {
			if f.Status == model.FleetInCombat || f.ShipCount == 0 {
				continue
			}
			cb.PlayerFleets = appendMissing(cb.PlayerFleets, f.ID)
			f.Status, f.CombatID = model.FleetInCombat, cb.ID
			w.MarkFleetDirty(f.ID)
		}
		return
	}

	cb := &model.Combat{ID: w.NextID(), Sector: sec, State: model.CombatOpen}
	cb.PlayerFleets = append(cb.PlayerFleets, playerFleetIDs...)
	cb.NPCFleets = append(cb.NPCFleets, npcFleetIDs...)
	for _, id := range npcFleetIDs {
		if n, ok := w.NPCFleets[id]; ok {
			cb.NPCValue += npcValue(n)
			n.InCombat, n.CombatID = true, cb.ID
		}
	}
	for _, fid := range playerFleetIDs {
		if f, ok := w.Fleets[fid]; ok {
			f.Status, f.CombatID = model.FleetInCombat, cb.ID
			w.MarkFleetDirty(fid)
		}
	}
	for _, f := range w.PlayerFleetsAt(sec) {
		if f.Status == model.FleetInCombat || f.ShipCount == 0 {
			continue
		}
		cb.PlayerFleets = appendMissing(cb.PlayerFleets, f.ID)
		f.Status, f.CombatID = model.FleetInCombat, cb.ID
		w.MarkFleetDirty(f.ID)
	}
	w.AddCombat(cb)
}

func appendMissing(ids []int64, add ...int64) []int64 {
	for _, a := range add {
		found := false
		for _, id := range ids {
			if id == a {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, a)
		}
	}
	return ids
}

func npcValue(n *model.NPCFleet) int64 {
	var total int64
	for _, s := range n.Ships {
		total += balance.ShipCost(s.Class, 1).Sum()
	}
	return total
}

// --- Phase 2: Combat ------------------------------------------------

func (e *Engine) phaseCombat(tick int64) []model.Event {
	var events []model.Event
	w := e.World
	for id, cb := range w.Combats {
		if cb.State != model.CombatOpen {
			continue
		}
		playerAlive := countAlive(w.Fleets, cb.PlayerFleets)
		npcAlive := countAliveNPC(w.NPCFleets, cb.NPCFleets)
		if playerAlive == 0 || npcAlive == 0 {
			e.concludeCombat(cb, tick, playerAlive > 0, &events)
			w.RemoveCombat(id)
			continue
		}

		roundEvents, concluded, playerWon := combat.Resolve(w, cb, tick)
		events = append(events, roundEvents...)
		if concluded {
			e.concludeCombat(cb, tick, playerWon, &events)
			w.RemoveCombat(id)
		}
	}
	return events
}

func countAlive(fleets map[int64]*model.Fleet, ids []int64) int {
	total := 0
	for _, id := range ids {
		if f, ok := fleets[id]; ok {
			total += f.ShipCount
		}
	}
	return total
}

func countAliveNPC(fleets map[int64]*model.NPCFleet, ids []int64) int {
	total := 0
	for _, id := range ids {
		if f, ok := fleets[id]; ok {
			total += f.ShipCount
		}
	}
	return total
}

// concludeCombat transitions every participant out of in_combat,
// removes annihilated fleets, and — on a player victory — drops
// salvage and rolls loot.
func (e *Engine) concludeCombat(cb *model.Combat, tick int64, playerWon bool, events *[]model.Event) {
	w := e.World
	cb.State = model.CombatConcluded
	var survivingPlayers []int64

	for _, fid := range cb.PlayerFleets {
		f, ok := w.Fleets[fid]
		if !ok {
			continue
		}
		if f.ShipCount == 0 {
			w.RemoveFleet(fid)
			continue
		}
		f.Status, f.CombatID = model.FleetIdle, 0
		w.MarkFleetDirty(fid)
		survivingPlayers = append(survivingPlayers, f.PlayerID)
	}
	for _, nid := range cb.NPCFleets {
		n, ok := w.NPCFleets[nid]
		if !ok {
			continue
		}
		if n.ShipCount == 0 {
			w.RemoveNPCFleet(nid)
			continue
		}
		n.InCombat, n.CombatID = false, 0
	}

	*events = append(*events, model.Event{
		Tick: tick, Kind: model.EventCombatEnded, Coord: cb.Sector,
		FleetID: cb.ID, PlayerVictory: playerWon, RelevantPlayers: survivingPlayers,
	})

	if !playerWon {
		return
	}
	so := w.SectorOverrideFor(cb.Sector)
	bundle := model.ResourceBundle{}
	for i := range bundle {
		bundle[i] = int64(float64(cb.NPCValue) * balance.SalvageFraction / float64(len(bundle)))
	}
	so.Salvage = &bundle
	so.SalvageDespawnTick = tick + balance.SalvageDespawnTicks
	cleared := tick
	so.NPCClearedTick = &cleared
	w.MarkSectorDirty(cb.Sector)

	e.rollLoot(cb, survivingPlayers, tick, events)
}

// rollLoot awards fragments once per unique surviving player, scaled
// by the zone and the defeated NPC force's value.
func (e *Engine) rollLoot(cb *model.Combat, playerIDs []int64, tick int64, events *[]model.Event) {
	w := e.World
	zone := hexcoord.ZoneOf(cb.Sector)
	rng := tickRNG(tick, 900+int(cb.ID%1000))
	zoneMult := map[hexcoord.Zone]float64{
		hexcoord.ZoneCentralHub: 0.5, hexcoord.ZoneInnerRing: 1.0,
		hexcoord.ZoneOuterRing: 1.5, hexcoord.ZoneWandering: 2.0,
	}[zone]

	seen := map[int64]struct{}{}
	for _, pid := range playerIDs {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		p, ok := w.Players[pid]
		if !ok {
			continue
		}
		frags := int64(float64(cb.NPCValue)/50.0*zoneMult) + int64(rng.Intn(3))
		if frags <= 0 {
			continue
		}
		p.Fragments += frags
		w.MarkPlayerDirty(pid)
	}
}
