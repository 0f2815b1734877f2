// Package combat resolves one round of a sector engagement between
// player fleets and NPC fleets. A round is a single call to Resolve;
// the caller — internal/engine's combat phase — invokes it exactly
// once per active combat per tick.
package combat

import (
	"math/rand"

	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// Resolve advances combat by exactly one round.
//
// The round counter is incremented and a local RNG is seeded from
// (current_tick, round) before any shot is fired; this RNG is never
// shared across combats and is discarded at the end of the call. The
// seed does not include combat identity, so two combats at the same
// tick and round start from the same sequence; every round is fully
// reproducible from the tick number and round alone.
//
// Traversal order is fixed: fleets fire in the insertion order they
// joined the combat, and within a fleet ships fire in their current
// index order. Nothing here may randomize or parallelize that order —
// doing so would make round-by-round event logs nondeterministic.
//
// Resolve returns the events produced, whether the combat concluded
// (either side reached zero ships after compaction), and whether the
// player side is the winner (false on a mutual wipe).
func Resolve(w *model.World, c *model.Combat, tick int64) (events []model.Event, concluded bool, playerWon bool) {
	c.Round++
	rng := rand.New(rand.NewSource(roundSeed(tick, int64(c.Round))))

	playerPool := livePool(w, c.PlayerFleets)
	npcPool := liveNPCPool(w, c.NPCFleets)

	events = append(events, fireAll(rng, playerPool, npcPool, c.Sector, tick, false)...)
	events = append(events, fireAll(rng, npcPool, playerPool, c.Sector, tick, true)...)

	compactFleets(w, c.PlayerFleets)
	compactNPCFleets(w, c.NPCFleets)

	playerAlive := countAlive(w, c.PlayerFleets)
	npcAlive := countAliveNPC(w, c.NPCFleets)

	concluded = playerAlive == 0 || npcAlive == 0
	playerWon = concluded && playerAlive > 0 && npcAlive == 0
	return events, concluded, playerWon
}

// roundSeed combines the tick and round into a single seed. Folding
// both into one int64 keeps the RNG deterministic without depending
// on combat identity: two combats in the same tick and round get the
// same seed, and replaying the same tick always reproduces the same
// rolls.
func roundSeed(tick, round int64) int64 {
	return tick*1_000_003 + round
}

// shipRef is one living ship together with enough back-reference to
// attribute shots and find it again for compaction.
type shipRef struct {
	ship    *model.Ship
	fleetID int64
}

func livePool(w *model.World, fleetIDs []int64) []shipRef {
	var out []shipRef
	for _, id := range fleetIDs {
		f, ok := w.Fleets[id]
		if !ok {
			continue
		}
		for _, s := range f.LiveShips() {
			if s.Alive() {
				out = append(out, shipRef{ship: s, fleetID: id})
			}
		}
	}
	return out
}

func liveNPCPool(w *model.World, fleetIDs []int64) []shipRef {
	var out []shipRef
	for _, id := range fleetIDs {
		f, ok := w.NPCFleets[id]
		if !ok {
			continue
		}
		for _, s := range f.LiveShips() {
			if s.Alive() {
				out = append(out, shipRef{ship: s, fleetID: id})
			}
		}
	}
	return out
}

func countAlive(w *model.World, fleetIDs []int64) int {
	total := 0
	for _, id := range fleetIDs {
		if f, ok := w.Fleets[id]; ok {
			total += f.ShipCount
		}
	}
	return total
}

func countAliveNPC(w *model.World, fleetIDs []int64) int {
	total := 0
	for _, id := range fleetIDs {
		if f, ok := w.NPCFleets[id]; ok {
			total += f.ShipCount
		}
	}
	return total
}

// fireAll walks attackers in traversal order and has each living one
// fire at the opposing pool, including any rapid-fire follow-up shots.
// defenders is mutated in place (hull/shield reduced) as shots land.
func fireAll(rng *rand.Rand, attackers, defenders []shipRef, sector hexcoord.Coord, tick int64, attackersAreNPC bool) []model.Event {
	var events []model.Event
	for _, att := range attackers {
		if !att.ship.Alive() {
			continue
		}
		for {
			ev, targetClass, hit := fireOnce(rng, att, defenders, sector, tick, attackersAreNPC)
			events = append(events, ev...)
			if !hit {
				break
			}
			rf := balance.RapidFireCount(att.ship.Class, targetClass)
			if rf == 0 || rng.Float64() >= 1-1/float64(rf) {
				break
			}
		}
	}
	return events
}

// fireOnce draws one weighted target from defenders and resolves a
// single shot from attacker against it. It returns the events
// produced, the target's class (for the rapid-fire lookup), and
// whether a target was found to fire at.
func fireOnce(rng *rand.Rand, attacker shipRef, defenders []shipRef, sector hexcoord.Coord, tick int64, attackerIsNPC bool) ([]model.Event, model.ShipClass, bool) {
	targetShip := weightedTarget(rng, defenders)
	if targetShip == nil {
		return nil, 0, false
	}
	var target shipRef
	for _, d := range defenders {
		if d.ship == targetShip {
			target = d
			break
		}
	}

	variance := balance.DamageVarianceMin + rng.Float64()*(balance.DamageVarianceMax-balance.DamageVarianceMin)
	damage := int64(float64(attacker.ship.WeaponPower) * variance)

	absorbed := damage
	if target.ship.Shield > 0 {
		if int64(target.ship.Shield) >= absorbed {
			target.ship.Shield -= int(absorbed)
			absorbed = 0
		} else {
			absorbed -= int64(target.ship.Shield)
			target.ship.Shield = 0
		}
	}
	target.ship.Hull -= int(absorbed)

	events := []model.Event{{
		Tick:         tick,
		Kind:         model.EventCombatRound,
		Coord:        sector,
		FleetID:      attacker.fleetID,
		OtherFleetID: target.fleetID,
		ShipID:       target.ship.ID,
		Damage:       damage,
		IsNPC:        attackerIsNPC,
	}}

	if target.ship.Hull <= 0 {
		target.ship.Hull = 0
		events = append(events, model.Event{
			Tick:         tick,
			Kind:         model.EventShipDestroyed,
			Coord:        sector,
			FleetID:      target.fleetID,
			OtherFleetID: attacker.fleetID,
			ShipID:       target.ship.ID,
			ShipClass:    target.ship.Class,
		})
	}
	return events, target.ship.Class, true
}

// weightedTarget draws a living ship from defenders with probability
// proportional to its HullMax, skipping dead entries. If rounding
// error leaves the cumulative weight short of the roll, the last
// living entry is returned rather than nil.
func weightedTarget(rng *rand.Rand, defenders []shipRef) *model.Ship {
	total := 0.0
	for _, d := range defenders {
		if d.ship.Alive() {
			total += float64(d.ship.HullMax)
		}
	}
	if total <= 0 {
		return nil
	}
	roll := rng.Float64() * total
	var lastLiving *model.Ship
	cumulative := 0.0
	for _, d := range defenders {
		if !d.ship.Alive() {
			continue
		}
		lastLiving = d.ship
		cumulative += float64(d.ship.HullMax)
		if roll < cumulative {
			return d.ship
		}
	}
	return lastLiving
}

// compactFleets packs each player fleet's ship array so live ships sit
// at indices [0, ShipCount) and ShipCount reflects the survivor count.
func compactFleets(w *model.World, fleetIDs []int64) {
	for _, id := range fleetIDs {
		f, ok := w.Fleets[id]
		if !ok {
			continue
		}
		f.ShipCount = compact(f.Ships, f.ShipCount)
		w.MarkFleetDirty(id)
	}
}

func compactNPCFleets(w *model.World, fleetIDs []int64) {
	for _, id := range fleetIDs {
		f, ok := w.NPCFleets[id]
		if !ok {
			continue
		}
		f.ShipCount = compact(f.Ships, f.ShipCount)
	}
}

// compact moves every living ship among ships[:count] to the front of
// the slice, preserving relative order, and returns the new count.
func compact(ships []*model.Ship, count int) int {
	write := 0
	for read := 0; read < count; read++ {
		if ships[read].Alive() {
			ships[write] = ships[read]
			write++
		}
	}
	return write
}
