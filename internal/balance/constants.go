// Package balance holds every cost, time, production, and modifier
// formula the simulation consults. Everything here is pure: no state,
// no randomness, no I/O. The engine calls into this package; it is
// never the other way around.
package balance

import (
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// Tick-rate and persistence defaults, used as-is by cmd/ownworldd
// (neither has a command-line flag).
const (
	DefaultTickRateHz       = 1
	DefaultPersistEveryTick = 30
)

// MaxBuildingLevel caps every building track and MaxResearchLevel
// every research track. A future per-track cap can replace this without touching
// callers, since every lookup goes through MaxLevelFor.
const (
	MaxBuildingLevel = 30
	MaxResearchLevel = 20
)

// Fleet and combat tuning. None of these are named directly in the
// balance tables below; they are the standalone multipliers the
// command handlers and combat resolver reach for.
const (
	RecallFuelMultiplier  = 2.0
	CancelRefundFraction  = 0.5
	SalvageFraction       = 0.3
	DamageVarianceMin     = 0.8
	DamageVarianceMax     = 1.2
	ShieldRegenIdleTicks  = 3
	ShieldRegenFraction   = 0.10
	RecallDamageBaseCap   = 0.35
	RecallDamagePerHex    = 0.02
	RecallHullLossMinPct  = 0.10
	RecallHullLossMaxPct  = 0.60
	MaxCombatRoundsPerTick = 1
)

// Registration and homeworld placement.
const (
	HomeworldMinDist       = 3
	HomeworldMaxDist       = 8
	HomeworldMinSeparation = 2
	StarterScoutCount      = 2
	RegistrationMaxAttempts = 2000
)

// StartingResources is the resource bundle a freshly registered player
// begins with.
func StartingResources() model.ResourceBundle {
	return model.ResourceBundle{model.Metal: 500, model.Crystal: 300, model.Deuterium: 100}
}

// Command cooldowns and per-player/per-fleet caps.
const (
	HarvestCooldown    = 5
	CollectCooldown    = 1
	AttackCooldown     = 0
	MaxFleetsPerPlayer = 8
	MaxDockedShips     = 200
	MaxShipsPerFleet   = 20
	NPCPatrolCooldown  = 3
	BaseMoveCooldownTicks = 4
	BaseMoveFuelCost   = 10
)

// MoveFuelCost returns the fuel a one-hex move costs a fleet whose
// owner has the given fuel-efficiency research level.
func MoveFuelCost(fuelEfficiencyLevel int) int64 {
	return int64(float64(BaseMoveFuelCost)*FuelRateModifier(fuelEfficiencyLevel) + 0.5)
}

// Sector and salvage lifecycle.
const (
	SalvageDespawnTicks   = 60
	SectorRegenPerTick    = 25
	CentralHubRespawnDelay = 120
	InnerRingRespawnDelay  = 90
	OuterRingRespawnDelay  = 60
	WanderingRespawnDelay  = 40
)

// ZoneRespawnDelay returns the number of ticks after npc_cleared_tick
// before a sector's template NPC becomes eligible to spawn again.
// Deeper zones respawn faster: a cleared hub sector stays quiet far
// longer than a cleared wandering-zone sector.
func ZoneRespawnDelay(z hexcoord.Zone) int64 {
	switch z {
	case hexcoord.ZoneCentralHub:
		return CentralHubRespawnDelay
	case hexcoord.ZoneInnerRing:
		return InnerRingRespawnDelay
	case hexcoord.ZoneOuterRing:
		return OuterRingRespawnDelay
	default:
		return WanderingRespawnDelay
	}
}

// MaxLevelFor returns the level ceiling for a track kind.
func MaxLevelFor(kind TrackKind) int {
	switch kind {
	case TrackBuilding:
		return MaxBuildingLevel
	case TrackResearch:
		return MaxResearchLevel
	default:
		return 0
	}
}

// TrackKind distinguishes a building track from a research track when
// expressing a prerequisite edge.
type TrackKind int

const (
	TrackBuilding TrackKind = iota
	TrackResearch
)
