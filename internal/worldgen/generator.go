package worldgen

import (
	"math/rand"

	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// SectorTemplate is the fully-derived procedural content of a hex: its
// terrain, the density of each resource kind, and an optional NPC
// template. Two calls to Generate with the same seed and coordinate
// always return an identical SectorTemplate.
type SectorTemplate struct {
	Coord      hexcoord.Coord
	Zone       hexcoord.Zone
	Terrain    model.Terrain
	Density    model.ResourceDensities
	NPC        *NPCTemplate
	Connective uint8 // bitmask over hexcoord.Direction, bit d set means the edge in direction d exists
}

// NPCTemplate describes a non-player fleet rolled for a sector. It is
// pure data; internal/engine is responsible for turning it into a live
// NPC fleet the first time a player enters the sector.
type NPCTemplate struct {
	Behavior model.NPCBehavior
	Ships    []model.ShipClass
}

// Generate derives the complete template for one hex from the world
// seed. It performs no I/O and allocates only the NPC template slice
// when a sector actually rolls an NPC.
func Generate(worldSeed uint64, c hexcoord.Coord) SectorTemplate {
	zone := hexcoord.ZoneOf(c)
	rng := rngFor(worldSeed, c)

	t := SectorTemplate{
		Coord:      c,
		Zone:       zone,
		Terrain:    rollTerrain(rng, zone),
		Connective: ConnectivityMask(worldSeed, c),
	}
	for _, rk := range model.Resources() {
		t.Density[rk] = rollDensity(rng, zone, t.Terrain, rk)
	}
	t.NPC = rollNPC(rng, zone)
	return t
}

// survivalPercent is the chance, out of 100, that a given direction's
// edge exists. It decreases moving outward: the hub is densely
// connected, the wandering zone is sparse and maze-like.
func survivalPercent(z hexcoord.Zone) int {
	switch z {
	case hexcoord.ZoneCentralHub:
		return 90
	case hexcoord.ZoneInnerRing:
		return 70
	case hexcoord.ZoneOuterRing:
		return 45
	default:
		return 25
	}
}

// ConnectivityMask evaluates all six of c's edges in the fixed
// direction order and returns a bitmask of the ones that exist. Each
// edge's survival roll is symmetric (it hashes the same regardless of
// which endpoint asks), so both hexes sharing an edge agree on whether
// it exists. If evaluating the roll for every direction in turn would
// leave the hex with zero connected edges, the last direction
// evaluated is forced to connect: no hex is ever fully isolated. The
// origin is always fully connected, all six edges, regardless of roll.
func ConnectivityMask(worldSeed uint64, c hexcoord.Coord) uint8 {
	if c == hexcoord.Origin {
		return 0b111111
	}
	pct := survivalPercent(hexcoord.ZoneOf(c))
	dirs := hexcoord.Directions()
	var mask uint8
	anyConnected := false
	for i, d := range dirs {
		n := c.Neighbor(d)
		roll := edgeRNG(worldSeed, c, n).Intn(100)
		connected := roll < pct
		if i == len(dirs)-1 && !anyConnected {
			connected = true
		}
		if connected {
			mask |= 1 << uint(d)
			anyConnected = true
		}
	}
	return mask
}

// HasEdge reports whether the edge in direction d exists on a mask
// returned by ConnectivityMask.
func HasEdge(mask uint8, d hexcoord.Direction) bool {
	return mask&(1<<uint(d)) != 0
}

// terrainWeight pairs a terrain with its roll weight for a zone.
type terrainWeight struct {
	terrain model.Terrain
	weight  int
}

func terrainTable(z hexcoord.Zone) []terrainWeight {
	switch z {
	case hexcoord.ZoneCentralHub:
		return []terrainWeight{
			{model.TerrainEmpty, 40},
			{model.TerrainRockyPlanet, 30},
			{model.TerrainAsteroidField, 20},
			{model.TerrainGasCloud, 10},
		}
	case hexcoord.ZoneInnerRing:
		return []terrainWeight{
			{model.TerrainEmpty, 30},
			{model.TerrainRockyPlanet, 25},
			{model.TerrainAsteroidField, 20},
			{model.TerrainGasCloud, 15},
			{model.TerrainIceWorld, 10},
		}
	case hexcoord.ZoneOuterRing:
		return []terrainWeight{
			{model.TerrainEmpty, 20},
			{model.TerrainAsteroidField, 25},
			{model.TerrainGasCloud, 15},
			{model.TerrainIceWorld, 15},
			{model.TerrainVolcanic, 15},
			{model.TerrainDerelict, 10},
		}
	default: // wandering
		return []terrainWeight{
			{model.TerrainEmpty, 15},
			{model.TerrainAsteroidField, 25},
			{model.TerrainGasCloud, 15},
			{model.TerrainIceWorld, 15},
			{model.TerrainVolcanic, 15},
			{model.TerrainDerelict, 15},
		}
	}
}

func rollTerrain(rng *rand.Rand, z hexcoord.Zone) model.Terrain {
	table := terrainTable(z)
	total := 0
	for _, tw := range table {
		total += tw.weight
	}
	roll := rng.Intn(total)
	for _, tw := range table {
		if roll < tw.weight {
			return tw.terrain
		}
		roll -= tw.weight
	}
	return model.TerrainEmpty
}

// densityWeight pairs a density step with its roll weight.
type densityWeight struct {
	density model.Density
	weight  int
}

// densityTable returns the density distribution for a resource kind in
// a zone. Richer deposits grow more common moving away from the hub,
// rewarding exploration; the terrain gates which resources can appear
// at all (a gas cloud has no metal, an asteroid field has no
// deuterium).
func densityTable(z hexcoord.Zone, terrain model.Terrain, rk model.ResourceKind) []densityWeight {
	if !terrainYields(terrain, rk) {
		return []densityWeight{{model.DensityNone, 1}}
	}
	switch z {
	case hexcoord.ZoneCentralHub:
		return []densityWeight{
			{model.DensityNone, 20},
			{model.DensitySparse, 45},
			{model.DensityModerate, 30},
			{model.DensityRich, 5},
		}
	case hexcoord.ZoneInnerRing:
		return []densityWeight{
			{model.DensityNone, 15},
			{model.DensitySparse, 35},
			{model.DensityModerate, 35},
			{model.DensityRich, 14},
			{model.DensityPristine, 1},
		}
	case hexcoord.ZoneOuterRing:
		return []densityWeight{
			{model.DensityNone, 10},
			{model.DensitySparse, 25},
			{model.DensityModerate, 35},
			{model.DensityRich, 25},
			{model.DensityPristine, 5},
		}
	default:
		return []densityWeight{
			{model.DensityNone, 5},
			{model.DensitySparse, 15},
			{model.DensityModerate, 30},
			{model.DensityRich, 35},
			{model.DensityPristine, 15},
		}
	}
}

// terrainYields reports whether a terrain can host a given resource
// kind at all.
func terrainYields(t model.Terrain, rk model.ResourceKind) bool {
	switch t {
	case model.TerrainEmpty:
		return false
	case model.TerrainAsteroidField:
		return rk == model.Metal || rk == model.Crystal
	case model.TerrainGasCloud:
		return rk == model.Deuterium
	case model.TerrainRockyPlanet:
		return rk == model.Metal || rk == model.Crystal
	case model.TerrainIceWorld:
		return rk == model.Deuterium || rk == model.Crystal
	case model.TerrainVolcanic:
		return rk == model.Metal
	case model.TerrainDerelict:
		return rk == model.Crystal
	default:
		return false
	}
}

func rollDensity(rng *rand.Rand, z hexcoord.Zone, terrain model.Terrain, rk model.ResourceKind) model.Density {
	table := densityTable(z, terrain, rk)
	total := 0
	for _, dw := range table {
		total += dw.weight
	}
	roll := rng.Intn(total)
	for _, dw := range table {
		if roll < dw.weight {
			return dw.density
		}
		roll -= dw.weight
	}
	return model.DensityNone
}

// npcChance is the percent chance, out of 100, that a sector rolls an
// NPC fleet. It rises with distance from the hub.
func npcChance(z hexcoord.Zone) int {
	switch z {
	case hexcoord.ZoneCentralHub:
		return 2
	case hexcoord.ZoneInnerRing:
		return 8
	case hexcoord.ZoneOuterRing:
		return 18
	default:
		return 30
	}
}

func rollNPC(rng *rand.Rand, z hexcoord.Zone) *NPCTemplate {
	if rng.Intn(100) >= npcChance(z) {
		return nil
	}
	behavior := model.NPCPassive
	if z == hexcoord.ZoneOuterRing || z == hexcoord.ZoneWandering {
		switch rng.Intn(3) {
		case 0:
			behavior = model.NPCAggressive
		case 1:
			behavior = model.NPCPatrol
		default:
			behavior = model.NPCPassive
		}
	}
	size := 1 + rng.Intn(3)
	ships := make([]model.ShipClass, size)
	for i := range ships {
		if rng.Intn(4) == 0 {
			ships[i] = model.ShipCruiser
		} else {
			ships[i] = model.ShipFrigate
		}
	}
	return &NPCTemplate{Behavior: behavior, Ships: ships}
}
