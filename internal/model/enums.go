// Package model defines the authoritative entity types owned by the
// simulation engine (players, fleets, ships, NPC fleets, combats,
// sector overrides, queues) together with the dirty-set bookkeeping
// that the checkpoint store depends on.
//
// Nothing in this package touches the network or the database; it is
// the shape of the world the rest of the server operates on.
package model

// ResourceKind indexes the three harvestable/storable resources. The
// fixed order (Metal, Crystal, Deuterium) is part of the public
// contract: harvesting and cargo transfer iterate resources in this
// order.
type ResourceKind int

const (
	Metal ResourceKind = iota
	Crystal
	Deuterium
	numResourceKinds
)

// Resources returns the fixed, ordered enumeration of resource kinds.
func Resources() [numResourceKinds]ResourceKind {
	return [numResourceKinds]ResourceKind{Metal, Crystal, Deuterium}
}

func (r ResourceKind) String() string {
	switch r {
	case Metal:
		return "metal"
	case Crystal:
		return "crystal"
	case Deuterium:
		return "deuterium"
	default:
		return "unknown"
	}
}

// ResourceBundle holds an amount of each resource kind.
type ResourceBundle [numResourceKinds]int64

// Add returns a new bundle with b added component-wise.
func (r ResourceBundle) Add(b ResourceBundle) ResourceBundle {
	var out ResourceBundle
	for i := range out {
		out[i] = r[i] + b[i]
	}
	return out
}

// Sub returns a new bundle with b subtracted component-wise.
func (r ResourceBundle) Sub(b ResourceBundle) ResourceBundle {
	var out ResourceBundle
	for i := range out {
		out[i] = r[i] - b[i]
	}
	return out
}

// Sum totals all components.
func (r ResourceBundle) Sum() int64 {
	var total int64
	for _, v := range r {
		total += v
	}
	return total
}

// GreaterOrEqual reports whether every component of r is >= the
// corresponding component of b.
func (r ResourceBundle) GreaterOrEqual(b ResourceBundle) bool {
	for i := range r {
		if r[i] < b[i] {
			return false
		}
	}
	return true
}

// Terrain classifies a sector's surface type, rolled by the world
// generator from the sector's zone.
type Terrain int

const (
	TerrainEmpty Terrain = iota
	TerrainAsteroidField
	TerrainGasCloud
	TerrainRockyPlanet
	TerrainIceWorld
	TerrainVolcanic
	TerrainDerelict
)

func (t Terrain) String() string {
	switch t {
	case TerrainEmpty:
		return "empty"
	case TerrainAsteroidField:
		return "asteroid_field"
	case TerrainGasCloud:
		return "gas_cloud"
	case TerrainRockyPlanet:
		return "rocky_planet"
	case TerrainIceWorld:
		return "ice_world"
	case TerrainVolcanic:
		return "volcanic"
	case TerrainDerelict:
		return "derelict"
	default:
		return "unknown"
	}
}

// Density enumerates resource abundance. Each step has a harvest
// multiplier and a depletion threshold (the accumulated harvest that
// triggers a downgrade).
type Density int

const (
	DensityNone Density = iota
	DensitySparse
	DensityModerate
	DensityRich
	DensityPristine
	numDensities
)

func (d Density) String() string {
	switch d {
	case DensityNone:
		return "none"
	case DensitySparse:
		return "sparse"
	case DensityModerate:
		return "moderate"
	case DensityRich:
		return "rich"
	case DensityPristine:
		return "pristine"
	default:
		return "unknown"
	}
}

// Multiplier returns the per-tick harvest multiplier for this density
// step.
func (d Density) Multiplier() float64 {
	switch d {
	case DensityNone:
		return 0
	case DensitySparse:
		return 1
	case DensityModerate:
		return 2.5
	case DensityRich:
		return 5
	case DensityPristine:
		return 9
	default:
		return 0
	}
}

// DepletionThreshold returns the cumulative harvested amount that
// triggers a one-step downgrade of this density.
func (d Density) DepletionThreshold() int64 {
	switch d {
	case DensitySparse:
		return 500
	case DensityModerate:
		return 2000
	case DensityRich:
		return 6000
	case DensityPristine:
		return 15000
	default:
		return 0
	}
}

// Downgrade returns the density one step below d, saturating at
// DensityNone.
func (d Density) Downgrade() Density {
	if d <= DensityNone {
		return DensityNone
	}
	return d - 1
}

// Upgrade returns the density one step above d, saturating at
// DensityPristine.
func (d Density) Upgrade() Density {
	if d >= DensityPristine {
		return DensityPristine
	}
	return d + 1
}

// ResourceDensities holds a Density value per resource kind, indexed
// the same way as ResourceBundle.
type ResourceDensities [numResourceKinds]Density

// ShipClass enumerates the buildable/ownable ship types.
type ShipClass int

const (
	ShipScout ShipClass = iota
	ShipFrigate
	ShipCruiser
	ShipBattleship
	ShipHauler
	ShipHarvester
	numShipClasses
)

// ShipClasses returns the fixed, ordered enumeration of ship classes.
func ShipClasses() [numShipClasses]ShipClass {
	return [numShipClasses]ShipClass{ShipScout, ShipFrigate, ShipCruiser, ShipBattleship, ShipHauler, ShipHarvester}
}

func (s ShipClass) String() string {
	switch s {
	case ShipScout:
		return "scout"
	case ShipFrigate:
		return "frigate"
	case ShipCruiser:
		return "cruiser"
	case ShipBattleship:
		return "battleship"
	case ShipHauler:
		return "hauler"
	case ShipHarvester:
		return "harvester"
	default:
		return "unknown"
	}
}

// BuildingType enumerates homeworld building slots.
type BuildingType int

const (
	BuildingMetalMine BuildingType = iota
	BuildingCrystalMine
	BuildingDeuteriumSynthesizer
	BuildingShipyard
	BuildingResearchLab
	BuildingFuelDepot
	numBuildingTypes
)

// BuildingTypes returns the fixed, ordered enumeration of building types.
func BuildingTypes() [numBuildingTypes]BuildingType {
	return [numBuildingTypes]BuildingType{
		BuildingMetalMine, BuildingCrystalMine, BuildingDeuteriumSynthesizer,
		BuildingShipyard, BuildingResearchLab, BuildingFuelDepot,
	}
}

func (b BuildingType) String() string {
	switch b {
	case BuildingMetalMine:
		return "metal_mine"
	case BuildingCrystalMine:
		return "crystal_mine"
	case BuildingDeuteriumSynthesizer:
		return "deuterium_synthesizer"
	case BuildingShipyard:
		return "shipyard"
	case BuildingResearchLab:
		return "research_lab"
	case BuildingFuelDepot:
		return "fuel_depot"
	default:
		return "unknown"
	}
}

// ResearchTech enumerates research tracks.
type ResearchTech int

const (
	TechHullPlating ResearchTech = iota
	TechShielding
	TechWeapons
	TechFuelEfficiency
	TechExtendedTanks
	TechFuelDepotTech
	TechHarvestRate
	TechNavigation
	TechEmergencyJump
	numResearchTechs
)

// ResearchTechs returns the fixed, ordered enumeration of research techs.
func ResearchTechs() [numResearchTechs]ResearchTech {
	return [numResearchTechs]ResearchTech{
		TechHullPlating, TechShielding, TechWeapons, TechFuelEfficiency,
		TechExtendedTanks, TechFuelDepotTech, TechHarvestRate, TechNavigation,
		TechEmergencyJump,
	}
}

func (t ResearchTech) String() string {
	switch t {
	case TechHullPlating:
		return "hull_plating"
	case TechShielding:
		return "shielding"
	case TechWeapons:
		return "weapons"
	case TechFuelEfficiency:
		return "fuel_efficiency"
	case TechExtendedTanks:
		return "extended_tanks"
	case TechFuelDepotTech:
		return "fuel_depot_tech"
	case TechHarvestRate:
		return "harvest_rate"
	case TechNavigation:
		return "navigation"
	case TechEmergencyJump:
		return "emergency_jump"
	default:
		return "unknown"
	}
}

// NPCBehavior classifies how an NPC fleet acts each tick.
type NPCBehavior int

const (
	NPCPassive NPCBehavior = iota
	NPCAggressive
	NPCPatrol
)

func (b NPCBehavior) String() string {
	switch b {
	case NPCPassive:
		return "passive"
	case NPCAggressive:
		return "aggressive"
	case NPCPatrol:
		return "patrol"
	default:
		return "unknown"
	}
}

// FleetStatus is the fleet state machine from §4.4.
type FleetStatus int

const (
	FleetIdle FleetStatus = iota
	FleetMoving
	FleetHarvesting
	FleetInCombat
	FleetReturning
	FleetDocked
)

func (s FleetStatus) String() string {
	switch s {
	case FleetIdle:
		return "idle"
	case FleetMoving:
		return "moving"
	case FleetHarvesting:
		return "harvesting"
	case FleetInCombat:
		return "in_combat"
	case FleetReturning:
		return "returning"
	case FleetDocked:
		return "docked"
	default:
		return "unknown"
	}
}

// CombatState is the combat state machine from §4.4.
type CombatState int

const (
	CombatOpen CombatState = iota
	CombatConcluded
)

// QueueKind identifies which single-slot queue a player command refers to.
type QueueKind int

const (
	QueueBuilding QueueKind = iota
	QueueResearch
	QueueShip
)

func (q QueueKind) String() string {
	switch q {
	case QueueBuilding:
		return "building"
	case QueueResearch:
		return "research"
	case QueueShip:
		return "ship"
	default:
		return "unknown"
	}
}
