package model

import "github.com/Vitadek/ownworld/internal/hexcoord"

// Ship is a single hull inside a fleet's roster or a player's docked
// pool. It carries no identity beyond its id; classes and their base
// stats live in internal/balance.
type Ship struct {
	ID         int64
	Class      ShipClass
	Hull       int
	HullMax    int
	Shield     int
	ShieldMax  int
	WeaponPower int
	Speed      int
}

// Alive reports whether the ship still has hull remaining.
func (s *Ship) Alive() bool { return s.Hull > 0 }

// Fleet is an owned, movable group of ships with cargo and fuel.
// ShipCount is the number of live entries at the front of Ships;
// entries at or beyond ShipCount are garbage left by compaction and
// must never be read.
type Fleet struct {
	ID             int64
	PlayerID       int64
	Location       hexcoord.Coord
	Status         FleetStatus
	Ships          []*Ship
	ShipCount      int
	Cargo          ResourceBundle
	CargoCap       int64
	Fuel           int64
	FuelMax        int64
	MoveCooldown   int
	ActionCooldown int
	MoveTarget     hexcoord.Coord
	IdleTicks      int
	CombatID       int64 // 0 when not in_combat
}

// LiveShips returns the slice of currently-alive ships, i.e. Ships up
// to ShipCount. Callers must not retain or append to the returned
// slice past the next mutation.
func (f *Fleet) LiveShips() []*Ship {
	return f.Ships[:f.ShipCount]
}

// CargoUsed returns the sum of all cargo components.
func (f *Fleet) CargoUsed() int64 { return f.Cargo.Sum() }

// CargoFree returns the remaining cargo capacity.
func (f *Fleet) CargoFree() int64 {
	free := f.CargoCap - f.CargoUsed()
	if free < 0 {
		return 0
	}
	return free
}

// NPCFleet is a non-player fleet spawned from a world-generator
// template on first hostile contact, or by patrol logic.
type NPCFleet struct {
	ID             int64
	Location       hexcoord.Coord
	Ships          []*Ship
	ShipCount      int
	Behavior       NPCBehavior
	HomeSector     hexcoord.Coord
	PatrolCooldown int
	InCombat       bool
	CombatID       int64
}

func (n *NPCFleet) LiveShips() []*Ship { return n.Ships[:n.ShipCount] }

// Combat is a sector-local engagement between player and NPC fleets,
// resolved one round per tick by internal/combat.
type Combat struct {
	ID            int64
	Sector        hexcoord.Coord
	PlayerFleets  []int64 // insertion order; traversal order for the resolver
	NPCFleets     []int64
	NPCValue      int64 // accumulated build-cost of all NPCs that joined
	NPCSnapshot   map[ShipClass]int
	Round         int
	State         CombatState
}

// BuildQueue is a player's single in-flight building order.
type BuildQueue struct {
	Building  BuildingType
	StartTick int64
	EndTick   int64
	// RemainingCost is what CancelBuild refunds a fraction of; it is
	// the full cost paid at commit time, kept around only for refund
	// math, not re-deducted.
	RemainingCost ResourceBundle
}

// ResearchQueue is a player's single in-flight research order.
type ResearchQueue struct {
	Tech          ResearchTech
	StartTick     int64
	EndTick       int64
	RemainingCost ResourceBundle
	RemainingFrag int64
}

// ShipQueue is a player's single in-flight ship production order. It
// tracks a count of ships still to build; each completion appends one
// ship to the docked pool and advances EndTick by the per-unit time
// until Built == Count.
type ShipQueue struct {
	Class     ShipClass
	Count     int
	Built     int
	StartTick int64
	EndTick   int64
	UnitCost  ResourceBundle // per-unit cost, for refund math
}

// SectorOverride is the mutable overlay atop a sector's procedural
// template. It is created lazily on first modification and never
// explicitly freed.
type SectorOverride struct {
	Coord hexcoord.Coord

	// DensityOverride holds a per-resource override; nil means "no
	// override, fall back to the template." A non-nil pointer always
	// points at a value distinct from the template's density.
	DensityOverride [numResourceKinds]*Density

	// HarvestAccum tracks cumulative harvest per resource since the
	// last density step change; a downgrade sets it to that resource's
	// depletion threshold (the regen budget) and an upgrade resets it
	// to 0.
	HarvestAccum ResourceBundle

	Salvage            *ResourceBundle
	SalvageDespawnTick int64

	NPCClearedTick *int64
}

// EffectiveDensity returns the override density for a resource if one
// exists, else the template density passed in.
func (s *SectorOverride) EffectiveDensity(rk ResourceKind, template Density) Density {
	if s == nil || s.DensityOverride[rk] == nil {
		return template
	}
	return *s.DensityOverride[rk]
}

// Player is the root per-account record: resources, homeworld,
// building/research progress, queues, and docked ships.
type Player struct {
	ID    int64
	Name  string

	Resources ResourceBundle
	Fragments int64

	Homeworld hexcoord.Coord

	BuildingLevels [numBuildingTypes]int
	ResearchLevels [numResearchTechs]int

	BuildQueue    *BuildQueue
	ResearchQueue *ResearchQueue
	ShipQueue     *ShipQueue

	DockedShips []*Ship

	TokenHash []byte

	CreatedAtUnix   int64
	LastLoginAtUnix int64
}

// BuildingLevel implements balance.LevelSource.
func (p *Player) BuildingLevel(bt BuildingType) int { return p.BuildingLevels[bt] }

// ResearchLevel implements balance.LevelSource.
func (p *Player) ResearchLevel(t ResearchTech) int { return p.ResearchLevels[t] }
