package balance

import (
	"math"

	"github.com/Vitadek/ownworld/internal/model"
)

// ShipSpec is a ship class's base stats and acquisition cost. Research
// modifiers (hull/shield/weapon) are applied on top of these at build
// time; they are not baked into the spec itself.
type ShipSpec struct {
	Cost         model.ResourceBundle
	BaseBuild    int // ticks, before shipyard-level discount
	BaseHull     int
	BaseShield   int
	BaseWeapon   int
	BaseSpeed    int // move cooldown is BaseMoveCooldownTicks / speed
	CargoCap     int64
	BaseFuel     int
	BaseHarvest  int64 // per-tick harvest contribution before research modifiers; 0 for warships
	UnlockTech   *model.ResearchTech // nil means always unlocked
	UnlockLevel  int
}

var scoutUnlock *model.ResearchTech // nil: scout is always available

var shipSpecs = map[model.ShipClass]ShipSpec{
	model.ShipScout: {
		Cost:       model.ResourceBundle{model.Metal: 40, model.Crystal: 10, model.Deuterium: 5},
		BaseBuild:  3,
		BaseHull:   40,
		BaseShield: 0,
		BaseWeapon: 5,
		BaseSpeed:  2,
		CargoCap:   100,
		BaseFuel:   80,
		BaseHarvest: 5,
		UnlockTech: scoutUnlock,
	},
	model.ShipFrigate: {
		Cost:        model.ResourceBundle{model.Metal: 120, model.Crystal: 40, model.Deuterium: 20},
		BaseBuild:   6,
		BaseHull:    120,
		BaseShield:  20,
		BaseWeapon:  25,
		BaseSpeed:   1,
		CargoCap:    200,
		BaseFuel:    150,
		BaseHarvest: 0,
		UnlockTech:  techPtr(model.TechHullPlating),
		UnlockLevel: 1,
	},
	model.ShipCruiser: {
		Cost:        model.ResourceBundle{model.Metal: 350, model.Crystal: 150, model.Deuterium: 80},
		BaseBuild:   14,
		BaseHull:    400,
		BaseShield:  80,
		BaseWeapon:  70,
		BaseSpeed:   1,
		CargoCap:    400,
		BaseFuel:    300,
		BaseHarvest: 0,
		UnlockTech:  techPtr(model.TechWeapons),
		UnlockLevel: 2,
	},
	model.ShipBattleship: {
		Cost:        model.ResourceBundle{model.Metal: 900, model.Crystal: 400, model.Deuterium: 250},
		BaseBuild:   30,
		BaseHull:    1200,
		BaseShield:  250,
		BaseWeapon:  180,
		BaseSpeed:   1,
		CargoCap:    600,
		BaseFuel:    600,
		BaseHarvest: 0,
		UnlockTech:  techPtr(model.TechShielding),
		UnlockLevel: 5,
	},
	model.ShipHauler: {
		Cost:        model.ResourceBundle{model.Metal: 150, model.Crystal: 60, model.Deuterium: 30},
		BaseBuild:   8,
		BaseHull:    150,
		BaseShield:  10,
		BaseWeapon:  0,
		BaseSpeed:   1,
		CargoCap:    2000,
		BaseFuel:    200,
		BaseHarvest: 15,
		UnlockTech:  techPtr(model.TechFuelEfficiency),
		UnlockLevel: 1,
	},
	model.ShipHarvester: {
		Cost:        model.ResourceBundle{model.Metal: 180, model.Crystal: 90, model.Deuterium: 40},
		BaseBuild:   10,
		BaseHull:    180,
		BaseShield:  15,
		BaseWeapon:  0,
		BaseSpeed:   1,
		CargoCap:    1200,
		BaseFuel:    220,
		BaseHarvest: 50,
		UnlockTech:  techPtr(model.TechHarvestRate),
		UnlockLevel: 1,
	},
}

func techPtr(t model.ResearchTech) *model.ResearchTech { return &t }

// Spec returns a ship class's static spec.
func Spec(class model.ShipClass) ShipSpec { return shipSpecs[class] }

// BuiltShipStats returns the hull, shield, and weapon-power a freshly
// built ship of class should carry, with the owner's hull-plating,
// shielding, and weapons research modifiers applied on top of the
// class's base stats.
func BuiltShipStats(class model.ShipClass, hullPlatingLevel, shieldingLevel, weaponsLevel int) (hull, shield, weaponPower int) {
	spec := shipSpecs[class]
	hull = int(math.Round(float64(spec.BaseHull) * HullModifier(hullPlatingLevel)))
	shield = int(math.Round(float64(spec.BaseShield) * ShieldModifier(shieldingLevel)))
	weaponPower = int(math.Round(float64(spec.BaseWeapon) * WeaponModifier(weaponsLevel)))
	return hull, shield, weaponPower
}

// ShipCost returns the resource cost to build count units of class.
func ShipCost(class model.ShipClass, count int) model.ResourceBundle {
	spec := shipSpecs[class]
	var out model.ResourceBundle
	for i, v := range spec.Cost {
		out[i] = v * int64(count)
	}
	return out
}

// ShipBuildTimePerUnit returns the ticks to build a single unit of
// class at a given shipyard level: base / (1 + 0.1 * shipyard_level).
func ShipBuildTimePerUnit(class model.ShipClass, shipyardLevel int) int {
	spec := shipSpecs[class]
	denom := 1 + 0.1*float64(shipyardLevel)
	t := float64(spec.BaseBuild) / denom
	if t < 1 {
		t = 1
	}
	return int(t + 0.5)
}

// IsUnlocked reports whether class is buildable given the player's
// research level in its unlock tech. Scout is always unlocked.
func IsUnlocked(class model.ShipClass, researchLevel func(model.ResearchTech) int) bool {
	spec := shipSpecs[class]
	if spec.UnlockTech == nil {
		return true
	}
	return researchLevel(*spec.UnlockTech) >= spec.UnlockLevel
}

// rapidFireTable maps (attacker class, target class) to a rapid-fire
// count. Entries absent from the map mean no rapid fire (count 0, i.e.
// a single shot).
var rapidFireTable = map[model.ShipClass]map[model.ShipClass]int{
	model.ShipFrigate: {
		model.ShipScout: 3,
	},
	model.ShipCruiser: {
		model.ShipScout:   4,
		model.ShipFrigate: 2,
	},
	model.ShipBattleship: {
		model.ShipScout:     6,
		model.ShipFrigate:   4,
		model.ShipCruiser:   2,
		model.ShipHauler:    5,
		model.ShipHarvester: 5,
	},
}

// RapidFireCount returns the rapid-fire multiplier for an attacker
// class firing at a target class. Zero means no rapid fire.
func RapidFireCount(attacker, target model.ShipClass) int {
	row, ok := rapidFireTable[attacker]
	if !ok {
		return 0
	}
	return row[target]
}

// FuelMaxForShips returns Σ baseFuel × extended-tanks-modifier ×
// fuel-depot-modifier over the given ship classes, per the data-model
// invariant on fuel_max.
func FuelMaxForShips(classes []model.ShipClass, extendedTanksLevel, fuelDepotLevel int) int64 {
	mod := FuelCapacityModifier(extendedTanksLevel) * FuelDepotModifier(fuelDepotLevel)
	var total int64
	for _, c := range classes {
		total += int64(float64(shipSpecs[c].BaseFuel) * mod)
	}
	return total
}

// HarvestPowerForShips returns the combined harvest power of a set of
// ship classes at a given harvest-rate research level.
func HarvestPowerForShips(classes []model.ShipClass, harvestRateLevel int) int64 {
	mod := HarvestRateModifier(harvestRateLevel)
	var total int64
	for _, c := range classes {
		total += int64(float64(shipSpecs[c].BaseHarvest) * mod)
	}
	return total
}

// MoveCooldownForShips returns the move cooldown, in ticks, for a
// fleet whose slowest ship has the given speed: BaseMoveCooldownTicks
// divided by speed (speed is the inverse of cooldown), minus the
// navigation reduction, saturating at a minimum of 1 tick.
func MoveCooldownForShips(slowestSpeed, navigationLevel int) int {
	if slowestSpeed < 1 {
		slowestSpeed = 1
	}
	cd := BaseMoveCooldownTicks/slowestSpeed - NavigationReduction(navigationLevel)
	if cd < 1 {
		cd = 1
	}
	return cd
}
