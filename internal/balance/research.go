package balance

import (
	"math"

	"github.com/Vitadek/ownworld/internal/model"
)

// ResearchSpec is the static definition of one research track.
type ResearchSpec struct {
	BaseCost     model.ResourceBundle
	BaseFragment int64 // fragment cost at level 1, scales with level like BaseCost
	BaseTime     int   // ticks
}

var researchSpecs = map[model.ResearchTech]ResearchSpec{
	model.TechHullPlating: {
		BaseCost:     model.ResourceBundle{model.Metal: 100, model.Crystal: 50, model.Deuterium: 0},
		BaseFragment: 2,
		BaseTime:     6,
	},
	model.TechShielding: {
		BaseCost:     model.ResourceBundle{model.Metal: 80, model.Crystal: 80, model.Deuterium: 0},
		BaseFragment: 2,
		BaseTime:     6,
	},
	model.TechWeapons: {
		BaseCost:     model.ResourceBundle{model.Metal: 120, model.Crystal: 60, model.Deuterium: 0},
		BaseFragment: 3,
		BaseTime:     7,
	},
	model.TechFuelEfficiency: {
		BaseCost:     model.ResourceBundle{model.Metal: 60, model.Crystal: 40, model.Deuterium: 20},
		BaseFragment: 1,
		BaseTime:     5,
	},
	model.TechExtendedTanks: {
		BaseCost:     model.ResourceBundle{model.Metal: 70, model.Crystal: 30, model.Deuterium: 30},
		BaseFragment: 1,
		BaseTime:     5,
	},
	model.TechFuelDepotTech: {
		BaseCost:     model.ResourceBundle{model.Metal: 90, model.Crystal: 45, model.Deuterium: 45},
		BaseFragment: 2,
		BaseTime:     6,
	},
	model.TechHarvestRate: {
		BaseCost:     model.ResourceBundle{model.Metal: 110, model.Crystal: 55, model.Deuterium: 0},
		BaseFragment: 2,
		BaseTime:     6,
	},
	model.TechNavigation: {
		BaseCost:     model.ResourceBundle{model.Metal: 50, model.Crystal: 25, model.Deuterium: 0},
		BaseFragment: 1,
		BaseTime:     4,
	},
	model.TechEmergencyJump: {
		BaseCost:     model.ResourceBundle{model.Metal: 150, model.Crystal: 100, model.Deuterium: 50},
		BaseFragment: 4,
		BaseTime:     9,
	},
}

// ResearchCostForLevel returns the resource cost to advance a research
// track to targetLevel.
func ResearchCostForLevel(tech model.ResearchTech, targetLevel int) model.ResourceBundle {
	spec := researchSpecs[tech]
	var out model.ResourceBundle
	for i, v := range spec.BaseCost {
		out[i] = v * int64(targetLevel)
	}
	return out
}

// ResearchFragmentCostForLevel returns the fragment cost to advance a
// research track to targetLevel.
func ResearchFragmentCostForLevel(tech model.ResearchTech, targetLevel int) int64 {
	return researchSpecs[tech].BaseFragment * int64(targetLevel)
}

// ResearchTimeForLevel returns ticks required: base * level * 1.5^level.
func ResearchTimeForLevel(tech model.ResearchTech, targetLevel int) int {
	spec := researchSpecs[tech]
	scale := math.Pow(1.5, float64(targetLevel))
	return int(math.Round(float64(spec.BaseTime) * float64(targetLevel) * scale))
}

// HullModifier returns the hull-point multiplier from hull-plating
// research: +10% per level.
func HullModifier(level int) float64 { return 1 + 0.10*float64(level) }

// ShieldModifier returns the shield-point multiplier from shielding
// research: +10% per level.
func ShieldModifier(level int) float64 { return 1 + 0.10*float64(level) }

// WeaponModifier returns the weapon-power multiplier from weapons
// research: +10% per level.
func WeaponModifier(level int) float64 { return 1 + 0.10*float64(level) }

// FuelRateModifier returns the fuel-consumption multiplier from
// fuel-efficiency research: -10% per level, never going below 10% of
// base consumption.
func FuelRateModifier(level int) float64 {
	m := 1 - 0.10*float64(level)
	if m < 0.10 {
		return 0.10
	}
	return m
}

// FuelCapacityModifier returns the fuel-capacity multiplier from
// extended-tanks research: +15% per level.
func FuelCapacityModifier(level int) float64 { return 1 + 0.15*float64(level) }

// FuelDepotModifier returns the fuel-capacity multiplier contributed
// by the fuel depot building: +10% per building level.
func FuelDepotModifier(level int) float64 { return 1 + 0.10*float64(level) }

// HarvestRateModifier returns the harvest-power multiplier from
// harvest-rate research: +20% per level.
func HarvestRateModifier(level int) float64 { return 1 + 0.20*float64(level) }

// NavigationReduction returns the number of ticks shaved off a move
// cooldown per navigation level. Callers must saturate the result at 0
// when applying it.
func NavigationReduction(level int) int { return level }

// EmergencyJumpReduction returns the reduction, in probability points,
// to recall damage chance per emergency-jump level: -5% per level.
func EmergencyJumpReduction(level int) float64 { return 0.05 * float64(level) }
