package balance

import (
	"math"

	"github.com/Vitadek/ownworld/internal/model"
)

// BuildingSpec is the static definition of one building track: its
// base cost and base time, from which every level's cost and time are
// derived.
type BuildingSpec struct {
	BaseCost model.ResourceBundle
	BaseTime int // ticks
}

var buildingSpecs = map[model.BuildingType]BuildingSpec{
	model.BuildingMetalMine: {
		BaseCost: model.ResourceBundle{model.Metal: 60, model.Crystal: 15, model.Deuterium: 0},
		BaseTime: 4,
	},
	model.BuildingCrystalMine: {
		BaseCost: model.ResourceBundle{model.Metal: 48, model.Crystal: 24, model.Deuterium: 0},
		BaseTime: 4,
	},
	model.BuildingDeuteriumSynthesizer: {
		BaseCost: model.ResourceBundle{model.Metal: 75, model.Crystal: 30, model.Deuterium: 0},
		BaseTime: 5,
	},
	model.BuildingShipyard: {
		BaseCost: model.ResourceBundle{model.Metal: 200, model.Crystal: 100, model.Deuterium: 50},
		BaseTime: 8,
	},
	model.BuildingResearchLab: {
		BaseCost: model.ResourceBundle{model.Metal: 150, model.Crystal: 150, model.Deuterium: 0},
		BaseTime: 10,
	},
	model.BuildingFuelDepot: {
		BaseCost: model.ResourceBundle{model.Metal: 100, model.Crystal: 50, model.Deuterium: 100},
		BaseTime: 6,
	},
}

// BuildingCostForLevel returns the resource cost to advance a building
// to targetLevel, flat-scaled by the target level.
func BuildingCostForLevel(bt model.BuildingType, targetLevel int) model.ResourceBundle {
	spec := buildingSpecs[bt]
	var out model.ResourceBundle
	for i, v := range spec.BaseCost {
		out[i] = v * int64(targetLevel)
	}
	return out
}

// BuildingTimeForLevel returns the number of ticks required to reach
// targetLevel: base * level * 1.5^level.
func BuildingTimeForLevel(bt model.BuildingType, targetLevel int) int {
	spec := buildingSpecs[bt]
	scale := math.Pow(1.5, float64(targetLevel))
	return int(math.Round(float64(spec.BaseTime) * float64(targetLevel) * scale))
}

// baseProduction is the per-tick output at level 1 before the
// base * level * 1.1^level scaling curve is applied.
var baseProduction = map[model.BuildingType]int64{
	model.BuildingMetalMine:              8,
	model.BuildingCrystalMine:            5,
	model.BuildingDeuteriumSynthesizer:   4,
}

// BuildingProductionPerTick returns the per-tick output of one building
// at a given level: base * level * 1.1^level. Buildings with no direct
// production (shipyard, research lab, fuel depot) return a zero
// bundle; their effect is expressed through modifiers instead.
func BuildingProductionPerTick(bt model.BuildingType, level int) model.ResourceBundle {
	var out model.ResourceBundle
	base, ok := baseProduction[bt]
	if !ok || level <= 0 {
		return out
	}
	amount := int64(math.Round(float64(base) * float64(level) * math.Pow(1.1, float64(level))))
	switch bt {
	case model.BuildingMetalMine:
		out[model.Metal] = amount
	case model.BuildingCrystalMine:
		out[model.Crystal] = amount
	case model.BuildingDeuteriumSynthesizer:
		out[model.Deuterium] = amount
	}
	return out
}

// CancelRefund returns the fixed fraction of remaining cost refunded
// when a queued building, research, or ship order is cancelled.
func CancelRefund(remaining model.ResourceBundle) model.ResourceBundle {
	var out model.ResourceBundle
	for i, v := range remaining {
		out[i] = int64(float64(v) * CancelRefundFraction)
	}
	return out
}
