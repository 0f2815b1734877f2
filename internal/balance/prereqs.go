package balance

import "github.com/Vitadek/ownworld/internal/model"

// PrereqEdge names one requirement: the named building or research
// track must be at or above Level.
type PrereqEdge struct {
	Kind  TrackKind
	Build model.BuildingType
	Tech  model.ResearchTech
	Level int
}

// LevelSource answers "what level is this player at" for buildings and
// research, so the DAG can be evaluated without depending on
// internal/model's concrete Player type.
type LevelSource interface {
	BuildingLevel(model.BuildingType) int
	ResearchLevel(model.ResearchTech) int
}

// buildingPrereqs and researchPrereqs together form the project's
// prerequisite DAG. Neither control-flow branch in the engine ever
// hard-codes one of these edges: Evaluate is the only way in.
var buildingPrereqs = map[model.BuildingType][]PrereqEdge{
	model.BuildingShipyard: {
		{Kind: TrackBuilding, Build: model.BuildingMetalMine, Level: 2},
	},
	model.BuildingResearchLab: {
		{Kind: TrackBuilding, Build: model.BuildingCrystalMine, Level: 2},
	},
	model.BuildingFuelDepot: {
		{Kind: TrackBuilding, Build: model.BuildingDeuteriumSynthesizer, Level: 2},
	},
}

var researchPrereqs = map[model.ResearchTech][]PrereqEdge{
	model.TechShielding: {
		{Kind: TrackResearch, Tech: model.TechHullPlating, Level: 1},
	},
	model.TechWeapons: {
		{Kind: TrackResearch, Tech: model.TechHullPlating, Level: 1},
	},
	model.TechExtendedTanks: {
		{Kind: TrackResearch, Tech: model.TechFuelEfficiency, Level: 1},
	},
	model.TechFuelDepotTech: {
		{Kind: TrackResearch, Tech: model.TechFuelEfficiency, Level: 2},
	},
	model.TechEmergencyJump: {
		{Kind: TrackResearch, Tech: model.TechNavigation, Level: 3},
		{Kind: TrackResearch, Tech: model.TechShielding, Level: 2},
	},
}

// BuildingPrereqsMet evaluates whether every prerequisite edge for a
// building track is satisfied.
func BuildingPrereqsMet(bt model.BuildingType, src LevelSource) bool {
	return evaluate(buildingPrereqs[bt], src)
}

// ResearchPrereqsMet evaluates whether every prerequisite edge for a
// research track is satisfied.
func ResearchPrereqsMet(tech model.ResearchTech, src LevelSource) bool {
	return evaluate(researchPrereqs[tech], src)
}

func evaluate(edges []PrereqEdge, src LevelSource) bool {
	for _, e := range edges {
		switch e.Kind {
		case TrackBuilding:
			if src.BuildingLevel(e.Build) < e.Level {
				return false
			}
		case TrackResearch:
			if src.ResearchLevel(e.Tech) < e.Level {
				return false
			}
		}
	}
	return true
}
