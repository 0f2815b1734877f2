// Package session is the network edge: it accepts WebSocket
// connections, frames and parses the JSON wire protocol, and marshals
// engine state into per-session projections. Nothing in this package
// mutates a model entity directly; every state change is routed
// through internal/engine's command handlers.
package session

import (
	"github.com/Vitadek/ownworld/internal/engine"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// ClientEnvelope is the tagged union a text frame decodes into.
// Exactly one of Auth, Command, PolicyUpdate, RequestFullState should
// be non-nil; everything else is a protocol error.
type ClientEnvelope struct {
	Auth             *AuthPayload    `json:"auth,omitempty"`
	Command          *CommandPayload `json:"command,omitempty"`
	PolicyUpdate     *PolicyUpdate   `json:"policy_update,omitempty"`
	RequestFullState *struct{}       `json:"request_full_state,omitempty"`
}

// AuthPayload carries a register or login attempt.
type AuthPayload struct {
	PlayerName string `json:"player_name"`
	Action     string `json:"action"` // "register" | "login"
	Token      string `json:"token"`
	ClientType string `json:"client_type,omitempty"`
}

// PolicyUpdate lets a client self-report a preference that affects
// what the session layer includes in future deltas (e.g. verbosity).
// The engine never sees this; it is session-local bookkeeping.
type PolicyUpdate struct {
	ClientType string `json:"client_type,omitempty"`
}

// CoordWire is the wire shape of a hex coordinate.
type CoordWire struct {
	Q int16 `json:"q"`
	R int16 `json:"r"`
}

func (c CoordWire) toCoord() hexcoord.Coord { return hexcoord.Coord{Q: c.Q, R: c.R} }

// CommandPayload is the tagged union of every player-issued action. A
// frame sets exactly one non-nil field.
type CommandPayload struct {
	Move           *MoveCmd           `json:"move,omitempty"`
	Harvest        *HarvestCmd        `json:"harvest,omitempty"`
	Attack         *AttackCmd         `json:"attack,omitempty"`
	Recall         *RecallCmd         `json:"recall,omitempty"`
	CollectSalvage *CollectSalvageCmd `json:"collect_salvage,omitempty"`
	Build          *BuildCmd          `json:"build,omitempty"`
	Research       *ResearchCmd       `json:"research,omitempty"`
	BuildShip      *BuildShipCmd      `json:"build_ship,omitempty"`
	CancelBuild    *CancelBuildCmd    `json:"cancel_build,omitempty"`
	CreateFleet    *struct{}          `json:"create_fleet,omitempty"`
	DissolveFleet  *DissolveFleetCmd  `json:"dissolve_fleet,omitempty"`
	TransferShip   *TransferShipCmd   `json:"transfer_ship,omitempty"`
	DockShip       *DockShipCmd       `json:"dock_ship,omitempty"`
	Scan           *ScanCmd           `json:"scan,omitempty"`
	// Stop is listed in the envelope enumeration as a bare tag with no
	// payload; it is wired as a synonym for Recall.
	Stop *StopCmd `json:"stop,omitempty"`
}

type ScanCmd struct {
	Coord CoordWire `json:"coord"`
}

type MoveCmd struct {
	FleetID   int64  `json:"fleet_id"`
	Direction string `json:"direction"`
}

type HarvestCmd struct {
	FleetID  int64  `json:"fleet_id"`
	Resource string `json:"resource"`
}

type AttackCmd struct {
	FleetID int64 `json:"fleet_id"`
}

type RecallCmd struct {
	FleetID int64 `json:"fleet_id"`
}

type StopCmd struct {
	FleetID int64 `json:"fleet_id"`
}

type CollectSalvageCmd struct {
	FleetID int64 `json:"fleet_id"`
}

type BuildCmd struct {
	BuildingType string `json:"building_type"`
}

type ResearchCmd struct {
	Tech string `json:"tech"`
}

type BuildShipCmd struct {
	ShipClass string `json:"ship_class"`
	Count     int    `json:"count"`
}

type CancelBuildCmd struct {
	QueueType string `json:"queue_type"`
}

type DissolveFleetCmd struct {
	FleetID int64 `json:"fleet_id"`
}

type TransferShipCmd struct {
	FleetID int64 `json:"fleet_id"`
	ShipID  int64 `json:"ship_id"`
}

type DockShipCmd struct {
	FleetID int64 `json:"fleet_id"`
	ShipID  int64 `json:"ship_id"`
}

// ServerEnvelope is the tagged union written out to a session.
// Exactly one field is populated per message.
type ServerEnvelope struct {
	AuthResult *AuthResultMsg `json:"auth_result,omitempty"`
	TickUpdate *TickUpdateMsg `json:"tick_update,omitempty"`
	FullState  *FullStateMsg  `json:"full_state,omitempty"`
	Event      *EventMsg      `json:"event,omitempty"`
	ScanResult *ScanResultMsg `json:"scan_result,omitempty"`
	Error      *ErrorMsg      `json:"error,omitempty"`
}

// ScanResultMsg answers a scan command with the merged sector view for
// a single coordinate. Scanning is a read, never a mutation, so it is
// answered directly rather than routed through the engine's command
// handlers.
type ScanResultMsg struct {
	Sector SectorWire `json:"sector"`
}

type AuthResultMsg struct {
	OK       bool   `json:"ok"`
	PlayerID int64  `json:"player_id,omitempty"`
	Name     string `json:"name,omitempty"`
}

type ErrorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TickUpdateMsg is the per-session delta built once per tick for every
// authenticated session.
type TickUpdateMsg struct {
	Tick      int64          `json:"tick"`
	Player    *PlayerWire    `json:"player,omitempty"`
	Fleets    []FleetWire    `json:"fleets,omitempty"`
	Sector    *SectorWire    `json:"sector,omitempty"`
	Homeworld *CoordWire     `json:"homeworld,omitempty"`
	Events    []EventWire    `json:"events,omitempty"`
}

// FullStateMsg is sent once per successful authentication and on an
// explicit request_full_state envelope.
type FullStateMsg struct {
	Tick   int64       `json:"tick"`
	Player PlayerWire  `json:"player"`
	Fleets []FleetWire `json:"fleets"`
}

type EventMsg struct {
	Event EventWire `json:"event"`
}

// PlayerWire is the arena-copied projection of a Player handed to its
// owning session. It never aliases engine-owned slices or maps.
type PlayerWire struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Resources      [3]int64         `json:"resources"`
	Fragments      int64            `json:"fragments"`
	Homeworld      CoordWire        `json:"homeworld"`
	BuildingLevels map[string]int   `json:"building_levels"`
	ResearchLevels map[string]int   `json:"research_levels"`
	DockedShips    int              `json:"docked_ships"`
	BuildQueue     *QueueWire       `json:"build_queue,omitempty"`
	ResearchQueue  *QueueWire       `json:"research_queue,omitempty"`
	ShipQueue      *ShipQueueWire   `json:"ship_queue,omitempty"`
}

type QueueWire struct {
	Kind      string `json:"kind"`
	StartTick int64  `json:"start_tick"`
	EndTick   int64  `json:"end_tick"`
}

type ShipQueueWire struct {
	ShipClass string `json:"ship_class"`
	Count     int    `json:"count"`
	Built     int    `json:"built"`
	StartTick int64  `json:"start_tick"`
	EndTick   int64  `json:"end_tick"`
}

type FleetWire struct {
	ID        int64     `json:"id"`
	Location  CoordWire `json:"location"`
	Status    string    `json:"status"`
	ShipCount int       `json:"ship_count"`
	Cargo     [3]int64  `json:"cargo"`
	CargoCap  int64     `json:"cargo_cap"`
	Fuel      int64     `json:"fuel"`
	FuelMax   int64     `json:"fuel_max"`
}

// SectorWire is the on-demand sector projection: procedural template
// merged with any override, plus the (hostile) NPC occupying it.
type SectorWire struct {
	Coord    CoordWire  `json:"coord"`
	Terrain  string     `json:"terrain"`
	Density  [3]string  `json:"density"`
	Salvage  *[3]int64  `json:"salvage,omitempty"`
	NPC      *NPCWire   `json:"npc,omitempty"`
}

type NPCWire struct {
	Behavior  string `json:"behavior"`
	ShipCount int    `json:"ship_count"`
}

type EventWire struct {
	Tick          int64     `json:"tick"`
	Kind          string    `json:"kind"`
	FleetID       int64     `json:"fleet_id,omitempty"`
	Coord         CoordWire `json:"coord"`
	FirstVisit    bool      `json:"first_visit,omitempty"`
	Resource      string    `json:"resource,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	BuildingType  string    `json:"building_type,omitempty"`
	Tech          string    `json:"tech,omitempty"`
	ShipClass     string    `json:"ship_class,omitempty"`
	NewLevel      int       `json:"new_level,omitempty"`
	ShipID        int64     `json:"ship_id,omitempty"`
	PlayerVictory bool      `json:"player_victory,omitempty"`
}

func wireEvent(ev model.Event) EventWire {
	w := EventWire{
		Tick: ev.Tick, Kind: string(ev.Kind), FleetID: ev.FleetID,
		Coord: CoordWire{Q: ev.Coord.Q, R: ev.Coord.R}, FirstVisit: ev.FirstVisit,
		Amount: ev.Amount, NewLevel: ev.NewLevel, ShipID: ev.ShipID,
		PlayerVictory: ev.PlayerVictory,
	}
	if ev.Kind == model.EventResourceHarvested || ev.Kind == model.EventSalvageCollected {
		w.Resource = ev.Resource.String()
	}
	if ev.Kind == model.EventBuildingCompleted {
		w.BuildingType = ev.BuildingType.String()
	}
	if ev.Kind == model.EventResearchCompleted {
		w.Tech = ev.Tech.String()
	}
	if ev.Kind == model.EventShipCompleted || ev.Kind == model.EventShipDestroyed {
		w.ShipClass = ev.ShipClass.String()
	}
	return w
}

func wirePlayer(p *model.Player) PlayerWire {
	buildings := make(map[string]int, len(model.BuildingTypes()))
	for _, bt := range model.BuildingTypes() {
		buildings[bt.String()] = p.BuildingLevel(bt)
	}
	research := make(map[string]int, len(model.ResearchTechs()))
	for _, t := range model.ResearchTechs() {
		research[t.String()] = p.ResearchLevel(t)
	}
	pw := PlayerWire{
		ID: p.ID, Name: p.Name,
		Resources: [3]int64{p.Resources[model.Metal], p.Resources[model.Crystal], p.Resources[model.Deuterium]},
		Fragments: p.Fragments,
		Homeworld: CoordWire{Q: p.Homeworld.Q, R: p.Homeworld.R},
		BuildingLevels: buildings, ResearchLevels: research,
		DockedShips: len(p.DockedShips),
	}
	if p.BuildQueue != nil {
		pw.BuildQueue = &QueueWire{Kind: p.BuildQueue.Building.String(), StartTick: p.BuildQueue.StartTick, EndTick: p.BuildQueue.EndTick}
	}
	if p.ResearchQueue != nil {
		pw.ResearchQueue = &QueueWire{Kind: p.ResearchQueue.Tech.String(), StartTick: p.ResearchQueue.StartTick, EndTick: p.ResearchQueue.EndTick}
	}
	if p.ShipQueue != nil {
		pw.ShipQueue = &ShipQueueWire{
			ShipClass: p.ShipQueue.Class.String(), Count: p.ShipQueue.Count, Built: p.ShipQueue.Built,
			StartTick: p.ShipQueue.StartTick, EndTick: p.ShipQueue.EndTick,
		}
	}
	return pw
}

func wireFleet(f *model.Fleet) FleetWire {
	return FleetWire{
		ID: f.ID, Location: CoordWire{Q: f.Location.Q, R: f.Location.R}, Status: f.Status.String(),
		ShipCount: f.ShipCount,
		Cargo:     [3]int64{f.Cargo[model.Metal], f.Cargo[model.Crystal], f.Cargo[model.Deuterium]},
		CargoCap:  f.CargoCap, Fuel: f.Fuel, FuelMax: f.FuelMax,
	}
}

// wireSector builds the on-demand sector projection: procedural
// template merged with any override, plus whichever hostile content
// currently occupies the sector.
func wireSector(w *engine.Engine, c hexcoord.Coord) SectorWire {
	sec := engine.ProjectSector(w, c)
	out := SectorWire{
		Coord: CoordWire{Q: c.Q, R: c.R}, Terrain: sec.Terrain.String(),
		Density: [3]string{sec.Density[model.Metal].String(), sec.Density[model.Crystal].String(), sec.Density[model.Deuterium].String()},
	}
	if sec.Salvage != nil {
		bundle := [3]int64{sec.Salvage[model.Metal], sec.Salvage[model.Crystal], sec.Salvage[model.Deuterium]}
		out.Salvage = &bundle
	}
	if sec.NPC != nil {
		out.NPC = &NPCWire{Behavior: sec.NPC.Behavior.String(), ShipCount: sec.NPC.ShipCount}
	}
	return out
}
