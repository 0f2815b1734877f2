package session

import (
	"encoding/json"
	"testing"

	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

func TestClientEnvelopeAuthRoundTrip(t *testing.T) {
	in := ClientEnvelope{Auth: &AuthPayload{PlayerName: "korin", Action: "register", Token: "secret"}}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out ClientEnvelope
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Auth == nil || *out.Auth != *in.Auth {
		t.Fatalf("auth payload changed across round trip: got %+v", out.Auth)
	}
	if out.Command != nil || out.PolicyUpdate != nil || out.RequestFullState != nil {
		t.Fatalf("unrelated envelope fields populated: %+v", out)
	}
}

func TestClientEnvelopeCommandRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		cmd  CommandPayload
	}{
		{"move", CommandPayload{Move: &MoveCmd{FleetID: 7, Direction: "ne"}}},
		{"harvest", CommandPayload{Harvest: &HarvestCmd{FleetID: 7, Resource: "crystal"}}},
		{"attack", CommandPayload{Attack: &AttackCmd{FleetID: 7}}},
		{"recall", CommandPayload{Recall: &RecallCmd{FleetID: 7}}},
		{"stop", CommandPayload{Stop: &StopCmd{FleetID: 7}}},
		{"collect_salvage", CommandPayload{CollectSalvage: &CollectSalvageCmd{FleetID: 7}}},
		{"build", CommandPayload{Build: &BuildCmd{BuildingType: "metal_mine"}}},
		{"research", CommandPayload{Research: &ResearchCmd{Tech: "hull_plating"}}},
		{"build_ship", CommandPayload{BuildShip: &BuildShipCmd{ShipClass: "frigate", Count: 3}}},
		{"cancel_build", CommandPayload{CancelBuild: &CancelBuildCmd{QueueType: "research"}}},
		{"create_fleet", CommandPayload{CreateFleet: &struct{}{}}},
		{"dissolve_fleet", CommandPayload{DissolveFleet: &DissolveFleetCmd{FleetID: 7}}},
		{"transfer_ship", CommandPayload{TransferShip: &TransferShipCmd{FleetID: 7, ShipID: 2}}},
		{"dock_ship", CommandPayload{DockShip: &DockShipCmd{FleetID: 7, ShipID: 2}}},
		{"scan", CommandPayload{Scan: &ScanCmd{Coord: CoordWire{Q: 3, R: -4}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(ClientEnvelope{Command: &tc.cmd})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out ClientEnvelope
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.Command == nil {
				t.Fatalf("command payload lost across round trip")
			}
			got, err := json.Marshal(out.Command)
			if err != nil {
				t.Fatalf("re-marshal: %v", err)
			}
			want, _ := json.Marshal(&tc.cmd)
			if string(got) != string(want) {
				t.Fatalf("command payload changed across round trip: got %s want %s", got, want)
			}
		})
	}
}

func TestClientEnvelopeOnlyOneVariantPopulatedOnDecode(t *testing.T) {
	raw := []byte(`{"request_full_state":{}}`)
	var env ClientEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.RequestFullState == nil {
		t.Fatal("expected RequestFullState to be populated")
	}
	if env.Auth != nil || env.Command != nil || env.PolicyUpdate != nil {
		t.Fatalf("expected every other field nil, got %+v", env)
	}
}

func TestServerEnvelopeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		env  ServerEnvelope
	}{
		{"auth_result", ServerEnvelope{AuthResult: &AuthResultMsg{OK: true, PlayerID: 9, Name: "korin"}}},
		{"error", ServerEnvelope{Error: &ErrorMsg{Code: 1001, Message: "bad fleet id"}}},
		{"scan_result", ServerEnvelope{ScanResult: &ScanResultMsg{Sector: SectorWire{
			Coord: CoordWire{Q: 1, R: 2}, Terrain: "nebula",
			Density: [3]string{"rich", "moderate", "sparse"},
		}}}},
		{"event", ServerEnvelope{Event: &EventMsg{Event: EventWire{Tick: 12, Kind: "building_completed", BuildingType: "metal_mine"}}}},
		{"tick_update", ServerEnvelope{TickUpdate: &TickUpdateMsg{
			Tick:      42,
			Player:    &PlayerWire{ID: 1, Name: "korin"},
			Fleets:    []FleetWire{{ID: 5, Status: "moving"}},
			Homeworld: &CoordWire{Q: 0, R: 0},
		}}},
		{"full_state", ServerEnvelope{FullState: &FullStateMsg{Tick: 1, Player: PlayerWire{ID: 1, Name: "korin"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.env)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out ServerEnvelope
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, _ := json.Marshal(out)
			want, _ := json.Marshal(tc.env)
			if string(got) != string(want) {
				t.Fatalf("envelope changed across round trip: got %s want %s", got, want)
			}
		})
	}
}

func TestWirePlayerIncludesLevelsAndQueues(t *testing.T) {
	p := &model.Player{
		ID:        3,
		Name:      "korin",
		Resources: model.ResourceBundle{model.Metal: 100, model.Crystal: 50, model.Deuterium: 10},
		Fragments: 4,
		Homeworld: hexcoord.Coord{Q: 1, R: -1},
		BuildQueue: &model.BuildQueue{
			Building:  model.BuildingMetalMine,
			StartTick: 10,
			EndTick:   20,
		},
		ResearchQueue: &model.ResearchQueue{
			Tech:      model.TechHullPlating,
			StartTick: 10,
			EndTick:   30,
		},
		ShipQueue: &model.ShipQueue{
			Class:     model.ShipFrigate,
			Count:     5,
			Built:     2,
			StartTick: 10,
			EndTick:   50,
		},
		DockedShips: []*model.Ship{{ID: 1, Class: model.ShipScout}, {ID: 2, Class: model.ShipScout}},
	}
	p.BuildingLevels[model.BuildingMetalMine] = 3
	p.ResearchLevels[model.TechHullPlating] = 2

	w := wirePlayer(p)

	if w.ID != 3 || w.Name != "korin" {
		if w.ID != 3 {
			t.Errorf("id = %d, want 3", w.ID)
		}
		if w.Name != "korin" {
			t.Errorf("name = %q, want korin", w.Name)
		}
	}
	if w.Resources != [3]int64{100, 50, 10} {
		t.Errorf("resources = %v", w.Resources)
	}
	if w.DockedShips != 2 {
		t.Errorf("docked ships = %d, want 2", w.DockedShips)
	}
	if got := w.BuildingLevels[model.BuildingMetalMine.String()]; got != 3 {
		t.Errorf("metal mine level = %d, want 3", got)
	}
	if got := w.ResearchLevels[model.TechHullPlating.String()]; got != 2 {
		t.Errorf("hull plating level = %d, want 2", got)
	}
	if w.BuildQueue == nil || w.BuildQueue.Kind != model.BuildingMetalMine.String() || w.BuildQueue.EndTick != 20 {
		t.Errorf("build queue wire = %+v", w.BuildQueue)
	}
	if w.ResearchQueue == nil || w.ResearchQueue.Kind != model.TechHullPlating.String() || w.ResearchQueue.EndTick != 30 {
		t.Errorf("research queue wire = %+v", w.ResearchQueue)
	}
	if w.ShipQueue == nil || w.ShipQueue.ShipClass != model.ShipFrigate.String() || w.ShipQueue.Built != 2 || w.ShipQueue.Count != 5 {
		t.Errorf("ship queue wire = %+v", w.ShipQueue)
	}
}

func TestWirePlayerOmitsQueuesWhenNil(t *testing.T) {
	p := &model.Player{ID: 1, Name: "idle"}
	w := wirePlayer(p)
	if w.BuildQueue != nil || w.ResearchQueue != nil || w.ShipQueue != nil {
		t.Fatalf("expected all queues nil, got %+v %+v %+v", w.BuildQueue, w.ResearchQueue, w.ShipQueue)
	}
}

func TestWireFleet(t *testing.T) {
	f := &model.Fleet{
		ID:       5,
		Location: hexcoord.Coord{Q: 2, R: 3},
		Status:   model.FleetIdle,
		Cargo:    model.ResourceBundle{model.Metal: 1, model.Crystal: 2, model.Deuterium: 3},
		CargoCap: 100,
		Fuel:     40,
		FuelMax:  80,
	}
	w := wireFleet(f)
	if w.ID != 5 || w.Location != (CoordWire{Q: 2, R: 3}) {
		t.Errorf("id/location wrong: %+v", w)
	}
	if w.Cargo != [3]int64{1, 2, 3} {
		t.Errorf("cargo wrong: %v", w.Cargo)
	}
	if w.CargoCap != 100 || w.Fuel != 40 || w.FuelMax != 80 {
		t.Errorf("capacity/fuel wrong: %+v", w)
	}
	if w.Status != model.FleetIdle.String() {
		t.Errorf("status = %q, want %q", w.Status, model.FleetIdle.String())
	}
}

func TestWireEventPopulatesOnlyRelevantFields(t *testing.T) {
	harvest := wireEvent(model.Event{
		Tick: 9, Kind: model.EventResourceHarvested, FleetID: 1,
		Resource: model.Crystal, Amount: 50,
	})
	if harvest.Resource != model.Crystal.String() || harvest.Amount != 50 {
		t.Errorf("harvest event wire = %+v", harvest)
	}
	if harvest.BuildingType != "" || harvest.Tech != "" || harvest.ShipClass != "" {
		t.Errorf("harvest event populated unrelated fields: %+v", harvest)
	}

	built := wireEvent(model.Event{Tick: 9, Kind: model.EventBuildingCompleted, BuildingType: model.BuildingCrystalMine, NewLevel: 2})
	if built.BuildingType != model.BuildingCrystalMine.String() || built.NewLevel != 2 {
		t.Errorf("building event wire = %+v", built)
	}
	if built.Resource != "" || built.Tech != "" {
		t.Errorf("building event populated unrelated fields: %+v", built)
	}

	researched := wireEvent(model.Event{Tick: 9, Kind: model.EventResearchCompleted, Tech: model.TechHullPlating, NewLevel: 1})
	if researched.Tech != model.TechHullPlating.String() {
		t.Errorf("research event wire = %+v", researched)
	}

	shipDone := wireEvent(model.Event{Tick: 9, Kind: model.EventShipCompleted, ShipClass: model.ShipFrigate})
	if shipDone.ShipClass != model.ShipFrigate.String() {
		t.Errorf("ship completed event wire = %+v", shipDone)
	}

	shipLost := wireEvent(model.Event{Tick: 9, Kind: model.EventShipDestroyed, ShipClass: model.ShipCruiser, ShipID: 4, PlayerVictory: true})
	if shipLost.ShipClass != model.ShipCruiser.String() || shipLost.ShipID != 4 || !shipLost.PlayerVictory {
		t.Errorf("ship destroyed event wire = %+v", shipLost)
	}

	entered := wireEvent(model.Event{Tick: 9, Kind: model.EventSectorEntered, FirstVisit: true, Coord: hexcoord.Coord{Q: 1, R: 1}})
	if !entered.FirstVisit || entered.Coord != (CoordWire{Q: 1, R: 1}) {
		t.Errorf("sector entered event wire = %+v", entered)
	}
	if entered.Resource != "" || entered.BuildingType != "" || entered.Tech != "" || entered.ShipClass != "" {
		t.Errorf("sector entered event populated unrelated fields: %+v", entered)
	}
}

func TestParseHelpersAcceptCanonicalStringsAndRejectGarbage(t *testing.T) {
	if _, ok := parseDirection("garbage"); ok {
		t.Error("parseDirection accepted garbage")
	}
	if d, ok := parseDirection("ne"); !ok || d != hexcoord.DirNE {
		t.Errorf("parseDirection(ne) = %v, %v", d, ok)
	}

	for _, rk := range model.Resources() {
		if got, ok := parseResource(rk.String()); !ok || got != rk {
			t.Errorf("parseResource(%s) = %v, %v", rk.String(), got, ok)
		}
	}
	if _, ok := parseResource("garbage"); ok {
		t.Error("parseResource accepted garbage")
	}

	for _, bt := range model.BuildingTypes() {
		if got, ok := parseBuildingType(bt.String()); !ok || got != bt {
			t.Errorf("parseBuildingType(%s) = %v, %v", bt.String(), got, ok)
		}
	}
	if _, ok := parseBuildingType("garbage"); ok {
		t.Error("parseBuildingType accepted garbage")
	}

	for _, tech := range model.ResearchTechs() {
		if got, ok := parseResearchTech(tech.String()); !ok || got != tech {
			t.Errorf("parseResearchTech(%s) = %v, %v", tech.String(), got, ok)
		}
	}
	if _, ok := parseResearchTech("garbage"); ok {
		t.Error("parseResearchTech accepted garbage")
	}

	for _, sc := range model.ShipClasses() {
		if got, ok := parseShipClass(sc.String()); !ok || got != sc {
			t.Errorf("parseShipClass(%s) = %v, %v", sc.String(), got, ok)
		}
	}
	if _, ok := parseShipClass("garbage"); ok {
		t.Error("parseShipClass accepted garbage")
	}

	for _, qk := range []model.QueueKind{model.QueueBuilding, model.QueueResearch, model.QueueShip} {
		if got, ok := parseQueueKind(qk.String()); !ok || got != qk {
			t.Errorf("parseQueueKind(%s) = %v, %v", qk.String(), got, ok)
		}
	}
	if _, ok := parseQueueKind("garbage"); ok {
		t.Error("parseQueueKind accepted garbage")
	}
}
