package store

import (
	"testing"

	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// setupTestStore opens an on-disk temp database (SQLite's :memory: DSN
// does not survive Open's Conn pooling cleanly under WAL query params)
// and bootstraps the schema for isolated testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir + "/test.db")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func samplePlayer() *model.Player {
	p := &model.Player{
		ID:              1,
		Name:            "alpha",
		Resources:       model.ResourceBundle{500, 500, 200},
		Fragments:       0,
		Homeworld:       hexcoord.Coord{Q: 0, R: 0},
		TokenHash:       []byte("tokenhash"),
		CreatedAtUnix:   1000,
		LastLoginAtUnix: 1000,
	}
	p.BuildingLevels[model.BuildingMetalMine] = 3
	p.ResearchLevels[model.TechHullPlating] = 1
	p.BuildQueue = &model.BuildQueue{Building: model.BuildingCrystalMine, StartTick: 10, EndTick: 40}
	p.DockedShips = []*model.Ship{
		{ID: 101, Class: model.ShipScout, Hull: 50, HullMax: 50, Shield: 10, ShieldMax: 10, WeaponPower: 5, Speed: 3},
	}
	return p
}

func TestBootstrapIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Bootstrap(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
}

func TestUpsertPlayerRoundTrips(t *testing.T) {
	s := setupTestStore(t)
	p := samplePlayer()

	tx, err := s.BeginImmediate()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.UpsertPlayer(p); err != nil {
		t.Fatalf("upsert player: %v", err)
	}
	if err := tx.UpsertServerState(42, 200, 0xdeadbeef); err != nil {
		t.Fatalf("upsert server state: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap, err := s.LoadAtStartup()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.CurrentTick != 42 || snap.NextID != 200 || snap.WorldSeed != 0xdeadbeef {
		t.Fatalf("server state mismatch: %+v", snap)
	}
	if len(snap.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(snap.Players))
	}
	got := snap.Players[0]
	if got.Name != "alpha" || got.Resources != p.Resources {
		t.Fatalf("player mismatch: %+v", got)
	}
	if got.BuildingLevels[model.BuildingMetalMine] != 3 {
		t.Fatalf("building level not persisted: %+v", got.BuildingLevels)
	}
	if got.BuildQueue == nil || got.BuildQueue.Building != model.BuildingCrystalMine || got.BuildQueue.EndTick != 40 {
		t.Fatalf("build queue not persisted: %+v", got.BuildQueue)
	}
	if len(got.DockedShips) != 1 || got.DockedShips[0].Class != model.ShipScout {
		t.Fatalf("docked ships not persisted: %+v", got.DockedShips)
	}
}

func TestUpsertFleetReplacesShipSet(t *testing.T) {
	s := setupTestStore(t)

	f := &model.Fleet{
		ID: 7, PlayerID: 1, Location: hexcoord.Coord{Q: 2, R: -1}, Status: model.FleetIdle,
		Ships:     []*model.Ship{{ID: 1, Class: model.ShipFrigate, Hull: 100, HullMax: 100, Shield: 20, ShieldMax: 20, WeaponPower: 12, Speed: 2}},
		ShipCount: 1, FuelMax: 500, Fuel: 500,
	}

	tx, _ := s.BeginImmediate()
	if err := tx.UpsertFleet(f); err != nil {
		t.Fatalf("upsert fleet: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Shrink the roster and re-upsert; the stale ship row must be gone.
	f.Ships = []*model.Ship{{ID: 2, Class: model.ShipCruiser, Hull: 200, HullMax: 200, Shield: 40, ShieldMax: 40, WeaponPower: 30, Speed: 2}}
	f.ShipCount = 1
	tx2, _ := s.BeginImmediate()
	if err := tx2.UpsertFleet(f); err != nil {
		t.Fatalf("re-upsert fleet: %v", err)
	}
	if err := tx2.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap, err := s.LoadAtStartup()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Fleets) != 1 {
		t.Fatalf("expected 1 fleet, got %d", len(snap.Fleets))
	}
	got := snap.Fleets[0]
	if len(got.Ships) != 1 || got.Ships[0].Class != model.ShipCruiser {
		t.Fatalf("expected only the replacement ship, got %+v", got.Ships)
	}
}

func TestDeleteFleetRemovesItsShips(t *testing.T) {
	s := setupTestStore(t)
	f := &model.Fleet{
		ID: 9, PlayerID: 1, Location: hexcoord.Coord{Q: 0, R: 0},
		Ships:     []*model.Ship{{ID: 3, Class: model.ShipHauler, Hull: 80, HullMax: 80, Speed: 2}},
		ShipCount: 1,
	}
	tx, _ := s.BeginImmediate()
	_ = tx.UpsertFleet(f)
	_ = tx.Commit()

	tx2, _ := s.BeginImmediate()
	if err := tx2.DeleteFleet(9); err != nil {
		t.Fatalf("delete fleet: %v", err)
	}
	if err := tx2.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap, err := s.LoadAtStartup()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Fleets) != 0 {
		t.Fatalf("expected fleet to be gone, got %d", len(snap.Fleets))
	}
}

func TestUpsertSectorPersistsDensityOverrideAndSalvage(t *testing.T) {
	s := setupTestStore(t)
	rich := model.DensityRich
	despawnTick := int64(500)
	so := &model.SectorOverride{
		Coord:              hexcoord.Coord{Q: 5, R: 5},
		HarvestAccum:       model.ResourceBundle{100, 0, 0},
		Salvage:            &model.ResourceBundle{20, 10, 0},
		SalvageDespawnTick: despawnTick,
	}
	so.DensityOverride[model.Metal] = &rich

	tx, _ := s.BeginImmediate()
	if err := tx.UpsertSector(so); err != nil {
		t.Fatalf("upsert sector: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap, err := s.LoadAtStartup()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Sectors) != 1 {
		t.Fatalf("expected 1 sector, got %d", len(snap.Sectors))
	}
	got := snap.Sectors[0]
	if got.DensityOverride[model.Metal] == nil || *got.DensityOverride[model.Metal] != model.DensityRich {
		t.Fatalf("density override not persisted: %+v", got.DensityOverride)
	}
	if got.Salvage == nil || got.Salvage[model.Metal] != 20 || got.SalvageDespawnTick != despawnTick {
		t.Fatalf("salvage not persisted: %+v", got.Salvage)
	}
}

func TestInsertExploredEdgeIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	rec := model.ExploredEdgeRecord{PlayerID: 1, A: hexcoord.Coord{Q: 0, R: 0}, B: hexcoord.Coord{Q: 1, R: 0}, DiscoveredTick: 5}

	tx, _ := s.BeginImmediate()
	if err := tx.InsertExploredEdge(rec); err != nil {
		t.Fatalf("insert edge: %v", err)
	}
	if err := tx.InsertExploredEdge(rec); err != nil {
		t.Fatalf("re-insert edge: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap, err := s.LoadAtStartup()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.ExploredEdges) != 1 {
		t.Fatalf("expected exactly 1 edge row, got %d", len(snap.ExploredEdges))
	}
}

func TestRecoverySnapshotRoundTripsAndDetectsCorruption(t *testing.T) {
	s := setupTestStore(t)
	snap := &Snapshot{CurrentTick: 99, NextID: 5, WorldSeed: 123, Players: []*model.Player{samplePlayer()}}

	if err := s.WriteRecoverySnapshot(99, snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	got, err := s.LatestRecoverySnapshot()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if got == nil || got.CurrentTick != 99 || len(got.Players) != 1 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}

	if _, err := s.db.Exec(`UPDATE recovery_snapshots SET blob = blob || 'x' WHERE tick = 99`); err != nil {
		t.Fatalf("corrupt snapshot: %v", err)
	}
	if _, err := s.LatestRecoverySnapshot(); err == nil {
		t.Fatalf("expected integrity check to fail on corrupted blob")
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := setupTestStore(t)
	p := samplePlayer()

	tx, _ := s.BeginImmediate()
	if err := tx.UpsertPlayer(p); err != nil {
		t.Fatalf("upsert player: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	snap, err := s.LoadAtStartup()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Players) != 0 {
		t.Fatalf("expected rollback to discard the player, got %d", len(snap.Players))
	}
}
