package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Vitadek/ownworld/internal/model"
)

// SQLiteStore is the default Store backend: a single local file with
// WAL journaling and a busy timeout so the tick thread's writer never
// deadlocks against a slow external reader.
type SQLiteStore struct {
	db *sql.DB
}

// Open connects to (and creates, if absent) the database file at path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Bootstrap() error {
	if _, err := s.db.Exec(schemaStatements); err != nil {
		return fmt.Errorf("store: bootstrap schema: %w", err)
	}
	return nil
}

// BeginImmediate acquires the write lock up front rather than on first
// write, closing the window where two flushes could interleave a
// read-then-upgrade. database/sql's Tx.Begin has no BEGIN IMMEDIATE
// option, so this pins a single raw connection and issues it directly.
func (s *SQLiteStore) BeginImmediate() (Tx, error) {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: acquire conn: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: begin immediate: %w", err)
	}
	return &sqliteTx{ctx: ctx, conn: conn}, nil
}

type sqliteTx struct {
	ctx  context.Context
	conn *sql.Conn
}

func (t *sqliteTx) exec(query string, args ...interface{}) (sql.Result, error) {
	return t.conn.ExecContext(t.ctx, query, args...)
}

func (t *sqliteTx) Commit() error {
	_, err := t.conn.ExecContext(t.ctx, "COMMIT")
	t.conn.Close()
	return err
}

func (t *sqliteTx) Rollback() error {
	_, err := t.conn.ExecContext(t.ctx, "ROLLBACK")
	t.conn.Close()
	return err
}

func (t *sqliteTx) UpsertServerState(currentTick int64, nextID int64, seed uint64) error {
	kv := map[string]string{
		"current_tick": strconv.FormatInt(currentTick, 10),
		"next_id":      strconv.FormatInt(nextID, 10),
		"world_seed":   strconv.FormatUint(seed, 10),
	}
	for k, v := range kv {
		if _, err := t.exec(
			`INSERT INTO server_state(key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("store: upsert server_state %s: %w", k, err)
		}
	}
	return nil
}

func (t *sqliteTx) UpsertPlayer(p *model.Player) error {
	_, err := t.exec(`
		INSERT INTO players(id, name, homeworld_q, homeworld_r, metal, crystal, deuterium, fragments, token_hash, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			metal = excluded.metal, crystal = excluded.crystal, deuterium = excluded.deuterium,
			fragments = excluded.fragments, token_hash = excluded.token_hash, last_login_at = excluded.last_login_at
	`, p.ID, p.Name, p.Homeworld.Q, p.Homeworld.R, p.Resources[model.Metal], p.Resources[model.Crystal],
		p.Resources[model.Deuterium], p.Fragments, p.TokenHash, p.CreatedAtUnix, p.LastLoginAtUnix)
	if err != nil {
		return fmt.Errorf("store: upsert player %d: %w", p.ID, err)
	}

	for _, bt := range model.BuildingTypes() {
		var startTick, endTick interface{}
		if p.BuildQueue != nil && p.BuildQueue.Building == bt {
			startTick, endTick = p.BuildQueue.StartTick, p.BuildQueue.EndTick
		}
		if _, err := t.exec(`
			INSERT INTO buildings(player_id, building_type, level, build_start_tick, build_end_tick)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(player_id, building_type) DO UPDATE SET
				level = excluded.level, build_start_tick = excluded.build_start_tick, build_end_tick = excluded.build_end_tick
		`, p.ID, int(bt), p.BuildingLevels[bt], startTick, endTick); err != nil {
			return fmt.Errorf("store: upsert building %d/%d: %w", p.ID, bt, err)
		}
	}

	for _, tech := range model.ResearchTechs() {
		var startTick, endTick interface{}
		if p.ResearchQueue != nil && p.ResearchQueue.Tech == tech {
			startTick, endTick = p.ResearchQueue.StartTick, p.ResearchQueue.EndTick
		}
		if _, err := t.exec(`
			INSERT INTO research(player_id, tech, level, research_start_tick, research_end_tick)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(player_id, tech) DO UPDATE SET
				level = excluded.level, research_start_tick = excluded.research_start_tick, research_end_tick = excluded.research_end_tick
		`, p.ID, int(tech), p.ResearchLevels[tech], startTick, endTick); err != nil {
			return fmt.Errorf("store: upsert research %d/%d: %w", p.ID, tech, err)
		}
	}

	if _, err := t.exec(`DELETE FROM ship_queues WHERE player_id = ?`, p.ID); err != nil {
		return fmt.Errorf("store: clear ship queue %d: %w", p.ID, err)
	}
	if q := p.ShipQueue; q != nil {
		if _, err := t.exec(`
			INSERT INTO ship_queues(player_id, ship_class, count, built, start_tick, end_tick)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, int(q.Class), q.Count, q.Built, q.StartTick, q.EndTick); err != nil {
			return fmt.Errorf("store: insert ship queue %d: %w", p.ID, err)
		}
	}

	if _, err := t.exec(`DELETE FROM ships WHERE player_id = ? AND fleet_id IS NULL`, p.ID); err != nil {
		return fmt.Errorf("store: clear docked ships %d: %w", p.ID, err)
	}
	for _, sh := range p.DockedShips {
		if err := t.insertShip(sh, nil, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqliteTx) UpsertFleet(f *model.Fleet) error {
	_, err := t.exec(`
		INSERT INTO fleets(id, player_id, q, r, state, fuel, fuel_max, cargo_metal, cargo_crystal, cargo_deuterium,
			move_cooldown, action_cooldown, move_target_q, move_target_r, idle_ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			player_id = excluded.player_id, q = excluded.q, r = excluded.r, state = excluded.state,
			fuel = excluded.fuel, fuel_max = excluded.fuel_max,
			cargo_metal = excluded.cargo_metal, cargo_crystal = excluded.cargo_crystal, cargo_deuterium = excluded.cargo_deuterium,
			move_cooldown = excluded.move_cooldown, action_cooldown = excluded.action_cooldown,
			move_target_q = excluded.move_target_q, move_target_r = excluded.move_target_r, idle_ticks = excluded.idle_ticks
	`, f.ID, f.PlayerID, f.Location.Q, f.Location.R, int(f.Status), f.Fuel, f.FuelMax,
		f.Cargo[model.Metal], f.Cargo[model.Crystal], f.Cargo[model.Deuterium],
		f.MoveCooldown, f.ActionCooldown, f.MoveTarget.Q, f.MoveTarget.R, f.IdleTicks)
	if err != nil {
		return fmt.Errorf("store: upsert fleet %d: %w", f.ID, err)
	}

	if _, err := t.exec(`DELETE FROM ships WHERE fleet_id = ?`, f.ID); err != nil {
		return fmt.Errorf("store: clear fleet ships %d: %w", f.ID, err)
	}
	for _, sh := range f.LiveShips() {
		if err := t.insertShip(sh, &f.ID, f.PlayerID); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqliteTx) DeleteFleet(id int64) error {
	if _, err := t.exec(`DELETE FROM fleets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete fleet %d: %w", id, err)
	}
	if _, err := t.exec(`DELETE FROM ships WHERE fleet_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete fleet ships %d: %w", id, err)
	}
	return nil
}

func (t *sqliteTx) insertShip(sh *model.Ship, fleetID *int64, playerID int64) error {
	_, err := t.exec(`
		INSERT INTO ships(id, fleet_id, player_id, class, hull, hull_max, shield, shield_max, weapon_power, speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sh.ID, fleetID, playerID, int(sh.Class), sh.Hull, sh.HullMax, sh.Shield, sh.ShieldMax, sh.WeaponPower, sh.Speed)
	if err != nil {
		return fmt.Errorf("store: insert ship %d: %w", sh.ID, err)
	}
	return nil
}

func (t *sqliteTx) UpsertSector(s *model.SectorOverride) error {
	var metalD, crystalD, deutD interface{}
	if s.DensityOverride[model.Metal] != nil {
		metalD = int(*s.DensityOverride[model.Metal])
	}
	if s.DensityOverride[model.Crystal] != nil {
		crystalD = int(*s.DensityOverride[model.Crystal])
	}
	if s.DensityOverride[model.Deuterium] != nil {
		deutD = int(*s.DensityOverride[model.Deuterium])
	}
	var salvageMetal, salvageCrystal, salvageDeut, salvageDespawn interface{}
	if s.Salvage != nil {
		salvageMetal = s.Salvage[model.Metal]
		salvageCrystal = s.Salvage[model.Crystal]
		salvageDeut = s.Salvage[model.Deuterium]
		salvageDespawn = s.SalvageDespawnTick
	}
	var npcCleared interface{}
	if s.NPCClearedTick != nil {
		npcCleared = *s.NPCClearedTick
	}

	_, err := t.exec(`
		INSERT INTO sectors_modified(q, r, metal_density, crystal_density, deut_density,
			metal_harvested, crystal_harvested, deut_harvested,
			salvage_metal, salvage_crystal, salvage_deuterium, salvage_despawn_tick, npc_cleared_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(q, r) DO UPDATE SET
			metal_density = excluded.metal_density, crystal_density = excluded.crystal_density, deut_density = excluded.deut_density,
			metal_harvested = excluded.metal_harvested, crystal_harvested = excluded.crystal_harvested, deut_harvested = excluded.deut_harvested,
			salvage_metal = excluded.salvage_metal, salvage_crystal = excluded.salvage_crystal, salvage_deuterium = excluded.salvage_deuterium,
			salvage_despawn_tick = excluded.salvage_despawn_tick, npc_cleared_tick = excluded.npc_cleared_tick
	`, s.Coord.Q, s.Coord.R, metalD, crystalD, deutD,
		s.HarvestAccum[model.Metal], s.HarvestAccum[model.Crystal], s.HarvestAccum[model.Deuterium],
		salvageMetal, salvageCrystal, salvageDeut, salvageDespawn, npcCleared)
	if err != nil {
		return fmt.Errorf("store: upsert sector (%d,%d): %w", s.Coord.Q, s.Coord.R, err)
	}
	return nil
}

func (t *sqliteTx) InsertExploredEdge(rec model.ExploredEdgeRecord) error {
	_, err := t.exec(`
		INSERT OR IGNORE INTO explored_edges(player_id, q1, r1, q2, r2, discovered_tick)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.PlayerID, rec.A.Q, rec.A.R, rec.B.Q, rec.B.R, rec.DiscoveredTick)
	if err != nil {
		return fmt.Errorf("store: insert explored edge: %w", err)
	}
	return nil
}

// WriteRecoverySnapshot stores a compressed, integrity-hashed copy of
// the full snapshot, independent of the incremental dirty-set flush.
// It opens and commits its own transaction; callers do not need an
// open Tx.
func (s *SQLiteStore) WriteRecoverySnapshot(tick int64, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}
	blob := compressSnapshot(raw)
	hash := integrityHash(blob)
	_, err = s.db.Exec(`
		INSERT INTO recovery_snapshots(tick, blob, blob_hash) VALUES (?, ?, ?)
		ON CONFLICT(tick) DO UPDATE SET blob = excluded.blob, blob_hash = excluded.blob_hash
	`, tick, blob, hash)
	if err != nil {
		return fmt.Errorf("store: write recovery snapshot: %w", err)
	}
	return nil
}

// LatestRecoverySnapshot loads and verifies the most recent recovery
// snapshot, for use when the incremental tables are judged unusable.
// A hash mismatch is returned as an error rather than silently
// accepted; the caller decides whether to fall back further.
func (s *SQLiteStore) LatestRecoverySnapshot() (*Snapshot, error) {
	var tick int64
	var blob []byte
	var hash string
	err := s.db.QueryRow(`SELECT tick, blob, blob_hash FROM recovery_snapshots ORDER BY tick DESC LIMIT 1`).
		Scan(&tick, &blob, &hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load recovery snapshot: %w", err)
	}
	if integrityHash(blob) != hash {
		return nil, fmt.Errorf("store: recovery snapshot at tick %d failed integrity check", tick)
	}
	raw, err := decompressSnapshot(blob)
	if err != nil {
		return nil, fmt.Errorf("store: decompress recovery snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("store: unmarshal recovery snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) LoadAtStartup() (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := s.db.Query(`SELECT key, value FROM server_state`)
	if err != nil {
		return nil, fmt.Errorf("store: load server_state: %w", err)
	}
	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan server_state: %w", err)
		}
		kv[k] = v
	}
	rows.Close()
	if v, ok := kv["current_tick"]; ok {
		snap.CurrentTick, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := kv["next_id"]; ok {
		snap.NextID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := kv["world_seed"]; ok {
		seed, _ := strconv.ParseUint(v, 10, 64)
		snap.WorldSeed = seed
	}

	if snap.Players, err = s.loadPlayers(); err != nil {
		return nil, err
	}
	if snap.Fleets, err = s.loadFleets(); err != nil {
		return nil, err
	}
	if snap.Sectors, err = s.loadSectors(); err != nil {
		return nil, err
	}
	if snap.ExploredEdges, err = s.loadExploredEdges(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) loadPlayers() ([]*model.Player, error) {
	rows, err := s.db.Query(`SELECT id, name, homeworld_q, homeworld_r, metal, crystal, deuterium, fragments, token_hash, created_at, last_login_at FROM players`)
	if err != nil {
		return nil, fmt.Errorf("store: load players: %w", err)
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		p := &model.Player{}
		var hq, hr int16
		if err := rows.Scan(&p.ID, &p.Name, &hq, &hr, &p.Resources[model.Metal], &p.Resources[model.Crystal],
			&p.Resources[model.Deuterium], &p.Fragments, &p.TokenHash, &p.CreatedAtUnix, &p.LastLoginAtUnix); err != nil {
			return nil, fmt.Errorf("store: scan player: %w", err)
		}
		p.Homeworld = decodeCoordKey(hq, hr)
		players = append(players, p)
	}

	for _, p := range players {
		if err := s.loadPlayerBuildings(p); err != nil {
			return nil, err
		}
		if err := s.loadPlayerResearch(p); err != nil {
			return nil, err
		}
		if err := s.loadPlayerShipQueue(p); err != nil {
			return nil, err
		}
		docked, err := s.loadShipsByFilter(`fleet_id IS NULL AND player_id = ?`, p.ID)
		if err != nil {
			return nil, err
		}
		p.DockedShips = docked
	}
	return players, nil
}

func (s *SQLiteStore) loadPlayerBuildings(p *model.Player) error {
	rows, err := s.db.Query(`SELECT building_type, level, build_start_tick, build_end_tick FROM buildings WHERE player_id = ?`, p.ID)
	if err != nil {
		return fmt.Errorf("store: load buildings %d: %w", p.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var bt, level int
		var start, end sql.NullInt64
		if err := rows.Scan(&bt, &level, &start, &end); err != nil {
			return fmt.Errorf("store: scan building: %w", err)
		}
		p.BuildingLevels[model.BuildingType(bt)] = level
		if start.Valid && end.Valid {
			p.BuildQueue = &model.BuildQueue{Building: model.BuildingType(bt), StartTick: start.Int64, EndTick: end.Int64}
		}
	}
	return nil
}

func (s *SQLiteStore) loadPlayerResearch(p *model.Player) error {
	rows, err := s.db.Query(`SELECT tech, level, research_start_tick, research_end_tick FROM research WHERE player_id = ?`, p.ID)
	if err != nil {
		return fmt.Errorf("store: load research %d: %w", p.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var tech, level int
		var start, end sql.NullInt64
		if err := rows.Scan(&tech, &level, &start, &end); err != nil {
			return fmt.Errorf("store: scan research: %w", err)
		}
		p.ResearchLevels[model.ResearchTech(tech)] = level
		if start.Valid && end.Valid {
			p.ResearchQueue = &model.ResearchQueue{Tech: model.ResearchTech(tech), StartTick: start.Int64, EndTick: end.Int64}
		}
	}
	return nil
}

func (s *SQLiteStore) loadPlayerShipQueue(p *model.Player) error {
	var class, count, built int
	var start, end int64
	err := s.db.QueryRow(`SELECT ship_class, count, built, start_tick, end_tick FROM ship_queues WHERE player_id = ?`, p.ID).
		Scan(&class, &count, &built, &start, &end)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: load ship queue %d: %w", p.ID, err)
	}
	p.ShipQueue = &model.ShipQueue{Class: model.ShipClass(class), Count: count, Built: built, StartTick: start, EndTick: end}
	return nil
}

func (s *SQLiteStore) loadFleets() ([]*model.Fleet, error) {
	rows, err := s.db.Query(`
		SELECT id, player_id, q, r, state, fuel, fuel_max, cargo_metal, cargo_crystal, cargo_deuterium,
			move_cooldown, action_cooldown, move_target_q, move_target_r, idle_ticks
		FROM fleets`)
	if err != nil {
		return nil, fmt.Errorf("store: load fleets: %w", err)
	}
	defer rows.Close()

	var fleets []*model.Fleet
	for rows.Next() {
		f := &model.Fleet{}
		var q, r int16
		var state int
		var mtq, mtr sql.NullInt64
		if err := rows.Scan(&f.ID, &f.PlayerID, &q, &r, &state, &f.Fuel, &f.FuelMax,
			&f.Cargo[model.Metal], &f.Cargo[model.Crystal], &f.Cargo[model.Deuterium],
			&f.MoveCooldown, &f.ActionCooldown, &mtq, &mtr, &f.IdleTicks); err != nil {
			return nil, fmt.Errorf("store: scan fleet: %w", err)
		}
		f.Location = decodeCoordKey(q, r)
		f.Status = model.FleetStatus(state)
		if mtq.Valid && mtr.Valid {
			f.MoveTarget = decodeCoordKey(int16(mtq.Int64), int16(mtr.Int64))
		}
		fleets = append(fleets, f)
	}

	for _, f := range fleets {
		ships, err := s.loadShipsByFilter(`fleet_id = ?`, f.ID)
		if err != nil {
			return nil, err
		}
		f.Ships = ships
		f.ShipCount = len(ships)
	}
	return fleets, nil
}

func (s *SQLiteStore) loadShipsByFilter(where string, arg interface{}) ([]*model.Ship, error) {
	rows, err := s.db.Query(`SELECT id, class, hull, hull_max, shield, shield_max, weapon_power, speed FROM ships WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("store: load ships: %w", err)
	}
	defer rows.Close()
	var ships []*model.Ship
	for rows.Next() {
		sh := &model.Ship{}
		var class int
		if err := rows.Scan(&sh.ID, &class, &sh.Hull, &sh.HullMax, &sh.Shield, &sh.ShieldMax, &sh.WeaponPower, &sh.Speed); err != nil {
			return nil, fmt.Errorf("store: scan ship: %w", err)
		}
		sh.Class = model.ShipClass(class)
		ships = append(ships, sh)
	}
	return ships, nil
}

func (s *SQLiteStore) loadSectors() ([]*model.SectorOverride, error) {
	rows, err := s.db.Query(`
		SELECT q, r, metal_density, crystal_density, deut_density,
			metal_harvested, crystal_harvested, deut_harvested,
			salvage_metal, salvage_crystal, salvage_deuterium, salvage_despawn_tick, npc_cleared_tick
		FROM sectors_modified`)
	if err != nil {
		return nil, fmt.Errorf("store: load sectors: %w", err)
	}
	defer rows.Close()

	var sectors []*model.SectorOverride
	for rows.Next() {
		so := &model.SectorOverride{}
		var q, r int16
		var metalD, crystalD, deutD sql.NullInt64
		var salvageMetal, salvageCrystal, salvageDeut, salvageDespawn, npcCleared sql.NullInt64
		if err := rows.Scan(&q, &r, &metalD, &crystalD, &deutD,
			&so.HarvestAccum[model.Metal], &so.HarvestAccum[model.Crystal], &so.HarvestAccum[model.Deuterium],
			&salvageMetal, &salvageCrystal, &salvageDeut, &salvageDespawn, &npcCleared); err != nil {
			return nil, fmt.Errorf("store: scan sector: %w", err)
		}
		so.Coord = decodeCoordKey(q, r)
		if metalD.Valid {
			d := model.Density(metalD.Int64)
			so.DensityOverride[model.Metal] = &d
		}
		if crystalD.Valid {
			d := model.Density(crystalD.Int64)
			so.DensityOverride[model.Crystal] = &d
		}
		if deutD.Valid {
			d := model.Density(deutD.Int64)
			so.DensityOverride[model.Deuterium] = &d
		}
		if salvageMetal.Valid {
			bundle := model.ResourceBundle{salvageMetal.Int64, salvageCrystal.Int64, salvageDeut.Int64}
			so.Salvage = &bundle
			so.SalvageDespawnTick = salvageDespawn.Int64
		}
		if npcCleared.Valid {
			v := npcCleared.Int64
			so.NPCClearedTick = &v
		}
		sectors = append(sectors, so)
	}
	return sectors, nil
}

func (s *SQLiteStore) loadExploredEdges() ([]model.ExploredEdgeRecord, error) {
	rows, err := s.db.Query(`SELECT player_id, q1, r1, q2, r2, discovered_tick FROM explored_edges`)
	if err != nil {
		return nil, fmt.Errorf("store: load explored_edges: %w", err)
	}
	defer rows.Close()
	var out []model.ExploredEdgeRecord
	for rows.Next() {
		var rec model.ExploredEdgeRecord
		var q1, r1, q2, r2 int16
		if err := rows.Scan(&rec.PlayerID, &q1, &r1, &q2, &r2, &rec.DiscoveredTick); err != nil {
			return nil, fmt.Errorf("store: scan explored_edge: %w", err)
		}
		rec.A = decodeCoordKey(q1, r1)
		rec.B = decodeCoordKey(q2, r2)
		out = append(out, rec)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
var _ Tx = (*sqliteTx)(nil)
