package store

// schemaStatements is the whole schema, run by Bootstrap as a single
// multi-statement Exec call. Every statement is idempotent: schema
// bootstrap must be safe to rerun against an already-initialized
// database.
const schemaStatements = `
CREATE TABLE IF NOT EXISTS server_state (
	key TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	homeworld_q INTEGER NOT NULL,
	homeworld_r INTEGER NOT NULL,
	metal INTEGER NOT NULL DEFAULT 0,
	crystal INTEGER NOT NULL DEFAULT 0,
	deuterium INTEGER NOT NULL DEFAULT 0,
	fragments INTEGER NOT NULL DEFAULT 0,
	token_hash BLOB,
	created_at INTEGER NOT NULL,
	last_login_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS buildings (
	player_id INTEGER NOT NULL,
	building_type INTEGER NOT NULL,
	level INTEGER NOT NULL DEFAULT 0,
	build_start_tick INTEGER,
	build_end_tick INTEGER,
	PRIMARY KEY (player_id, building_type)
);

CREATE TABLE IF NOT EXISTS research (
	player_id INTEGER NOT NULL,
	tech INTEGER NOT NULL,
	level INTEGER NOT NULL DEFAULT 0,
	research_start_tick INTEGER,
	research_end_tick INTEGER,
	PRIMARY KEY (player_id, tech)
);

CREATE TABLE IF NOT EXISTS ship_queues (
	player_id INTEGER PRIMARY KEY,
	ship_class INTEGER NOT NULL,
	count INTEGER NOT NULL,
	built INTEGER NOT NULL,
	start_tick INTEGER NOT NULL,
	end_tick INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fleets (
	id INTEGER PRIMARY KEY,
	player_id INTEGER NOT NULL,
	q INTEGER NOT NULL,
	r INTEGER NOT NULL,
	state INTEGER NOT NULL,
	fuel INTEGER NOT NULL,
	fuel_max INTEGER NOT NULL,
	cargo_metal INTEGER NOT NULL DEFAULT 0,
	cargo_crystal INTEGER NOT NULL DEFAULT 0,
	cargo_deuterium INTEGER NOT NULL DEFAULT 0,
	move_cooldown INTEGER NOT NULL DEFAULT 0,
	action_cooldown INTEGER NOT NULL DEFAULT 0,
	move_target_q INTEGER,
	move_target_r INTEGER,
	idle_ticks INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_fleets_player ON fleets(player_id);
CREATE INDEX IF NOT EXISTS idx_fleets_coord ON fleets(q, r);

CREATE TABLE IF NOT EXISTS ships (
	id INTEGER PRIMARY KEY,
	fleet_id INTEGER,
	player_id INTEGER NOT NULL,
	class INTEGER NOT NULL,
	hull INTEGER NOT NULL,
	hull_max INTEGER NOT NULL,
	shield INTEGER NOT NULL,
	shield_max INTEGER NOT NULL,
	weapon_power INTEGER NOT NULL,
	speed INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ships_fleet ON ships(fleet_id);

CREATE TABLE IF NOT EXISTS sectors_modified (
	q INTEGER NOT NULL,
	r INTEGER NOT NULL,
	metal_density INTEGER,
	crystal_density INTEGER,
	deut_density INTEGER,
	metal_harvested INTEGER NOT NULL DEFAULT 0,
	crystal_harvested INTEGER NOT NULL DEFAULT 0,
	deut_harvested INTEGER NOT NULL DEFAULT 0,
	salvage_metal INTEGER,
	salvage_crystal INTEGER,
	salvage_deuterium INTEGER,
	salvage_despawn_tick INTEGER,
	npc_cleared_tick INTEGER,
	PRIMARY KEY (q, r)
);

CREATE TABLE IF NOT EXISTS explored_edges (
	player_id INTEGER NOT NULL,
	q1 INTEGER NOT NULL,
	r1 INTEGER NOT NULL,
	q2 INTEGER NOT NULL,
	r2 INTEGER NOT NULL,
	discovered_tick INTEGER NOT NULL,
	PRIMARY KEY (player_id, q1, r1, q2, r2)
);
CREATE INDEX IF NOT EXISTS idx_explored_edges_player ON explored_edges(player_id);

CREATE TABLE IF NOT EXISTS recovery_snapshots (
	tick INTEGER PRIMARY KEY,
	blob BLOB NOT NULL,
	blob_hash TEXT NOT NULL
);
`
