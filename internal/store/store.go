// Package store is the checkpoint boundary between the in-memory
// simulation and disk. It persists only deviations from procedural
// generation: world seed, players, fleets and their ships, sector
// overrides, and explored edges. Everything else (templates,
// connectivity, patrol state, active combats) is re-derived on load.
package store

import (
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// Store is the interface the engine depends on. internal/engine never
// imports database/sql directly; it only ever sees this.
type Store interface {
	// Bootstrap creates the schema if it does not already exist. Safe
	// to call on every startup.
	Bootstrap() error

	// LoadAtStartup returns every persisted record, ready to populate
	// a fresh World. Called exactly once, at cold start.
	LoadAtStartup() (*Snapshot, error)

	// BeginImmediate opens a single exclusive-write transaction for one
	// checkpoint flush.
	BeginImmediate() (Tx, error)

	// WriteRecoverySnapshot compresses and stores a full point-in-time
	// copy of the world for disaster recovery, independent of the
	// incremental dirty-set flush.
	WriteRecoverySnapshot(tick int64, snapshot *Snapshot) error

	Close() error
}

// Tx is one batched, all-or-nothing checkpoint write. Every method
// queues or executes a statement against the transaction's connection;
// nothing is durable until Commit returns nil.
type Tx interface {
	UpsertPlayer(p *model.Player) error
	UpsertFleet(f *model.Fleet) error
	DeleteFleet(id int64) error
	UpsertSector(s *model.SectorOverride) error
	InsertExploredEdge(rec model.ExploredEdgeRecord) error
	UpsertServerState(currentTick int64, nextID int64, seed uint64) error

	Commit() error
	Rollback() error
}

// Snapshot is everything LoadAtStartup hands back to the engine to
// rebuild a World.
type Snapshot struct {
	CurrentTick int64
	NextID      int64
	WorldSeed   uint64

	Players       []*model.Player
	Fleets        []*model.Fleet
	Sectors       []*model.SectorOverride
	ExploredEdges []model.ExploredEdgeRecord
}

// decodeCoordKey builds a hexcoord.Coord from the (q, r) column pair
// every table uses to store a hex position.
func decodeCoordKey(q, r int16) hexcoord.Coord { return hexcoord.Coord{Q: q, R: r} }
