package model

import "github.com/Vitadek/ownworld/internal/hexcoord"

// EdgeKey is a canonical, order-independent identifier for an
// undirected edge between two hexes: the two packed coordinate keys,
// smaller first, packed into a 64-bit value.
type EdgeKey uint64

// MakeEdgeKey builds the canonical key for the edge between a and b.
func MakeEdgeKey(a, b hexcoord.Coord) EdgeKey {
	ka, kb := hexcoord.ToKey(a), hexcoord.ToKey(b)
	if ka > kb {
		ka, kb = kb, ka
	}
	return EdgeKey(uint64(ka))<<32 | EdgeKey(uint64(kb))
}

// ExploredEdgeRecord is one row destined for the explored_edges table.
type ExploredEdgeRecord struct {
	PlayerID      int64
	A, B          hexcoord.Coord
	DiscoveredTick int64
}

// Dirty is the cross-cutting set of entity ids whose persisted fields
// changed since the last checkpoint. World's mutator methods are the
// only way to change a persisted field; every one of them marks the
// touched entity here before returning, so a flush can never silently
// miss a change. Append-only record families (explored edges) are
// tracked as a pending-insert slice instead of a set, since they are
// never updated once written.
type Dirty struct {
	Players       map[int64]struct{}
	Fleets        map[int64]struct{}
	Sectors       map[hexcoord.Key]struct{}
	PendingEdges  []ExploredEdgeRecord
}

func newDirty() *Dirty {
	return &Dirty{
		Players: make(map[int64]struct{}),
		Fleets:  make(map[int64]struct{}),
		Sectors: make(map[hexcoord.Key]struct{}),
	}
}

func (d *Dirty) markPlayer(id int64)      { d.Players[id] = struct{}{} }
func (d *Dirty) markFleet(id int64)       { d.Fleets[id] = struct{}{} }
func (d *Dirty) markSector(k hexcoord.Key) { d.Sectors[k] = struct{}{} }

// Clear empties every dirty set and the pending-edge queue. Call only
// after a successful flush; a failed flush must leave Dirty untouched
// so the next cycle retries.
func (d *Dirty) Clear() {
	d.Players = make(map[int64]struct{})
	d.Fleets = make(map[int64]struct{})
	d.Sectors = make(map[hexcoord.Key]struct{})
	d.PendingEdges = nil
}

// World owns every entity in the simulation. Nothing outside
// internal/engine and internal/combat should construct or mutate one
// directly; the session layer reads through engine-provided
// projections only.
type World struct {
	Seed        uint64
	CurrentTick int64
	nextID      int64

	Players   map[int64]*Player
	playerByName map[string]int64
	Fleets    map[int64]*Fleet
	NPCFleets map[int64]*NPCFleet
	Combats   map[int64]*Combat
	Sectors   map[hexcoord.Key]*SectorOverride

	// ExploredEdges maps a player id to the set of edges they have
	// discovered, keyed canonically so either endpoint order matches.
	ExploredEdges map[int64]map[EdgeKey]struct{}

	Dirty *Dirty
}

// NewWorld builds an empty world seeded for procedural generation.
func NewWorld(seed uint64) *World {
	return &World{
		Seed:          seed,
		Players:       make(map[int64]*Player),
		playerByName:  make(map[string]int64),
		Fleets:        make(map[int64]*Fleet),
		NPCFleets:     make(map[int64]*NPCFleet),
		Combats:       make(map[int64]*Combat),
		Sectors:       make(map[hexcoord.Key]*SectorOverride),
		ExploredEdges: make(map[int64]map[EdgeKey]struct{}),
		Dirty:         newDirty(),
	}
}

// NextID allocates and returns the next 64-bit entity id. The counter
// itself is part of server_state and is persisted every checkpoint
// regardless of entity-level dirty tracking.
func (w *World) NextID() int64 {
	w.nextID++
	return w.nextID
}

// SetNextID restores the id counter from a checkpoint. Must be called
// before any NextID() call on a freshly loaded world.
func (w *World) SetNextID(v int64) { w.nextID = v }

// PeekNextID returns the current id counter without allocating a new
// id, for persisting alongside current_tick at checkpoint time.
func (w *World) PeekNextID() int64 { return w.nextID }

// PlayerByName looks up a player by their unique, case-sensitive name.
func (w *World) PlayerByName(name string) (*Player, bool) {
	id, ok := w.playerByName[name]
	if !ok {
		return nil, false
	}
	return w.Players[id], true
}

// AddPlayer registers a newly created player and marks it dirty.
func (w *World) AddPlayer(p *Player) {
	w.Players[p.ID] = p
	w.playerByName[p.Name] = p.ID
	w.Dirty.markPlayer(p.ID)
}

// MarkPlayerDirty records that a player's persisted fields changed.
// Every Player field mutation in internal/engine must be followed by
// this call; command handlers and tick phases never write a Player
// field without it.
func (w *World) MarkPlayerDirty(id int64) { w.Dirty.markPlayer(id) }

// AddFleet registers a newly created fleet and marks it dirty.
func (w *World) AddFleet(f *Fleet) {
	w.Fleets[f.ID] = f
	w.Dirty.markFleet(f.ID)
}

// RemoveFleet deletes a dissolved or annihilated fleet. Deletions are
// applied directly by the store's next flush truncating the row; the
// dirty set only needs to know the id was touched so the store can
// check for its continued existence.
func (w *World) RemoveFleet(id int64) {
	delete(w.Fleets, id)
	w.Dirty.markFleet(id)
}

// MarkFleetDirty records that a fleet's persisted fields changed.
func (w *World) MarkFleetDirty(id int64) { w.Dirty.markFleet(id) }

// SectorOverrideFor returns the override for a coordinate, creating an
// empty one lazily on first access. The caller is expected to mutate
// it and then call MarkSectorDirty.
func (w *World) SectorOverrideFor(c hexcoord.Coord) *SectorOverride {
	k := hexcoord.ToKey(c)
	if s, ok := w.Sectors[k]; ok {
		return s
	}
	s := &SectorOverride{Coord: c}
	w.Sectors[k] = s
	return s
}

// MarkSectorDirty records that a sector override's persisted fields
// changed.
func (w *World) MarkSectorDirty(c hexcoord.Coord) {
	w.Dirty.markSector(hexcoord.ToKey(c))
}

// HasExploredEdge reports whether a player has ever discovered the
// edge between a and b, in either direction.
func (w *World) HasExploredEdge(playerID int64, a, b hexcoord.Coord) bool {
	set := w.ExploredEdges[playerID]
	if set == nil {
		return false
	}
	_, ok := set[MakeEdgeKey(a, b)]
	return ok
}

// HasVisited reports whether a player has any explored-edge record
// touching coordinate c. This is the sole basis for first_visit: there
// is no secondary per-player explored-hex set.
func (w *World) HasVisited(playerID int64, c hexcoord.Coord) bool {
	set := w.ExploredEdges[playerID]
	if set == nil {
		return false
	}
	target := hexcoord.ToKey(c)
	for ek := range set {
		if uint32(ek>>32) == uint32(target) || uint32(ek) == uint32(target) {
			return true
		}
	}
	return false
}

// RehydratePlayer installs a player loaded from the checkpoint store
// without marking it dirty; used only at cold start.
func (w *World) RehydratePlayer(p *Player) {
	w.Players[p.ID] = p
	w.playerByName[p.Name] = p.ID
}

// RehydrateFleet installs a fleet loaded from the checkpoint store
// without marking it dirty; used only at cold start.
func (w *World) RehydrateFleet(f *Fleet) { w.Fleets[f.ID] = f }

// RehydrateSector installs a sector override loaded from the
// checkpoint store without marking it dirty; used only at cold start.
func (w *World) RehydrateSector(s *SectorOverride) {
	w.Sectors[hexcoord.ToKey(s.Coord)] = s
}

// RehydrateExploredEdge installs an explored-edge record loaded from
// the checkpoint store without re-queuing it for a pending insert;
// used only at cold start.
func (w *World) RehydrateExploredEdge(rec ExploredEdgeRecord) {
	set := w.ExploredEdges[rec.PlayerID]
	if set == nil {
		set = make(map[EdgeKey]struct{})
		w.ExploredEdges[rec.PlayerID] = set
	}
	set[MakeEdgeKey(rec.A, rec.B)] = struct{}{}
}

// PlayerFleetsAt returns every player fleet currently located at c.
func (w *World) PlayerFleetsAt(c hexcoord.Coord) []*Fleet {
	var out []*Fleet
	for _, f := range w.Fleets {
		if f.Location == c {
			out = append(out, f)
		}
	}
	return out
}

// NPCFleetAt returns the live spawned NPC fleet at c, if any. A sector
// may have at most one spawned NPC fleet at a time; template NPCs are
// projected on demand and only materialize into a World entry on
// first hostile contact.
func (w *World) NPCFleetAt(c hexcoord.Coord) (*NPCFleet, bool) {
	for _, n := range w.NPCFleets {
		if n.Location == c && n.ShipCount > 0 {
			return n, true
		}
	}
	return nil, false
}

// CombatAt returns the open combat occupying sector c, if any.
func (w *World) CombatAt(c hexcoord.Coord) (*Combat, bool) {
	for _, cb := range w.Combats {
		if cb.Sector == c && cb.State == CombatOpen {
			return cb, true
		}
	}
	return nil, false
}

// AddNPCFleet registers a newly spawned NPC fleet. NPC fleets are not
// persisted and so are never dirty-tracked.
func (w *World) AddNPCFleet(n *NPCFleet) { w.NPCFleets[n.ID] = n }

// RemoveNPCFleet deletes a defeated NPC fleet.
func (w *World) RemoveNPCFleet(id int64) { delete(w.NPCFleets, id) }

// AddCombat registers a newly opened combat.
func (w *World) AddCombat(c *Combat) { w.Combats[c.ID] = c }

// RemoveCombat deletes a concluded combat.
func (w *World) RemoveCombat(id int64) { delete(w.Combats, id) }

// RecordExploredEdge marks an edge as discovered by a player and
// queues the corresponding row for the next flush. Idempotent: an
// already-known edge is not re-queued.
func (w *World) RecordExploredEdge(playerID int64, a, b hexcoord.Coord, tick int64) {
	set := w.ExploredEdges[playerID]
	if set == nil {
		set = make(map[EdgeKey]struct{})
		w.ExploredEdges[playerID] = set
	}
	key := MakeEdgeKey(a, b)
	if _, ok := set[key]; ok {
		return
	}
	set[key] = struct{}{}
	w.Dirty.PendingEdges = append(w.Dirty.PendingEdges, ExploredEdgeRecord{
		PlayerID: playerID, A: a, B: b, DiscoveredTick: tick,
	})
}
