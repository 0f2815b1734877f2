package engine

import (
	"fmt"

	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/store"
)

// Flush batches every dirty entity into a single immediate-lock
// transaction. On any failure it rolls back and returns the error
// with the dirty sets left untouched, so the next cycle retries the
// same work; Clear is only called after Commit succeeds.
func (e *Engine) Flush(tick int64) error {
	w := e.World
	if len(w.Dirty.Players) == 0 && len(w.Dirty.Fleets) == 0 &&
		len(w.Dirty.Sectors) == 0 && len(w.Dirty.PendingEdges) == 0 {
		return nil
	}

	tx, err := e.Store.BeginImmediate()
	if err != nil {
		return fmt.Errorf("engine: begin checkpoint: %w", err)
	}

	if err := e.writeDirty(tx, tick); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("engine: commit checkpoint: %w", err)
	}

	w.Dirty.Clear()
	e.Log.Debug().Int64("tick", tick).Msg("checkpoint flushed")
	return nil
}

func (e *Engine) writeDirty(tx store.Tx, tick int64) error {
	w := e.World

	for id := range w.Dirty.Players {
		p, ok := w.Players[id]
		if !ok {
			continue
		}
		if err := tx.UpsertPlayer(p); err != nil {
			return fmt.Errorf("engine: upsert player %d: %w", id, err)
		}
	}

	for id := range w.Dirty.Fleets {
		f, ok := w.Fleets[id]
		if !ok {
			if err := tx.DeleteFleet(id); err != nil {
				return fmt.Errorf("engine: delete fleet %d: %w", id, err)
			}
			continue
		}
		if err := tx.UpsertFleet(f); err != nil {
			return fmt.Errorf("engine: upsert fleet %d: %w", id, err)
		}
	}

	for key := range w.Dirty.Sectors {
		so, ok := w.Sectors[key]
		if !ok {
			continue
		}
		if err := tx.UpsertSector(so); err != nil {
			return fmt.Errorf("engine: upsert sector %v: %w", hexcoord.FromKey(key), err)
		}
	}

	for _, rec := range w.Dirty.PendingEdges {
		if err := tx.InsertExploredEdge(rec); err != nil {
			return fmt.Errorf("engine: insert explored edge: %w", err)
		}
	}

	if err := tx.UpsertServerState(tick, w.PeekNextID(), w.Seed); err != nil {
		return fmt.Errorf("engine: upsert server state: %w", err)
	}
	return nil
}
