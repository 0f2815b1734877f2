package engine

import (
	"time"
	"unicode"

	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/model"
)

// nowUnix stamps wall-clock timestamps on player records (created_at,
// last_login_at). This is ordinary bookkeeping, not a tick-phase RNG
// source, so the "no global RNG in tick phases" rule does not apply.
func nowUnix() int64 { return time.Now().Unix() }

func cargoCapForShips(classes []model.ShipClass) int64 {
	var total int64
	for _, c := range classes {
		total += balance.Spec(c).CargoCap
	}
	return total
}

// validPlayerName enforces a conservative name shape: 1-24 bytes of
// printable, non-space runes.
func validPlayerName(name string) bool {
	if len(name) == 0 || len(name) > 24 {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
