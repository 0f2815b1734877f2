package engine

import (
	"crypto/subtle"
	"fmt"
	"math/rand"
	"time"

	"lukechampine.com/blake3"

	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

// hashToken digests a client-supplied auth token for storage. Tokens
// themselves are never persisted or logged, only their digest.
func hashToken(token string) []byte {
	sum := blake3.Sum256([]byte(token))
	return sum[:]
}

// Register resolves an auth{action:"register"} envelope into a stable
// player record: it places a fresh homeworld by rejection sampling,
// deposits starting resources, and commissions a starter fleet of
// scouts. A never-claimed legacy name (one with no stored token
// digest) is claimed by the current registration rather than
// rejected, per the idempotent-rename allowance.
func (e *Engine) Register(name, token string, maxPlayers int) (*model.Player, *CmdError) {
	if !validPlayerName(name) {
		return nil, ErrInvalidPlayerName
	}
	w := e.World
	if existing, ok := w.PlayerByName(name); ok {
		if len(existing.TokenHash) != 0 {
			return nil, ErrNameTaken
		}
		existing.TokenHash = hashToken(token)
		existing.LastLoginAtUnix = nowUnix()
		w.MarkPlayerDirty(existing.ID)
		return existing, nil
	}
	if maxPlayers > 0 && len(w.Players) >= maxPlayers {
		return nil, ErrRegistrationClosed
	}

	home, err := e.placeHomeworld()
	if err != nil {
		return nil, ErrServerError(err.Error())
	}

	p := &model.Player{
		ID:              w.NextID(),
		Name:            name,
		Resources:       balance.StartingResources(),
		Homeworld:       home,
		TokenHash:       hashToken(token),
		CreatedAtUnix:   nowUnix(),
		LastLoginAtUnix: nowUnix(),
	}
	w.AddPlayer(p)
	e.commissionStarterFleet(p)

	e.Log.Info().Str("player", name).Int64("player_id", p.ID).
		Int16("home_q", home.Q).Int16("home_r", home.R).Msg("player registered")
	return p, nil
}

// Login resolves an auth{action:"login"} envelope, verifying the
// supplied token against the stored digest in constant time.
func (e *Engine) Login(name, token string) (*model.Player, *CmdError) {
	p, ok := e.World.PlayerByName(name)
	if !ok || len(p.TokenHash) == 0 {
		return nil, ErrAuthFailed
	}
	if subtle.ConstantTimeCompare(p.TokenHash, hashToken(token)) != 1 {
		return nil, ErrAuthFailed
	}
	p.LastLoginAtUnix = nowUnix()
	e.World.MarkPlayerDirty(p.ID)
	return p, nil
}

func (e *Engine) commissionStarterFleet(p *model.Player) {
	w := e.World
	f := &model.Fleet{ID: w.NextID(), PlayerID: p.ID, Location: p.Homeworld, Status: model.FleetIdle}
	for i := 0; i < balance.StarterScoutCount; i++ {
		spec := balance.Spec(model.ShipScout)
		hull, shield, weapon := balance.BuiltShipStats(model.ShipScout,
			p.ResearchLevels[model.TechHullPlating], p.ResearchLevels[model.TechShielding], p.ResearchLevels[model.TechWeapons])
		f.Ships = append(f.Ships, &model.Ship{
			ID: w.NextID(), Class: model.ShipScout,
			Hull: hull, HullMax: hull,
			Shield: shield, ShieldMax: shield,
			WeaponPower: weapon, Speed: spec.BaseSpeed,
		})
	}
	f.ShipCount = len(f.Ships)
	f.CargoCap = cargoCapForShips(liveShipClasses(f))
	f.FuelMax = balance.FuelMaxForShips(liveShipClasses(f), 0, 0)
	f.Fuel = f.FuelMax
	w.AddFleet(f)
}

// placeHomeworld rejection-samples a coordinate inside
// [HomeworldMinDist, HomeworldMaxDist] of the origin that sits no
// closer than HomeworldMinSeparation to any existing homeworld. This
// is the one place in the engine permitted to read wall-clock entropy
// rather than a tick-derived seed, since registration happens outside
// the deterministic tick dispatcher and never needs to replay.
func (e *Engine) placeHomeworld() (hexcoord.Coord, error) {
	w := e.World
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	span := int32(2*balance.HomeworldMaxDist + 1)

	for attempt := 0; attempt < balance.RegistrationMaxAttempts; attempt++ {
		q := int16(rng.Int31n(span) - int32(balance.HomeworldMaxDist))
		r := int16(rng.Int31n(span) - int32(balance.HomeworldMaxDist))
		c := hexcoord.Coord{Q: q, R: r}
		dist := hexcoord.DistanceFromOrigin(c)
		if dist < int32(balance.HomeworldMinDist) || dist > int32(balance.HomeworldMaxDist) {
			continue
		}

		conflict := false
		for _, p := range w.Players {
			if hexcoord.Distance(c, p.Homeworld) < int32(balance.HomeworldMinSeparation) {
				conflict = true
				break
			}
		}
		if !conflict {
			return c, nil
		}
	}
	return hexcoord.Coord{}, fmt.Errorf("no homeworld slot found after %d attempts", balance.RegistrationMaxAttempts)
}
