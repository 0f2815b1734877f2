package combat

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

func rngFixed(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func makeShip(id int64, class model.ShipClass, hull, shield, weapon int) *model.Ship {
	return &model.Ship{
		ID: id, Class: class, Hull: hull, HullMax: hull,
		Shield: shield, ShieldMax: shield, WeaponPower: weapon, Speed: 1,
	}
}

func setupCombat(w *model.World, playerShips, npcShips []*model.Ship) *model.Combat {
	pf := &model.Fleet{ID: 1, PlayerID: 1, Ships: playerShips, ShipCount: len(playerShips)}
	w.AddFleet(pf)
	nf := &model.NPCFleet{ID: 2, Ships: npcShips, ShipCount: len(npcShips)}
	w.NPCFleets[2] = nf
	return &model.Combat{
		ID: 1, Sector: hexcoord.Coord{Q: 0, R: 0},
		PlayerFleets: []int64{1}, NPCFleets: []int64{2},
	}
}

func TestResolveIsDeterministicGivenTickAndRound(t *testing.T) {
	w1 := model.NewWorld(1)
	c1 := setupCombat(w1, []*model.Ship{makeShip(1, model.ShipFrigate, 100, 20, 30)}, []*model.Ship{makeShip(2, model.ShipScout, 40, 0, 5)})

	w2 := model.NewWorld(1)
	c2 := setupCombat(w2, []*model.Ship{makeShip(1, model.ShipFrigate, 100, 20, 30)}, []*model.Ship{makeShip(2, model.ShipScout, 40, 0, 5)})

	ev1, concl1, won1 := Resolve(w1, c1, 42)
	ev2, concl2, won2 := Resolve(w2, c2, 42)

	if len(ev1) != len(ev2) || concl1 != concl2 || won1 != won2 {
		t.Fatalf("identical inputs produced different results: (%d,%v,%v) vs (%d,%v,%v)", len(ev1), concl1, won1, len(ev2), concl2, won2)
	}
	for i := range ev1 {
		if !reflect.DeepEqual(ev1[i], ev2[i]) {
			t.Fatalf("event %d diverged: %+v vs %+v", i, ev1[i], ev2[i])
		}
	}
}

func TestResolveConcludesWhenOneSideWiped(t *testing.T) {
	w := model.NewWorld(1)
	c := setupCombat(w,
		[]*model.Ship{makeShip(1, model.ShipBattleship, 2000, 500, 500)},
		[]*model.Ship{makeShip(2, model.ShipScout, 5, 0, 1)},
	)

	var concluded bool
	var won bool
	for round := 0; round < 50 && !concluded; round++ {
		_, concluded, won = Resolve(w, c, int64(round))
	}
	if !concluded {
		t.Fatal("combat should have concluded within 50 rounds given the lopsided stats")
	}
	if !won {
		t.Error("the overwhelmingly stronger player side should have won")
	}
}

func TestCompactPacksLivingShipsToFront(t *testing.T) {
	ships := []*model.Ship{
		makeShip(1, model.ShipScout, 0, 0, 0),
		makeShip(2, model.ShipScout, 10, 0, 0),
		makeShip(3, model.ShipScout, 0, 0, 0),
		makeShip(4, model.ShipScout, 10, 0, 0),
	}
	count := compact(ships, len(ships))
	if count != 2 {
		t.Fatalf("expected 2 survivors, got %d", count)
	}
	for i := 0; i < count; i++ {
		if !ships[i].Alive() {
			t.Errorf("ship at compacted index %d should be alive", i)
		}
	}
}

func TestWeightedTargetSkipsDeadAndNeverReturnsNilWhenSomeoneIsAlive(t *testing.T) {
	defenders := []shipRef{
		{ship: makeShip(1, model.ShipScout, 0, 0, 0), fleetID: 1},
		{ship: makeShip(2, model.ShipScout, 50, 0, 0), fleetID: 1},
	}
	for i := 0; i < 20; i++ {
		if target := weightedTarget(rngFixed(int64(i)), defenders); target == nil || target.ID != 2 {
			t.Fatalf("expected the only living ship to be selected, got %v", target)
		}
	}
}
