package hexcoord

import "testing"

func TestDistanceSymmetric(t *testing.T) {
	pairs := []struct{ a, b Coord }{
		{Coord{0, 0}, Coord{3, -2}},
		{Coord{-5, 7}, Coord{2, 2}},
		{Coord{100, -50}, Coord{-100, 50}},
	}
	for _, p := range pairs {
		if Distance(p.a, p.b) != Distance(p.b, p.a) {
			t.Errorf("distance(%v,%v) != distance(%v,%v)", p.a, p.b, p.b, p.a)
		}
	}
}

func TestNeighborsAtDistanceOne(t *testing.T) {
	origin := Coord{5, -3}
	for _, d := range Directions() {
		n := origin.Neighbor(d)
		if Distance(origin, n) != 1 {
			t.Errorf("neighbor in direction %v is at distance %d, want 1", d, Distance(origin, n))
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	coords := []Coord{{0, 0}, {1, 1}, {-1, -1}, {32767, -32768}, {-32768, 32767}}
	for _, c := range coords {
		if got := FromKey(ToKey(c)); got != c {
			t.Errorf("FromKey(ToKey(%v)) = %v, want %v", c, got, c)
		}
	}
}

func TestOppositeDirection(t *testing.T) {
	origin := Coord{0, 0}
	for _, d := range Directions() {
		n := origin.Neighbor(d)
		back := n.Neighbor(d.Opposite())
		if back != origin {
			t.Errorf("direction %v opposite round-trip failed: got %v, want origin", d, back)
		}
	}
}

func TestZoneBoundaries(t *testing.T) {
	cases := []struct {
		dist int32
		want Zone
	}{
		{0, ZoneCentralHub},
		{1, ZoneInnerRing},
		{8, ZoneInnerRing},
		{9, ZoneOuterRing},
		{20, ZoneOuterRing},
		{21, ZoneWandering},
		{1000, ZoneWandering},
	}
	for _, c := range cases {
		if got := ZoneAtDistance(c.dist); got != c.want {
			t.Errorf("ZoneAtDistance(%d) = %v, want %v", c.dist, got, c.want)
		}
	}
}
