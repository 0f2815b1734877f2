package worldgen

import (
	"testing"

	"github.com/Vitadek/ownworld/internal/hexcoord"
	"github.com/Vitadek/ownworld/internal/model"
)

func TestGenerateIsDeterministic(t *testing.T) {
	const seed = uint64(0xC0FFEE)
	coords := []hexcoord.Coord{{0, 0}, {3, -2}, {-10, 4}, {15, 15}}
	for _, c := range coords {
		a := Generate(seed, c)
		b := Generate(seed, c)
		if a != b {
			t.Fatalf("Generate(%d, %v) not deterministic: %+v != %+v", seed, c, a, b)
		}
	}
}

func TestGenerateDiffersBySeed(t *testing.T) {
	c := hexcoord.Coord{Q: 7, R: -3}
	a := Generate(1, c)
	b := Generate(2, c)
	if a.Terrain == b.Terrain && a.Density == b.Density && a.Connective == b.Connective {
		t.Fatalf("two different world seeds produced an identical template for %v (terrain=%v density=%v mask=%08b)", c, a.Terrain, a.Density, a.Connective)
	}
}

func TestNoHexIsFullyIsolated(t *testing.T) {
	const seed = uint64(42)
	for q := int16(-40); q <= 40; q++ {
		for r := int16(-40); r <= 40; r++ {
			c := hexcoord.Coord{Q: q, R: r}
			mask := ConnectivityMask(seed, c)
			if mask == 0 {
				t.Fatalf("hex %v has no connected edges", c)
			}
		}
	}
}

func TestOriginIsFullyConnected(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 0xC0FFEE, ^uint64(0)} {
		if mask := ConnectivityMask(seed, hexcoord.Origin); mask != 0b111111 {
			t.Errorf("ConnectivityMask(%d, origin) = %06b, want 111111", seed, mask)
		}
	}
}

func TestEdgeConnectivityIsSymmetric(t *testing.T) {
	const seed = uint64(1234)
	a := hexcoord.Coord{Q: 5, R: -5}
	for _, d := range hexcoord.Directions() {
		b := a.Neighbor(d)
		maskA := ConnectivityMask(seed, a)
		maskB := ConnectivityMask(seed, b)
		aToB := HasEdge(maskA, d)
		bToA := HasEdge(maskB, d.Opposite())
		if aToB != bToA {
			t.Errorf("edge %v->%v asymmetric: a says %v, b says %v", a, b, aToB, bToA)
		}
	}
}

func TestDensityRespectsTerrainGating(t *testing.T) {
	const seed = uint64(99)
	for q := int16(-25); q <= 25; q++ {
		for r := int16(-25); r <= 25; r++ {
			c := hexcoord.Coord{Q: q, R: r}
			tmpl := Generate(seed, c)
			for _, rk := range model.Resources() {
				if !terrainYields(tmpl.Terrain, rk) && tmpl.Density[rk] != 0 {
					t.Fatalf("terrain %v should not yield resource %d, got density %v", tmpl.Terrain, rk, tmpl.Density[rk])
				}
			}
		}
	}
}
