// Package hexcoord implements the axial hex-grid geometry shared by the
// world generator, the simulation engine, and the session projections.
//
// Coordinates are flat-top axial pairs (q, r) with a derived cube
// coordinate s = -q - r. All functions are pure and allocation-free for
// the common "up to six neighbors" case.
package hexcoord

// Coord is an axial hex coordinate. Both fields are 16-bit signed so
// that a Coord packs losslessly into a 32-bit key.
type Coord struct {
	Q int16
	R int16
}

// Origin is the hex at (0, 0), the central hub.
var Origin = Coord{0, 0}

// S returns the derived cube coordinate s = -q - r.
func (c Coord) S() int32 {
	return -int32(c.Q) - int32(c.R)
}

// Direction indexes the six canonical neighbor directions. The order
// (E, NE, NW, W, SW, SE) is part of the public contract: index 0..5 is
// used by input mapping and by edge connectivity masks.
type Direction int

const (
	DirE Direction = iota
	DirNE
	DirNW
	DirW
	DirSW
	DirSE
	numDirections = 6
)

// directionVectors holds the axial (dq, dr) step for each Direction, in
// the fixed E, NE, NW, W, SW, SE order.
var directionVectors = [numDirections]Coord{
	DirE:  {Q: 1, R: 0},
	DirNE: {Q: 1, R: -1},
	DirNW: {Q: 0, R: -1},
	DirW:  {Q: -1, R: 0},
	DirSW: {Q: -1, R: 1},
	DirSE: {Q: 0, R: 1},
}

// Directions returns the fixed, stable enumeration of all six directions.
func Directions() [numDirections]Direction {
	return [numDirections]Direction{DirE, DirNE, DirNW, DirW, DirSW, DirSE}
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 3) % numDirections
}

// Add returns the coordinate obtained by moving from c in direction d.
func (c Coord) Add(d Direction) Coord {
	v := directionVectors[d]
	return Coord{Q: c.Q + v.Q, R: c.R + v.R}
}

// Sub returns the coordinate obtained by moving from c opposite d.
func (c Coord) Sub(d Direction) Coord {
	return c.Add(d.Opposite())
}

// Neighbor is an alias for Add, read as "the neighbor of c in direction d".
func (c Coord) Neighbor(d Direction) Coord {
	return c.Add(d)
}

// Neighbors returns all six neighboring coordinates in direction order.
func (c Coord) Neighbors() [numDirections]Coord {
	var out [numDirections]Coord
	for _, d := range Directions() {
		out[d] = c.Add(d)
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Distance returns the cube distance between two hexes: the sum of
// halves of |dq|, |dr|, |ds|.
func Distance(a, b Coord) int32 {
	dq := abs32(int32(a.Q) - int32(b.Q))
	dr := abs32(int32(a.R) - int32(b.R))
	ds := abs32(a.S() - b.S())
	return (dq + dr + ds) / 2
}

// DistanceFromOrigin returns Distance(c, Origin).
func DistanceFromOrigin(c Coord) int32 {
	return Distance(c, Origin)
}

// Key is the packed 32-bit representation of a Coord: the low 16 bits
// hold Q, the high 16 bits hold R, both as raw uint16 bit patterns.
type Key uint32

// ToKey packs a Coord into its 32-bit key.
func ToKey(c Coord) Key {
	return Key(uint32(uint16(c.Q)) | uint32(uint16(c.R))<<16)
}

// FromKey unpacks a Key back into a Coord. FromKey(ToKey(h)) == h for
// every h.
func FromKey(k Key) Coord {
	q := int16(uint16(k & 0xFFFF))
	r := int16(uint16(k >> 16))
	return Coord{Q: q, R: r}
}

// Zone is a coarse radial band derived from distance from the origin.
type Zone int

const (
	ZoneCentralHub Zone = iota
	ZoneInnerRing
	ZoneOuterRing
	ZoneWandering
)

// Zone bounds, matching the GLOSSARY: central hub at 0, inner ring <= 8,
// outer ring <= 20, wandering beyond.
const (
	InnerRingMaxDist = 8
	OuterRingMaxDist = 20
)

// ZoneOf classifies a coordinate's distance from the origin into a Zone.
func ZoneOf(c Coord) Zone {
	return ZoneAtDistance(DistanceFromOrigin(c))
}

// ZoneAtDistance classifies a raw distance value into a Zone.
func ZoneAtDistance(dist int32) Zone {
	switch {
	case dist == 0:
		return ZoneCentralHub
	case dist <= InnerRingMaxDist:
		return ZoneInnerRing
	case dist <= OuterRingMaxDist:
		return ZoneOuterRing
	default:
		return ZoneWandering
	}
}

// String renders a Zone's name for logging.
func (z Zone) String() string {
	switch z {
	case ZoneCentralHub:
		return "central_hub"
	case ZoneInnerRing:
		return "inner_ring"
	case ZoneOuterRing:
		return "outer_ring"
	case ZoneWandering:
		return "wandering"
	default:
		return "unknown"
	}
}
