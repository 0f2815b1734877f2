// Package worldgen derives a sector's procedural content deterministically
// from the world seed and its coordinate, so that nothing about an
// unvisited hex needs to be stored: re-deriving it always reproduces the
// same template.
package worldgen

import (
	"encoding/binary"
	"math/rand"

	"lukechampine.com/blake3"

	"github.com/Vitadek/ownworld/internal/hexcoord"
)

// deriveSeed streams the world seed and the packed coordinate key as two
// little-endian 64-bit words into blake3 and folds the digest down to a
// single uint64 suitable for seeding math/rand. Two calls with the same
// inputs always produce the same seed.
func deriveSeed(worldSeed uint64, key hexcoord.Key) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], worldSeed)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(key))
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// edgeSeed derives the seed for the edge between two hexes. The two keys
// are ordered smaller-first before hashing so that the edge (a, b) hashes
// identically to the edge (b, a): connectivity is a property of the pair,
// not of which side asked first.
func edgeSeed(worldSeed uint64, a, b hexcoord.Key) uint64 {
	if a > b {
		a, b = b, a
	}
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], worldSeed)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(a))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(b))
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// rngFor returns a math/rand source seeded deterministically for a
// single coordinate's generation rolls.
func rngFor(worldSeed uint64, coord hexcoord.Coord) *rand.Rand {
	s := deriveSeed(worldSeed, hexcoord.ToKey(coord))
	return rand.New(rand.NewSource(int64(s)))
}

// edgeRNG returns a math/rand source seeded deterministically for a
// single undirected edge's survival roll.
func edgeRNG(worldSeed uint64, a, b hexcoord.Coord) *rand.Rand {
	s := edgeSeed(worldSeed, hexcoord.ToKey(a), hexcoord.ToKey(b))
	return rand.New(rand.NewSource(int64(s)))
}
