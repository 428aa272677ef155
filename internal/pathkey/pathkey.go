// Package pathkey computes the path key: a 128-bit hash that, unlike a
// position's Zobrist key, distinguishes different sequences of moves
// that transpose to the same board. The mate-search core XORs a move's
// contribution into the path key at each descent and back out at each
// ascent (the hash is self-inverse), using it to recognize when a
// search path has revisited one of its own ancestors rather than merely
// a node some other path has also reached.
//
// Four tables drive the mix: per-square from/to tables, a flat
// promotion table, and a per-piece-type dropped-piece table, all
// indexed by depth so that the same squares visited at different plies
// produce different keys. PathKeyAfterSteal reuses the dropped-piece
// table, the symmetric case of PathKeyAfter's own use of it (a drop
// moves a piece from hand to the board; a capture moves one from the
// board into the capturer's hand).
package pathkey

import (
	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/key128"
	"github.com/sanjo-shogi/mateengine/internal/xorshift"
)

// MaxDepth bounds the depth index into the per-depth tables. A search
// that somehow recurses past this depth reuses the table's last row;
// path keys stay well-defined, they just stop being depth-unique past
// the bound, which is harmless at depths no practical mate problem
// reaches.
const MaxDepth = 512

var (
	moveFrom [board.NumSquares][MaxDepth]key128.Key
	moveTo   [board.NumSquares][MaxDepth]key128.Key
	promote  [MaxDepth]key128.Key
	droppedPr [board.NumHandPieceTypes][MaxDepth]key128.Key
)

// seed is fixed so that anyone cross-checking a path key by hand gets
// the same table.
const seed = 334334

func init() {
	rng := xorshift.New(seed)
	for sq := 0; sq < board.NumSquares; sq++ {
		for d := 0; d < MaxDepth; d++ {
			hi, lo := rng.Next128()
			moveFrom[sq][d] = key128.Key{Hi: hi, Lo: lo}
			hi, lo = rng.Next128()
			moveTo[sq][d] = key128.Key{Hi: hi, Lo: lo}
		}
	}
	for d := 0; d < MaxDepth; d++ {
		hi, lo := rng.Next128()
		promote[d] = key128.Key{Hi: hi, Lo: lo}
	}
	for pr := 0; pr < board.NumHandPieceTypes; pr++ {
		for d := 0; d < MaxDepth; d++ {
			hi, lo := rng.Next128()
			droppedPr[pr][d] = key128.Key{Hi: hi, Lo: lo}
		}
	}
}

func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth >= MaxDepth {
		return MaxDepth - 1
	}
	return depth
}

// PathKeyAfter returns the path key one ply after pathKey, for a search
// that just played m at depth.
func PathKeyAfter(pathKey key128.Key, m board.Move, depth int) key128.Key {
	d := clampDepth(depth)
	pathKey = pathKey.Xor(moveTo[m.To()][d])
	if m.IsDrop() {
		idx := board.HandIndex(m.DroppedPieceType())
		pathKey = pathKey.Xor(droppedPr[idx][d])
	} else {
		pathKey = pathKey.Xor(moveFrom[m.From()][d])
		if m.IsPromote() {
			pathKey = pathKey.Xor(promote[d])
		}
	}
	return pathKey
}

// PathKeyBefore undoes PathKeyAfter. XOR is its own inverse, so this is
// the same computation run on the already-advanced key.
func PathKeyBefore(pathKey key128.Key, m board.Move, depth int) key128.Key {
	return PathKeyAfter(pathKey, m, depth)
}

// PathKeyAfterSteal returns the path key after the side to move has
// captured a piece of type stolen from the board into its hand (stolen
// may be a promoted type; it is reduced to the unpromoted, hand-holdable
// type here, and a type that cannot be held leaves the key unchanged).
// This is not in the move
// itself (DoMove already records the capture), but the path key needs
// its own contribution so that two paths differing only in which side
// currently holds a piece are not confused with each other.
func PathKeyAfterSteal(pathKey key128.Key, stolen board.PieceType, depth int) key128.Key {
	d := clampDepth(depth)
	idx := board.HandIndex(stolen.Unpromote())
	if idx < 0 {
		return pathKey
	}
	return pathKey.Xor(droppedPr[idx][d])
}

// PathKeyAfterGive is PathKeyAfterSteal's inverse, applied from the
// perspective of the side that lost the piece. XOR self-inversion means
// it is the identical computation.
func PathKeyAfterGive(pathKey key128.Key, given board.PieceType, depth int) key128.Key {
	return PathKeyAfterSteal(pathKey, given, depth)
}
