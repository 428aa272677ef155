package board

import (
	"github.com/sanjo-shogi/mateengine/internal/key128"
	"github.com/sanjo-shogi/mateengine/internal/xorshift"
)

// Zobrist hash keys for position hashing, seeded with a fixed value so
// that keys are reproducible across runs, required for tests and for
// any two engine instances to agree on a position's identity.
var (
	zobristPiece    [NoColor][NoPieceType][NumSquares]key128.Key
	zobristHand     [NoColor][NumHandPieceTypes][]key128.Key
	zobristSideToMove key128.Key
)

const maxHandCount = 18

func init() {
	rng := xorshift.New(0x9E3779B97F4A7C15)
	for c := Color(0); c < NoColor; c++ {
		for pt := PieceType(0); pt < NoPieceType; pt++ {
			for sq := 0; sq < NumSquares; sq++ {
				hi, lo := rng.Next128()
				zobristPiece[c][pt][sq] = key128.Key{Hi: hi, Lo: lo}
			}
		}
		for i := 0; i < NumHandPieceTypes; i++ {
			zobristHand[c][i] = make([]key128.Key, maxHandCount+1)
			for n := 1; n <= maxHandCount; n++ {
				hi, lo := rng.Next128()
				zobristHand[c][i][n] = key128.Key{Hi: hi, Lo: lo}
			}
		}
	}
	hi, lo := rng.Next128()
	zobristSideToMove = key128.Key{Hi: hi, Lo: lo}
}

// handKey returns the zobrist contribution of color c holding n pieces
// of the hand-slot index idx. n == 0 contributes nothing.
func handKey(c Color, idx, n int) key128.Key {
	if n <= 0 {
		return key128.Zero
	}
	if n > maxHandCount {
		n = maxHandCount
	}
	return zobristHand[c][idx][n]
}
