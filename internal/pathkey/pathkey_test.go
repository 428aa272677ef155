package pathkey

import (
	"testing"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/key128"
)

// A drop's contribution is exactly the to-square table entry XORed
// with the dropped-piece-type table entry, both at the move's depth.
func TestPathKeyAfterDrop(t *testing.T) {
	before := key128.Key{Hi: 0, Lo: 0x334334}
	const depth = 264
	to := board.NewSquare(0, 0)
	m := board.NewDrop(board.Pawn, to)

	got := PathKeyAfter(before, m, depth)

	want := before.Xor(moveTo[to][depth]).Xor(droppedPr[board.HandIndex(board.Pawn)][depth])
	if got != want {
		t.Fatalf("PathKeyAfter(drop) = %+v, want %+v", got, want)
	}
}

func TestPathKeyAfterIsSelfInverse(t *testing.T) {
	before := key128.Key{Hi: 0xABCD, Lo: 0x1234}
	m := board.NewPromotingMove(board.NewSquare(3, 2), board.NewSquare(3, 1))
	const depth = 7

	after := PathKeyAfter(before, m, depth)
	restored := PathKeyBefore(after, m, depth)
	if restored != before {
		t.Fatalf("PathKeyBefore(PathKeyAfter(k)) = %+v, want %+v", restored, before)
	}
}

func TestPathKeyAfterStealGiveAreInverses(t *testing.T) {
	before := key128.Key{Hi: 1, Lo: 2}
	const depth = 5

	stolen := PathKeyAfterSteal(before, board.Rook, depth)
	restored := PathKeyAfterGive(stolen, board.Rook, depth)
	if restored != before {
		t.Fatalf("AfterGive(AfterSteal(k)) = %+v, want %+v", restored, before)
	}
}

func TestPathKeyDistinguishesMoves(t *testing.T) {
	before := key128.Key{Hi: 0, Lo: 0}
	m1 := board.NewMove(board.NewSquare(2, 6), board.NewSquare(2, 5))
	m2 := board.NewMove(board.NewSquare(7, 6), board.NewSquare(7, 5))

	k1 := PathKeyAfter(before, m1, 0)
	k2 := PathKeyAfter(before, m2, 0)
	if k1 == k2 {
		t.Fatal("distinct moves produced the same path key")
	}
}
