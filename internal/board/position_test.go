package board

import (
	"strings"
	"testing"
)

// startSFENBody is StartSFEN without the move-number field ToSFEN
// deliberately omits.
var startSFENBody = strings.TrimSuffix(StartSFEN, " 1")

func TestStartingPositionSFENRoundTrip(t *testing.T) {
	pos := NewPosition()
	if got := pos.ToSFEN(); got != startSFENBody {
		t.Fatalf("ToSFEN() = %q, want %q", got, startSFENBody)
	}
	if pos.SideToMove != Black {
		t.Fatalf("SideToMove = %v, want Black", pos.SideToMove)
	}
	if pos.Board[pos.KingSquare[Black]].Type() != King {
		t.Fatal("KingSquare[Black] does not point at a king")
	}
	if pos.Board[pos.KingSquare[White]].Type() != King {
		t.Fatal("KingSquare[White] does not point at a king")
	}
}

func TestDoMoveUndoMoveRestoresKey(t *testing.T) {
	pos := NewPosition()
	startKey := pos.Key

	m := NewMove(NewSquare(2, 6), NewSquare(2, 5)) // 7g7f
	u := pos.DoMove(m)
	if pos.Key == startKey {
		t.Fatal("Key did not change after DoMove")
	}
	pos.UndoMove(u)
	if pos.Key != startKey {
		t.Fatal("Key not restored after UndoMove")
	}
	if pos.ToSFEN() != startSFENBody {
		t.Fatalf("position not restored: %s", pos.ToSFEN())
	}
}

func TestDoMoveCaptureAddsToHand(t *testing.T) {
	// A contrived position: a Black rook takes a White pawn.
	pos, err := ParseSFEN("9/9/9/9/9/4p4/4R4/9/9 b - 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}
	before := pos.Key
	m := NewMove(NewSquare(4, 6), NewSquare(4, 5))
	u := pos.DoMove(m)
	if pos.Hands[Black].Count(Pawn) != 1 {
		t.Fatalf("Hands[Black].Count(Pawn) = %d, want 1", pos.Hands[Black].Count(Pawn))
	}
	pos.UndoMove(u)
	if pos.Hands[Black].Count(Pawn) != 0 {
		t.Fatal("hand not restored after UndoMove")
	}
	if pos.Key != before {
		t.Fatal("Key not restored after UndoMove")
	}
}
