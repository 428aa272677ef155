package board

import "testing"

func TestStartingPositionHasThirtyLegalMoves(t *testing.T) {
	pos := NewPosition()
	moves := GenerateLegalMoves(pos)
	if len(moves) != 30 {
		t.Fatalf("len(GenerateLegalMoves) = %d, want 30", len(moves))
	}
}

func TestPawnDropRejectsNifu(t *testing.T) {
	pos, err := ParseSFEN("9/9/9/9/9/9/4P4/9/9 b P 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}
	for _, m := range GenerateMoves(pos) {
		if m.IsDrop() && m.DroppedPieceType() == Pawn && m.To().File() == NewSquare(4, 0).File() {
			t.Fatalf("nifu drop was generated: %s", m)
		}
	}
}

func TestPawnDropRejectsNoMoveRank(t *testing.T) {
	pos, err := ParseSFEN("9/9/9/9/9/9/9/9/9 b P 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}
	const farRank = 0 // Black's farthest rank, USI rank "a"
	for _, m := range GenerateMoves(pos) {
		if m.IsDrop() && m.To().Rank() == farRank {
			t.Fatalf("pawn drop on farthest rank was generated: %s", m)
		}
	}
}

func TestCheckmateDetection(t *testing.T) {
	// White king boxed into the corner with a Black rook and gold
	// delivering mate; White has no other pieces and no legal reply.
	pos, err := ParseSFEN("k8/1G7/1R7/9/9/9/9/9/9 w - 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}
	if !IsCheckmate(pos) {
		t.Fatal("expected checkmate")
	}
}

func TestMate1Ply(t *testing.T) {
	// Black drops a gold to deliver immediate mate on the cornered White king.
	pos, err := ParseSFEN("k8/9/1R7/9/9/9/9/9/9 b G 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}
	m := Mate1Ply(pos)
	if m == NoMove {
		t.Fatal("expected a one-ply mate")
	}
	u := pos.DoMove(m)
	defer pos.UndoMove(u)
	if !IsCheckmate(pos) {
		t.Fatalf("move %s returned by Mate1Ply is not actually mate", m)
	}
}
