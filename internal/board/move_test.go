package board

import "testing"

func TestMoveRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		m    Move
		want string
	}{
		{"plain", NewMove(NewSquare(2, 6), NewSquare(2, 5)), "7g7f"},
		{"promotion", NewPromotingMove(NewSquare(7, 2), NewSquare(7, 1)), "2c2b+"},
		{"drop", NewDrop(Pawn, NewSquare(4, 4)), "P*5e"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.m.String(); got != c.want {
				t.Fatalf("String() = %q, want %q", got, c.want)
			}
			parsed, err := ParseMove(c.want)
			if err != nil {
				t.Fatalf("ParseMove(%q) error: %v", c.want, err)
			}
			if parsed != c.m {
				t.Fatalf("ParseMove(%q) = %#v, want %#v", c.want, parsed, c.m)
			}
		})
	}
}

func TestMoveAccessors(t *testing.T) {
	m := NewDrop(Rook, NewSquare(0, 0))
	if !m.IsDrop() {
		t.Fatal("expected IsDrop")
	}
	if m.From() != NoSquare {
		t.Fatalf("From() = %v, want NoSquare", m.From())
	}
	if m.DroppedPieceType() != Rook {
		t.Fatalf("DroppedPieceType() = %v, want Rook", m.DroppedPieceType())
	}

	promo := NewPromotingMove(NewSquare(1, 1), NewSquare(1, 0))
	if promo.IsDrop() {
		t.Fatal("did not expect IsDrop")
	}
	if !promo.IsPromote() {
		t.Fatal("expected IsPromote")
	}
}
