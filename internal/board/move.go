package board

import "fmt"

// Move encodes a shogi move in 32 bits:
// bits 0-6:   to square (0-80)
// bits 7-13:  from square (0-80), or 0x7F ("hand") if this is a drop
// bit 14:     promote flag
// bit 15:     drop flag
// bits 16-19: dropped piece type (valid only when the drop flag is set)
type Move uint32

const handFrom = 0x7F

const (
	flagPromote uint32 = 1 << 14
	flagDrop    uint32 = 1 << 15
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a normal (board-to-board) move.
func NewMove(from, to Square) Move {
	return Move(uint32(to) | uint32(from)<<7)
}

// NewPromotingMove creates a promoting board-to-board move.
func NewPromotingMove(from, to Square) Move {
	return Move(uint32(to) | uint32(from)<<7 | flagPromote)
}

// NewDrop creates a drop move of pt onto to.
func NewDrop(pt PieceType, to Square) Move {
	return Move(uint32(to) | uint32(handFrom)<<7 | flagDrop | uint32(pt)<<16)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & 0x7F)
}

// From returns the origin square. For a drop, this returns NoSquare.
func (m Move) From() Square {
	f := Square((m >> 7) & 0x7F)
	if f == handFrom {
		return NoSquare
	}
	return f
}

// IsDrop reports whether this move drops a piece from hand.
func (m Move) IsDrop() bool {
	return uint32(m)&flagDrop != 0
}

// IsPromote reports whether this move promotes the moving piece.
func (m Move) IsPromote() bool {
	return uint32(m)&flagPromote != 0
}

// DroppedPieceType returns the piece type being dropped. Only valid when
// IsDrop() is true.
func (m Move) DroppedPieceType() PieceType {
	return PieceType((m >> 16) & 0xF)
}

// String renders the move in USI notation: "7g7f", "7g7f+" for a
// promotion, or "P*5e" for a drop.
func (m Move) String() string {
	if m == NoMove {
		return "resign"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%s*%s", m.DroppedPieceType().String(), m.To().String())
	}
	s := m.From().String() + m.To().String()
	if m.IsPromote() {
		s += "+"
	}
	return s
}

// ParseMove parses a USI move string. It does not validate legality
// beyond syntax; callers should match the result against
// GenerateLegalMoves.
func ParseMove(s string) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	if s[1] == '*' {
		pt, ok := pieceTypeFromUSILetter(s[0])
		if !ok {
			return NoMove, fmt.Errorf("invalid drop piece: %q", s)
		}
		to, err := ParseSquare(s[2:4])
		if err != nil {
			return NoMove, err
		}
		return NewDrop(pt, to), nil
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) >= 5 && s[4] == '+' {
		return NewPromotingMove(from, to), nil
	}
	return NewMove(from, to), nil
}

func pieceTypeFromUSILetter(c byte) (PieceType, bool) {
	switch c {
	case 'P':
		return Pawn, true
	case 'L':
		return Lance, true
	case 'N':
		return Knight, true
	case 'S':
		return Silver, true
	case 'B':
		return Bishop, true
	case 'R':
		return Rook, true
	case 'G':
		return Gold, true
	default:
		return NoPieceType, false
	}
}
