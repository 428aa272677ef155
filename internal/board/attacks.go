package board

// delta is a (file, rank) step vector.
type delta struct {
	df, dr int
}

// forwardSign is -1 for Black (moving from rank "g" toward rank "a") and
// +1 for White (moving from rank "c" toward rank "i").
func forwardSign(c Color) int {
	if c == Black {
		return -1
	}
	return 1
}

// kingDeltas are the eight one-step directions, used directly by King and
// combined with slide directions for the promoted bishop and rook.
var kingDeltas = [8]delta{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// orthogonalDeltas are the four rook slide directions.
var orthogonalDeltas = [4]delta{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// diagonalDeltas are the four bishop slide directions.
var diagonalDeltas = [4]delta{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// goldDeltas returns gold general step directions for color c: forward,
// the two forward diagonals, left, right, and straight back.
func goldDeltas(c Color) []delta {
	f := forwardSign(c)
	return []delta{{0, f}, {-1, f}, {1, f}, {-1, 0}, {1, 0}, {0, -f}}
}

// silverDeltas returns silver general step directions: forward, the two
// forward diagonals, and the two backward diagonals.
func silverDeltas(c Color) []delta {
	f := forwardSign(c)
	return []delta{{0, f}, {-1, f}, {1, f}, {-1, -f}, {1, -f}}
}

// knightDeltas returns the two forward knight jumps.
func knightDeltas(c Color) []delta {
	f := forwardSign(c)
	return []delta{{-1, 2 * f}, {1, 2 * f}}
}

// pawnDelta returns the single forward step a pawn takes.
func pawnDelta(c Color) delta {
	return delta{0, forwardSign(c)}
}

// slideDeltas returns the sliding directions for lance, bishop, and rook.
func slideDeltas(pt PieceType, c Color) []delta {
	switch pt {
	case Lance:
		return []delta{{0, forwardSign(c)}}
	case Bishop, PBishop:
		return diagonalDeltas[:]
	case Rook, PRook:
		return orthogonalDeltas[:]
	default:
		return nil
	}
}

// stepDeltas returns the one-step directions for non-sliding piece types.
// It returns nil for the pure sliding types (Lance, Bishop, Rook); the
// promoted bishop and rook additionally get one-step orthogonal or
// diagonal moves here, on top of their slideDeltas.
func stepDeltas(pt PieceType, c Color) []delta {
	switch pt {
	case King:
		return kingDeltas[:]
	case Gold, PPawn, PLance, PKnight, PSilver:
		return goldDeltas(c)
	case Silver:
		return silverDeltas(c)
	case Knight:
		return knightDeltas(c)
	case Pawn:
		d := pawnDelta(c)
		return []delta{d}
	case PBishop:
		return orthogonalDeltas[:]
	case PRook:
		return diagonalDeltas[:]
	default:
		return nil
	}
}

// inBounds reports whether (file, rank) lies on the board.
func inBounds(file, rank int) bool {
	return file >= 0 && file < 9 && rank >= 0 && rank < 9
}

// pieceAttacks calls visit for every square attacked by a piece of type
// pt and color c sitting on from, given the current occupancy. For
// sliding directions the walk stops at (and includes) the first occupied
// square.
func pieceAttacks(pt PieceType, c Color, from Square, occupied func(Square) bool, visit func(Square)) {
	ff, fr := from.File(), from.Rank()
	for _, d := range stepDeltas(pt, c) {
		nf, nr := ff+d.df, fr+d.dr
		if inBounds(nf, nr) {
			visit(NewSquare(nf, nr))
		}
	}
	for _, d := range slideDeltas(pt, c) {
		nf, nr := ff+d.df, fr+d.dr
		for inBounds(nf, nr) {
			sq := NewSquare(nf, nr)
			visit(sq)
			if occupied(sq) {
				break
			}
			nf += d.df
			nr += d.dr
		}
	}
}
