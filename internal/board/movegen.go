package board

// promotionZoneRank reports whether rank lies in c's promotion zone (the
// three ranks nearest the opponent).
func promotionZoneRank(c Color, rank int) bool {
	if c == Black {
		return rank <= 2
	}
	return rank >= 6
}

// mustPromote reports whether a piece of type pt moving from "from" to
// "to" has no legal choice but to promote, because it would otherwise
// have no subsequent moves (pawn/lance on the far rank, knight on either
// of the far two ranks).
func mustPromote(pt PieceType, c Color, to Square) bool {
	if !pt.CanPromote() {
		return false
	}
	rank := to.Rank()
	farRank, nearFarRank := 0, 1
	if c == White {
		farRank, nearFarRank = 8, 7
	}
	switch pt {
	case Pawn, Lance:
		return rank == farRank
	case Knight:
		return rank == farRank || rank == nearFarRank
	default:
		return false
	}
}

// hasAnyMoveFrom reports whether a piece of type pt and color c sitting
// on sq (on an otherwise empty board) has at least one pseudo-legal
// destination. Used to reject drops that would strand a piece with no
// possible move.
func hasAnyMoveFrom(pt PieceType, c Color, sq Square) bool {
	ff, fr := sq.File(), sq.Rank()
	for _, d := range stepDeltas(pt, c) {
		if inBounds(ff+d.df, fr+d.dr) {
			return true
		}
	}
	for _, d := range slideDeltas(pt, c) {
		if inBounds(ff+d.df, fr+d.dr) {
			return true
		}
	}
	return false
}

// hasPawnOnFile reports whether c has an unpromoted pawn on file.
func hasPawnOnFile(pos *Position, c Color, file int) bool {
	for rank := 0; rank < 9; rank++ {
		p := pos.Board[NewSquare(file, rank)]
		if p.Color() == c && p.Type() == Pawn {
			return true
		}
	}
	return false
}

// GenerateMoves returns every pseudo-legal move for the side to move:
// board moves (with promotion variants) and drops, filtered by the nifu
// and no-legal-move-after-drop rules but not yet by king safety. Pawn
// drop checkmate (uchifuzume) is not filtered, here or in Mate1Ply and
// the search core: a mating pawn drop is treated like any other mate.
func GenerateMoves(pos *Position) []Move {
	var moves []Move
	us := pos.SideToMove
	occupied := func(sq Square) bool { return pos.Board[sq] != NoPiece }

	for sq := Square(0); sq < NumSquares; sq++ {
		p := pos.Board[sq]
		if p == NoPiece || p.Color() != us {
			continue
		}
		pt := p.Type()
		pieceAttacks(pt, us, sq, occupied, func(to Square) {
			dest := pos.Board[to]
			if dest != NoPiece && dest.Color() == us {
				return
			}
			inZone := promotionZoneRank(us, sq.Rank()) || promotionZoneRank(us, to.Rank())
			if pt.CanPromote() && inZone {
				if mustPromote(pt, us, to) {
					moves = append(moves, NewPromotingMove(sq, to))
				} else {
					moves = append(moves, NewMove(sq, to))
					moves = append(moves, NewPromotingMove(sq, to))
				}
			} else {
				moves = append(moves, NewMove(sq, to))
			}
		})
	}

	for _, pt := range HandPieceTypes {
		if pos.Hands[us].Count(pt) == 0 {
			continue
		}
		for sq := Square(0); sq < NumSquares; sq++ {
			if pos.Board[sq] != NoPiece {
				continue
			}
			if pt == Pawn && hasPawnOnFile(pos, us, sq.File()) {
				continue
			}
			if !hasAnyMoveFrom(pt, us, sq) {
				continue
			}
			moves = append(moves, NewDrop(pt, sq))
		}
	}

	return moves
}

// GenerateLegalMoves returns the subset of GenerateMoves that does not
// leave the mover's own king in check.
func GenerateLegalMoves(pos *Position) []Move {
	us := pos.SideToMove
	pseudo := GenerateMoves(pos)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		u := pos.DoMove(m)
		if !pos.InCheck(us) {
			legal = append(legal, m)
		}
		pos.UndoMove(u)
	}
	return legal
}

// HasLegalMove reports whether the side to move has any legal move,
// short-circuiting as soon as one is found.
func HasLegalMove(pos *Position) bool {
	us := pos.SideToMove
	pseudo := GenerateMoves(pos)
	for _, m := range pseudo {
		u := pos.DoMove(m)
		inCheck := pos.InCheck(us)
		pos.UndoMove(u)
		if !inCheck {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check and has no
// legal move, the terminal condition the mate-search core is built
// around.
func IsCheckmate(pos *Position) bool {
	return pos.InCheck(pos.SideToMove) && !HasLegalMove(pos)
}
