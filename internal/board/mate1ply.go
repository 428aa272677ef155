package board

// Mate1Ply brute-forces a one-ply mate from pos: it tries every move for
// the side to move that gives check, and accepts the first one after
// which the defender has no legal reply. It exists as a cheap terminal
// check the mate-search core calls before descending further, and again
// while reconstructing a principal variation: a position at the search
// frontier is far more often "mate in one" than "mate in three", so
// trying this first avoids a full child expansion.
//
// It returns NoMove if no one-ply mate exists.
func Mate1Ply(pos *Position) Move {
	us := pos.SideToMove
	them := us.Other()
	for _, m := range GenerateMoves(pos) {
		u := pos.DoMove(m)
		mates := pos.InCheck(them) && !pos.InCheck(us) && !HasLegalMove(pos)
		pos.UndoMove(u)
		if mates {
			return m
		}
	}
	return NoMove
}
