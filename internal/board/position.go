package board

import (
	"github.com/sanjo-shogi/mateengine/internal/key128"
)

// UndoInfo carries the state DoMove destroys that UndoMove needs to
// restore: the move itself, anything captured, and the position key from
// before the move (cheaper to snapshot than to unwind incrementally).
type UndoInfo struct {
	Move      Move
	Captured  Piece
	PrevKey   key128.Key
	PrevKing  Square
}

// Position is a mailbox shogi position: the external collaborator the
// mate-search core consumes through DoMove/UndoMove, GenerateMoves and
// InCheck. It carries no search state of its own.
type Position struct {
	Board      [NumSquares]Piece
	Hands      [2]Hand
	SideToMove Color
	Key        key128.Key
	KingSquare [2]Square
}

// NewPosition returns the standard shogi starting position.
func NewPosition() *Position {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		panic("board: invalid StartSFEN: " + err.Error())
	}
	return pos
}

// Copy returns an independent copy of pos.
func (pos *Position) Copy() *Position {
	cp := *pos
	return &cp
}

// pieceKey XORs in (or out) the zobrist contribution of p sitting on sq.
func pieceKey(p Piece, sq Square) key128.Key {
	if p == NoPiece {
		return key128.Zero
	}
	return zobristPiece[p.Color()][p.Type()][sq]
}

// place puts p on sq, maintaining Key and KingSquare. sq must be empty.
func (pos *Position) place(p Piece, sq Square) {
	pos.Board[sq] = p
	pos.Key = pos.Key.Xor(pieceKey(p, sq))
	if p.Type() == King {
		pos.KingSquare[p.Color()] = sq
	}
}

// remove takes whatever piece sits on sq off the board, maintaining Key.
func (pos *Position) remove(sq Square) Piece {
	p := pos.Board[sq]
	pos.Board[sq] = NoPiece
	pos.Key = pos.Key.Xor(pieceKey(p, sq))
	return p
}

// addToHand adds pt to c's hand, maintaining Key.
func (pos *Position) addToHand(c Color, pt PieceType) {
	idx := HandIndex(pt.Unpromote())
	n := pos.Hands[c].Count(pt)
	pos.Key = pos.Key.Xor(handKey(c, idx, n)).Xor(handKey(c, idx, n+1))
	pos.Hands[c].Add(pt)
}

// removeFromHand removes pt from c's hand, maintaining Key.
func (pos *Position) removeFromHand(c Color, pt PieceType) {
	idx := HandIndex(pt.Unpromote())
	n := pos.Hands[c].Count(pt)
	pos.Key = pos.Key.Xor(handKey(c, idx, n)).Xor(handKey(c, idx, n-1))
	pos.Hands[c].Remove(pt)
}

// DoMove applies m, which must be legal in pos, and returns the
// information UndoMove needs to reverse it.
func (pos *Position) DoMove(m Move) UndoInfo {
	us := pos.SideToMove
	them := us.Other()
	u := UndoInfo{Move: m, PrevKey: pos.Key, PrevKing: pos.KingSquare[us], Captured: NoPiece}

	if m.IsDrop() {
		pt := m.DroppedPieceType()
		pos.removeFromHand(us, pt)
		pos.place(NewPiece(pt, us), m.To())
	} else {
		moving := pos.remove(m.From())
		if captured := pos.Board[m.To()]; captured != NoPiece {
			u.Captured = captured
			pos.remove(m.To())
			pos.addToHand(us, captured.Type())
		}
		pt := moving.Type()
		if m.IsPromote() {
			pt = pt.Promote()
		}
		pos.place(NewPiece(pt, us), m.To())
	}

	pos.Key = pos.Key.Xor(zobristSideToMove)
	pos.SideToMove = them
	return u
}

// UndoMove reverses a DoMove using the UndoInfo it returned. It restores
// the exact prior Key rather than recomputing it incrementally.
func (pos *Position) UndoMove(u UndoInfo) {
	us := pos.SideToMove.Other()
	m := u.Move
	moved := pos.Board[m.To()]

	if m.IsDrop() {
		pos.Hands[us].Add(m.DroppedPieceType())
		pos.Board[m.To()] = NoPiece
	} else {
		movingType := moved.Type()
		if m.IsPromote() {
			movingType = movingType.Unpromote()
		}
		pos.Board[m.From()] = NewPiece(movingType, us)
		if u.Captured != NoPiece {
			pos.Hands[us].Remove(u.Captured.Type())
			pos.Board[m.To()] = u.Captured
		} else {
			pos.Board[m.To()] = NoPiece
		}
	}

	pos.SideToMove = us
	pos.Key = u.PrevKey
	pos.KingSquare[us] = u.PrevKing
}

// InCheck reports whether c's king is currently attacked.
func (pos *Position) InCheck(c Color) bool {
	return pos.IsAttacked(pos.KingSquare[c], c.Other())
}

// IsAttacked reports whether sq is attacked by any piece of color by.
func (pos *Position) IsAttacked(sq Square, by Color) bool {
	occupied := func(s Square) bool { return pos.Board[s] != NoPiece }
	attacked := false
	visit := func(s Square) {
		if s == sq {
			attacked = true
		}
	}
	for s := Square(0); s < NumSquares; s++ {
		p := pos.Board[s]
		if p == NoPiece || p.Color() != by {
			continue
		}
		pieceAttacks(p.Type(), by, s, occupied, visit)
		if attacked {
			return true
		}
	}
	return false
}

// String renders the position as SFEN.
func (pos *Position) String() string {
	return pos.ToSFEN()
}
