package mate

import (
	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/key128"
	"github.com/sanjo-shogi/mateengine/internal/pathkey"
)

// node bundles a borrowed Position with the search-only state that
// rides along matched DoMove/UndoMove pairs: which side's turn counts
// as OR (attacker) vs AND (defender), the recursion depth used to
// index the path-key tables, and the path key itself.
type node struct {
	pos      *board.Position
	isOrNode bool
	depth    int
	pathKey  key128.Key
	attacker board.Color
}

// newRootNode builds the node wrapper for a Search root.
func newRootNode(pos *board.Position, isOrNode bool) *node {
	attacker := pos.SideToMove
	if !isOrNode {
		attacker = attacker.Other()
	}
	return &node{pos: pos, isOrNode: isOrNode, attacker: attacker}
}

// orHand returns the attacker's hand: the material the minimum-length
// computation measures, regardless of whose turn it currently is.
func (n *node) orHand() board.Hand {
	return n.pos.Hands[n.attacker]
}

// doMove applies m, flips the OR/AND role, advances the depth, and
// updates the path key, including the hand-transfer contribution a
// capture adds on top of the move's own.
func (n *node) doMove(m board.Move) board.UndoInfo {
	u := n.pos.DoMove(m)
	n.pathKey = pathkey.PathKeyAfter(n.pathKey, m, n.depth)
	if u.Captured != board.NoPiece {
		n.pathKey = pathkey.PathKeyAfterSteal(n.pathKey, u.Captured.Type(), n.depth)
	}
	n.depth++
	n.isOrNode = !n.isOrNode
	return u
}

// undoMove reverses doMove.
func (n *node) undoMove(u board.UndoInfo) {
	n.depth--
	n.isOrNode = !n.isOrNode
	if u.Captured != board.NoPiece {
		n.pathKey = pathkey.PathKeyAfterGive(n.pathKey, u.Captured.Type(), n.depth)
	}
	n.pathKey = pathkey.PathKeyBefore(n.pathKey, u.Move, n.depth)
	n.pos.UndoMove(u)
}

// attackerHandCountAfter estimates the attacker's hand count
// immediately after m is played at n, without actually playing it:
// dropping m consumes one of the attacker's own hand pieces if m is
// the attacker's own move and a drop; capturing m adds one if m is a
// capture by the attacker. It is a direct count rather than a full
// DoMove/UndoMove round trip since the caller has not yet committed
// to m.
func (n *node) attackerHandCountAfter(m board.Move) int {
	count := n.orHand().Total()
	moverIsAttacker := n.pos.SideToMove == n.attacker
	if !moverIsAttacker {
		return count
	}
	if m.IsDrop() {
		return count - 1
	}
	if captured := n.pos.Board[m.To()]; captured != board.NoPiece {
		return count + 1
	}
	return count
}
