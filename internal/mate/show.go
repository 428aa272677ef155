package mate

import (
	"fmt"
	"strings"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/dfpn"
)

// showPvMaxPlies bounds ShowPv's greedy descent so a cycle of
// non-final entries cannot walk forever.
const showPvMaxPlies = 128

func formatResult(r dfpn.SearchResult) string {
	switch {
	case r.IsProven():
		return fmt.Sprintf("proven len=%d", r.Len.Plies)
	case r.IsDisproven():
		if r.Final.IsRepetition {
			return "unknown (budget exhausted)"
		}
		return "disproven"
	default:
		return fmt.Sprintf("pn=%d dn=%d amount=%d", r.Pn, r.Dn, r.Amount)
	}
}

// ShowValues plays moves from pos, then reports the cached search
// result for every legal move at the resulting position, one per line.
// It is a diagnostic over whatever the transposition table currently
// holds; it never searches.
func (kh *KomoringHeights) ShowValues(pos *board.Position, isOrNode bool, moves []board.Move) string {
	n := newRootNode(pos.Copy(), isOrNode)
	for _, m := range moves {
		n.doMove(m)
	}

	var b strings.Builder
	for _, m := range board.GenerateLegalMoves(n.pos) {
		u := n.doMove(m)
		q := kh.tt.NewQuery(n.pos.Key, n.pathKey, n.pos.Hands[n.pos.SideToMove], n.depth)
		r := q.LookUp(dfpn.MaxMateLen(), false)
		n.undoMove(u)
		fmt.Fprintf(&b, "%s: %s\n", m.String(), formatResult(r))
	}
	return b.String()
}

// ShowPv greedily descends the best line the transposition table knows
// from pos (minimum pn child at OR nodes, minimum dn child at AND
// nodes) and reports the moves walked plus the root-side result at
// each step. Unlike PV reconstruction after a proof, this never
// re-searches, so it is safe to call mid-search for a snapshot of
// where the effort is going.
func (kh *KomoringHeights) ShowPv(pos *board.Position, isOrNode bool) string {
	n := newRootNode(pos.Copy(), isOrNode)

	var b strings.Builder
	for ply := 0; ply < showPvMaxPlies; ply++ {
		bestMove := board.NoMove
		var bestResult dfpn.SearchResult
		found := false
		for _, m := range board.GenerateLegalMoves(n.pos) {
			u := n.doMove(m)
			q := kh.tt.NewQuery(n.pos.Key, n.pathKey, n.pos.Hands[n.pos.SideToMove], n.depth)
			r := q.LookUp(dfpn.MaxMateLen(), false)
			n.undoMove(u)

			if !found {
				bestMove, bestResult, found = m, r, true
				continue
			}
			if n.isOrNode && r.Pn < bestResult.Pn {
				bestMove, bestResult = m, r
			} else if !n.isOrNode && r.Dn < bestResult.Dn {
				bestMove, bestResult = m, r
			}
		}
		if !found {
			break
		}

		fmt.Fprintf(&b, "%s (%s)\n", bestMove.String(), formatResult(bestResult))
		if bestResult.IsFinal() {
			break
		}
		n.doMove(bestMove)
	}
	return b.String()
}
