// Package dfpn holds the value types the mate-search driver and
// transposition table share: proof/disproof numbers, mate-length
// bounds, and the search-result tuple threaded through every recursive
// call. None of these types carry behavior beyond arithmetic on
// themselves; the recursion itself lives in package mate.
package dfpn

import (
	"math"

	"github.com/sanjo-shogi/mateengine/internal/board"
)

// PnDn is a proof number or disproof number: a work estimate in
// [0, Inf]. pn == 0 means the node is proven; dn == 0 means disproven.
type PnDn uint32

// Inf is the sentinel "too expensive to ever prove/disprove" value.
// It is well below PnDn's range ceiling so that AddPnDn can sum two
// Inf-clamped values without wrapping.
const Inf PnDn = 1 << 30

// AddPnDn adds a and b, saturating at Inf instead of overflowing.
func AddPnDn(a, b PnDn) PnDn {
	sum := uint64(a) + uint64(b)
	if sum > uint64(Inf) {
		return Inf
	}
	return PnDn(sum)
}

// SubPnDn subtracts b from a, clamping at 0 rather than underflowing.
func SubPnDn(a, b PnDn) PnDn {
	if b >= a {
		return 0
	}
	return a - b
}

// MateLen is a lexicographically ordered (plies, residual hand count)
// pair. Plies counts half-moves to mate; ResidualHandCount breaks ties
// between mates of equal ply length by preferring the line that leaves
// the defender holding fewer pieces at the end. Prec/Succ/Succ2 give
// the immediate predecessor/successor(s) on this order.
type MateLen struct {
	Plies             int32
	ResidualHandCount int32
}

// maxResidualHandCount bounds ResidualHandCount; a shogi hand can never
// hold more than the 38 non-king pieces in the game, so this is a
// generous ceiling rather than a tight one.
const maxResidualHandCount = 81

// kZeroMateLen is the smallest MateLen: an already-mated position.
var kZeroMateLen = MateLen{Plies: 0, ResidualHandCount: 0}

// kMaxMateLen is the largest representable MateLen, used as the
// starting (most pessimistic) bound for iterative length refinement.
var kMaxMateLen = MateLen{Plies: math.MaxInt32 / 2, ResidualHandCount: maxResidualHandCount}

// ZeroMateLen returns kZeroMateLen.
func ZeroMateLen() MateLen { return kZeroMateLen }

// MaxMateLen returns kMaxMateLen.
func MaxMateLen() MateLen { return kMaxMateLen }

// Less reports whether l sorts strictly before other.
func (l MateLen) Less(other MateLen) bool {
	if l.Plies != other.Plies {
		return l.Plies < other.Plies
	}
	return l.ResidualHandCount < other.ResidualHandCount
}

// Prec returns the immediate predecessor of l.
func (l MateLen) Prec() MateLen {
	if l.ResidualHandCount > 0 {
		return MateLen{Plies: l.Plies, ResidualHandCount: l.ResidualHandCount - 1}
	}
	if l.Plies > 0 {
		return MateLen{Plies: l.Plies - 1, ResidualHandCount: maxResidualHandCount}
	}
	return l
}

// Succ returns the immediate successor of l.
func (l MateLen) Succ() MateLen {
	if l.ResidualHandCount < maxResidualHandCount {
		return MateLen{Plies: l.Plies, ResidualHandCount: l.ResidualHandCount + 1}
	}
	return MateLen{Plies: l.Plies + 1, ResidualHandCount: 0}
}

// PlusPly returns l with n additional plies, residual hand count held
// fixed: the "+1" a node's own move contributes on top of the mate
// length its children already report.
func (l MateLen) PlusPly(n int32) MateLen {
	return MateLen{Plies: l.Plies + n, ResidualHandCount: l.ResidualHandCount}
}

// Succ2 advances l by two steps on the lexicographic order, the
// counterpart of calling Prec twice when a bound needs loosening past
// an immediate neighbor.
func (l MateLen) Succ2() MateLen {
	return l.Succ().Succ()
}

// FinalData carries terminal-state detail that accompanies a final
// SearchResult. IsRepetition marks the non-final (pn = dn = 1) result
// BudgetExhaustedResult builds when the driver's depth limit cuts the
// recursion off, so that budget exhaustion is never mistaken for a
// genuine disproof. A node-limit or external stop ends the search loop
// with the node's ordinary non-final result, which is not flagged.
type FinalData struct {
	IsRepetition bool
}

// SearchResult is the tuple threaded through the search recursion and
// stored in the transposition table: a proof/disproof number pair, the
// hand the result was computed against, a mate length, a monotonically
// increasing node-effort counter, and optional terminal detail.
type SearchResult struct {
	Pn     PnDn
	Dn     PnDn
	Hand   board.Hand
	Len    MateLen
	Amount uint64
	Final  FinalData
}

// IsProven reports whether r represents a proven (mate found) result.
func (r SearchResult) IsProven() bool { return r.Pn == 0 }

// IsDisproven reports whether r represents a disproven (no mate)
// result.
func (r SearchResult) IsDisproven() bool { return r.Dn == 0 }

// IsFinal reports whether r is terminal, proven or disproven. The data
// model's invariant is that exactly one of Pn, Dn is zero in a final
// result and both are positive otherwise.
func (r SearchResult) IsFinal() bool { return r.IsProven() || r.IsDisproven() }

// InitialResult returns the result assigned to a freshly seen node: an
// unresolved 1/1 estimate at the zero mate length.
func InitialResult(hand board.Hand) SearchResult {
	return SearchResult{Pn: 1, Dn: 1, Hand: hand, Len: kZeroMateLen, Amount: 1}
}

// ProvenResult returns a terminal proven result at mate length len.
func ProvenResult(hand board.Hand, len MateLen, amount uint64) SearchResult {
	return SearchResult{Pn: 0, Dn: Inf, Hand: hand, Len: len, Amount: amount}
}

// DisprovenResult returns a terminal disproven result at mate length
// len.
func DisprovenResult(hand board.Hand, len MateLen, amount uint64) SearchResult {
	return SearchResult{Pn: Inf, Dn: 0, Hand: hand, Len: len, Amount: amount}
}

// BudgetExhaustedResult returns a non-final result flagged
// IsRepetition, signaling that the search gave up due to a limit
// rather than having proven no mate exists.
func BudgetExhaustedResult(hand board.Hand, len MateLen, amount uint64) SearchResult {
	r := SearchResult{Pn: 1, Dn: 1, Hand: hand, Len: len, Amount: amount}
	r.Final.IsRepetition = true
	return r
}
