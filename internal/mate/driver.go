// Package mate implements the search driver: the top-level df-pn
// recursion with iterative mate-length refinement, PV reconstruction,
// and the SearchMonitor that paces GC and node-effort limits. OR and
// AND nodes differ only in which of pn/dn is minimized and which is
// summed, so they share one code path selected by a boolean instead of
// a type hierarchy.
package mate

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/dfpn"
	"github.com/sanjo-shogi/mateengine/internal/nodecache"
	"github.com/sanjo-shogi/mateengine/internal/tt"
)

// MaxRefinementIterations bounds the Search length-refinement loop.
// Tightening converges long before this in practice; the cap only
// guards against an inconsistent table making the loop oscillate.
const MaxRefinementIterations = 10

// gcMinFreedFraction is the least useful GC yield: a pass freeing a
// smaller fraction of the table's occupied entries triggers
// SearchMonitor.BackoffGc instead of rescheduling at the same cadence.
const gcMinFreedFraction = 0.25

// GcInterval computes the node-effort interval between garbage
// collections from the table's MiB budget:
// (hash_mb*1024*1024/entry_size) / 2 * 3. entrySize is a rough
// per-entry accounting figure, not unsafe.Sizeof(tt.entry) (that type
// is package-private to tt).
func GcInterval(hashMB int) uint64 {
	const entrySize = 64
	entries := uint64(hashMB) * 1024 * 1024 / entrySize
	return entries / 2 * 3
}

// KomoringHeights is the top-level searcher: one transposition table,
// one monitor, one children-cache pool, reused across searches. The
// zero value is not usable; build one with New.
type KomoringHeights struct {
	tt      *tt.Table
	monitor *SearchMonitor
	pool    *nodecache.Pool

	opts Options

	// OnInfo, when set, receives each periodic info bundle instead of
	// the default log sink. The USI layer points it at stdout.
	OnInfo func(UsiInfo)

	bestMoves []board.Move
	score     Score
	stop      *atomic.Bool
}

// New returns a KomoringHeights with default options and an
// unallocated table; call Init then Resize before searching.
func New() *KomoringHeights {
	return &KomoringHeights{
		monitor: NewSearchMonitor(),
		pool:    nodecache.NewPool(),
		opts:    DefaultOptions(),
	}
}

// Init allocates the monitor and resets options to their defaults.
func (kh *KomoringHeights) Init() {
	kh.monitor = NewSearchMonitor()
	kh.opts = DefaultOptions()
}

// Resize reallocates the transposition table to hashMB MiB, destroying
// all existing entries.
func (kh *KomoringHeights) Resize(hashMB int) {
	kh.opts.USIHash = hashMB
	kh.tt = tt.New(hashMB)
	log.Printf("[mate] resized transposition table to %d MiB", hashMB)
}

// SetMaxSearchNode sets the node-effort ceiling for the next Search.
func (kh *KomoringHeights) SetMaxSearchNode(n uint64) { kh.opts.NodesLimit = n }

// SetMaxDepth sets the ply depth ceiling for the next Search.
func (kh *KomoringHeights) SetMaxDepth(d int) { kh.opts.DepthLimit = d }

// SetYozumeCount stores the YozumeNodeCount option; see Options.
func (kh *KomoringHeights) SetYozumeCount(n int) { kh.opts.YozumeNodeCount = n }

// SetYozumePath stores the YozumePath option; see Options.
func (kh *KomoringHeights) SetYozumePath(n int) { kh.opts.YozumePath = n }

// SetRootIsAndNodeIfChecked sets the RootIsAndNodeIfChecked option.
func (kh *KomoringHeights) SetRootIsAndNodeIfChecked(b bool) { kh.opts.RootIsAndNodeIfChecked = b }

// SetPrintFlag requests that the next SearchImpl iteration emit an
// info line, the USI observer's signal for periodic PV output.
func (kh *KomoringHeights) SetPrintFlag() { kh.monitor.SetPrintFlag() }

// BestMoves returns the PV from the most recently proven search.
func (kh *KomoringHeights) BestMoves() []board.Move { return kh.bestMoves }

// Info returns the current info bundle: the monitor's time/node/nps
// figures plus the table's Hashfull, the last recorded score, and the
// best-move line known so far.
func (kh *KomoringHeights) Info() UsiInfo {
	info := kh.monitor.GetInfo()
	if kh.tt != nil {
		info.Hashfull = int(kh.tt.Hashfull() * 1000)
	}
	info.Score = kh.score
	info.Pv = kh.pvString()
	return info
}

// pvString renders bestMoves as the space-separated line the info
// bundle's pv field carries; empty until a PV has been reconstructed.
func (kh *KomoringHeights) pvString() string {
	if len(kh.bestMoves) == 0 {
		return ""
	}
	parts := make([]string, len(kh.bestMoves))
	for i, m := range kh.bestMoves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// nodesLimitOrMax returns opts.NodesLimit, or the all-bits-set ceiling
// when it is 0 ("unlimited").
func (kh *KomoringHeights) nodesLimitOrMax() uint64 {
	if kh.opts.NodesLimit == 0 {
		return ^uint64(0)
	}
	return kh.opts.NodesLimit
}

// Search runs a mate search from pos, treating pos as an OR node
// (attacker to move) iff rootIsOrNode. stop is acquire-loaded between
// node visits; setting it terminates the search at the next SearchImpl
// loop iteration. The caller then receives NullState, unless an earlier
// refinement iteration already proved the root, in which case the
// shortest proof found so far is reported as ProvenState.
func (kh *KomoringHeights) Search(pos *board.Position, rootIsOrNode bool, stop *atomic.Bool) NodeState {
	kh.tt.NewGeneration()
	kh.monitor.NewSearch(GcInterval(kh.opts.USIHash))
	kh.monitor.PushLimit(kh.nodesLimitOrMax())
	defer kh.monitor.PopLimit()

	kh.bestMoves = nil
	kh.stop = stop
	n := newRootNode(pos, rootIsOrNode)

	length := dfpn.MaxMateLen()
	proven := false
	var result dfpn.SearchResult
	var provenLen dfpn.MateLen

	for i := 0; i < MaxRefinementIterations; i++ {
		result = kh.SearchEntry(n, length, dfpn.Inf, dfpn.Inf)
		info := kh.Info()
		info.Depth = n.depth
		kh.emitInfo(info)

		if result.IsProven() {
			if result.Len.Less(length) || result.Len == length {
				provenLen = result.Len
				length = result.Len.Prec()
				proven = true
				continue
			}
			log.Println("info string Failed to detect PV")
			break
		}
		if result.IsDisproven() && length.Less(result.Len) {
			log.Println("info string Failed to detect PV")
		}
		break
	}

	if !proven {
		if result.IsDisproven() {
			return DisprovenState
		}
		return NullState
	}

	kh.reconstructPV(n, provenLen, rootIsOrNode)
	kh.score = MakeScore(result, rootIsOrNode)
	kh.emitInfo(kh.Info())
	return ProvenState
}

// SearchEntry allocates a fresh children cache at n, runs the df-pn
// recursion, and persists the final result to the transposition table
// before returning it.
func (kh *KomoringHeights) SearchEntry(n *node, length dfpn.MateLen, thpn, thdn dfpn.PnDn) dfpn.SearchResult {
	cache := kh.pool.Push()
	defer kh.pool.Pop()
	kh.buildCache(cache, n, length)

	result := kh.searchImpl(n, thpn, thdn, length, cache, false)
	kh.storeResult(n, result)
	return result
}

// storeResult persists r as n's transposition-table entry, stamping it
// with the mover's hand (cache aggregation does not know the hand).
func (kh *KomoringHeights) storeResult(n *node, r dfpn.SearchResult) {
	hand := n.pos.Hands[n.pos.SideToMove]
	r.Hand = hand
	q := kh.tt.NewQuery(n.pos.Key, n.pathKey, hand, n.depth)
	q.SetResult(r)
}

// buildCache populates cache from n's legal moves, querying the
// transposition table for each child's cached result one ply below n's
// own bound (a child is one ply closer to mate than its parent; the
// decrement is a ply step, not the lexicographic Prec used by length
// refinement).
func (kh *KomoringHeights) buildCache(cache *nodecache.Cache, n *node, length dfpn.MateLen) {
	childLen := length.PlusPly(-1)
	cache.Build(n.pos, n.isOrNode, func(m board.Move) (dfpn.SearchResult, bool, bool) {
		u := n.doMove(m)
		q := kh.tt.NewQuery(n.pos.Key, n.pathKey, n.pos.Hands[n.pos.SideToMove], n.depth)
		result, firstVisit, fromOld := q.LookUpDetailed(childLen, true)
		n.undoMove(u)
		return result, firstVisit, fromOld
	})
}

// searchImpl is the df-pn recursion: expand the most promising child
// until this node's pn or dn crosses its threshold, a terminal is
// reached, or a limit fires.
func (kh *KomoringHeights) searchImpl(n *node, thpn, thdn dfpn.PnDn, length dfpn.MateLen, cache *nodecache.Cache, incFlag bool) dfpn.SearchResult {
	kh.monitor.Visit(n.depth)
	if kh.monitor.ConsumePrintFlag() {
		info := kh.Info()
		info.Depth = n.depth
		kh.emitInfo(info)
		kh.monitor.Tick()
	}

	if kh.opts.DepthLimit != 0 && n.depth > kh.opts.DepthLimit {
		return dfpn.BudgetExhaustedResult(n.pos.Hands[n.pos.SideToMove], length, 1)
	}

	// A one-ply mate is resolvable without expanding a child at all, but
	// only if the length budget on this call actually admits a 1-ply
	// proof; at a tighter budget (length refinement hunting for a
	// shorter mate than one already found) it must fall through to the
	// ordinary recursion so the budget is correctly disproven instead.
	if n.isOrNode && !length.Less(dfpn.MateLen{Plies: 1}) {
		if m := board.Mate1Ply(n.pos); m != board.NoMove {
			result := dfpn.ProvenResult(n.pos.Hands[n.pos.SideToMove], dfpn.MateLen{Plies: 1}, 1)
			kh.storeResult(n, result)
			return result
		}
	}

	currResult := cache.CurrentResult()
	incFlag = incFlag || cache.DoesHaveOldChild()
	if incFlag && !currResult.IsFinal() {
		if currResult.Pn+1 < dfpn.Inf {
			thpn = maxPnDn(thpn, currResult.Pn+1)
		}
		if currResult.Dn+1 < dfpn.Inf {
			thdn = maxPnDn(thdn, currResult.Dn+1)
		}
	}

	// A pass that freed too little of the table would fire again next
	// interval with the same result; double the interval instead.
	if kh.monitor.ShouldGc() {
		if kh.tt.GC() < gcMinFreedFraction {
			kh.monitor.BackoffGc()
		} else {
			kh.monitor.ResetNextGc()
		}
	}

	for !kh.monitor.ShouldStop(kh.stop) && currResult.Pn < thpn && currResult.Dn < thdn {
		bestMove := cache.BestMove()
		if bestMove == board.NoMove {
			break
		}

		minLen := minLenFor(n, bestMove)
		if length.Less(minLen) {
			cache.UpdateBestChild(dfpn.DisprovenResult(n.orHand(), minLen.Prec(), currResult.Amount+1))
			currResult = cache.CurrentResult()
			continue
		}

		childThPn, childThDn := cache.PnDnThresholds(thpn, thdn)
		isFirstSearch := cache.FrontIsFirstVisit()

		childLen := length.PlusPly(-1)
		u := n.doMove(bestMove)
		childCache := kh.pool.Push()
		kh.buildCache(childCache, n, childLen)

		var childResult dfpn.SearchResult
		if isFirstSearch {
			childResult = childCache.CurrentResult()
			incFlag = false
			if !(childResult.Pn < childThPn && childResult.Dn < childThDn) {
				kh.pool.Pop()
				n.undoMove(u)
				cache.UpdateBestChild(childResult)
				currResult = cache.CurrentResult()
				continue
			}
		}
		childResult = kh.searchImpl(n, childThPn, childThDn, childLen, childCache, incFlag)

		kh.pool.Pop()
		n.undoMove(u)
		cache.UpdateBestChild(childResult)
		currResult = cache.CurrentResult()
	}
	// Persist whatever was learned here, final or partial, so
	// transpositions and PV reconstruction can reuse it. The depth-limit
	// path above deliberately skips this: budget exhaustion is not a
	// fact about the position.
	kh.storeResult(n, currResult)
	return currResult
}

// emitInfo routes an info bundle to OnInfo when the host registered
// one, falling back to the process log.
func (kh *KomoringHeights) emitInfo(info UsiInfo) {
	if kh.OnInfo != nil {
		kh.OnInfo(info)
		return
	}
	log.Printf("[mate] %s", info.String())
}

func maxPnDn(a, b dfpn.PnDn) dfpn.PnDn {
	if a > b {
		return a
	}
	return b
}

// minLenFor computes the shortest plausible mate length through m:
// (2, attacker_hand_count+1) for an OR move, (3, defender_hand_count+1)
// for an AND move.
func minLenFor(n *node, m board.Move) dfpn.MateLen {
	if n.isOrNode {
		return dfpn.MateLen{Plies: 2, ResidualHandCount: int32(n.attackerHandCountAfter(m)) + 1}
	}
	return dfpn.MateLen{Plies: 3, ResidualHandCount: int32(n.pos.Hands[n.attacker.Other()].Total()) + 1}
}

// reconstructPV walks from the root to a mate, one ply at a time,
// after Search's refinement loop has proven a shortest length. At
// each OR ply it tries the one-ply mate detector first; only on
// failure does it scan legal moves for the proven child extremizing
// length (min for OR, max for AND); if neither finds a move, it
// retries the whole node once via SearchEntry before giving up.
// length is the already-proven total ply count from n to mate, walked
// down one ply per loop iteration via PlusPly(-1); Prec/Succ are the
// lexicographic order used for TT/threshold comparisons and are not
// the right tool for this linear ply countdown.
func (kh *KomoringHeights) reconstructPV(n *node, length dfpn.MateLen, rootIsOrNode bool) {
	var undos []board.UndoInfo
	retried := false

	for length.Plies > 0 {
		if n.isOrNode {
			// A one-ply mate ends the line; nothing below it to walk.
			if m := board.Mate1Ply(n.pos); m != board.NoMove {
				u := n.doMove(m)
				undos = append(undos, u)
				kh.bestMoves = append(kh.bestMoves, m)
				break
			}
		}

		childLen := length.PlusPly(-1)
		bestMove := board.NoMove
		var bestLen dfpn.MateLen
		found := false
		for _, m := range board.GenerateLegalMoves(n.pos) {
			u := n.doMove(m)
			q := kh.tt.NewQuery(n.pos.Key, n.pathKey, n.pos.Hands[n.pos.SideToMove], n.depth)
			childResult := q.LookUp(childLen, false)
			n.undoMove(u)

			if !childResult.IsProven() {
				continue
			}
			lenViaChild := childResult.Len.PlusPly(1)
			if !found {
				bestMove, bestLen, found = m, lenViaChild, true
				continue
			}
			if n.isOrNode && lenViaChild.Less(bestLen) {
				bestMove, bestLen = m, lenViaChild
			} else if !n.isOrNode && bestLen.Less(lenViaChild) {
				bestMove, bestLen = m, lenViaChild
			}
		}

		if !found || length.Less(bestLen) {
			if !retried {
				retried = true
				kh.SearchEntry(n, length, dfpn.Inf, dfpn.Inf)
				continue
			}
			if !found {
				log.Println("info string Failed to detect PV")
				break
			}
		}
		retried = false

		u := n.doMove(bestMove)
		undos = append(undos, u)
		kh.bestMoves = append(kh.bestMoves, bestMove)
		length = length.PlusPly(-1)
	}

	for i := len(undos) - 1; i >= 0; i-- {
		n.undoMove(undos[i])
	}

	if len(kh.bestMoves)%2 != boolToInt(rootIsOrNode) {
		log.Println("info string Failed to detect PV")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
